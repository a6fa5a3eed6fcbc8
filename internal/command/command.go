/*
Package command
File: command.go
Description:
    Turns a typed line from the terminal client into a game command.
    Verbs and fertilizer kinds are matched fuzzily (exact, prefix, then
    edit distance) so "irigate 100" or "fert nitrgen" still work.
*/

package command

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/everforgeworks/farm-navigators/internal/game"
)

// Verb is the canonical command name.
type Verb string

const (
	Irrigate  Verb = "irrigate"
	Fertilize Verb = "fertilize"
	Observe   Verb = "observe"
	Next      Verb = "next"
	Status    Verb = "status"
	Forecast  Verb = "forecast"
	View      Verb = "view"
	Save      Verb = "save"
	Results   Verb = "results"
	Help      Verb = "help"
	Quit      Verb = "quit"
)

var (
	ErrEmpty           = errors.New("empty command")
	ErrUnknown         = errors.New("unknown command")
	ErrAmbiguous       = errors.New("ambiguous command")
	ErrMissingArgument = errors.New("missing argument")
)

// Command is a parsed input line.
type Command struct {
	Verb       Verb
	Amount     int             // irrigate only
	Fertilizer game.Fertilizer // fertilize only
	Source     game.DataSource // view only
	Raw        string
}

type verbDef struct {
	canonical Verb
	aliases   []string
}

var verbs = []verbDef{
	{Irrigate, []string{"water", "irr"}},
	{Fertilize, []string{"fert", "feed"}},
	{Observe, []string{"obs", "look", "inspect"}},
	{Next, []string{"n", "advance", "wait", "day"}},
	{Status, []string{"s", "stats", "state"}},
	{Forecast, []string{"f", "rain", "weather"}},
	{View, []string{"v", "data", "satellite"}},
	{Save, nil},
	{Results, []string{"score", "projection"}},
	{Help, []string{"h", "?", "commands"}},
	{Quit, []string{"q", "exit"}},
}

// DefaultIrrigation is used when "irrigate" is typed without an amount.
const DefaultIrrigation = 100

// Parse reads one line.
func Parse(raw string) (Command, error) {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(tokens) == 0 {
		return Command{}, ErrEmpty
	}

	verb, err := matchVerb(tokens[0])
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Verb: verb, Raw: raw}
	args := tokens[1:]

	switch verb {
	case Irrigate:
		cmd.Amount = DefaultIrrigation
		if len(args) > 0 {
			n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSuffix(args[0], "m3"), "m³"))
			if err != nil || n <= 0 {
				return Command{}, fmt.Errorf("irrigate: %q is not a positive amount", args[0])
			}
			cmd.Amount = n
		}
	case Fertilize:
		if len(args) == 0 {
			return Command{}, fmt.Errorf("%w: fertilize needs nitrogen, phosphorus or potassium", ErrMissingArgument)
		}
		kind, err := match(args[0], []string{string(game.Nitrogen), string(game.Phosphorus), string(game.Potassium)})
		if err != nil {
			return Command{}, fmt.Errorf("fertilizer %q: %w", args[0], err)
		}
		cmd.Fertilizer = game.Fertilizer(kind)
	case View:
		if len(args) == 0 {
			return Command{}, fmt.Errorf("%w: view needs smap, gpm or modis", ErrMissingArgument)
		}
		src, err := match(args[0], []string{string(game.SourceSMAP), string(game.SourceGPM), string(game.SourceMODIS)})
		if err != nil {
			return Command{}, fmt.Errorf("source %q: %w", args[0], err)
		}
		cmd.Source = game.DataSource(src)
	}
	return cmd, nil
}

func matchVerb(token string) (Verb, error) {
	index := make(map[string]Verb)
	for _, v := range verbs {
		index[string(v.canonical)] = v.canonical
		for _, a := range v.aliases {
			index[a] = v.canonical
		}
	}
	// Aliases are matched exactly; short ones would fuzz into everything.
	if v, ok := index[token]; ok {
		return v, nil
	}
	var canon []string
	for _, v := range verbs {
		canon = append(canon, string(v.canonical))
	}
	best, err := match(token, canon)
	if err != nil {
		return "", err
	}
	return Verb(best), nil
}

// match picks the closest candidate: exact, then prefix, then edit distance.
func match(token string, candidates []string) (string, error) {
	type scored struct {
		val   string
		score float64
	}
	var results []scored
	for _, cand := range candidates {
		var score float64
		switch {
		case token == cand:
			score = 1.0
		case strings.HasPrefix(cand, token) && len(token) >= 2:
			score = 0.9
		default:
			dist := levenshtein.ComputeDistance(token, cand)
			if dist > levenshteinLimit(len(cand)) {
				continue
			}
			score = 0.72 - 0.08*float64(dist)
		}
		results = append(results, scored{cand, score})
	}
	if len(results) == 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknown, token)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score == results[j].score {
			return results[i].val < results[j].val
		}
		return results[i].score > results[j].score
	})
	if len(results) > 1 && results[0].score-results[1].score < 0.05 {
		return "", fmt.Errorf("%w: %q could be %s or %s", ErrAmbiguous, token, results[0].val, results[1].val)
	}
	return results[0].val, nil
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// Usage lists the verbs for the help screen.
func Usage() string {
	return strings.Join([]string{
		"irrigate [m3]          water the field (default 100 m3, 0.5 EUR/m3)",
		"fertilize <kind>       nitrogen (100), phosphorus (90) or potassium (95)",
		"observe                study the satellite data (+5 points)",
		"view <smap|gpm|modis>  open a data tab",
		"next                   advance one day (ends the game on the last day)",
		"status                 show the field",
		"forecast               show the 7-day GPM forecast",
		"save                   save the game",
		"results                projected harvest if the season ended today",
		"quit                   save and exit",
	}, "\n")
}
