// Command farmctl plays a Farm Navigators season in the terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/everforgeworks/farm-navigators/internal/command"
	"github.com/everforgeworks/farm-navigators/internal/config"
	"github.com/everforgeworks/farm-navigators/internal/dataset"
	"github.com/everforgeworks/farm-navigators/internal/game"
	"github.com/everforgeworks/farm-navigators/internal/logging"
	"github.com/everforgeworks/farm-navigators/internal/quiz"
	"github.com/everforgeworks/farm-navigators/internal/store"
)

type options struct {
	ConfigPath string
	DBPath     string
	Seed       int64
	Quiz       bool
	Fresh      bool // Ignore any saved game
}

func main() {
	var opts options
	flag.StringVar(&opts.ConfigPath, "config", config.DefaultPath, "path to farm.yaml")
	flag.StringVar(&opts.DBPath, "db", "", "save database (defaults to server.db_path)")
	flag.Int64Var(&opts.Seed, "seed", time.Now().UnixNano(), "random seed for the season")
	flag.BoolVar(&opts.Quiz, "quiz", true, "play the NASA quiz before a new season")
	flag.BoolVar(&opts.Fresh, "new", false, "start a new season even if a save exists")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout, opts); err != nil {
		fmt.Fprintln(os.Stderr, "farmctl:", err)
		os.Exit(1)
	}
}

// client holds the terminal session state.
type client struct {
	out      io.Writer
	lines    <-chan string
	log      *slog.Logger
	cfg      config.Config
	store    store.Store
	session  *game.Session
	autosave store.AutosavePolicy
	seed     int64
}

func run(ctx context.Context, in io.Reader, out io.Writer, opts options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = cfg.Server.DBPath
	}

	var st store.Store = store.NewMemory()
	if dbPath != "" {
		db, err := store.NewSQLite(dbPath)
		if err != nil {
			return err
		}
		st = db
	}
	defer st.Close()

	c := &client{
		out:      out,
		lines:    readLines(in),
		log:      logging.New("warn", os.Stderr),
		cfg:      cfg,
		store:    st,
		autosave: store.AutosavePolicy{Every: cfg.Server.AutosaveEvery},
		seed:     opts.Seed,
	}

	// 1. Resume or start
	if !opts.Fresh {
		if err := c.offerResume(ctx); err != nil {
			return err
		}
	}
	if c.session == nil {
		if opts.Quiz {
			if err := c.playQuiz(ctx); err != nil {
				return err
			}
		}
		if err := c.newSeason(ctx); err != nil {
			return err
		}
	}

	// 2. Play
	return c.loop(ctx)
}

// readLines feeds stdin lines to a channel so prompts can time out.
func readLines(in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

func (c *client) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// prompt waits for one line. ok is false on EOF.
func (c *client) prompt(ctx context.Context, label string) (string, bool) {
	c.printf("%s", label)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-c.lines:
		return strings.TrimSpace(line), ok
	}
}

func (c *client) offerResume(ctx context.Context) error {
	snap, err := store.LoadSession(ctx, c.store)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case errors.Is(err, store.ErrCorruptSnapshot):
		c.printf("Saved game is damaged and was discarded.\n")
		return store.DeleteSession(ctx, c.store)
	case err != nil:
		return err
	}
	if snap.Session.Finished {
		return nil
	}

	answer, ok := c.prompt(ctx, fmt.Sprintf("Resume the season saved %s (day %d/%d)? [Y/n] ",
		snap.SavedAt.Local().Format(time.DateTime), snap.Session.CurrentDay, snap.Session.MaxDays))
	if !ok {
		return io.EOF
	}
	if answer == "" || strings.HasPrefix(strings.ToLower(answer), "y") {
		snap.Session.SetRand(game.SeededRand(c.seed))
		c.session = snap.Session
		c.printf("Welcome back.\n")
	}
	return nil
}

// playQuiz runs the five questions with a countdown. A question left
// unanswered when the countdown ends counts as a timeout.
func (c *client) playQuiz(ctx context.Context) error {
	limit := time.Duration(c.cfg.Server.QuizSeconds) * time.Second
	attempt := quiz.NewAttempt(quiz.Bank(), limit)
	c.printf("\n=== NASA quiz: %d questions, %s each ===\n", len(attempt.Questions), limit)

	for !attempt.Done() {
		q, _ := attempt.Current()
		c.printf("\nQ%d. %s\n", len(attempt.Answers)+1, q.Prompt)
		for i, opt := range q.Options {
			c.printf("  %d) %s\n", i+1, opt)
		}

		selected, elapsed, err := c.timedChoice(ctx, len(q.Options), limit)
		if err != nil {
			return err
		}
		fb, err := attempt.Answer(selected, elapsed)
		if err != nil {
			c.printf("%v\n", err)
			continue
		}
		switch {
		case fb.Answer.TimedOut:
			c.printf("Time's up! ")
		case fb.Answer.IsCorrect:
			c.printf("Correct! ")
		default:
			c.printf("Wrong. ")
		}
		c.printf("%s\n", fb.Explanation)
	}

	res, err := attempt.Result(c.cfg.Balance.StartingWater, c.cfg.Balance.StartingMoney)
	if err != nil {
		return err
	}
	c.printf("\nScore %d/%d (%.0f%%) %s  bonus %+d%%: water %+d m3, money %+d EUR\n",
		res.Score, res.Total, res.Percentage, strings.Repeat("*", res.Stars), res.Bonus, res.WaterDelta, res.MoneyDelta)
	return store.SaveQuizBonus(ctx, c.store, res.Bonus)
}

// timedChoice reads a 1-based option number until the deadline.
func (c *client) timedChoice(ctx context.Context, count int, limit time.Duration) (int, time.Duration, error) {
	start := time.Now()
	deadline := time.NewTimer(limit)
	defer deadline.Stop()

	for {
		c.printf("answer (1-%d) [%ds]: ", count, int(time.Until(start.Add(limit)).Seconds()))
		select {
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		case <-deadline.C:
			c.printf("\n")
			return quiz.Timeout, time.Since(start), nil
		case line, ok := <-c.lines:
			if !ok {
				return 0, 0, io.EOF
			}
			var n int
			if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &n); err != nil || n < 1 || n > count {
				c.printf("pick a number between 1 and %d\n", count)
				continue
			}
			return n - 1, time.Since(start), nil
		}
	}
}

func (c *client) newSeason(ctx context.Context) error {
	rng := game.SeededRand(c.seed)

	var provider dataset.Provider
	if c.cfg.Server.DatasetURL != "" {
		provider = dataset.NewHTTPProvider(c.cfg.Server.DatasetURL, nil)
	}
	loaded := dataset.Load(ctx, provider, dataset.NewSynthetic(rng), c.cfg.Balance.MaxDays)
	if loaded.Synthetic && provider != nil {
		c.log.Warn("dataset provider failed, using synthetic season", "error", loaded.Cause)
	}

	s, err := game.NewSession(c.cfg.Balance, loaded.Records, rng)
	if err != nil {
		return err
	}
	if bonus, ok, err := store.TakeQuizBonus(ctx, c.store); err != nil {
		c.log.Warn("quiz bonus unreadable", "error", err)
	} else if ok {
		if err := s.ApplyQuizAdjustment(bonus); err != nil {
			return err
		}
	}
	c.session = s
	c.printf("\nNew season: %d days of Iowa corn. Type 'help' for commands.\n", s.MaxDays)
	c.save(ctx)
	c.status()
	return nil
}

func (c *client) save(ctx context.Context) {
	if _, err := store.SaveSession(ctx, c.store, c.session); err != nil {
		c.log.Error("save failed", "error", err)
	}
}

func (c *client) loop(ctx context.Context) error {
	for {
		line, ok := c.prompt(ctx, fmt.Sprintf("\n[day %d/%d] > ", c.session.CurrentDay, c.session.MaxDays))
		if !ok {
			c.save(context.Background())
			return nil
		}
		cmd, err := command.Parse(line)
		if errors.Is(err, command.ErrEmpty) {
			continue
		}
		if err != nil {
			c.printf("%v\n", err)
			continue
		}

		done, err := c.execute(ctx, cmd)
		if err != nil {
			c.printf("%v\n", err)
		}
		if done {
			return nil
		}
	}
}

// execute applies one command. done ends the program.
func (c *client) execute(ctx context.Context, cmd command.Command) (bool, error) {
	s := c.session
	acted := false

	switch cmd.Verb {
	case command.Help:
		c.printf("%s\n", command.Usage())
	case command.Status:
		c.status()
	case command.Forecast:
		c.forecast()
	case command.Save:
		c.save(ctx)
		c.printf("Game saved.\n")
	case command.Quit:
		c.save(ctx)
		c.printf("Game saved. See you soon!\n")
		return true, nil

	case command.Irrigate:
		res, err := s.Irrigate(cmd.Amount)
		if err != nil {
			return false, err
		}
		acted = true
		c.printf("Irrigated %d m3 for %.2f EUR, soil moisture +%.0f%%.\n", res.Amount, res.Cost, res.MoistureGain)
	case command.Fertilize:
		res, err := s.Fertilize(cmd.Fertilizer)
		if err != nil {
			return false, err
		}
		acted = true
		c.printf("Spread %s for %.0f EUR.", res.Fertilizer, res.Cost)
		if res.Reduced {
			c.printf(" Soil too dry: efficiency halved!")
		}
		c.printf("\n")
	case command.Observe:
		insight, err := s.Observe()
		if err != nil {
			return false, err
		}
		acted = true
		c.printf("%s (+5 points)\n", insight)
	case command.View:
		if err := s.ViewSource(cmd.Source); err != nil {
			return false, err
		}
		c.viewSource(cmd.Source)

	case command.Next:
		report, results, err := s.NextDay()
		if err != nil {
			return false, err
		}
		if results != nil {
			c.finish(ctx, *results)
			return true, nil
		}
		c.day(*report)
	case command.Results:
		c.projection()
	}

	if acted && c.autosave.Due(s.Stats.TotalActions) {
		c.save(ctx)
	}
	return false, nil
}

func (c *client) status() {
	o := game.Describe(c.session)
	s := c.session
	c.printf("%s | %s | crop %s\n", o.Today.Date, o.Season, o.CropStage)
	c.printf("health %.0f%%  ndvi %.2f  soil %.1f%% (%s)  temp %.1fC\n",
		s.Plot.Health, s.Plot.VegetationIndex, s.Plot.SoilMoisture, o.SoilStatus, s.Plot.TemperatureC)
	c.printf("water %d m3  money %.2f EUR  points %d\n", s.Resources.Water, s.Resources.Money, s.Resources.Points)
	for _, r := range o.Recommendations {
		c.printf("  [%s] %s\n", r.Severity, r.Text)
	}
}

func (c *client) forecast() {
	for _, d := range game.Forecast(c.session, 7) {
		mark := ""
		if d.Highlight {
			mark = "  <-- significant rain"
		}
		c.printf("day %2d  %-10s %5.1f mm%s\n", d.Day, d.Sky, d.Precipitation, mark)
	}
}

func (c *client) viewSource(src game.DataSource) {
	today := c.session.Today()
	switch src {
	case game.SourceSMAP:
		c.printf("SMAP soil moisture: field %.1f%%, satellite %.1f%%\n", c.session.Plot.SoilMoisture, today.SoilMoisture)
	case game.SourceGPM:
		c.printf("GPM precipitation today: %.1f mm\n", today.Precipitation)
		if offset, rec, ok := game.NextSignificantRain(c.session); ok {
			c.printf("Next significant rain in %d day(s): %.1f mm\n", offset, rec.Precipitation)
		}
	case game.SourceMODIS:
		c.printf("MODIS NDVI: field %.2f, regional %.2f\n", c.session.Plot.VegetationIndex, today.NDVI)
	}
}

func (c *client) day(r game.DayReport) {
	c.printf("Day %d: %.1f mm rain, %.1fC. ", r.Day, r.Weather.Precipitation, r.Weather.Temperature)
	if r.Grew {
		c.printf("The corn grew.\n")
	} else {
		c.printf("The corn is stressed.\n")
	}
	for _, ev := range r.Events {
		c.printf("  ! %s: %s\n", ev.Title, ev.Message)
	}
}

// projection shows the harvest the field would give today. It neither
// ends the season nor writes the results blob.
func (c *client) projection() {
	res := game.ComputeResults(c.session)
	c.printf("Projected harvest on day %d/%d: yield %.2f t/ha  health %.0f%%  %s\n",
		c.session.CurrentDay, c.session.MaxDays, res.Yield, res.Health, strings.Repeat("*", res.Stars))
	c.printf("The season ends after day %d; keep playing with 'next'.\n", c.session.MaxDays)
}

func (c *client) finish(ctx context.Context, res game.Results) {
	if err := store.SaveResults(ctx, c.store, res); err != nil {
		c.log.Error("results not saved", "error", err)
	}
	c.save(ctx)
	c.printf("\n=== Harvest ===\n")
	c.printf("yield %.2f t/ha  health %.0f%%  %s\n", res.Yield, res.Health, strings.Repeat("*", res.Stars))
	c.printf("water used %d m3  money %+.2f EUR  points %d  actions %d\n",
		res.WaterUsed, res.MoneyEarned, res.Points, res.Stats.TotalActions)
}
