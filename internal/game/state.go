/*
Package game
File: state.go
Description:
    Manages the runtime state of a farming season.
    The Session value replaces process-wide globals: the caller creates one,
    owns it, and drives it through the transitions in mechanics.go and economy.go.

    It also handles the initialization (NewSession) and the one-time quiz adjustment.
*/

package game

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"

	"github.com/everforgeworks/farm-navigators/internal/dataset"
	"github.com/google/uuid"
)

// NewSession starts a season on day 1 with the balance's starting constants.
// The dataset must cover every day of the season. rng drives the observe
// insights; pass nil to seed from the clock.
func NewSession(balance Balance, records []dataset.Record, rng *rand.Rand) (*Session, error) {
	if balance.MaxDays < 1 {
		return nil, fmt.Errorf("max days must be positive, got %d", balance.MaxDays)
	}
	if len(records) < balance.MaxDays {
		return nil, fmt.Errorf("%w: %d records for %d days", ErrDatasetTooShort, len(records), balance.MaxDays)
	}

	s := &Session{
		ID:         uuid.NewString(),
		CurrentDay: 1,
		MaxDays:    balance.MaxDays,
		Plot: PlotState{
			Health:          balance.StartingHealth,
			VegetationIndex: balance.StartingNDVI,
			SoilMoisture:    balance.StartingSoilMoisture,
			TemperatureC:    balance.StartingTemperature,
			DaysGrown:       0,
			PlantedDay:      1,
		},
		Resources: ResourcePool{
			Water: balance.StartingWater,
			Money: balance.StartingMoney,
		},
		// Loading day 1 refreshes the MODIS panel and fills the GPM forecast strip.
		Stats: Stats{
			MODISViews: 1,
			GPMViews:   1,
		},
		Actions:    []ActionRecord{},
		Dataset:    append([]dataset.Record(nil), records[:balance.MaxDays]...),
		Balance:    balance,
		Milestones: []int{},
		rng:        rng,
	}
	clampPlot(&s.Plot)

	// Day 1 is loaded immediately, so its events fire now.
	s.CheckDayEvents()
	return s, nil
}

// ApplyQuizAdjustment scales water and money by (100+percentBonus)/100,
// rounding down. It may be consumed exactly once, before any day passes.
func (s *Session) ApplyQuizAdjustment(percentBonus int) error {
	if s.QuizApplied {
		return ErrQuizAlreadyApplied
	}
	if s.CurrentDay != 1 || s.Stats.TotalActions > 0 {
		return fmt.Errorf("%w: season already under way", ErrQuizAlreadyApplied)
	}

	s.QuizApplied = true
	s.QuizBonus = percentBonus
	if percentBonus == 0 {
		return nil
	}

	factor := 100 + percentBonus
	if factor < 0 {
		factor = 0
	}
	s.Resources.Water = s.Resources.Water * factor / 100
	s.Resources.Money = math.Floor(s.Resources.Money * float64(factor) / 100)
	return nil
}

// Today returns the environmental record of the current day.
func (s *Session) Today() dataset.Record {
	return s.Dataset[s.CurrentDay-1]
}

// CanAdvance reports whether AdvanceDay is allowed, i.e. the season is not on its last day.
func (s *Session) CanAdvance() bool {
	return !s.Finished && s.CurrentDay < s.MaxDays
}

// SetRand replaces the random source, typically after restoring a snapshot.
func (s *Session) SetRand(rng *rand.Rand) {
	s.rng = rng
}

func (s *Session) random() *rand.Rand {
	if s.rng == nil {
		s.rng = SeededRand(time.Now().UnixNano())
	}
	return s.rng
}

// Validate checks a restored session for shape errors a hand-edited or
// truncated snapshot could carry.
func (s *Session) Validate() error {
	switch {
	case s.MaxDays < 1:
		return fmt.Errorf("max days %d", s.MaxDays)
	case s.CurrentDay < 1 || s.CurrentDay > s.MaxDays:
		return fmt.Errorf("current day %d outside 1..%d", s.CurrentDay, s.MaxDays)
	case len(s.Dataset) < s.MaxDays:
		return fmt.Errorf("%w: %d records for %d days", ErrDatasetTooShort, len(s.Dataset), s.MaxDays)
	case s.Resources.Water < 0 || s.Resources.Points < 0:
		return fmt.Errorf("negative resources")
	}
	if s.Actions == nil {
		s.Actions = []ActionRecord{}
	}
	if s.Milestones == nil {
		s.Milestones = []int{}
	}
	clampPlot(&s.Plot)
	return nil
}

// SeededRand returns a deterministic PCG source for the given seed.
func SeededRand(seed int64) *rand.Rand {
	// Non-cryptographic PRNG is intentional for reproducible seasons.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}
