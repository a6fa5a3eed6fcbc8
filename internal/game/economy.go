/*
Package game
File: economy.go
Description:
    Handles the player actions that spend or earn resources.
    This includes:
    1. Irrigation (water + money -> soil moisture, health).
    2. Fertilization (money -> vegetation index, health; halved on dry soil).
    3. Observation (free, earns points and a random data insight).

    Every action is all-or-nothing: preconditions are checked before any field
    is written, and a rejected action leaves the session untouched.
*/

package game

import (
	"fmt"
	"math"
)

const (
	irrigationHealthGain  = 5.0
	irrigationMoistureDiv = 10

	fertilizerNDVIGain   = 0.1
	fertilizerHealthGain = 10.0
	drySoilThreshold     = 20.0
	drySoilEfficiency    = 0.5

	observePoints = 5
)

// Irrigate pours amount m³ onto the plot. Water is checked before money.
func (s *Session) Irrigate(amount int) (IrrigateResult, error) {
	if s.Finished {
		return IrrigateResult{}, ErrSessionFinished
	}
	if amount <= 0 {
		return IrrigateResult{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	cost := float64(amount) * s.Balance.IrrigationCostPerM3

	// 1. Validate resources
	if s.Resources.Water < amount {
		return IrrigateResult{}, &InsufficientResourceError{Resource: "water", Needed: float64(amount), Available: float64(s.Resources.Water)}
	}
	if s.Resources.Money < cost {
		return IrrigateResult{}, &InsufficientResourceError{Resource: "money", Needed: cost, Available: s.Resources.Money}
	}

	// 2. Spend
	s.Resources.Water -= amount
	s.Resources.Money -= cost

	// 3. Apply effect
	before := s.Plot.SoilMoisture
	s.Plot.SoilMoisture = math.Min(maxSoilMoisture, s.Plot.SoilMoisture+float64(amount/irrigationMoistureDiv))
	s.Plot.Health = math.Min(maxHealth, s.Plot.Health+irrigationHealthGain)
	clampPlot(&s.Plot)

	// 4. Record
	s.Stats.TotalActions++
	s.Actions = append(s.Actions, ActionRecord{Day: s.CurrentDay, Type: ActionIrrigate, Amount: amount})

	return IrrigateResult{Amount: amount, Cost: cost, MoistureGain: s.Plot.SoilMoisture - before}, nil
}

// FertilizerCost looks up the price of a fertilizer kind.
func (s *Session) FertilizerCost(kind Fertilizer) (float64, error) {
	cost, ok := s.Balance.Fertilizers[string(kind)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFertilizer, kind)
	}
	return cost, nil
}

// Fertilize spreads one bag of the given kind. On soil drier than 20% the
// effect is halved and the result is flagged Reduced.
func (s *Session) Fertilize(kind Fertilizer) (FertilizeResult, error) {
	if s.Finished {
		return FertilizeResult{}, ErrSessionFinished
	}
	cost, err := s.FertilizerCost(kind)
	if err != nil {
		return FertilizeResult{}, err
	}
	if s.Resources.Money < cost {
		return FertilizeResult{}, &InsufficientResourceError{Resource: "money", Needed: cost, Available: s.Resources.Money}
	}

	efficiency := 1.0
	if s.Plot.SoilMoisture < drySoilThreshold {
		efficiency = drySoilEfficiency
	}

	s.Resources.Money -= cost
	s.Plot.VegetationIndex = math.Min(maxNDVI, s.Plot.VegetationIndex+fertilizerNDVIGain*efficiency)
	s.Plot.Health = math.Min(maxHealth, s.Plot.Health+fertilizerHealthGain*efficiency)
	clampPlot(&s.Plot)

	s.Stats.TotalActions++
	s.Actions = append(s.Actions, ActionRecord{Day: s.CurrentDay, Type: ActionFertilize, Fertilizer: kind})

	return FertilizeResult{
		Fertilizer: kind,
		Cost:       cost,
		Efficiency: efficiency,
		Reduced:    efficiency < 1.0,
	}, nil
}

// Observe studies the plot for free. It awards points and returns one
// insight picked at random from the current readings.
//
// Observation counts toward TotalActions but is not written to the action log.
func (s *Session) Observe() (string, error) {
	if s.Finished {
		return "", ErrSessionFinished
	}

	s.Resources.Points += observePoints
	s.Stats.TotalActions++

	insights := s.insights()
	return insights[s.random().IntN(len(insights))], nil
}

func (s *Session) insights() []string {
	today := s.Today()
	return []string{
		fmt.Sprintf("SMAP reports %.1f%% soil moisture", s.Plot.SoilMoisture),
		fmt.Sprintf("MODIS shows an NDVI of %.2f", s.Plot.VegetationIndex),
		fmt.Sprintf("Current temperature: %.1f°C", s.Plot.TemperatureC),
		fmt.Sprintf("GPM forecasts %.1fmm of rain", today.Precipitation),
	}
}

// ViewSource counts a visit to one of the satellite data tabs.
// It is a view, not an action.
func (s *Session) ViewSource(source DataSource) error {
	switch source {
	case SourceSMAP:
		s.Stats.SMAPViews++
	case SourceGPM:
		s.Stats.GPMViews++
	case SourceMODIS:
		s.Stats.MODISViews++
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	return nil
}
