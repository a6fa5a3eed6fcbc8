/*
Package game
File: mechanics.go
Description:
    Contains the day-advance rules of the crop simulation.
    Rain, evaporation, growth and stress are applied to the plot in a fixed
    order from the current day's environmental record.
*/

package game

import (
	"fmt"
	"math"
)

const (
	maxSoilMoisture = 40.0
	maxHealth       = 100.0
	maxNDVI         = 0.9 // Growth cap; the declared NDVI range is [0,1]

	rainUptakeDivisor  = 5.0
	hotEvaporation     = 3.0
	mildEvaporation    = 2.0
	hotDayThreshold    = 25.0
	growthMoistureMin  = 20.0
	growthTemperatureC = 15.0
	dailyGrowthNDVI    = 0.01
	dailyGrowthHealth  = 1.0
	dailyStressHealth  = 2.0
)

// AdvanceDay runs one simulated day and moves the season forward.
// It fails with ErrInvalidDayIndex on the last day; callers must Finish instead.
func (s *Session) AdvanceDay() (DayReport, error) {
	if s.Finished {
		return DayReport{}, ErrSessionFinished
	}
	if s.CurrentDay >= s.MaxDays {
		return DayReport{}, fmt.Errorf("%w: day %d of %d", ErrInvalidDayIndex, s.CurrentDay, s.MaxDays)
	}

	record := s.Today()
	plot := &s.Plot
	report := DayReport{Weather: record}

	// 1. Rain uptake
	if record.Precipitation > 0 {
		before := plot.SoilMoisture
		plot.SoilMoisture = math.Min(maxSoilMoisture, plot.SoilMoisture+record.Precipitation/rainUptakeDivisor)
		report.RainUptake = plot.SoilMoisture - before
	}

	// 2. Evaporation
	evaporation := mildEvaporation
	if record.Temperature > hotDayThreshold {
		evaporation = hotEvaporation
	}
	before := plot.SoilMoisture
	plot.SoilMoisture = math.Max(0, plot.SoilMoisture-evaporation)
	report.Evaporation = before - plot.SoilMoisture

	// 3. Growth or stress
	if plot.SoilMoisture > growthMoistureMin && record.Temperature > growthTemperatureC {
		plot.VegetationIndex = math.Min(maxNDVI, plot.VegetationIndex+dailyGrowthNDVI)
		plot.Health = math.Min(maxHealth, plot.Health+dailyGrowthHealth)
		report.Grew = true
	} else {
		plot.Health = math.Max(0, plot.Health-dailyStressHealth)
	}

	// 4. Temperature is overwritten, not smoothed
	plot.TemperatureC = record.Temperature

	// 5. Calendar; loading the new day refreshes the MODIS panel
	s.CurrentDay++
	plot.DaysGrown++
	s.Stats.MODISViews++
	clampPlot(plot)

	// 6. Derive the new day's view
	report.Day = s.CurrentDay
	report.Events = s.CheckDayEvents()
	report.Recommendations = DeriveRecommendations(s)
	return report, nil
}

// NextDay is the "next day" button: it advances, or ends the game on the last day.
// Exactly one of the returned report and results is non-nil on success.
func (s *Session) NextDay() (*DayReport, *Results, error) {
	if s.Finished {
		return nil, nil, ErrSessionFinished
	}
	if !s.CanAdvance() {
		res, err := s.Finish()
		if err != nil {
			return nil, nil, err
		}
		return nil, &res, nil
	}
	report, err := s.AdvanceDay()
	if err != nil {
		return nil, nil, err
	}
	return &report, nil, nil
}

// Finish freezes the session on its last day and returns its results.
// Before the last day it fails with ErrInvalidDayIndex and changes nothing.
// Calling it again returns the same results.
func (s *Session) Finish() (Results, error) {
	if !s.Finished && s.CurrentDay < s.MaxDays {
		return Results{}, fmt.Errorf("%w: season ends on day %d, now day %d", ErrInvalidDayIndex, s.MaxDays, s.CurrentDay)
	}
	s.Finished = true
	return ComputeResults(s), nil
}

func clampPlot(p *PlotState) {
	p.Health = clamp(p.Health, 0, maxHealth)
	p.SoilMoisture = clamp(p.SoilMoisture, 0, maxSoilMoisture)
	p.VegetationIndex = clamp(p.VegetationIndex, 0, 1)
	if p.DaysGrown < 0 {
		p.DaysGrown = 0
	}
}

func clamp(number, min, max float64) float64 {
	if number < min {
		return min
	}

	if number > max {
		return max
	}

	return number
}
