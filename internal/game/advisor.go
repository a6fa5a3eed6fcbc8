package game

import (
	"fmt"
	"slices"
)

// Advisory thresholds.
const (
	criticalMoisture   = 20.0
	suboptimalMoisture = 25.0
	lowNDVI            = 0.5
	highNDVI           = 0.7
	heatAlertC         = 32.0
	coolAlertC         = 15.0
	healthyAbove       = 80.0
	stressedBelow      = 50.0

	rainLookaheadDays = 3
	significantRainMm = 10.0

	droughtMoisture = 15.0
	floodRainMm     = 25.0
	heatwaveC       = 35.0
)

var milestones = []struct {
	day     int
	points  int
	title   string
	message string
}{
	{30, 50, "1 month completed", "Your corn is entering its active growth phase."},
	{60, 75, "Maturation phase", "Your crop is approaching maturity."},
}

// DeriveRecommendations lists advisory items for the current plot and the
// records ahead. It never mutates the session.
func DeriveRecommendations(s *Session) []Recommendation {
	plot := s.Plot
	var recs []Recommendation

	switch {
	case plot.SoilMoisture < criticalMoisture:
		recs = append(recs, Recommendation{
			Code:     "soil_critical",
			Severity: SeverityUrgent,
			Text:     fmt.Sprintf("SMAP detects critical soil moisture (%.1f%%). Irrigate now.", plot.SoilMoisture),
		})
	case plot.SoilMoisture < suboptimalMoisture:
		recs = append(recs, Recommendation{
			Code:     "soil_low",
			Severity: SeverityWarning,
			Text:     "SMAP detects sub-optimal soil moisture. Consider irrigating.",
		})
	}

	// Only the first heavy-rain day inside the window is reported.
	for i := 1; i <= rainLookaheadDays; i++ {
		day := s.CurrentDay + i
		if day > len(s.Dataset) {
			break
		}
		future := s.Dataset[day-1]
		if future.Precipitation > significantRainMm {
			recs = append(recs, Recommendation{
				Code:     "rain_ahead",
				Severity: SeverityInfo,
				Text:     fmt.Sprintf("GPM forecasts %.1fmm of rain in %d day(s). You can save water.", future.Precipitation, i),
			})
			break
		}
	}

	switch {
	case plot.VegetationIndex < lowNDVI:
		recs = append(recs, Recommendation{
			Code:     "ndvi_low",
			Severity: SeverityWarning,
			Text:     fmt.Sprintf("MODIS shows a low NDVI (%.2f). Fertilizing is recommended.", plot.VegetationIndex),
		})
	case plot.VegetationIndex > highNDVI:
		recs = append(recs, Recommendation{
			Code:     "ndvi_high",
			Severity: SeveritySuccess,
			Text:     fmt.Sprintf("MODIS confirms excellent vegetation health (NDVI %.2f).", plot.VegetationIndex),
		})
	}

	switch {
	case plot.TemperatureC > heatAlertC:
		recs = append(recs, Recommendation{
			Code:     "heat",
			Severity: SeverityWarning,
			Text:     fmt.Sprintf("Heat alert: %.1f°C. Irrigate more often.", plot.TemperatureC),
		})
	case plot.TemperatureC < coolAlertC:
		recs = append(recs, Recommendation{
			Code:     "cool",
			Severity: SeverityInfo,
			Text:     fmt.Sprintf("Cool weather: %.1f°C. Growth is slowing down.", plot.TemperatureC),
		})
	}

	switch {
	case plot.Health > healthyAbove:
		recs = append(recs, Recommendation{
			Code:     "health_high",
			Severity: SeveritySuccess,
			Text:     fmt.Sprintf("Excellent management! Crop health: %.0f%%", plot.Health),
		})
	case plot.Health < stressedBelow:
		recs = append(recs, Recommendation{
			Code:     "health_low",
			Severity: SeverityUrgent,
			Text:     fmt.Sprintf("Crop under stress! Health: %.0f%%. Act immediately.", plot.Health),
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Code:     "optimal",
			Severity: SeveritySuccess,
			Text:     "Optimal conditions. Keep monitoring the satellite data.",
		})
	}
	return recs
}

// CheckDayEvents raises the notifications for the current day. Drought,
// flood and heatwave alerts are advisory; milestone days award points once
// per session.
func (s *Session) CheckDayEvents() []Event {
	today := s.Today()
	var events []Event

	if s.Plot.SoilMoisture < droughtMoisture && today.Precipitation == 0 {
		events = append(events, Event{
			Kind:     EventDrought,
			Severity: SeverityWarning,
			Title:    "Drought alert",
			Message:  "SMAP confirms a severe drought. Your crops are suffering!",
		})
	}
	if today.Precipitation > floodRainMm {
		events = append(events, Event{
			Kind:     EventFloodRisk,
			Severity: SeverityInfo,
			Title:    "Heavy rainfall",
			Message:  fmt.Sprintf("GPM measures %.1fmm! Flood risk.", today.Precipitation),
		})
	}
	if today.Temperature > heatwaveC {
		events = append(events, Event{
			Kind:     EventHeatwave,
			Severity: SeverityWarning,
			Title:    "Heatwave",
			Message:  fmt.Sprintf("%.1f°C detected! Thermal stress on the crop.", today.Temperature),
		})
	}

	for _, m := range milestones {
		if s.CurrentDay != m.day || slices.Contains(s.Milestones, m.day) {
			continue
		}
		s.Resources.Points += m.points
		s.Milestones = append(s.Milestones, m.day)
		events = append(events, Event{
			Kind:     EventMilestone,
			Severity: SeveritySuccess,
			Title:    m.title,
			Message:  m.message,
			Points:   m.points,
		})
	}
	return events
}
