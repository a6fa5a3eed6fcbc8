package game

import "math"

const (
	baseYield      = 5.0 // tonnes/hectare
	referenceNDVI  = 0.7
	maxNDVIFactor  = 1.2
	threeStarYield = 6.0
	twoStarYield   = 5.0
	oneStarYield   = 4.0
)

// ComputeResults summarizes a terminal session. It is a pure function of
// the session: calling it twice yields identical results.
func ComputeResults(s *Session) Results {
	healthFactor := s.Plot.Health / 100
	ndviFactor := math.Min(s.Plot.VegetationIndex/referenceNDVI, maxNDVIFactor)
	finalYield := baseYield * healthFactor * ndviFactor

	return Results{
		SessionID:   s.ID,
		Yield:       finalYield,
		Health:      s.Plot.Health,
		WaterUsed:   s.Balance.StartingWater - s.Resources.Water,
		MoneyEarned: s.Resources.Money - s.Balance.StartingMoney,
		Points:      s.Resources.Points,
		Stars:       starRating(finalYield, s.Plot.Health, s.Resources.Water),
		Stats:       s.Stats,
		Actions:     append([]ActionRecord{}, s.Actions...),
	}
}

// Highest matching tier wins.
func starRating(yield, health float64, water int) int {
	switch {
	case yield >= threeStarYield && health >= 80 && water >= 200:
		return 3
	case yield >= twoStarYield && health >= 70:
		return 2
	case yield >= oneStarYield:
		return 1
	default:
		return 0
	}
}
