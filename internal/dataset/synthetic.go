package dataset

import (
	"math"
	"math/rand/v2"
	"time"
)

// Synthetic generates a plausible Iowa corn season when no real data is available.
type Synthetic struct {
	Rand  *rand.Rand
	Start time.Time // Date of day 1
}

// NewSynthetic returns a generator starting on 1 March 2024.
func NewSynthetic(rng *rand.Rand) *Synthetic {
	return &Synthetic{
		Rand:  rng,
		Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Generate produces count records:
//   - NDVI ramps 0.3->0.6 over days 0-29, 0.6->0.8 over days 30-69, then stays at 0.8
//   - soil moisture is uniform in [20,40]
//   - precipitation is 0 (60%), uniform [2,10] (25%) or uniform [10,30] (15%)
//   - temperature climbs 15->30°C with ±3°C jitter
func (g *Synthetic) Generate(count int) []Record {
	out := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		var ndvi float64
		switch {
		case i < 30:
			ndvi = 0.3 + float64(i)/30*0.3
		case i < 70:
			ndvi = 0.6 + float64(i-30)/40*0.2
		default:
			ndvi = 0.8
		}

		soil := 20 + g.Rand.Float64()*20

		var rain float64
		switch p := g.Rand.Float64(); {
		case p < 0.6:
			rain = 0
		case p < 0.85:
			rain = 2 + g.Rand.Float64()*8
		default:
			rain = 10 + g.Rand.Float64()*20
		}

		base := 15 + float64(i)/90*15
		temp := base + (g.Rand.Float64()*6 - 3)

		out = append(out, Record{
			Day:           i + 1,
			Date:          g.Start.AddDate(0, 0, i).Format(time.DateOnly),
			SoilMoisture:  round(soil, 2),
			Precipitation: round(rain, 1),
			NDVI:          round(ndvi, 2),
			Temperature:   round(temp, 1),
		})
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
