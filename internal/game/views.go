package game

import "github.com/everforgeworks/farm-navigators/internal/dataset"

// Season of the 90-day campaign.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
)

// SeasonForDay maps a session day to its season.
func SeasonForDay(day int) Season {
	switch {
	case day <= 30:
		return Spring
	case day <= 60:
		return Summer
	default:
		return Autumn
	}
}

// CropStage is the visible growth stage of the corn.
type CropStage string

const (
	StageSeedling     CropStage = "seedling"
	StageYoung        CropStage = "young"
	StageGrowing      CropStage = "growing"
	StageMaturing     CropStage = "maturing"
	StageHarvestReady CropStage = "harvest_ready"
)

// CropStageFor maps days since planting to the visible crop stage.
func CropStageFor(daysGrown int) CropStage {
	switch {
	case daysGrown < 15:
		return StageSeedling
	case daysGrown < 30:
		return StageYoung
	case daysGrown < 60:
		return StageGrowing
	case daysGrown < 80:
		return StageMaturing
	default:
		return StageHarvestReady
	}
}

// SoilStatus grades a soil moisture reading against the corn optimum (25-35%).
type SoilStatus string

const (
	SoilOptimal    SoilStatus = "optimal"
	SoilCritical   SoilStatus = "critical"
	SoilSuboptimal SoilStatus = "suboptimal"
)

// SoilStatusFor grades a soil moisture percentage.
func SoilStatusFor(moisture float64) SoilStatus {
	switch {
	case moisture >= 25 && moisture <= 35:
		return SoilOptimal
	case moisture < 20:
		return SoilCritical
	default:
		return SoilSuboptimal
	}
}

// Sky classifies a day's precipitation for the forecast strip.
type Sky string

const (
	SkySunny     Sky = "sunny"
	SkyLightRain Sky = "light_rain"
	SkyShowers   Sky = "showers"
	SkyHeavyRain Sky = "heavy_rain"
)

// SkyFor picks the forecast icon for a day's rain in mm.
func SkyFor(precipitationMm float64) Sky {
	switch {
	case precipitationMm > 15:
		return SkyHeavyRain
	case precipitationMm > 5:
		return SkyShowers
	case precipitationMm > 0:
		return SkyLightRain
	default:
		return SkySunny
	}
}

// ForecastDay is one entry of the GPM forecast strip.
type ForecastDay struct {
	Offset        int     `json:"offset"` // 0 is today
	Day           int     `json:"day"`
	Precipitation float64 `json:"precipitation"`
	Sky           Sky     `json:"sky"`
	Highlight     bool    `json:"highlight"` // Significant rain (>10mm)
}

// Forecast returns up to days entries starting with today.
func Forecast(s *Session, days int) []ForecastDay {
	out := make([]ForecastDay, 0, days)
	for i := 0; i < days; i++ {
		day := s.CurrentDay + i
		if day > len(s.Dataset) {
			break
		}
		rec := s.Dataset[day-1]
		out = append(out, ForecastDay{
			Offset:        i,
			Day:           day,
			Precipitation: rec.Precipitation,
			Sky:           SkyFor(rec.Precipitation),
			Highlight:     rec.Precipitation > significantRainMm,
		})
	}
	return out
}

// NextSignificantRain finds the first day within the next six with more than 10mm.
func NextSignificantRain(s *Session) (int, dataset.Record, bool) {
	for i := 1; i < 7; i++ {
		day := s.CurrentDay + i
		if day > len(s.Dataset) {
			break
		}
		if rec := s.Dataset[day-1]; rec.Precipitation > significantRainMm {
			return i, rec, true
		}
	}
	return 0, dataset.Record{}, false
}

// Overview bundles what the dashboard renders for the current day.
type Overview struct {
	Session         *Session         `json:"session"`
	Today           dataset.Record   `json:"today"`
	Season          Season           `json:"season"`
	CropStage       CropStage        `json:"crop_stage"`
	SoilStatus      SoilStatus       `json:"soil_status"`
	Recommendations []Recommendation `json:"recommendations"`
	Forecast        []ForecastDay    `json:"forecast"`
}

// Describe builds the read-only dashboard view.
func Describe(s *Session) Overview {
	return Overview{
		Session:         s,
		Today:           s.Today(),
		Season:          SeasonForDay(s.CurrentDay),
		CropStage:       CropStageFor(s.Plot.DaysGrown),
		SoilStatus:      SoilStatusFor(s.Plot.SoilMoisture),
		Recommendations: DeriveRecommendations(s),
		Forecast:        Forecast(s, 7),
	}
}
