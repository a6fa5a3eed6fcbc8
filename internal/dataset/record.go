/*
Package dataset
File: record.go
Description:
    Supplies the per-day environmental records that drive a season.
    Records come from a JSON endpoint when one is reachable, and are generated
    synthetically otherwise (see synthetic.go).
*/

package dataset

// Record is one day of satellite readings. Records are produced once per
// session and never mutated.
type Record struct {
	Day           int     `json:"day"`           // 1-based day index
	Date          string  `json:"date"`          // YYYY-MM-DD
	SoilMoisture  float64 `json:"soil_moisture"` // SMAP, %
	Precipitation float64 `json:"precipitation"` // GPM, mm
	NDVI          float64 `json:"ndvi"`          // MODIS, 0-1
	Temperature   float64 `json:"temperature"`   // °C
}

// SeasonLength is the default number of records requested per session.
const SeasonLength = 90
