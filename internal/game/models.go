/*
Package game
File: models.go
Description:
    Defines the data structures of a farming session.
    This file serves as the "schema" for the simulation, mapping directly to
    the YAML balance configuration and to the JSON snapshots and API responses.

    No logic is performed here; this file is strictly for type definitions.
*/

package game

import (
	"math/rand/v2"

	"github.com/everforgeworks/farm-navigators/internal/dataset"
)

// Balance stores the economic tuning loaded from 'farm.yaml'.
// Simulation thresholds (growth, stress, evaporation) are fixed rules and live in mechanics.go.
type Balance struct {
	StartingWater        int                `yaml:"starting_water" json:"starting_water"`                 // m³ available on day 1
	StartingMoney        float64            `yaml:"starting_money" json:"starting_money"`                 // € available on day 1
	StartingHealth       float64            `yaml:"starting_health" json:"starting_health"`               // Plot health on day 1 (0-100)
	StartingNDVI         float64            `yaml:"starting_ndvi" json:"starting_ndvi"`                   // Plot vegetation index on day 1
	StartingSoilMoisture float64            `yaml:"starting_soil_moisture" json:"starting_soil_moisture"` // Plot soil moisture % on day 1
	StartingTemperature  float64            `yaml:"starting_temperature" json:"starting_temperature"`     // Plot temperature °C before the first advance
	MaxDays              int                `yaml:"max_days" json:"max_days"`                             // Season length
	IrrigationCostPerM3  float64            `yaml:"irrigation_cost_per_m3" json:"irrigation_cost_per_m3"` // € charged per m³ irrigated
	Fertilizers          map[string]float64 `yaml:"fertilizers" json:"fertilizers"`                       // Fertilizer kind -> € cost
}

// DefaultBalance returns the stock season rules.
func DefaultBalance() Balance {
	return Balance{
		StartingWater:        1000,
		StartingMoney:        500,
		StartingHealth:       70,
		StartingNDVI:         0.45,
		StartingSoilMoisture: 25,
		StartingTemperature:  22,
		MaxDays:              90,
		IrrigationCostPerM3:  0.5,
		Fertilizers: map[string]float64{
			string(Nitrogen):   100,
			string(Phosphorus): 90,
			string(Potassium):  95,
		},
	}
}

// PlotState is the single crop plot the player manages.
type PlotState struct {
	Health          float64 `json:"health"`        // 0-100
	VegetationIndex float64 `json:"ndvi"`          // 0-1 (NDVI)
	SoilMoisture    float64 `json:"soil_moisture"` // 0-40 %
	TemperatureC    float64 `json:"temperature"`   // Last observed air temperature
	DaysGrown       int     `json:"days_grown"`    // Days since planting
	PlantedDay      int     `json:"planted_day"`   // Session day the crop went in
}

// ResourcePool holds everything the player can spend or earn.
type ResourcePool struct {
	Water  int     `json:"water"`  // m³
	Money  float64 `json:"money"`  // €
	Points int     `json:"points"` // Cumulative NASA points
}

// Stats counts how the player used the satellite data and the action buttons.
// Every day load counts one MODIS view and the season start counts one GPM view,
// on top of the tabs the player opens.
type Stats struct {
	SMAPViews    int `json:"smap_views"`
	GPMViews     int `json:"gpm_views"`
	MODISViews   int `json:"modis_views"`
	TotalActions int `json:"total_actions"` // Every action, observe included
}

// ActionType names a resource-consuming player action.
type ActionType string

const (
	ActionIrrigate  ActionType = "irrigate"
	ActionFertilize ActionType = "fertilize"
	ActionObserve   ActionType = "observe"
)

// Fertilizer is one of the purchasable fertilizer kinds.
type Fertilizer string

const (
	Nitrogen   Fertilizer = "nitrogen"
	Phosphorus Fertilizer = "phosphorus"
	Potassium  Fertilizer = "potassium"
)

// ActionRecord is an append-only log entry used for the end-of-game report.
type ActionRecord struct {
	Day        int        `json:"day"`
	Type       ActionType `json:"type"`
	Amount     int        `json:"amount,omitempty"`     // irrigate: m³
	Fertilizer Fertilizer `json:"fertilizer,omitempty"` // fertilize: kind
}

// DataSource is one of the three satellite data tabs.
type DataSource string

const (
	SourceSMAP  DataSource = "smap"
	SourceGPM   DataSource = "gpm"
	SourceMODIS DataSource = "modis"
)

// Session is the aggregate root of one farming season.
// Callers own the single live instance; every transition is a method on it.
type Session struct {
	ID          string           `json:"id"`
	CurrentDay  int              `json:"current_day"`
	MaxDays     int              `json:"max_days"`
	Plot        PlotState        `json:"plot"`
	Resources   ResourcePool     `json:"resources"`
	Stats       Stats            `json:"stats"`
	Actions     []ActionRecord   `json:"actions"`
	Dataset     []dataset.Record `json:"dataset"`
	Balance     Balance          `json:"balance"`
	QuizBonus   int              `json:"quiz_bonus"`   // Percent applied at start (may be negative)
	QuizApplied bool             `json:"quiz_applied"` // The adjustment is consumed once
	Milestones  []int            `json:"milestones"`   // Days whose milestone points were awarded
	Finished    bool             `json:"finished"`

	rng *rand.Rand
}

// Severity tags advisory items and day events.
type Severity string

const (
	SeverityUrgent  Severity = "urgent"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Recommendation is one advisory line for the player.
type Recommendation struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// EventKind identifies a day event.
type EventKind string

const (
	EventDrought   EventKind = "drought"
	EventFloodRisk EventKind = "flood_risk"
	EventHeatwave  EventKind = "heatwave"
	EventMilestone EventKind = "milestone"
)

// Event is a notification raised when a day is loaded.
type Event struct {
	Kind     EventKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Points   int       `json:"points,omitempty"` // Points awarded by this event
}

// DayReport describes what happened when the season moved forward one day.
type DayReport struct {
	Day             int              `json:"day"`
	Weather         dataset.Record   `json:"weather"` // Record that drove the update
	RainUptake      float64          `json:"rain_uptake"`
	Evaporation     float64          `json:"evaporation"`
	Grew            bool             `json:"grew"` // false means the crop was stressed
	Events          []Event          `json:"events"`
	Recommendations []Recommendation `json:"recommendations"`
}

// IrrigateResult reports an applied irrigation.
type IrrigateResult struct {
	Amount       int     `json:"amount"`
	Cost         float64 `json:"cost"`
	MoistureGain float64 `json:"moisture_gain"`
}

// FertilizeResult reports an applied fertilization.
// Reduced is set when dry soil halved its effect; this is still a success.
type FertilizeResult struct {
	Fertilizer Fertilizer `json:"fertilizer"`
	Cost       float64    `json:"cost"`
	Efficiency float64    `json:"efficiency"`
	Reduced    bool       `json:"reduced"`
}

// Results is the terminal summary handed to the results screen.
type Results struct {
	SessionID   string         `json:"session_id"`
	Yield       float64        `json:"yield"` // tonnes/hectare
	Health      float64        `json:"health"`
	WaterUsed   int            `json:"water_used"`   // Starting water minus remaining
	MoneyEarned float64        `json:"money_earned"` // May be negative
	Points      int            `json:"nasa_points"`
	Stars       int            `json:"stars"`
	Stats       Stats          `json:"stats"`
	Actions     []ActionRecord `json:"actions"`
}
