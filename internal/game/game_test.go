package game

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/everforgeworks/farm-navigators/internal/dataset"
)

// flatSeason returns a dry, mild season that triggers no events by itself.
func flatSeason(days int) []dataset.Record {
	out := make([]dataset.Record, days)
	for i := range out {
		out[i] = dataset.Record{Day: i + 1, SoilMoisture: 30, NDVI: 0.5, Temperature: 20}
	}
	return out
}

func newTestSession(t *testing.T, records []dataset.Record) *Session {
	t.Helper()
	if records == nil {
		records = flatSeason(DefaultBalance().MaxDays)
	}
	s, err := NewSession(DefaultBalance(), records, SeededRand(1))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewSessionStartingState(t *testing.T) {
	s := newTestSession(t, nil)

	if s.CurrentDay != 1 || s.MaxDays != 90 {
		t.Fatalf("unexpected calendar: day %d of %d", s.CurrentDay, s.MaxDays)
	}
	if s.Resources.Water != 1000 || s.Resources.Money != 500 || s.Resources.Points != 0 {
		t.Fatalf("unexpected resources: %+v", s.Resources)
	}
	if s.Plot.Health != 70 || s.Plot.VegetationIndex != 0.45 || s.Plot.SoilMoisture != 25 || s.Plot.TemperatureC != 22 {
		t.Fatalf("unexpected plot: %+v", s.Plot)
	}
	if s.ID == "" {
		t.Fatalf("expected a session id")
	}
}

func TestDayLoadsCountDataViews(t *testing.T) {
	s := newTestSession(t, nil)
	if s.Stats.MODISViews != 1 || s.Stats.GPMViews != 1 || s.Stats.SMAPViews != 0 {
		t.Fatalf("unexpected stats after loading day 1: %+v", s.Stats)
	}
	for i := 0; i < 3; i++ {
		if _, err := s.AdvanceDay(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if s.Stats.MODISViews != 4 || s.Stats.GPMViews != 1 || s.Stats.TotalActions != 0 {
		t.Fatalf("unexpected stats after three days: %+v", s.Stats)
	}
	if res := ComputeResults(s); res.Stats != s.Stats {
		t.Fatalf("results stats differ: %+v vs %+v", res.Stats, s.Stats)
	}
}

func TestNewSessionRejectsShortDataset(t *testing.T) {
	_, err := NewSession(DefaultBalance(), flatSeason(10), nil)
	if !errors.Is(err, ErrDatasetTooShort) {
		t.Fatalf("expected ErrDatasetTooShort, got %v", err)
	}
}

func TestIrrigate(t *testing.T) {
	s := newTestSession(t, nil)

	res, err := s.Irrigate(100)
	if err != nil {
		t.Fatalf("irrigate: %v", err)
	}
	if s.Resources.Water != 900 {
		t.Fatalf("expected water 900, got %d", s.Resources.Water)
	}
	if s.Resources.Money != 450 {
		t.Fatalf("expected money 450, got %v", s.Resources.Money)
	}
	if s.Plot.SoilMoisture != 35 || s.Plot.Health != 75 {
		t.Fatalf("unexpected plot after irrigation: %+v", s.Plot)
	}
	if res.Cost != 50 || res.MoistureGain != 10 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(s.Actions) != 1 || s.Actions[0] != (ActionRecord{Day: 1, Type: ActionIrrigate, Amount: 100}) {
		t.Fatalf("unexpected action log: %+v", s.Actions)
	}
	if s.Stats.TotalActions != 1 {
		t.Fatalf("expected 1 total action, got %d", s.Stats.TotalActions)
	}
}

func TestIrrigateFloorsMoistureAndCaps(t *testing.T) {
	s := newTestSession(t, nil)
	s.Plot.SoilMoisture = 38

	if _, err := s.Irrigate(59); err != nil {
		t.Fatalf("irrigate: %v", err)
	}
	if s.Plot.SoilMoisture != 40 {
		t.Fatalf("expected moisture capped at 40, got %v", s.Plot.SoilMoisture)
	}

	s.Plot.SoilMoisture = 10
	if _, err := s.Irrigate(59); err != nil {
		t.Fatalf("irrigate: %v", err)
	}
	if s.Plot.SoilMoisture != 15 {
		t.Fatalf("expected floor(59/10)=5 gain, got moisture %v", s.Plot.SoilMoisture)
	}
}

func TestIrrigateInsufficientLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		water    int
		money    float64
		resource string
	}{
		{"water short, money fine", 50, 500, "water"},
		{"water short, money short", 50, 10, "water"},
		{"water fine, money short", 1000, 10, "money"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSession(t, nil)
			s.Resources.Water = tc.water
			s.Resources.Money = tc.money
			plot, resources, stats := s.Plot, s.Resources, s.Stats

			_, err := s.Irrigate(100)
			if !errors.Is(err, ErrInsufficientResource) {
				t.Fatalf("expected ErrInsufficientResource, got %v", err)
			}
			var ire *InsufficientResourceError
			if !errors.As(err, &ire) || ire.Resource != tc.resource {
				t.Fatalf("expected %s to be reported, got %v", tc.resource, err)
			}
			if s.Plot != plot || s.Resources != resources || s.Stats != stats || len(s.Actions) != 0 {
				t.Fatalf("state changed on rejected irrigation")
			}
		})
	}
}

func TestIrrigateRejectsNonPositiveAmount(t *testing.T) {
	s := newTestSession(t, nil)
	for _, amount := range []int{0, -10} {
		if _, err := s.Irrigate(amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if s.Stats.TotalActions != 0 {
		t.Fatalf("rejected actions must not count")
	}
}

func TestFertilizeOnDrySoilIsReduced(t *testing.T) {
	s := newTestSession(t, nil)
	s.Plot.SoilMoisture = 15

	res, err := s.Fertilize(Nitrogen)
	if err != nil {
		t.Fatalf("fertilize: %v", err)
	}
	if !res.Reduced || res.Efficiency != 0.5 || res.Cost != 100 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s.Resources.Money != 400 {
		t.Fatalf("expected money 400, got %v", s.Resources.Money)
	}
	if !approx(s.Plot.VegetationIndex, 0.5) || s.Plot.Health != 75 {
		t.Fatalf("unexpected plot: %+v", s.Plot)
	}
	if s.Actions[0].Fertilizer != Nitrogen || s.Actions[0].Type != ActionFertilize {
		t.Fatalf("unexpected action: %+v", s.Actions[0])
	}
}

func TestFertilizeFullEfficiencyAndCosts(t *testing.T) {
	tests := []struct {
		kind Fertilizer
		cost float64
	}{
		{Nitrogen, 100},
		{Phosphorus, 90},
		{Potassium, 95},
	}
	for _, tc := range tests {
		s := newTestSession(t, nil)
		res, err := s.Fertilize(tc.kind)
		if err != nil {
			t.Fatalf("%s: %v", tc.kind, err)
		}
		if res.Reduced || res.Cost != tc.cost || s.Resources.Money != 500-tc.cost {
			t.Fatalf("%s: unexpected result %+v money %v", tc.kind, res, s.Resources.Money)
		}
		if !approx(s.Plot.VegetationIndex, 0.55) || s.Plot.Health != 80 {
			t.Fatalf("%s: unexpected plot %+v", tc.kind, s.Plot)
		}
	}
}

func TestFertilizeCapsVegetationIndex(t *testing.T) {
	s := newTestSession(t, nil)
	s.Plot.VegetationIndex = 0.85
	if _, err := s.Fertilize(Potassium); err != nil {
		t.Fatalf("fertilize: %v", err)
	}
	if s.Plot.VegetationIndex != 0.9 {
		t.Fatalf("expected ndvi capped at 0.9, got %v", s.Plot.VegetationIndex)
	}
}

func TestFertilizeErrors(t *testing.T) {
	s := newTestSession(t, nil)
	if _, err := s.Fertilize("compost"); !errors.Is(err, ErrUnknownFertilizer) {
		t.Fatalf("expected ErrUnknownFertilizer, got %v", err)
	}

	s.Resources.Money = 99
	if _, err := s.Fertilize(Nitrogen); !errors.Is(err, ErrInsufficientResource) {
		t.Fatalf("expected ErrInsufficientResource, got %v", err)
	}
	if s.Resources.Money != 99 || len(s.Actions) != 0 {
		t.Fatalf("state changed on rejected fertilization")
	}
}

func TestObserveCountsButDoesNotLog(t *testing.T) {
	s := newTestSession(t, nil)

	insight, err := s.Observe()
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if insight == "" {
		t.Fatalf("expected an insight")
	}
	if s.Resources.Points != 5 || s.Stats.TotalActions != 1 || len(s.Actions) != 0 {
		t.Fatalf("unexpected state: points %d actions %d log %d", s.Resources.Points, s.Stats.TotalActions, len(s.Actions))
	}
}

func TestObserveIsDeterministicWithSeededRand(t *testing.T) {
	a := newTestSession(t, nil)
	b := newTestSession(t, nil)
	for i := 0; i < 10; i++ {
		x, _ := a.Observe()
		y, _ := b.Observe()
		if x != y {
			t.Fatalf("observation %d differs: %q vs %q", i, x, y)
		}
	}
}

func TestViewSourceDoesNotCountAsAction(t *testing.T) {
	s := newTestSession(t, nil)
	for _, src := range []DataSource{SourceSMAP, SourceSMAP, SourceGPM, SourceMODIS} {
		if err := s.ViewSource(src); err != nil {
			t.Fatalf("view %s: %v", src, err)
		}
	}
	if s.Stats.SMAPViews != 2 || s.Stats.GPMViews != 2 || s.Stats.MODISViews != 2 || s.Stats.TotalActions != 0 {
		t.Fatalf("unexpected stats: %+v", s.Stats)
	}
	if err := s.ViewSource("landsat"); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestAdvanceDayRainEvaporationGrowth(t *testing.T) {
	records := flatSeason(90)
	records[0].Precipitation = 10
	records[0].Temperature = 20
	s := newTestSession(t, records)
	s.Plot.SoilMoisture = 30

	report, err := s.AdvanceDay()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if s.Plot.SoilMoisture != 30 {
		t.Fatalf("expected moisture 30 after +2 rain and -2 evaporation, got %v", s.Plot.SoilMoisture)
	}
	if report.RainUptake != 2 || report.Evaporation != 2 || !report.Grew {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !approx(s.Plot.VegetationIndex, 0.46) || s.Plot.Health != 71 {
		t.Fatalf("unexpected growth: %+v", s.Plot)
	}
	if s.Plot.TemperatureC != 20 || s.CurrentDay != 2 || s.Plot.DaysGrown != 1 || report.Day != 2 {
		t.Fatalf("unexpected calendar/temperature: %+v day %d", s.Plot, s.CurrentDay)
	}
}

func TestAdvanceDayHotDayStress(t *testing.T) {
	records := flatSeason(90)
	records[0].Temperature = 30
	s := newTestSession(t, records)
	s.Plot.SoilMoisture = 22

	report, err := s.AdvanceDay()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	// 22 - 3 = 19 is too dry to grow.
	if s.Plot.SoilMoisture != 19 || report.Grew || s.Plot.Health != 68 {
		t.Fatalf("unexpected plot: %+v", s.Plot)
	}
	if s.Plot.VegetationIndex != 0.45 {
		t.Fatalf("stress must not touch ndvi, got %v", s.Plot.VegetationIndex)
	}
}

func TestAdvanceDayRainCapAndDryFloor(t *testing.T) {
	records := flatSeason(90)
	records[0].Precipitation = 100
	records[1].Temperature = 30
	s := newTestSession(t, records)
	s.Plot.SoilMoisture = 39

	if _, err := s.AdvanceDay(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if s.Plot.SoilMoisture != 38 {
		t.Fatalf("expected rain capped at 40 then -2, got %v", s.Plot.SoilMoisture)
	}

	s.Plot.SoilMoisture = 1
	if _, err := s.AdvanceDay(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if s.Plot.SoilMoisture != 0 {
		t.Fatalf("expected moisture floored at 0, got %v", s.Plot.SoilMoisture)
	}
}

func TestSeasonRunsToMaxDays(t *testing.T) {
	s := newTestSession(t, nil)

	for i := 0; i < 89; i++ {
		if _, err := s.AdvanceDay(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if s.CurrentDay != 90 || s.CanAdvance() {
		t.Fatalf("expected to sit on day 90, got %d", s.CurrentDay)
	}
	if _, err := s.AdvanceDay(); !errors.Is(err, ErrInvalidDayIndex) {
		t.Fatalf("expected ErrInvalidDayIndex, got %v", err)
	}
	if s.CurrentDay != 90 {
		t.Fatalf("failed advance moved the calendar")
	}

	report, results, err := s.NextDay()
	if err != nil || report != nil || results == nil {
		t.Fatalf("expected results on the last day, got %v %v %v", report, results, err)
	}
	if !s.Finished {
		t.Fatalf("session should be finished")
	}
	if _, _, err := s.NextDay(); !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
	if _, err := s.Irrigate(50); !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("expected actions to be rejected after finish, got %v", err)
	}
}

func TestNextDayAdvancesBeforeLastDay(t *testing.T) {
	s := newTestSession(t, nil)
	report, results, err := s.NextDay()
	if err != nil || report == nil || results != nil {
		t.Fatalf("unexpected next day outcome: %v %v %v", report, results, err)
	}
	if report.Day != 2 || s.CurrentDay != 2 {
		t.Fatalf("expected day 2, got %d", s.CurrentDay)
	}
}

func TestFinishRefusedBeforeLastDay(t *testing.T) {
	s := newTestSession(t, nil)
	for _, day := range []int{1, 45, 89} {
		s.CurrentDay = day
		if _, err := s.Finish(); !errors.Is(err, ErrInvalidDayIndex) {
			t.Fatalf("day %d: expected ErrInvalidDayIndex, got %v", day, err)
		}
		if s.Finished {
			t.Fatalf("day %d: refused finish froze the session", day)
		}
	}

	s.CurrentDay = 90
	first, err := s.Finish()
	if err != nil || !s.Finished {
		t.Fatalf("finish on the last day: %v", err)
	}
	again, err := s.Finish()
	if err != nil || !reflect.DeepEqual(first, again) {
		t.Fatalf("second finish differs: %v %+v %+v", err, first, again)
	}
}

func TestBoundsHoldUnderRandomPlay(t *testing.T) {
	rng := SeededRand(99)
	records := dataset.NewSynthetic(SeededRand(7)).Generate(90)
	s := newTestSession(t, records)
	kinds := []Fertilizer{Nitrogen, Phosphorus, Potassium}

	for !s.Finished {
		switch rng.IntN(5) {
		case 0:
			_, err := s.Irrigate(50 + rng.IntN(151))
			if err != nil && !errors.Is(err, ErrInsufficientResource) {
				t.Fatalf("irrigate: %v", err)
			}
		case 1:
			_, err := s.Fertilize(kinds[rng.IntN(len(kinds))])
			if err != nil && !errors.Is(err, ErrInsufficientResource) {
				t.Fatalf("fertilize: %v", err)
			}
		case 2:
			if _, err := s.Observe(); err != nil {
				t.Fatalf("observe: %v", err)
			}
		default:
			if _, _, err := s.NextDay(); err != nil {
				t.Fatalf("next day: %v", err)
			}
		}

		p := s.Plot
		if p.Health < 0 || p.Health > 100 || p.SoilMoisture < 0 || p.SoilMoisture > 40 || p.VegetationIndex < 0 || p.VegetationIndex > 1 {
			t.Fatalf("plot out of bounds on day %d: %+v", s.CurrentDay, p)
		}
		if s.Resources.Water < 0 || s.Resources.Money < 0 || s.Resources.Points < 0 {
			t.Fatalf("negative resources on day %d: %+v", s.CurrentDay, s.Resources)
		}
		if s.CurrentDay < 1 || s.CurrentDay > s.MaxDays {
			t.Fatalf("day out of range: %d", s.CurrentDay)
		}
	}
}

func TestComputeResults(t *testing.T) {
	s := newTestSession(t, nil)
	s.Plot.Health = 80
	s.Plot.VegetationIndex = 0.7
	s.Resources.Water = 250
	s.Resources.Money = 320
	s.Resources.Points = 55

	res := ComputeResults(s)
	if !approx(res.Yield, 4.0) {
		t.Fatalf("expected yield 4.0, got %v", res.Yield)
	}
	if res.Stars != 1 {
		t.Fatalf("expected 1 star, got %d", res.Stars)
	}
	if res.WaterUsed != 750 || res.MoneyEarned != -180 || res.Points != 55 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	if again := ComputeResults(s); !reflect.DeepEqual(res, again) {
		t.Fatalf("results are not stable: %+v vs %+v", res, again)
	}
}

func TestStarRating(t *testing.T) {
	tests := []struct {
		yield  float64
		health float64
		water  int
		want   int
	}{
		{6.0, 80, 200, 3},
		{6.0, 80, 199, 2},
		{6.0, 79, 500, 2},
		{5.0, 70, 0, 2},
		{5.0, 69, 0, 1},
		{4.0, 10, 0, 1},
		{3.99, 100, 1000, 0},
	}
	for _, tc := range tests {
		if got := starRating(tc.yield, tc.health, tc.water); got != tc.want {
			t.Fatalf("starRating(%v, %v, %d) = %d, want %d", tc.yield, tc.health, tc.water, got, tc.want)
		}
	}
}

func TestNDVIFactorIsCapped(t *testing.T) {
	s := newTestSession(t, nil)
	s.Plot.Health = 100
	s.Plot.VegetationIndex = 0.9
	if res := ComputeResults(s); !approx(res.Yield, 6.0) {
		t.Fatalf("expected yield capped at 6.0, got %v", res.Yield)
	}
}

func TestApplyQuizAdjustment(t *testing.T) {
	tests := []struct {
		bonus int
		water int
		money float64
	}{
		{20, 1200, 600},
		{10, 1100, 550},
		{0, 1000, 500},
		{-25, 750, 375},
	}
	for _, tc := range tests {
		s := newTestSession(t, nil)
		if err := s.ApplyQuizAdjustment(tc.bonus); err != nil {
			t.Fatalf("bonus %d: %v", tc.bonus, err)
		}
		if s.Resources.Water != tc.water || s.Resources.Money != tc.money {
			t.Fatalf("bonus %d: got %+v", tc.bonus, s.Resources)
		}
		if err := s.ApplyQuizAdjustment(tc.bonus); !errors.Is(err, ErrQuizAlreadyApplied) {
			t.Fatalf("bonus %d: expected one-time application, got %v", tc.bonus, err)
		}
	}
}

func TestApplyQuizAdjustmentAfterPlayStarted(t *testing.T) {
	s := newTestSession(t, nil)
	if _, err := s.Observe(); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if err := s.ApplyQuizAdjustment(20); !errors.Is(err, ErrQuizAlreadyApplied) {
		t.Fatalf("expected rejection once play started, got %v", err)
	}
	if s.Resources.Water != 1000 {
		t.Fatalf("resources changed: %+v", s.Resources)
	}
}

func TestMilestonesAwardOnce(t *testing.T) {
	s := newTestSession(t, nil)
	s.CurrentDay = 29

	report, err := s.AdvanceDay()
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	var found bool
	for _, ev := range report.Events {
		if ev.Kind == EventMilestone && ev.Points == 50 {
			found = true
		}
	}
	if !found || s.Resources.Points != 50 {
		t.Fatalf("expected day-30 milestone, got %+v points %d", report.Events, s.Resources.Points)
	}

	s.CheckDayEvents()
	if s.Resources.Points != 50 {
		t.Fatalf("milestone awarded twice: %d", s.Resources.Points)
	}

	s.CurrentDay = 59
	if _, err := s.AdvanceDay(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if s.Resources.Points != 125 {
		t.Fatalf("expected day-60 milestone, points %d", s.Resources.Points)
	}
}

func TestCheckDayEvents(t *testing.T) {
	records := flatSeason(90)
	records[0] = dataset.Record{Day: 1, Precipitation: 30, Temperature: 36}
	s := newTestSession(t, records)

	kinds := map[EventKind]bool{}
	for _, ev := range s.CheckDayEvents() {
		kinds[ev.Kind] = true
	}
	if !kinds[EventFloodRisk] || !kinds[EventHeatwave] || kinds[EventDrought] {
		t.Fatalf("unexpected events: %v", kinds)
	}

	records = flatSeason(90)
	s = newTestSession(t, records)
	s.Plot.SoilMoisture = 10
	events := s.CheckDayEvents()
	if len(events) != 1 || events[0].Kind != EventDrought {
		t.Fatalf("expected a drought alert, got %+v", events)
	}
}

func TestDeriveRecommendations(t *testing.T) {
	codes := func(recs []Recommendation) []string {
		var out []string
		for _, r := range recs {
			out = append(out, r.Code)
		}
		return out
	}

	s := newTestSession(t, nil)
	s.Plot.VegetationIndex = 0.6
	s.Plot.TemperatureC = 20
	if got := codes(DeriveRecommendations(s)); !reflect.DeepEqual(got, []string{"optimal"}) {
		t.Fatalf("expected only the optimal item, got %v", got)
	}

	records := flatSeason(90)
	records[2].Precipitation = 12
	records[3].Precipitation = 20
	s = newTestSession(t, records)
	s.Plot.SoilMoisture = 15
	s.Plot.VegetationIndex = 0.4
	s.Plot.TemperatureC = 34
	s.Plot.Health = 40
	recs := DeriveRecommendations(s)
	want := []string{"soil_critical", "rain_ahead", "ndvi_low", "heat", "health_low"}
	if got := codes(recs); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if recs[0].Severity != SeverityUrgent || recs[1].Severity != SeverityInfo {
		t.Fatalf("unexpected severities: %+v", recs)
	}
}

func TestRainAheadWindow(t *testing.T) {
	tests := []struct {
		name    string
		day     int
		rain    map[int]float64 // day -> mm
		want    bool
		wantTxt string
	}{
		{"tomorrow", 1, map[int]float64{2: 12}, true, "12.0mm of rain in 1 day(s)"},
		{"three days out", 1, map[int]float64{4: 18}, true, "18.0mm of rain in 3 day(s)"},
		{"four days out", 1, map[int]float64{5: 25}, false, ""},
		{"exactly 10mm", 1, map[int]float64{2: 10}, false, ""},
		{"just above 10mm", 1, map[int]float64{3: 10.1}, true, "10.1mm of rain in 2 day(s)"},
		{"first heavy day wins", 1, map[int]float64{2: 11, 3: 30}, true, "11.0mm of rain in 1 day(s)"},
		{"today is not ahead", 1, map[int]float64{1: 30}, false, ""},
		{"window cut at season end", 89, map[int]float64{90: 15}, true, "15.0mm of rain in 1 day(s)"},
		{"nothing after the last day", 90, map[int]float64{90: 15}, false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records := flatSeason(90)
			for day, mm := range tc.rain {
				records[day-1].Precipitation = mm
			}
			s := newTestSession(t, records)
			s.CurrentDay = tc.day

			var found []Recommendation
			for _, r := range DeriveRecommendations(s) {
				if r.Code == "rain_ahead" {
					found = append(found, r)
				}
			}
			if !tc.want {
				if len(found) != 0 {
					t.Fatalf("expected no rain item, got %+v", found)
				}
				return
			}
			if len(found) != 1 {
				t.Fatalf("expected exactly one rain item, got %+v", found)
			}
			if !strings.Contains(found[0].Text, tc.wantTxt) {
				t.Fatalf("rain item %q does not mention %q", found[0].Text, tc.wantTxt)
			}
		})
	}
}

func TestViews(t *testing.T) {
	if SeasonForDay(30) != Spring || SeasonForDay(31) != Summer || SeasonForDay(61) != Autumn {
		t.Fatalf("unexpected season boundaries")
	}
	if CropStageFor(0) != StageSeedling || CropStageFor(29) != StageYoung || CropStageFor(80) != StageHarvestReady {
		t.Fatalf("unexpected crop stages")
	}
	if SoilStatusFor(25) != SoilOptimal || SoilStatusFor(19.9) != SoilCritical || SoilStatusFor(37) != SoilSuboptimal {
		t.Fatalf("unexpected soil status")
	}

	records := flatSeason(90)
	records[4].Precipitation = 14
	s := newTestSession(t, records)
	forecast := Forecast(s, 7)
	if len(forecast) != 7 || !forecast[4].Highlight || forecast[4].Sky != SkyShowers {
		t.Fatalf("unexpected forecast: %+v", forecast)
	}
	offset, rec, ok := NextSignificantRain(s)
	if !ok || offset != 4 || rec.Precipitation != 14 {
		t.Fatalf("unexpected next rain: %d %+v %v", offset, rec, ok)
	}

	s.CurrentDay = 88
	if got := Forecast(s, 7); len(got) != 3 {
		t.Fatalf("forecast must stop at the season end, got %d days", len(got))
	}
}

func TestValidateRestoredSession(t *testing.T) {
	s := newTestSession(t, nil)
	s.Actions = nil
	s.Plot.Health = 140
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if s.Actions == nil || s.Plot.Health != 100 {
		t.Fatalf("validate should repair the session: %+v", s.Plot)
	}

	s.CurrentDay = 91
	if err := s.Validate(); err == nil {
		t.Fatalf("expected an error for day 91")
	}
}
