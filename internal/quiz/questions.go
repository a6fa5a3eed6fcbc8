/*
Package quiz
File: questions.go
Description:
    The fixed question bank played before a season. The outcome of the quiz
    becomes a one-time bonus or malus on the starting water and money.
*/

package quiz

// Kind of question.
type Kind string

const (
	MultipleChoice Kind = "mcq"
	TrueFalse      Kind = "true_false"
)

// Question is one quiz item with exactly one correct option.
type Question struct {
	ID          int      `json:"id"`
	Kind        Kind     `json:"type"`
	Prompt      string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`     // Index into Options
	Explanation string   `json:"explanation"` // Shown after answering
}

// PublicQuestion hides the answer key for clients.
type PublicQuestion struct {
	ID      int      `json:"id"`
	Kind    Kind     `json:"type"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// Public strips the correct index and explanation.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Kind: q.Kind, Prompt: q.Prompt, Options: q.Options}
}

// Bank returns the five fixed questions in play order.
func Bank() []Question {
	return []Question{
		{
			ID:     1,
			Kind:   MultipleChoice,
			Prompt: "What does NASA's SMAP satellite measure?",
			Options: []string{
				"Air temperature",
				"Soil moisture",
				"Wind speed",
				"Air pollution",
			},
			Correct:     1,
			Explanation: "SMAP (Soil Moisture Active Passive) measures soil moisture from space at 9-36 km resolution. Crucial for irrigation!",
		},
		{
			ID:     2,
			Kind:   MultipleChoice,
			Prompt: "Which NDVI value indicates very healthy vegetation?",
			Options: []string{
				"0.1 - 0.3",
				"0.3 - 0.5",
				"0.6 - 0.8",
				"-0.1 - 0.1",
			},
			Correct:     2,
			Explanation: "An NDVI between 0.6 and 0.8 means dense, healthy vegetation. Lower values mean stress or bare soil.",
		},
		{
			ID:          3,
			Kind:        TrueFalse,
			Prompt:      "GPM can forecast precipitation up to 7 days ahead.",
			Options:     []string{"True", "False"},
			Correct:     0,
			Explanation: "True! GPM (Global Precipitation Measurement) provides precipitation forecasts that help farmers plan irrigation and harvests.",
		},
		{
			ID:     4,
			Kind:   MultipleChoice,
			Prompt: "Your soil is at 15% moisture. The optimum for corn is 25-35%. What do you do?",
			Options: []string{
				"Wait for rain",
				"Irrigate immediately",
				"Fertilize first",
				"Do nothing",
			},
			Correct:     1,
			Explanation: "At only 15% moisture the corn is under severe water stress. Irrigate before anything else!",
		},
		{
			ID:     5,
			Kind:   MultipleChoice,
			Prompt: "Which NASA data helps MOST to time fertilization?",
			Options: []string{
				"GPM only",
				"SMAP only",
				"MODIS only",
				"SMAP + GPM + MODIS combined",
			},
			Correct:     3,
			Explanation: "The best decision combines MODIS (does the crop need it?), SMAP (is the soil moist enough to absorb it?) and GPM (will rain wash it away?).",
		},
	}
}
