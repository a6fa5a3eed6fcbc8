package quiz

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Timeout is the answer recorded when the countdown runs out.
// It goes through the same Answer path as a real choice and is never correct.
const Timeout = -1

// DefaultTimePerQuestion is the countdown of each question.
const DefaultTimePerQuestion = 20 * time.Second

var (
	ErrComplete      = errors.New("quiz already complete")
	ErrIncomplete    = errors.New("quiz not complete")
	ErrInvalidOption = errors.New("option out of range")
)

// Answer is one recorded response.
type Answer struct {
	QuestionID int           `json:"question_id"`
	Selected   int           `json:"selected"` // Timeout when the countdown expired
	Correct    int           `json:"correct"`
	IsCorrect  bool          `json:"is_correct"`
	TimedOut   bool          `json:"timed_out"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Feedback is returned after each answer so the client can show the explanation.
type Feedback struct {
	Answer      Answer `json:"answer"`
	Explanation string `json:"explanation"`
	Score       int    `json:"score"`
	Done        bool   `json:"done"`
}

// Attempt tracks one run through the question bank.
type Attempt struct {
	ID              string        `json:"id"`
	Questions       []Question    `json:"-"`
	Answers         []Answer      `json:"answers"`
	Score           int           `json:"score"`
	TimePerQuestion time.Duration `json:"time_per_question"`
}

// NewAttempt starts an attempt over questions. A zero limit uses DefaultTimePerQuestion.
func NewAttempt(questions []Question, limit time.Duration) *Attempt {
	if limit <= 0 {
		limit = DefaultTimePerQuestion
	}
	return &Attempt{
		ID:              uuid.NewString(),
		Questions:       questions,
		Answers:         []Answer{},
		TimePerQuestion: limit,
	}
}

// Current returns the question awaiting an answer.
func (a *Attempt) Current() (Question, bool) {
	if a.Done() {
		return Question{}, false
	}
	return a.Questions[len(a.Answers)], true
}

// Done reports whether every question has been answered.
func (a *Attempt) Done() bool {
	return len(a.Answers) >= len(a.Questions)
}

// Answer records selected for the current question after elapsed time.
// An elapsed time at or past the limit is treated exactly like Timeout.
func (a *Attempt) Answer(selected int, elapsed time.Duration) (Feedback, error) {
	q, ok := a.Current()
	if !ok {
		return Feedback{}, ErrComplete
	}
	if elapsed >= a.TimePerQuestion {
		selected = Timeout
	}
	if selected != Timeout && (selected < 0 || selected >= len(q.Options)) {
		return Feedback{}, fmt.Errorf("%w: %d", ErrInvalidOption, selected)
	}

	ans := Answer{
		QuestionID: q.ID,
		Selected:   selected,
		Correct:    q.Correct,
		IsCorrect:  selected == q.Correct,
		TimedOut:   selected == Timeout,
		Elapsed:    elapsed,
	}
	if ans.IsCorrect {
		a.Score++
	}
	a.Answers = append(a.Answers, ans)

	return Feedback{Answer: ans, Explanation: q.Explanation, Score: a.Score, Done: a.Done()}, nil
}

// Result is the final outcome of an attempt.
type Result struct {
	Score      int      `json:"score"`
	Total      int      `json:"total"`
	Percentage float64  `json:"percentage"`
	Bonus      int      `json:"bonus"` // Percent applied to starting water and money
	Stars      int      `json:"stars"`
	WaterDelta int      `json:"water_delta"` // Preview on the given starting resources
	MoneyDelta int      `json:"money_delta"`
	Answers    []Answer `json:"answers"`
}

// Result scores a finished attempt. startingWater and startingMoney feed the
// bonus preview shown to the player.
func (a *Attempt) Result(startingWater int, startingMoney float64) (Result, error) {
	if !a.Done() {
		return Result{}, ErrIncomplete
	}
	total := len(a.Questions)
	pct := 0.0
	if total > 0 {
		pct = float64(a.Score*100) / float64(total)
	}
	bonus := BonusFor(pct)
	return Result{
		Score:      a.Score,
		Total:      total,
		Percentage: pct,
		Bonus:      bonus,
		Stars:      StarsFor(pct),
		WaterDelta: int(math.Floor(float64(startingWater) * float64(bonus) / 100)),
		MoneyDelta: int(math.Floor(startingMoney * float64(bonus) / 100)),
		Answers:    append([]Answer{}, a.Answers...),
	}, nil
}

// BonusFor maps a percentage of correct answers to a resource multiplier in percent.
func BonusFor(percentage float64) int {
	switch {
	case percentage >= 100:
		return 20
	case percentage >= 80:
		return 10
	case percentage >= 60:
		return 0
	default:
		return -25
	}
}

// StarsFor is the star display of the quiz results screen.
func StarsFor(percentage float64) int {
	switch {
	case percentage >= 100:
		return 3
	case percentage >= 80:
		return 2
	case percentage >= 60:
		return 1
	default:
		return 0
	}
}
