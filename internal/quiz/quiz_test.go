package quiz

import (
	"errors"
	"testing"
	"time"
)

func TestBankShape(t *testing.T) {
	bank := Bank()
	if len(bank) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(bank))
	}
	for _, q := range bank {
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			t.Fatalf("question %d has correct index %d outside %d options", q.ID, q.Correct, len(q.Options))
		}
		if q.Kind == TrueFalse && len(q.Options) != 2 {
			t.Fatalf("true/false question %d has %d options", q.ID, len(q.Options))
		}
		if q.Explanation == "" {
			t.Fatalf("question %d has no explanation", q.ID)
		}
	}
}

func answerAll(t *testing.T, a *Attempt, correct int) {
	t.Helper()
	for i := 0; !a.Done(); i++ {
		q, _ := a.Current()
		choice := Timeout
		if i < correct {
			choice = q.Correct
		}
		if _, err := a.Answer(choice, time.Second); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
}

func TestResultBonusTiers(t *testing.T) {
	tests := []struct {
		correct int
		bonus   int
		stars   int
		water   int
		money   int
	}{
		{5, 20, 3, 200, 100},
		{4, 10, 2, 100, 50},
		{3, 0, 1, 0, 0},
		{2, -25, 0, -250, -125},
		{0, -25, 0, -250, -125},
	}
	for _, tc := range tests {
		a := NewAttempt(Bank(), 0)
		answerAll(t, a, tc.correct)

		res, err := a.Result(1000, 500)
		if err != nil {
			t.Fatalf("%d correct: %v", tc.correct, err)
		}
		if res.Score != tc.correct || res.Bonus != tc.bonus || res.Stars != tc.stars {
			t.Fatalf("%d correct: unexpected result %+v", tc.correct, res)
		}
		if res.WaterDelta != tc.water || res.MoneyDelta != tc.money {
			t.Fatalf("%d correct: unexpected preview %d/%d", tc.correct, res.WaterDelta, res.MoneyDelta)
		}
	}
}

func TestTimeoutIsNeverCorrect(t *testing.T) {
	a := NewAttempt(Bank(), 20*time.Second)

	fb, err := a.Answer(Timeout, 20*time.Second)
	if err != nil {
		t.Fatalf("timeout answer: %v", err)
	}
	if fb.Answer.IsCorrect || !fb.Answer.TimedOut || fb.Explanation == "" {
		t.Fatalf("unexpected feedback: %+v", fb)
	}

	// A late correct answer counts as a timeout.
	q, _ := a.Current()
	fb, err = a.Answer(q.Correct, 25*time.Second)
	if err != nil {
		t.Fatalf("late answer: %v", err)
	}
	if fb.Answer.IsCorrect || fb.Answer.Selected != Timeout || a.Score != 0 {
		t.Fatalf("late answer must not score: %+v", fb)
	}
}

func TestAnswerErrors(t *testing.T) {
	a := NewAttempt(Bank(), 0)
	if _, err := a.Answer(7, time.Second); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if len(a.Answers) != 0 {
		t.Fatalf("invalid option must not be recorded")
	}
	if _, err := a.Result(1000, 500); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}

	answerAll(t, a, 5)
	if _, err := a.Answer(0, time.Second); !errors.Is(err, ErrComplete) {
		t.Fatalf("expected ErrComplete, got %v", err)
	}
}

func TestPublicHidesAnswers(t *testing.T) {
	q := Bank()[0]
	p := q.Public()
	if p.ID != q.ID || len(p.Options) != len(q.Options) || p.Prompt != q.Prompt {
		t.Fatalf("unexpected public question: %+v", p)
	}
}
