package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientResource rejects an action without touching the session.
	ErrInsufficientResource = errors.New("insufficient resource")

	// ErrInvalidDayIndex means an advance was requested past the last day.
	// Callers must finish the game instead.
	ErrInvalidDayIndex = errors.New("invalid day index")

	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrUnknownFertilizer  = errors.New("unknown fertilizer")
	ErrUnknownSource      = errors.New("unknown data source")
	ErrQuizAlreadyApplied = errors.New("quiz adjustment already applied")
	ErrSessionFinished    = errors.New("session finished")
	ErrDatasetTooShort    = errors.New("dataset shorter than season")
)

// InsufficientResourceError names the resource that blocked an action.
type InsufficientResourceError struct {
	Resource  string  // "water" or "money"
	Needed    float64
	Available float64
}

func (e *InsufficientResourceError) Error() string {
	return fmt.Sprintf("insufficient %s: need %g, have %g", e.Resource, e.Needed, e.Available)
}

func (e *InsufficientResourceError) Unwrap() error {
	return ErrInsufficientResource
}
