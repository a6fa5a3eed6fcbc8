package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/everforgeworks/farm-navigators/internal/game"
)

// Fixed keys of the persisted blobs.
const (
	KeySession   = "farmNavigatorsSave"
	KeyResults   = "gameResults"
	KeyQuizBonus = "quizBonus"
)

// Snapshot is the whole session plus the time it was written.
type Snapshot struct {
	SavedAt time.Time     `json:"timestamp"`
	Session *game.Session `json:"game_state"`
}

// SaveSession overwrites the single saved game.
func SaveSession(ctx context.Context, st Store, s *game.Session) (Snapshot, error) {
	snap := Snapshot{SavedAt: time.Now().UTC(), Session: s}
	data, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := st.Put(ctx, KeySession, data); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// LoadSession restores the saved game verbatim. A blob that does not decode
// or validate yields ErrCorruptSnapshot; the caller decides whether to drop it.
func LoadSession(ctx context.Context, st Store) (Snapshot, error) {
	data, err := st.Get(ctx, KeySession)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if snap.Session == nil {
		return Snapshot{}, fmt.Errorf("%w: empty session", ErrCorruptSnapshot)
	}
	if err := snap.Session.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return snap, nil
}

// DeleteSession forgets the saved game.
func DeleteSession(ctx context.Context, st Store) error {
	return st.Delete(ctx, KeySession)
}

// SaveResults writes the end-of-game summary.
func SaveResults(ctx context.Context, st Store, res game.Results) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return st.Put(ctx, KeyResults, data)
}

func LoadResults(ctx context.Context, st Store) (game.Results, error) {
	var res game.Results
	data, err := st.Get(ctx, KeyResults)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return res, fmt.Errorf("decode results: %w", err)
	}
	return res, nil
}

// SaveQuizBonus parks the quiz outcome until the next session starts.
func SaveQuizBonus(ctx context.Context, st Store, percent int) error {
	return st.Put(ctx, KeyQuizBonus, []byte(strconv.Itoa(percent)))
}

// TakeQuizBonus returns the pending bonus and removes it, so it is consumed
// at most once. ok is false when no quiz was played.
func TakeQuizBonus(ctx context.Context, st Store) (percent int, ok bool, err error) {
	data, err := st.Get(ctx, KeyQuizBonus)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if err := st.Delete(ctx, KeyQuizBonus); err != nil {
		return 0, false, err
	}
	percent, err = strconv.Atoi(string(data))
	if err != nil {
		return 0, false, fmt.Errorf("decode quiz bonus: %w", err)
	}
	return percent, true, nil
}

// AutosavePolicy triggers a save every Every actions. Zero disables it.
type AutosavePolicy struct {
	Every int
}

// Due reports whether totalActions lands on the save interval.
func (p AutosavePolicy) Due(totalActions int) bool {
	return p.Every > 0 && totalActions > 0 && totalActions%p.Every == 0
}
