package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/everforgeworks/farm-navigators/internal/config"
	"github.com/everforgeworks/farm-navigators/internal/dataset"
	"github.com/everforgeworks/farm-navigators/internal/game"
	"github.com/everforgeworks/farm-navigators/internal/metrics"
	"github.com/everforgeworks/farm-navigators/internal/quiz"
	"github.com/everforgeworks/farm-navigators/internal/store"
	"github.com/gorilla/mux"
)

var (
	errNoSession = errors.New("no active session")
	errNoQuiz    = errors.New("no quiz in progress")
)

// Deps wires a Server. Config and Store are required.
type Deps struct {
	Config   *config.Holder
	Store    store.Store
	Provider dataset.Provider // nil plays on synthetic data
	Hub      *Hub             // nil disables push events
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	NewRand  func() *rand.Rand // Source for each new season; defaults to the clock
	Now      func() time.Time
}

// Server owns the single live session and the quiz in progress.
// mu serializes every handler that touches them.
type Server struct {
	mu           sync.Mutex
	session      *game.Session
	resultsSaved bool
	attempt      *quiz.Attempt
	askedAt      time.Time // When the current quiz question was served

	cfg      *config.Holder
	store    store.Store
	provider dataset.Provider
	hub      *Hub
	metrics  *metrics.Metrics
	log      *slog.Logger
	newRand  func() *rand.Rand
	now      func() time.Time
}

func NewServer(d Deps) *Server {
	s := &Server{
		cfg:      d.Config,
		store:    d.Store,
		provider: d.Provider,
		hub:      d.Hub,
		metrics:  d.Metrics,
		log:      d.Logger,
		newRand:  d.NewRand,
		now:      d.Now,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.newRand == nil {
		s.newRand = func() *rand.Rand { return game.SeededRand(time.Now().UnixNano()) }
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.hub != nil {
		s.hub.OnMessage = s.handleClientMessage
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Dataset provider
	r.HandleFunc("/api/game/data", s.handleGameData).Methods(http.MethodGet)

	// Quiz
	r.HandleFunc("/api/quiz/questions", s.handleQuizQuestions).Methods(http.MethodGet)
	r.HandleFunc("/api/quiz/start", s.handleQuizStart).Methods(http.MethodPost)
	r.HandleFunc("/api/quiz/answer", s.handleQuizAnswer).Methods(http.MethodPost)
	r.HandleFunc("/api/quiz/finish", s.handleQuizFinish).Methods(http.MethodPost)

	// Session lifecycle
	r.HandleFunc("/api/session", s.handleNewSession).Methods(http.MethodPost)
	r.HandleFunc("/api/session", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/api/session/load", s.handleLoadSession).Methods(http.MethodPost)
	r.HandleFunc("/api/session/save", s.handleSaveSession).Methods(http.MethodPost)
	r.HandleFunc("/api/session/results", s.handleResults).Methods(http.MethodGet)

	// Actions
	r.HandleFunc("/api/session/irrigate", s.handleIrrigate).Methods(http.MethodPost)
	r.HandleFunc("/api/session/fertilize", s.handleFertilize).Methods(http.MethodPost)
	r.HandleFunc("/api/session/observe", s.handleObserve).Methods(http.MethodPost)
	r.HandleFunc("/api/session/view", s.handleView).Methods(http.MethodPost)
	r.HandleFunc("/api/session/next", s.handleNextDay).Methods(http.MethodPost)

	if s.hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(s.hub, w, r)
		}).Methods(http.MethodGet)
	}
	return r
}

// Resume restores the saved game, if any. A snapshot that cannot be
// restored is deleted so the next start is clean.
func (s *Server) Resume(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumeLocked(ctx)
}

func (s *Server) resumeLocked(ctx context.Context) (bool, error) {
	snap, err := store.LoadSession(ctx, s.store)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	case errors.Is(err, store.ErrCorruptSnapshot):
		s.log.Warn("dropping corrupt save", "error", err)
		if derr := store.DeleteSession(ctx, s.store); derr != nil {
			return false, derr
		}
		return false, nil
	case err != nil:
		return false, err
	}
	snap.Session.SetRand(s.newRand())
	s.session = snap.Session
	s.resultsSaved = snap.Session.Finished
	s.log.Info("save restored", "session", snap.Session.ID, "day", snap.Session.CurrentDay, "saved_at", snap.SavedAt)
	return true, nil
}

// SaveNow writes the live session, e.g. on shutdown. Without a session it is a no-op.
func (s *Server) SaveNow(ctx context.Context, trigger string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return s.saveLocked(ctx, trigger)
}

func (s *Server) saveLocked(ctx context.Context, trigger string) error {
	snap, err := store.SaveSession(ctx, s.store, s.session)
	if err != nil {
		s.log.Error("save failed", "trigger", trigger, "error", err)
		return err
	}
	s.metrics.Saved(trigger)
	s.log.Debug("session saved", "trigger", trigger, "day", s.session.CurrentDay)
	s.hub.Publish("saved", map[string]any{"trigger": trigger, "timestamp": snap.SavedAt})
	return nil
}

// afterAction runs the periodic autosave. A failed autosave is logged, not returned.
func (s *Server) afterAction(ctx context.Context) {
	policy := store.AutosavePolicy{Every: s.cfg.Current().Server.AutosaveEvery}
	if policy.Due(s.session.Stats.TotalActions) {
		_ = s.saveLocked(ctx, "action")
	}
}

// finishLocked persists the results blob exactly once per session.
// After a failed write the session stays finished with resultsSaved unset,
// and the next call tries again.
func (s *Server) finishLocked(ctx context.Context, res game.Results) {
	if s.resultsSaved {
		return
	}
	if err := store.SaveResults(ctx, s.store, res); err != nil {
		s.log.Error("results not saved", "session", res.SessionID, "error", err)
		return
	}
	s.resultsSaved = true
	_ = s.saveLocked(ctx, "finish")
	s.metrics.GameFinished(res.Stars)
	s.log.Info("season finished", "session", res.SessionID, "yield", res.Yield, "stars", res.Stars)
	s.hub.Publish("game_over", res)
}

func (s *Server) handleClientMessage(msg ClientMessage) {
	if msg.Type != "visibility" || msg.State != "hidden" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.SaveNow(ctx, "visibility")
}

// writeJSON sends v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInsufficientResource):
		return http.StatusPaymentRequired
	case errors.Is(err, game.ErrInvalidAmount),
		errors.Is(err, game.ErrUnknownFertilizer),
		errors.Is(err, game.ErrUnknownSource),
		errors.Is(err, quiz.ErrInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrSessionFinished),
		errors.Is(err, game.ErrInvalidDayIndex),
		errors.Is(err, game.ErrQuizAlreadyApplied),
		errors.Is(err, quiz.ErrComplete),
		errors.Is(err, quiz.ErrIncomplete):
		return http.StatusConflict
	case errors.Is(err, errNoSession),
		errors.Is(err, errNoQuiz),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
