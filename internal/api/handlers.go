/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    These functions decode JSON requests, drive the live game.Session or
    quiz.Attempt held by the Server, and return JSON responses.

    Key Responsibilities:
    - Input Validation (Is the JSON valid? Is there a session?)
    - State Modification (Calling game logic to irrigate, fertilize, advance)
    - Thread Safety (Server.mu is held for the whole request)
    - Persistence side effects (autosave, results blob, quiz bonus)
*/

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/everforgeworks/farm-navigators/internal/dataset"
	"github.com/everforgeworks/farm-navigators/internal/game"
	"github.com/everforgeworks/farm-navigators/internal/quiz"
	"github.com/everforgeworks/farm-navigators/internal/store"
)

// Request DTOs (Data Transfer Objects)
// These structs define exactly what we expect the client to send us.

type IrrigateRequest struct {
	Amount int `json:"amount"` // m³
}

type FertilizeRequest struct {
	Fertilizer game.Fertilizer `json:"fertilizer"`
}

type ViewRequest struct {
	Source game.DataSource `json:"source"`
}

type AnswerRequest struct {
	Selected  int  `json:"selected"`   // quiz.Timeout (-1) when the countdown expired
	ElapsedMS *int `json:"elapsed_ms"` // Client-measured; server clock is used when absent
}

// Response DTOs

type SessionResponse struct {
	game.Overview
	Synthetic bool `json:"synthetic,omitempty"` // Set when the dataset provider failed
	QuizBonus *int `json:"quiz_bonus_applied,omitempty"`
}

type ActionResponse struct {
	Result   any           `json:"result"`
	Insight  string        `json:"insight,omitempty"` // observe only
	Overview game.Overview `json:"overview"`
}

type NextDayResponse struct {
	Report   *game.DayReport `json:"report,omitempty"`
	Results  *game.Results   `json:"results,omitempty"` // Set when the season ended
	Overview game.Overview   `json:"overview"`
}

type QuizQuestionResponse struct {
	AttemptID        string              `json:"attempt_id"`
	Index            int                 `json:"index"`
	Total            int                 `json:"total"`
	Question         quiz.PublicQuestion `json:"question"`
	TimeLimitSeconds int                 `json:"time_limit_seconds"`
}

type QuizAnswerResponse struct {
	Feedback quiz.Feedback         `json:"feedback"`
	Next     *QuizQuestionResponse `json:"next,omitempty"`
}

// handleHealth is a liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGameData serves a synthetic season so this server can act as its own
// dataset provider: GET /api/game/data?count=N.
func (s *Server) handleGameData(w http.ResponseWriter, r *http.Request) {
	count := dataset.SeasonLength
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 366 {
			http.Error(w, "count must be between 1 and 366", http.StatusBadRequest)
			return
		}
		count = n
	}
	records := dataset.NewSynthetic(s.newRand()).Generate(count)
	writeJSON(w, http.StatusOK, dataset.Response{Data: records})
}

// --- Quiz ---

// handleQuizQuestions lists the bank without answers.
func (s *Server) handleQuizQuestions(w http.ResponseWriter, r *http.Request) {
	bank := quiz.Bank()
	out := make([]quiz.PublicQuestion, 0, len(bank))
	for _, q := range bank {
		out = append(out, q.Public())
	}
	writeJSON(w, http.StatusOK, out)
}

// handleQuizStart begins a new attempt, replacing any unfinished one.
func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := time.Duration(s.cfg.Current().Server.QuizSeconds) * time.Second
	s.attempt = quiz.NewAttempt(quiz.Bank(), limit)
	s.askedAt = s.now()

	writeJSON(w, http.StatusCreated, s.currentQuestionLocked())
}

func (s *Server) currentQuestionLocked() *QuizQuestionResponse {
	q, ok := s.attempt.Current()
	if !ok {
		return nil
	}
	return &QuizQuestionResponse{
		AttemptID:        s.attempt.ID,
		Index:            len(s.attempt.Answers),
		Total:            len(s.attempt.Questions),
		Question:         q.Public(),
		TimeLimitSeconds: int(s.attempt.TimePerQuestion / time.Second),
	}
}

// handleQuizAnswer records one answer; timeouts arrive as selected = -1.
func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempt == nil {
		writeError(w, errNoQuiz)
		return
	}

	elapsed := s.now().Sub(s.askedAt)
	if req.ElapsedMS != nil {
		elapsed = time.Duration(*req.ElapsedMS) * time.Millisecond
	}
	fb, err := s.attempt.Answer(req.Selected, elapsed)
	if err != nil {
		writeError(w, err)
		return
	}
	s.askedAt = s.now()

	writeJSON(w, http.StatusOK, QuizAnswerResponse{Feedback: fb, Next: s.currentQuestionLocked()})
}

// handleQuizFinish scores the attempt and parks the bonus for the next season.
func (s *Server) handleQuizFinish(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attempt == nil {
		writeError(w, errNoQuiz)
		return
	}
	balance := s.cfg.Balance()
	res, err := s.attempt.Result(balance.StartingWater, balance.StartingMoney)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := store.SaveQuizBonus(r.Context(), s.store, res.Bonus); err != nil {
		writeError(w, err)
		return
	}
	s.attempt = nil
	s.metrics.QuizCompleted(res.Bonus)
	s.log.Info("quiz finished", "score", res.Score, "total", res.Total, "bonus", res.Bonus)

	writeJSON(w, http.StatusOK, res)
}

// --- Session lifecycle ---

// handleNewSession starts a season: load the dataset (falling back to
// synthetic data), build the session, then consume any pending quiz bonus.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.cfg.Balance()
	rng := s.newRand()

	// 1. Dataset
	loaded := dataset.Load(r.Context(), s.provider, dataset.NewSynthetic(rng), balance.MaxDays)
	if loaded.Synthetic {
		s.metrics.DatasetFallback()
		if s.provider != nil {
			s.log.Warn("dataset provider failed, using synthetic season", "error", loaded.Cause)
		}
	}

	// 2. Session
	session, err := game.NewSession(balance, loaded.Records, rng)
	if err != nil {
		writeError(w, err)
		return
	}

	// 3. Quiz bonus, consumed once
	resp := SessionResponse{Synthetic: loaded.Synthetic}
	bonus, ok, err := store.TakeQuizBonus(r.Context(), s.store)
	if err != nil {
		s.log.Error("quiz bonus unreadable, starting without it", "error", err)
	}
	if ok {
		if err := session.ApplyQuizAdjustment(bonus); err != nil {
			writeError(w, err)
			return
		}
		resp.QuizBonus = &bonus
	}

	s.session = session
	s.resultsSaved = false
	_ = s.saveLocked(r.Context(), "new")
	s.log.Info("season started", "session", session.ID, "synthetic", loaded.Synthetic, "quiz_bonus", bonus)

	resp.Overview = game.Describe(session)
	s.hub.Publish("session_started", resp.Overview)
	writeJSON(w, http.StatusCreated, resp)
}

// handleGetSession returns the dashboard view of the live session.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		writeError(w, errNoSession)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Overview: game.Describe(s.session)})
}

// handleLoadSession replaces the live session with the saved one.
func (s *Server) handleLoadSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.resumeLocked(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, fmt.Errorf("no saved game: %w", store.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Overview: game.Describe(s.session)})
}

// handleSaveSession is the explicit save button.
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		writeError(w, errNoSession)
		return
	}
	if s.session.Finished {
		s.finishLocked(r.Context(), game.ComputeResults(s.session))
	}
	if err := s.saveLocked(r.Context(), "manual"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": true, "day": s.session.CurrentDay})
}

// handleResults returns the final results. A live, unfinished session is a
// conflict; without a session the last stored results are returned.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		res, err := store.LoadResults(r.Context(), s.store)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}
	if !s.session.Finished {
		writeError(w, fmt.Errorf("season still running on day %d: %w", s.session.CurrentDay, game.ErrInvalidDayIndex))
		return
	}
	res := game.ComputeResults(s.session)
	// A failed write at the end of the season is retried here.
	s.finishLocked(r.Context(), res)
	writeJSON(w, http.StatusOK, res)
}

// --- Actions ---

// handleIrrigate spends water and money. Insufficient resources return 402.
func (s *Server) handleIrrigate(w http.ResponseWriter, r *http.Request) {
	var req IrrigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		writeError(w, errNoSession)
		return
	}
	res, err := s.session.Irrigate(req.Amount)
	if err != nil {
		s.metrics.Action(string(game.ActionIrrigate), "rejected")
		writeError(w, err)
		return
	}
	s.metrics.Action(string(game.ActionIrrigate), "ok")
	s.afterAction(r.Context())

	overview := game.Describe(s.session)
	s.hub.Publish("action", map[string]any{"type": game.ActionIrrigate, "result": res})
	writeJSON(w, http.StatusOK, ActionResponse{Result: res, Overview: overview})
}

// handleFertilize spends money; on dry soil the result is flagged reduced.
func (s *Server) handleFertilize(w http.ResponseWriter, r *http.Request) {
	var req FertilizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		writeError(w, errNoSession)
		return
	}
	res, err := s.session.Fertilize(req.Fertilizer)
	if err != nil {
		s.metrics.Action(string(game.ActionFertilize), "rejected")
		writeError(w, err)
		return
	}
	outcome := "ok"
	if res.Reduced {
		outcome = "reduced"
	}
	s.metrics.Action(string(game.ActionFertilize), outcome)
	s.afterAction(r.Context())

	s.hub.Publish("action", map[string]any{"type": game.ActionFertilize, "result": res})
	writeJSON(w, http.StatusOK, ActionResponse{Result: res, Overview: game.Describe(s.session)})
}

// handleObserve awards points and returns a random insight.
func (s *Server) handleObserve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		writeError(w, errNoSession)
		return
	}
	insight, err := s.session.Observe()
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.Action(string(game.ActionObserve), "ok")
	s.afterAction(r.Context())

	s.hub.Publish("action", map[string]any{"type": game.ActionObserve, "insight": insight})
	writeJSON(w, http.StatusOK, ActionResponse{
		Result:   map[string]int{"points": s.session.Resources.Points},
		Insight:  insight,
		Overview: game.Describe(s.session),
	})
}

// handleView counts a data tab visit. It is not an action and never autosaves.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		writeError(w, errNoSession)
		return
	}
	if err := s.session.ViewSource(req.Source); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Stats)
}

// handleNextDay advances the calendar, or ends the season on the last day.
func (s *Server) handleNextDay(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		writeError(w, errNoSession)
		return
	}
	report, results, err := s.session.NextDay()
	if err != nil {
		writeError(w, err)
		return
	}

	if results != nil {
		s.finishLocked(r.Context(), *results)
	} else {
		s.metrics.DayAdvanced()
		s.hub.Publish("day_advanced", report)
	}
	writeJSON(w, http.StatusOK, NextDayResponse{Report: report, Results: results, Overview: game.Describe(s.session)})
}
