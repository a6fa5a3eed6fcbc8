// Package metrics exposes Prometheus counters for the game server.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so several servers can coexist in one test binary.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	actions           *prometheus.CounterVec
	daysAdvanced      prometheus.Counter
	gamesFinished     *prometheus.CounterVec
	saves             *prometheus.CounterVec
	datasetFallbacks  prometheus.Counter
	quizzes           *prometheus.CounterVec
	wsClients         prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farm_actions_total",
			Help: "Player actions by type and outcome (ok, reduced, rejected).",
		}, []string{"action", "outcome"}),
		daysAdvanced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farm_days_advanced_total",
			Help: "Simulated days advanced across all sessions.",
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farm_games_finished_total",
			Help: "Finished seasons by star rating.",
		}, []string{"stars"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farm_saves_total",
			Help: "Session snapshots written by trigger.",
		}, []string{"trigger"}),
		datasetFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "farm_dataset_fallbacks_total",
			Help: "Seasons started on synthetic data because the provider failed.",
		}),
		quizzes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "farm_quizzes_completed_total",
			Help: "Completed quizzes by resulting bonus percent.",
		}, []string{"bonus"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "farm_ws_clients",
			Help: "Connected websocket clients.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.actions,
		m.daysAdvanced,
		m.gamesFinished,
		m.saves,
		m.datasetFallbacks,
		m.quizzes,
		m.wsClients,
	)
	return m
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Hijack lets websocket upgrades pass through the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Middleware records count and latency per mux route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Action(action, outcome string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) DayAdvanced() {
	if m == nil {
		return
	}
	m.daysAdvanced.Inc()
}

func (m *Metrics) GameFinished(stars int) {
	if m == nil {
		return
	}
	m.gamesFinished.WithLabelValues(strconv.Itoa(stars)).Inc()
}

func (m *Metrics) Saved(trigger string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(trigger).Inc()
}

func (m *Metrics) DatasetFallback() {
	if m == nil {
		return
	}
	m.datasetFallbacks.Inc()
}

func (m *Metrics) QuizCompleted(bonus int) {
	if m == nil {
		return
	}
	m.quizzes.WithLabelValues(strconv.Itoa(bonus)).Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}
