// Package webhook exposes the dialog engine and the summary job callback over
// HTTP.
package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	summarizex "github.com/tanpawarit/voice-diary/agent/summarize"
	qstashx "github.com/tanpawarit/voice-diary/pkg/qstash"
)

type Config struct {
	Addr            string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" split_words:"true" default:"65536"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"5s"`
}

// TurnHandler answers one raw webhook payload.
type TurnHandler interface {
	HandleTurn(ctx context.Context, body []byte) ([]byte, error)
}

// Verifier checks the signature of a job callback.
type Verifier interface {
	Verify(signature string, body []byte) error
}

type Option func(*Server)

// WithJobs enables POST /jobs/summarize. Every callback must carry a valid
// signature.
func WithJobs(p summarizex.Processor, v Verifier) Option {
	return func(s *Server) {
		s.jobs = p
		s.verifier = v
	}
}

func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithHealthCheck makes GET /healthz report check's failure.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) {
		s.health = check
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

type Server struct {
	turns    TurnHandler
	jobs     summarizex.Processor
	verifier Verifier
	gatherer prometheus.Gatherer
	health   func(context.Context) error
	maxBody  int64
	logger   zerolog.Logger
}

// NewHandler builds the router.
func NewHandler(turns TurnHandler, opts ...Option) http.Handler {
	s := &Server{
		turns:   turns,
		maxBody: 64 << 10,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Post("/", s.handleTurn)
	r.Get("/healthz", s.handleHealth)
	if s.jobs != nil && s.verifier != nil {
		r.Post("/jobs/summarize", s.handleSummaryJob)
	}
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	out, err := s.turns.HandleTurn(r.Context(), body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, contractx.ErrProtocolViolation) {
			status = http.StatusBadRequest
		}
		zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("turn rejected")
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(out); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("write turn response")
	}
}

func (s *Server) handleSummaryJob(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	logger := zerolog.Ctx(r.Context())

	if err := s.verifier.Verify(r.Header.Get(qstashx.SignatureHeader), body); err != nil {
		logger.Warn().Err(err).Msg("job callback signature rejected")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	job, err := summarizex.DecodeJob(body)
	if err != nil {
		logger.Warn().Err(err).Msg("job callback body rejected")
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := s.jobs.Process(r.Context(), job); err != nil {
		// A non-2xx answer makes the queue retry the delivery.
		status := http.StatusInternalServerError
		if errors.Is(err, contractx.ErrProtocolViolation) {
			status = http.StatusBadRequest
		}
		logger.Error().Err(err).Str("title", job.Title).Msg("summary job failed")
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// readBody reads at most maxBody bytes, answering 413 past the limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}
	return body, true
}
