package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-file-relay/internal/config"
	"telegram-file-relay/internal/infra/api"
)

// Server is the liveness listener. It shares nothing with the bot besides
// process lifetime, so it keeps answering while Telegram is unreachable.
type Server struct {
	cfg       config.HealthConfig
	log       *zerolog.Logger
	startedAt time.Time
	now       func() time.Time
	server    *http.Server
}

func NewServer(cfg config.HealthConfig, startedAt time.Time, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		log:       logger,
		startedAt: startedAt,
		now:       time.Now,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	return s
}

// Handler answers GET /, /health and /ping; everything else is 404.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(api.TraceID(), api.RequestLog(s.log), api.Recover(s.log), api.Timeout(5*time.Second))

	r.Get("/", s.handleHealth)
	r.Get("/health", s.handleHealth)
	r.Get("/ping", s.handlePing)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

// Start blocks until the listener stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("health listener started")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	now := s.now()

	var b strings.Builder
	b.WriteString("OK\n")
	fmt.Fprintf(&b, "Service: %s\n", s.cfg.Service)
	b.WriteString("Status: Active\n")
	fmt.Fprintf(&b, "Uptime: %s\n", now.Sub(s.startedAt).Truncate(time.Second))
	fmt.Fprintf(&b, "Memory: %.1f MB\n", float64(mem.Sys)/1024/1024)
	fmt.Fprintf(&b, "Goroutines: %d\n", runtime.NumGoroutine())
	fmt.Fprintf(&b, "Time: %s", now.Format("2006-01-02 15:04:05"))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("PONG"))
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not Found"))
}
