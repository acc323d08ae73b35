// Package server exposes interview sessions over HTTP and a websocket feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"

	"github.com/rbright/mockview/internal/metrics"
	"github.com/rbright/mockview/internal/questionbank"
	"github.com/rbright/mockview/internal/session"
	"github.com/rbright/mockview/internal/speaker"
)

const (
	defaultSessionTTL      = 24 * time.Hour
	defaultCleanupInterval = time.Hour
	shutdownTimeout        = 5 * time.Second
	maxVoiceBody           = 2 << 20
)

// CaptureFunc records one utterance on the host and returns 16 kHz PCM.
type CaptureFunc func(ctx context.Context) ([]byte, error)

// Config holds the server's collaborators and limits.
type Config struct {
	Addr            string
	AllowedOrigins  []string
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	VoiceTimeout    time.Duration

	Bank       *questionbank.Bank
	Recognizer session.Recognizer
	Speaker    session.Speaker
	Cues       *speaker.Cues
	Capture    CaptureFunc
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	// Now overrides the clock for session expiry.
	Now func() time.Time
}

// Server serves the single-page shell and the session API.
type Server struct {
	cfg      Config
	bank     atomic.Pointer[questionbank.Bank]
	sessions *registry
	hub      *hub
	upgrader websocket.Upgrader
	handler  http.Handler
	logger   *slog.Logger
}

// New creates a server from cfg, filling defaults for unset fields.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Bank == nil {
		cfg.Bank = questionbank.Default()
	}
	if cfg.Recognizer == nil {
		cfg.Recognizer = session.UnavailableRecognizer{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewMetrics()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}
	if cfg.VoiceTimeout <= 0 {
		cfg.VoiceTimeout = session.DefaultVoiceTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		cfg:      cfg,
		sessions: newRegistry(cfg.Now),
		hub:      newHub(cfg.Logger),
		logger:   cfg.Logger,
	}
	s.bank.Store(cfg.Bank)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.handler = s.buildHandler()
	return s
}

// Handler returns the full handler chain. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Bank returns the bank used for new selections.
func (s *Server) Bank() *questionbank.Bank {
	return s.bank.Load()
}

// SetBank swaps the bank for later selections. Live sessions keep their questions.
func (s *Server) SetBank(bank *questionbank.Bank) {
	if bank == nil {
		return
	}
	s.bank.Store(bank)
	s.logger.Info("question bank swapped", "roles", len(bank.Roles()), "questions", bank.Total())
}

func (s *Server) buildHandler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"), "")
	})

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	api.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	sess := api.PathPrefix("/session").Subrouter()
	sess.HandleFunc("", s.handleView).Methods(http.MethodGet)
	sess.HandleFunc("/select", s.handleSelect).Methods(http.MethodPost)
	sess.HandleFunc("/answer", s.handleAnswer).Methods(http.MethodPost)
	sess.HandleFunc("/retry", s.handleRetry).Methods(http.MethodPost)
	sess.HandleFunc("/voice", s.handleVoice).Methods(http.MethodPost)
	sess.HandleFunc("/play", s.handlePlay).Methods(http.MethodPost)
	sess.HandleFunc("/report.json", s.handleReportJSON).Methods(http.MethodGet)
	sess.HandleFunc("/report.pdf", s.handleReportPDF).Methods(http.MethodGet)
	sess.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)

	compressed := gzhttp.GzipHandler(router)
	chain := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The gzip writer cannot be hijacked.
		if websocket.IsWebSocketUpgrade(r) {
			router.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})

	return cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(chain)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.hub.closeAll()
		errCh <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", "addr", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// RunJanitor expires idle sessions every cleanup interval until ctx ends.
func (s *Server) RunJanitor(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.expireSessions()
		}
	}
}

func (s *Server) expireSessions() int {
	expired := s.sessions.sweep(s.cfg.SessionTTL)
	for _, id := range expired {
		s.hub.drop(id)
	}
	if len(expired) > 0 {
		s.logger.Info("sessions expired", "count", len(expired), "active", s.sessions.len())
	}
	return len(expired)
}
