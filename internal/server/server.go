package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/movingmnist/internal/core/dataset"
	"github.com/zeusync/movingmnist/internal/core/env"
	"github.com/zeusync/movingmnist/internal/core/errs"
	"github.com/zeusync/movingmnist/internal/core/observability/log"
)

var (
	ErrServerAlreadyRunning = errors.New("server already running")
	ErrServerNotRunning     = errors.New("server not running")
)

// Config holds server configuration
type Config struct {
	Addr string `yaml:"addr"`
	// MaxBatches caps the batches sent per connection; 0 streams until the client leaves.
	MaxBatches   int           `yaml:"max_batches"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:8080",
		WriteTimeout: 10 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errs.New(errs.ErrInvalidConfiguration, "server.addr is required")
	}
	if c.MaxBatches < 0 {
		return errs.New(errs.ErrInvalidConfiguration, "server.max_batches must not be negative").
			WithContext("max_batches", c.MaxBatches)
	}
	if c.WriteTimeout < 0 {
		return errs.New(errs.ErrInvalidConfiguration, "server.write_timeout must not be negative")
	}
	return nil
}

// Server streams batches over websocket. Every connection gets its own
// generator over the shared environment.
type Server struct {
	env      *env.Env
	data     dataset.Config
	config   Config
	logger   log.Log
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener

	baseCtx context.Context
	cancel  context.CancelFunc

	running     int32 // atomic bool
	connections int64 // atomic
}

func NewServer(e *env.Env, data dataset.Config, config Config, logger log.Log) *Server {
	if logger == nil {
		logger = log.Provide()
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		env:    e,
		data:   data,
		config: config,
		logger: logger.With(log.String("component", "server")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
		baseCtx: ctx,
		cancel:  cancel,
	}

	s.logger.Info("Server created",
		log.String("addr", config.Addr),
		log.Int("max_batches", config.MaxBatches))

	return s
}

// Handler exposes /batches and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/batches", s.handleBatches)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start listens on Config.Addr and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.config.Addr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server stopped unexpectedly", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Stop ends open streams and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server", log.Int64("connections", atomic.LoadInt64(&s.connections)))
	s.cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	cfg := s.data
	query := r.URL.Query()
	if v := query.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		cfg.Seed = seed
	}
	limit := s.config.MaxBatches
	if v := query.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid max", http.StatusBadRequest)
			return
		}
		if limit == 0 || n < limit {
			limit = n
		}
	}

	gen, err := dataset.NewGenerator(s.env, cfg, dataset.WithLogger(s.logger))
	if err != nil {
		s.logger.Error("Failed to create generator", log.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	atomic.AddInt64(&s.connections, 1)
	defer atomic.AddInt64(&s.connections, -1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(s.baseCtx, cancel)
	defer stop()

	go discardIncoming(conn, cancel)

	logger := s.logger.With(
		log.String("remote", conn.RemoteAddr().String()),
		log.String("run_id", gen.RunID()),
	)
	logger.Info("Client connected", log.Uint64("seed", cfg.Seed), log.Int("max", limit))

	for sent := 0; limit == 0 || sent < limit; sent++ {
		batch, err := gen.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("Batch generation failed", log.Error(err))
				s.closeWith(conn, websocket.CloseInternalServerErr, "generation failed")
			}
			return
		}
		data, err := batch.Serialize()
		if err != nil {
			logger.Error("Batch encoding failed", log.Error(err))
			s.closeWith(conn, websocket.CloseInternalServerErr, "encoding failed")
			return
		}
		if s.config.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			logger.Debug("Client went away", log.Int("sent", sent), log.Error(err))
			return
		}
	}

	logger.Info("Stream complete", log.Int("sent", limit))
	s.closeWith(conn, websocket.CloseNormalClosure, "done")
}

func (s *Server) closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// discardIncoming drains client frames so control messages are processed, and
// cancels the stream once the client disconnects.
func discardIncoming(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
