package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nkiryanov/chatapi/internal/db"
	"github.com/nkiryanov/chatapi/internal/handlers"
	"github.com/nkiryanov/chatapi/internal/logger"
	"github.com/nkiryanov/chatapi/internal/repository/postgres"
	"github.com/nkiryanov/chatapi/internal/service/auth"
	"github.com/nkiryanov/chatapi/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/chatapi/internal/service/message"
	"github.com/nkiryanov/chatapi/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Logger     logger.Logger

	pool    *pgxpool.Pool
	closers []io.Closer
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	app := &ServerApp{
		ListenAddr: c.ListenAddr,
		Logger:     l,
	}

	// Message requests go to the main log unless separate file is set
	opts := []handlers.Option{}
	if c.LogFile != "" {
		fileLogger, closer, err := logger.NewFileLogger(c.LogFile, c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("error while opening log file: %w", err)
		}
		app.closers = append(app.closers, closer)
		opts = append(opts, handlers.WithMessageLog(fileLogger))
	}

	hasher, err := auth.NewHasher(c.PasswordHash)
	if err != nil {
		app.Close()
		return nil, err
	}

	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey, AccessTTL: c.TokenTTL})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	app.pool = pool

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	userService := user.NewService(hasher, storage.User())
	messageService := message.NewService(storage.Message())
	authService, err := auth.NewService(hasher, tokenManager, storage.User())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opts = append(opts, handlers.WithMetrics(reg))

	app.Handler, err = handlers.NewRouter(userService, messageService, authService, l, opts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error while creating router. Err: %w", err)
	}

	return app, nil
}

// Close releases db pool and log files
func (s *ServerApp) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	for _, c := range s.closers {
		_ = c.Close()
	}
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.Logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.Logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.Logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
