// Package relay собирает HTTP-сервер недоверенного store-and-forward relay.
// Relay маршрутизирует зашифрованные сообщения между устройствами кластера,
// не имея доступа ни к ключу кластера, ни к содержимому.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/finkeeper/internal/relay/handlers"
	"github.com/iudanet/finkeeper/internal/relay/middleware"
	"github.com/iudanet/finkeeper/internal/relay/storage"
)

// Config конфигурация relay-сервера
type Config struct {
	Addr       string
	Version    string
	JWTSecret  []byte
	TokenTTL   time.Duration
	RateLimit  int           // запросов на ключ за окно
	RateWindow time.Duration // окно rate limiter
}

// Server представляет relay HTTP-сервер
type Server struct {
	httpServer *http.Server
	limiter    *middleware.RateLimiter
	logger     *slog.Logger
}

// NewServer собирает сервер: маршруты, middleware, handlers
func NewServer(cfg Config, logger *slog.Logger, devices storage.DeviceStorage, messages storage.MessageStorage) *Server {
	jwtConfig := handlers.JWTConfig{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL,
	}

	registerHandler := handlers.NewRegisterHandler(logger, devices, jwtConfig)
	messageHandler := handlers.NewMessageHandler(logger, devices, messages)
	healthHandler := handlers.NewHealthHandler(logger, cfg.Version)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)

	auth := middleware.AuthMiddleware(logger, jwtConfig, devices)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)
	mux.HandleFunc("POST /api/v1/register", registerHandler.Register)
	mux.Handle("POST /api/v1/messages/push", auth(http.HandlerFunc(messageHandler.Push)))
	mux.Handle("GET /api/v1/messages/pull", auth(http.HandlerFunc(messageHandler.Pull)))
	mux.Handle("POST /api/v1/heartbeat", auth(http.HandlerFunc(messageHandler.Heartbeat)))

	// Порядок: recovery снаружи, затем логирование, затем rate limit
	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(limiter, logger)(handler)
	handler = middleware.LoggingMiddleware(logger)(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// Handler возвращает корневой http.Handler (используется в тестах)
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe запускает сервер и блокируется до его остановки
func (s *Server) ListenAndServe() error {
	s.logger.Info("relay server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("relay server failed: %w", err)
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("relay server shutdown failed: %w", err)
	}
	return nil
}
