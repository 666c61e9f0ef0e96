package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	httpClient "github.com/iudanet/finkeeper/internal/client/api"
	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/models"
)

//go:generate go tool moq -out service_mock.go . Service

// Константы протокола синхронизации
const (
	// HeartbeatEvery каждый N-й успешный tick сопровождается heartbeat
	HeartbeatEvery = 10
	// ClockDriftTolerance максимально допустимое опережение updated_at
	ClockDriftTolerance = 5 * time.Minute
)

// Reason причина досрочного завершения tick без ошибки
const (
	ReasonRateLimited   = "rate_limited"
	ReasonOffline       = "offline"
	ReasonNotConfigured = "not_configured"
	ReasonBusy          = "busy"
	ReasonError         = "error"
)

// Service определяет интерфейс движка синхронизации
type Service interface {
	// Tick выполняет один цикл push+pull(+heartbeat)
	Tick(ctx context.Context) (*TickResult, error)

	// RequestInitialSync выполняет полную репликацию состояния с мастера
	RequestInitialSync(ctx context.Context) error

	// PendingCount возвращает количество мутаций, ожидающих подтверждения
	PendingCount(ctx context.Context) (int, error)

	// ClearRateLimit вручную снимает cooldown до его истечения
	ClearRateLimit()

	// Stop отменяет запланированный retry-tick
	Stop()

	// OnDataChanged регистрирует подписчика изменений записей
	OnDataChanged(fn func(DataChange))

	// OnBootstrapProgress регистрирует подписчика прогресса bootstrap
	OnBootstrapProgress(fn func(BootstrapProgress))

	// OnRateLimited регистрирует подписчика событий rate limit
	OnRateLimited(fn func(RateLimitEvent))
}

// Cipher шифрует и дешифрует JSON-конверты сообщений
type Cipher interface {
	EncryptJSON(v any) (string, error)
	DecryptJSON(ciphertext string, v any) error
}

// TickResult результат одного цикла синхронизации
type TickResult struct {
	Reason        string
	Duration      time.Duration
	RecordsPushed int
	RecordsPulled int
	Conflicts     int
	Success       bool
}

// Deps collaborators движка. Движок конструируется явно и получает
// все зависимости снаружи - никаких глобальных синглтонов.
type Deps struct {
	Transport httpClient.Transport
	Records   storage.RecordStore
	Queue     storage.QueueStorage
	Config    storage.ConfigStorage
	Log       storage.SyncLogStorage
	Cipher    Cipher
	Logger    *slog.Logger

	// Clock по умолчанию системные часы
	Clock Clock
	// Online по умолчанию всегда true
	Online func() bool
	// SideEffects по умолчанию [NewBalanceSideEffect(Records)]
	SideEffects []SideEffect
	// Rand источник jitter, по умолчанию глобальный seed
	Rand *rand.Rand
}

// service реализует движок синхронизации
type service struct {
	transport   httpClient.Transport
	records     storage.RecordStore
	queue       storage.QueueStorage
	config      storage.ConfigStorage
	syncLog     storage.SyncLogStorage
	cipher      Cipher
	clock       Clock
	online      func() bool
	logger      *slog.Logger
	rng         *rand.Rand
	sideEffects []SideEffect

	notifier

	// busy сериализует tick и bootstrap: перекрывающиеся вызовы
	// завершаются сразу, не дожидаясь чужого сетевого I/O
	busy stdsync.Mutex

	// защищает state, successfulTicks и cancelRetry
	mu              stdsync.Mutex
	state           syncState
	cancelRetry     func()
	successfulTicks int
}

// NewService создает движок синхронизации
func NewService(deps Deps) Service {
	s := &service{
		transport:   deps.Transport,
		records:     deps.Records,
		queue:       deps.Queue,
		config:      deps.Config,
		syncLog:     deps.Log,
		cipher:      deps.Cipher,
		clock:       deps.Clock,
		online:      deps.Online,
		logger:      deps.Logger,
		rng:         deps.Rand,
		sideEffects: deps.SideEffects,
		state:       idleState(),
	}

	if s.clock == nil {
		s.clock = NewSystemClock()
	}
	if s.online == nil {
		s.online = func() bool { return true }
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.sideEffects == nil {
		s.sideEffects = []SideEffect{NewBalanceSideEffect(deps.Records)}
	}

	return s
}

// Tick выполняет один цикл синхронизации:
// RateLimitCheck -> ConnectivityCheck -> ConfigCheck -> Push -> Pull ->
// (каждый 10-й успешный tick) Heartbeat -> Log.
// Любой сбой уходит в классификацию ошибок и планирование повтора.
func (s *service) Tick(ctx context.Context) (*TickResult, error) {
	// Tick не реентерабелен: параллельный вызов возвращается сразу
	if !s.busy.TryLock() {
		return &TickResult{Success: false, Reason: ReasonBusy}, nil
	}
	defer s.busy.Unlock()

	start := s.clock.Now()

	// Во время cooldown никакого сетевого I/O
	s.mu.Lock()
	if s.state.rateLimitActive(start) {
		s.mu.Unlock()
		return &TickResult{Success: false, Reason: ReasonRateLimited}, nil
	}
	if s.state.mode == modeRateLimited {
		// Cooldown истек
		s.state = idleState()
	}
	s.mu.Unlock()

	if !s.online() {
		return &TickResult{Success: false, Reason: ReasonOffline}, nil
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		s.logger.Warn("Sync tick aborted: device is not configured", "error", err)
		return &TickResult{Success: false, Reason: ReasonNotConfigured}, nil
	}

	result := &TickResult{}

	pushed, err := s.push(ctx, cfg)
	result.RecordsPushed = pushed
	if err != nil {
		return s.handleFailure(ctx, start, result, err)
	}

	pulled, conflicts, err := s.pull(ctx, cfg)
	result.RecordsPulled = pulled
	result.Conflicts = conflicts
	if err != nil {
		return s.handleFailure(ctx, start, result, err)
	}

	s.mu.Lock()
	s.state = idleState()
	s.successfulTicks++
	ticks := s.successfulTicks
	s.mu.Unlock()

	// Heartbeat каждый десятый успешный tick; его сбой не фатален
	if ticks%HeartbeatEvery == 0 {
		if _, err := s.transport.Heartbeat(ctx); err != nil {
			s.logger.Warn("Heartbeat failed", "error", err)
		}
	}

	result.Success = true
	result.Duration = s.clock.Now().Sub(start)

	s.appendLog(ctx, &models.SyncLogEntry{
		ID:          uuid.New().String(),
		Type:        models.SyncLogSuccess,
		Duration:    result.Duration,
		ItemsPushed: result.RecordsPushed,
		ItemsPulled: result.RecordsPulled,
		Conflicts:   result.Conflicts,
		Timestamp:   s.clock.Now(),
	})

	s.logger.Info("Sync tick completed",
		"pushed", result.RecordsPushed,
		"pulled", result.RecordsPulled,
		"conflicts", result.Conflicts,
		"duration", result.Duration)

	return result, nil
}

// loadConfig читает конфигурацию и проверяет ее полноту
func (s *service) loadConfig(ctx context.Context) (*models.SyncConfig, error) {
	cfg, err := s.config.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrConfigNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("failed to load sync config: %w", err)
	}
	if !cfg.IsComplete() || s.cipher == nil {
		return nil, ErrNotConfigured
	}
	return cfg, nil
}

// handleFailure классифицирует ошибку tick и планирует повтор
func (s *service) handleFailure(ctx context.Context, start time.Time, result *TickResult, tickErr error) (*TickResult, error) {
	result.Success = false
	result.Reason = ReasonError
	result.Duration = s.clock.Now().Sub(start)

	s.appendLog(ctx, &models.SyncLogEntry{
		ID:          uuid.New().String(),
		Type:        models.SyncLogError,
		Error:       tickErr.Error(),
		Duration:    result.Duration,
		ItemsPushed: result.RecordsPushed,
		ItemsPulled: result.RecordsPulled,
		Conflicts:   result.Conflicts,
		Timestamp:   s.clock.Now(),
	})

	var transportErr *httpClient.TransportError
	if errors.As(tickErr, &transportErr) {
		switch {
		case transportErr.IsRateLimited():
			// Cooldown от сервера: никаких автоматических повторов
			until := s.clock.Now().Add(transportErr.RetryAfter)
			s.mu.Lock()
			s.state = rateLimited(until)
			s.mu.Unlock()

			s.logger.Warn("Rate limited by relay", "until", until)
			s.emitRateLimited(RateLimitEvent{Until: until})

			return result, tickErr
		case !transportErr.IsRetryable():
			// Логическая ошибка 4xx: повтор бессмыслен
			s.mu.Lock()
			s.state = idleState()
			s.mu.Unlock()

			s.logger.Error("Non-retryable transport error", "status", transportErr.StatusCode, "error", transportErr)

			return result, tickErr
		}
	}

	// Сетевая ошибка или 5xx: планируем один повтор с экспоненциальной задержкой
	s.mu.Lock()
	s.state = s.state.nextBackoff()
	attempt := s.state.attempt
	delay := backoffDelay(attempt, s.rng)

	if s.cancelRetry != nil {
		s.cancelRetry()
	}
	s.cancelRetry = s.clock.AfterFunc(delay, func() {
		if _, err := s.Tick(context.Background()); err != nil {
			s.logger.Warn("Scheduled retry tick failed", "error", err)
		}
	})
	s.mu.Unlock()

	s.logger.Warn("Sync tick failed, retry scheduled",
		"attempt", attempt,
		"delay", delay,
		"error", tickErr)

	return result, tickErr
}

// appendLog пишет запись журнала; ошибки журнала никогда не распространяются
func (s *service) appendLog(ctx context.Context, entry *models.SyncLogEntry) {
	if err := s.syncLog.AppendLog(ctx, entry); err != nil {
		s.logger.Warn("Failed to append sync log entry", "error", err)
	}
}

// PendingCount возвращает количество мутаций, ожидающих подтверждения
func (s *service) PendingCount(ctx context.Context) (int, error) {
	count, err := s.queue.QueueSize(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get queue size: %w", err)
	}
	return count, nil
}

// ClearRateLimit вручную снимает cooldown
func (s *service) ClearRateLimit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.mode == modeRateLimited {
		s.state = idleState()
	}
}

// Stop отменяет запланированный retry-tick
func (s *service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelRetry != nil {
		s.cancelRetry()
		s.cancelRetry = nil
	}
}
