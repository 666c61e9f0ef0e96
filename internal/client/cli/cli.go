package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	httpClient "github.com/iudanet/finkeeper/internal/client/api"
	"github.com/iudanet/finkeeper/internal/client/data"
	"github.com/iudanet/finkeeper/internal/client/iocli"
	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/client/sync"
	"github.com/iudanet/finkeeper/internal/crypto"
	"github.com/iudanet/finkeeper/internal/models"
)

// Cli связывает команды с локальным хранилищем и relay-сервером.
// Транспорт и движок синхронизации создаются лениво: до pairing
// у устройства нет ни токена, ни ключа кластера.
type Cli struct {
	io      iocli.IO
	records storage.RecordStore
	queue   storage.QueueStorage
	config  storage.ConfigStorage
	syncLog storage.SyncLogStorage
	data    data.Service
	apiURL  string
	logger  *slog.Logger

	// newSyncService подменяется в тестах
	newSyncService func(cfg *models.SyncConfig) (sync.Service, error)
}

// Deps зависимости команд
type Deps struct {
	IO      iocli.IO
	Records storage.RecordStore
	Queue   storage.QueueStorage
	Config  storage.ConfigStorage
	SyncLog storage.SyncLogStorage
	APIURL  string
	Logger  *slog.Logger
}

// New создает CLI поверх локального хранилища
func New(deps Deps) *Cli {
	c := &Cli{
		io:      deps.IO,
		records: deps.Records,
		queue:   deps.Queue,
		config:  deps.Config,
		syncLog: deps.SyncLog,
		data:    data.NewService(deps.Records, deps.Queue),
		apiURL:  deps.APIURL,
		logger:  deps.Logger,
	}

	if c.io == nil {
		c.io = iocli.NewStdio()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c.newSyncService = c.buildSyncService

	return c
}

// loadConfig читает конфигурацию устройства, прошедшего pairing
func (c *Cli) loadConfig(ctx context.Context) (*models.SyncConfig, error) {
	cfg, err := c.config.GetConfig(ctx)
	if err != nil {
		if err == storage.ErrConfigNotFound {
			return nil, fmt.Errorf("device is not paired. Run 'finkeeper pair' first")
		}
		return nil, fmt.Errorf("failed to load device config: %w", err)
	}
	if !cfg.IsComplete() {
		return nil, fmt.Errorf("device config is incomplete. Run 'finkeeper pair' again")
	}
	return cfg, nil
}

// buildSyncService собирает движок синхронизации из конфигурации устройства
func (c *Cli) buildSyncService(cfg *models.SyncConfig) (sync.Service, error) {
	cipher, err := crypto.NewCipherFromBase64(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to init cluster cipher: %w", err)
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = c.apiURL
	}

	transport := httpClient.NewClient(apiURL, cfg.DeviceID, cfg.DeviceToken)

	return sync.NewService(sync.Deps{
		Transport: transport,
		Records:   c.records,
		Queue:     c.queue,
		Config:    c.config,
		Log:       c.syncLog,
		Cipher:    cipher,
		Logger:    c.logger,
	}), nil
}

// PrintUsage выводит справку по командам
func PrintUsage() {
	fmt.Println("FinKeeper Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  finkeeper [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version                    Show version information")
	fmt.Println("  --server URL                 Relay server URL")
	fmt.Println("  --db PATH                    Path to local database")
	fmt.Println()
	fmt.Println("Pairing:")
	fmt.Println("  pair master                  Register this device as cluster master")
	fmt.Println("  pair slave                   Join an existing cluster as slave")
	fmt.Println()
	fmt.Println("Synchronization:")
	fmt.Println("  sync                         Run one sync cycle")
	fmt.Println("  run [-interval SECONDS]      Sync periodically until interrupted")
	fmt.Println("  bootstrap                    Replicate full state from master")
	fmt.Println("  status                       Show pairing and sync status")
	fmt.Println("  log [-n COUNT]               Show recent sync log entries")
	fmt.Println()
	fmt.Println("Data:")
	fmt.Println("  account add|list|delete      Manage accounts")
	fmt.Println("  category add|list|delete     Manage categories")
	fmt.Println("  recurring add|list|delete    Manage recurring operations")
	fmt.Println("  movement add|list|delete     Manage movements")
}

// Run выполняет команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "pair":
		return c.runPair(ctx, args)
	case "status":
		return c.runStatus(ctx)
	case "sync":
		return c.runSync(ctx)
	case "run":
		return c.runPeriodic(ctx, args)
	case "bootstrap":
		return c.runBootstrap(ctx)
	case "log":
		return c.runLog(ctx, args)
	case "account":
		return c.runAccount(ctx, args)
	case "category":
		return c.runCategory(ctx, args)
	case "recurring":
		return c.runRecurring(ctx, args)
	case "movement":
		return c.runMovement(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}
