package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finkeeper/internal/client/iocli"
	"github.com/iudanet/finkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/finkeeper/internal/client/sync"
	"github.com/iudanet/finkeeper/internal/models"
)

// testCli собирает CLI поверх реального bbolt-хранилища,
// буферизованного терминала и замоканного движка синхронизации
type testCli struct {
	cli    *Cli
	store  *boltdb.Storage
	io     *iocli.IOMock
	engine *sync.ServiceMock
	output *strings.Builder
	inputs []string
}

func newTestCli(t *testing.T) *testCli {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tc := &testCli{store: store, output: &strings.Builder{}}

	tc.io = &iocli.IOMock{
		PrintlnFunc: func(a ...any) {
			fmt.Fprintln(tc.output, a...)
		},
		PrintfFunc: func(format string, a ...any) {
			fmt.Fprintf(tc.output, format, a...)
		},
		ReadInputFunc: func(prompt string) (string, error) {
			return tc.nextInput(), nil
		},
		ReadPasswordFunc: func(prompt string) (string, error) {
			return tc.nextInput(), nil
		},
	}

	tc.engine = &sync.ServiceMock{
		TickFunc: func(ctx context.Context) (*sync.TickResult, error) {
			return &sync.TickResult{Success: true, Duration: time.Second}, nil
		},
		RequestInitialSyncFunc: func(ctx context.Context) error { return nil },
		OnDataChangedFunc:      func(fn func(sync.DataChange)) {},
		OnBootstrapProgressFunc: func(fn func(sync.BootstrapProgress)) {
		},
		OnRateLimitedFunc: func(fn func(sync.RateLimitEvent)) {},
		StopFunc:          func() {},
	}

	tc.cli = New(Deps{
		IO:      tc.io,
		Records: store,
		Queue:   store,
		Config:  store,
		SyncLog: store,
		APIURL:  "http://relay.local",
	})
	tc.cli.newSyncService = func(cfg *models.SyncConfig) (sync.Service, error) {
		return tc.engine, nil
	}

	return tc
}

func (tc *testCli) nextInput() string {
	if len(tc.inputs) == 0 {
		return ""
	}
	next := tc.inputs[0]
	tc.inputs = tc.inputs[1:]
	return next
}

func (tc *testCli) pair(t *testing.T, cfg *models.SyncConfig) {
	t.Helper()
	require.NoError(t, tc.store.SaveConfig(context.Background(), cfg))
}

func pairedConfig(role models.DeviceRole) *models.SyncConfig {
	cfg := &models.SyncConfig{
		DeviceID:      "dev-1",
		DeviceToken:   "token",
		Role:          role,
		EncryptionKey: "a2V5",
		APIURL:        "http://relay.local",
		SchemaVersion: models.SchemaVersion,
	}
	if role == models.RoleSlave {
		cfg.MasterID = "master-1"
	}
	return cfg
}

func TestRunUnknownCommand(t *testing.T) {
	tc := newTestCli(t)

	err := tc.cli.Run(context.Background(), "frobnicate", nil)

	assert.Error(t, err)
}

func TestStatusNotPaired(t *testing.T) {
	tc := newTestCli(t)

	require.NoError(t, tc.cli.Run(context.Background(), "status", nil))

	assert.Contains(t, tc.output.String(), "Not paired")
}

func TestStatusPairedWithPending(t *testing.T) {
	tc := newTestCli(t)
	ctx := context.Background()

	tc.pair(t, pairedConfig(models.RoleSlave))
	require.NoError(t, tc.store.Enqueue(ctx, &models.QueueEntry{
		ID:        "sync-1",
		StoreName: models.CollectionMovements,
		RecordID:  "m1",
		Operation: models.OperationCreate,
	}))

	require.NoError(t, tc.cli.Run(ctx, "status", nil))

	out := tc.output.String()
	assert.Contains(t, out, "Paired")
	assert.Contains(t, out, "slave")
	assert.Contains(t, out, "master-1")
	assert.Contains(t, out, "Pending sync: 1")
}

func TestSyncRequiresPairing(t *testing.T) {
	tc := newTestCli(t)

	err := tc.cli.Run(context.Background(), "sync", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not paired")
}

func TestSyncPrintsResult(t *testing.T) {
	tc := newTestCli(t)
	tc.pair(t, pairedConfig(models.RoleSlave))

	tc.engine.TickFunc = func(ctx context.Context) (*sync.TickResult, error) {
		return &sync.TickResult{
			Success:       true,
			RecordsPushed: 3,
			RecordsPulled: 2,
			Conflicts:     1,
			Duration:      1500 * time.Millisecond,
		}, nil
	}

	require.NoError(t, tc.cli.Run(context.Background(), "sync", nil))

	out := tc.output.String()
	assert.Contains(t, out, "Pushed:    3")
	assert.Contains(t, out, "Pulled:    2")
	assert.Contains(t, out, "Conflicts: 1")
	assert.Len(t, tc.engine.TickCalls(), 1)
	assert.Len(t, tc.engine.StopCalls(), 1)
}

func TestSyncRateLimitedReported(t *testing.T) {
	tc := newTestCli(t)
	tc.pair(t, pairedConfig(models.RoleSlave))

	tc.engine.TickFunc = func(ctx context.Context) (*sync.TickResult, error) {
		return &sync.TickResult{Success: false, Reason: sync.ReasonRateLimited}, nil
	}

	err := tc.cli.Run(context.Background(), "sync", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestBootstrapConfirmationDeclined(t *testing.T) {
	tc := newTestCli(t)
	tc.pair(t, pairedConfig(models.RoleSlave))
	tc.inputs = []string{"n"}

	require.NoError(t, tc.cli.Run(context.Background(), "bootstrap", nil))

	assert.Contains(t, tc.output.String(), "Aborted")
	assert.Empty(t, tc.engine.RequestInitialSyncCalls())
}

func TestBootstrapRunsInitialSync(t *testing.T) {
	tc := newTestCli(t)
	tc.pair(t, pairedConfig(models.RoleSlave))
	tc.inputs = []string{"y"}

	require.NoError(t, tc.cli.Run(context.Background(), "bootstrap", nil))

	assert.Len(t, tc.engine.RequestInitialSyncCalls(), 1)
	assert.Contains(t, tc.output.String(), "Initial replication completed")
}

func TestPairRejectsSecondPairing(t *testing.T) {
	tc := newTestCli(t)
	tc.pair(t, pairedConfig(models.RoleMaster))

	err := tc.cli.Run(context.Background(), "pair", []string{"master"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already paired")
}

func TestPairPassphraseMismatch(t *testing.T) {
	tc := newTestCli(t)
	tc.inputs = []string{"first", "second"}

	err := tc.cli.Run(context.Background(), "pair", []string{"master"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
}

func TestAccountAddAndList(t *testing.T) {
	tc := newTestCli(t)
	ctx := context.Background()

	require.NoError(t, tc.cli.Run(ctx, "account",
		[]string{"add", "-name", "Checking", "-balance", "1000"}))

	tc.output.Reset()
	require.NoError(t, tc.cli.Run(ctx, "account", []string{"list"}))

	out := tc.output.String()
	assert.Contains(t, out, "Checking")
	assert.Contains(t, out, "1000.00")
}

func TestAccountAddRequiresName(t *testing.T) {
	tc := newTestCli(t)

	err := tc.cli.Run(context.Background(), "account", []string{"add"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestMovementAddAdjustsBalance(t *testing.T) {
	tc := newTestCli(t)
	ctx := context.Background()

	require.NoError(t, tc.cli.Run(ctx, "account",
		[]string{"add", "-name", "Checking", "-balance", "1000"}))

	accounts, err := tc.store.GetActive(ctx, models.CollectionAccounts)
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	require.NoError(t, tc.cli.Run(ctx, "movement",
		[]string{"add", "-account", accounts[0].ID, "-amount", "-500"}))

	accounts, err = tc.store.GetActive(ctx, models.CollectionAccounts)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, 500.0, accounts[0].Balance)
}

func TestCategoryDelete(t *testing.T) {
	tc := newTestCli(t)
	ctx := context.Background()

	require.NoError(t, tc.cli.Run(ctx, "category", []string{"add", "-name", "Food"}))

	categories, err := tc.store.GetActive(ctx, models.CollectionCategories)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	require.NoError(t, tc.cli.Run(ctx, "category", []string{"delete", categories[0].ID}))

	categories, err = tc.store.GetActive(ctx, models.CollectionCategories)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestLogPrintsEntries(t *testing.T) {
	tc := newTestCli(t)
	ctx := context.Background()

	require.NoError(t, tc.store.AppendLog(ctx, &models.SyncLogEntry{
		ID:          "log-1",
		Type:        models.SyncLogSuccess,
		ItemsPushed: 2,
		Timestamp:   time.Now(),
	}))

	require.NoError(t, tc.cli.Run(ctx, "log", nil))

	assert.Contains(t, tc.output.String(), "SYNC_SUCCESS")
}
