package sync

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpClient "github.com/iudanet/finkeeper/internal/client/api"
	"github.com/iudanet/finkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/finkeeper/internal/crypto"
	"github.com/iudanet/finkeeper/internal/models"
	pkgapi "github.com/iudanet/finkeeper/pkg/api"
)

// fakeClock детерминированные часы для тестов: Sleep продвигает время
// вместо реального ожидания, AfterFunc накапливает отложенные вызовы.
type fakeClock struct {
	mu     stdsync.Mutex
	now    time.Time
	sleeps []time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	delay    time.Duration
	fn       func()
	canceled bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{delay: d, fn: fn}
	c.timers = append(c.timers, timer)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		timer.canceled = true
	}
}

// pendingTimers возвращает неотмененные отложенные вызовы
func (c *fakeClock) pendingTimers() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var pending []*fakeTimer
	for _, timer := range c.timers {
		if !timer.canceled {
			pending = append(pending, timer)
		}
	}
	return pending
}

// testEnv движок синхронизации поверх реального bbolt-хранилища
// с замоканным транспортом и общим ключом кластера.
type testEnv struct {
	svc       *service
	store     *boltdb.Storage
	transport *httpClient.TransportMock
	cipher    *crypto.Cipher
	clock     *fakeClock
}

func newTestEnv(t *testing.T, cfg *models.SyncConfig, opts ...func(*Deps)) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cipher, err := crypto.NewCipher(key)
	require.NoError(t, err)

	if cfg != nil {
		require.NoError(t, store.SaveConfig(ctx, cfg))
	}

	transport := &httpClient.TransportMock{
		PushFunc: func(ctx context.Context, recipientID, payload string) error {
			return nil
		},
		PullFunc: func(ctx context.Context) ([]pkgapi.RelayMessage, error) {
			return nil, nil
		},
		HeartbeatFunc: func(ctx context.Context) (*pkgapi.HeartbeatResponse, error) {
			return &pkgapi.HeartbeatResponse{}, nil
		},
	}

	clock := newFakeClock()

	deps := Deps{
		Transport: transport,
		Records:   store,
		Queue:     store,
		Config:    store,
		Log:       store,
		Cipher:    cipher,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:     clock,
		Rand:      rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	svc, ok := NewService(deps).(*service)
	require.True(t, ok)

	return &testEnv{
		svc:       svc,
		store:     store,
		transport: transport,
		cipher:    cipher,
		clock:     clock,
	}
}

// encrypt шифрует конверт так, как это сделало бы другое устройство кластера
func (e *testEnv) encrypt(t *testing.T, v any) string {
	t.Helper()
	payload, err := e.cipher.EncryptJSON(v)
	require.NoError(t, err)
	return payload
}

// decrypt расшифровывает отправленный payload в указанную структуру
func (e *testEnv) decrypt(t *testing.T, payload string, v any) {
	t.Helper()
	var raw json.RawMessage
	require.NoError(t, e.cipher.DecryptJSON(payload, &raw))
	require.NoError(t, json.Unmarshal(raw, v))
}

func (e *testEnv) header(msgType models.MessageType) models.MessageHeader {
	return models.MessageHeader{
		Type:          msgType,
		SchemaVersion: models.SchemaVersion,
		Timestamp:     e.clock.Now().UnixMilli(),
	}
}

func slaveConfig() *models.SyncConfig {
	return &models.SyncConfig{
		DeviceID:      "slave-1",
		DeviceToken:   "token-slave",
		Role:          models.RoleSlave,
		MasterID:      "master-1",
		EncryptionKey: "a2V5",
		APIURL:        "http://relay.local",
		SchemaVersion: models.SchemaVersion,
	}
}

func masterConfig() *models.SyncConfig {
	return &models.SyncConfig{
		DeviceID:      "master-1",
		DeviceToken:   "token-master",
		Role:          models.RoleMaster,
		EncryptionKey: "a2V5",
		APIURL:        "http://relay.local",
		SchemaVersion: models.SchemaVersion,
	}
}

// seedAccount кладет счет с заданным балансом напрямую в хранилище
func (e *testEnv) seedAccount(t *testing.T, id string, balance float64) {
	t.Helper()
	require.NoError(t, e.store.Put(context.Background(), models.CollectionAccounts, &models.Record{
		ID:        id,
		Balance:   balance,
		UpdatedAt: e.clock.Now().UnixMilli(),
	}))
}

// accountBalance читает текущий баланс счета
func (e *testEnv) accountBalance(t *testing.T, id string) float64 {
	t.Helper()
	account, err := e.store.Get(context.Background(), models.CollectionAccounts, id)
	require.NoError(t, err)
	return account.Balance
}

// movement возвращает запись движения по счету
func movement(id, accountID string, amount float64, updatedAt int64) *models.Record {
	return &models.Record{
		ID:        id,
		AccountID: accountID,
		Amount:    amount,
		UpdatedAt: updatedAt,
	}
}

// enqueueChange добавляет мутацию в очередь и возвращает ее sync_id
func (e *testEnv) enqueueChange(t *testing.T, op models.Operation, collection string, record *models.Record) string {
	t.Helper()
	entry := &models.QueueEntry{
		ID:        "sync-" + record.ID,
		StoreName: collection,
		RecordID:  record.ID,
		Operation: op,
		Data:      record,
		CreatedAt: e.clock.Now(),
	}
	require.NoError(t, e.store.Enqueue(context.Background(), entry))
	return entry.ID
}
