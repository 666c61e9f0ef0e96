package data

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/finkeeper/internal/models"
)

func newTestService(t *testing.T) (Service, *boltdb.Storage) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewService(store, store), store
}

func TestCreateAccountGeneratesIDAndEnqueues(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	account := &models.Record{Balance: 1000}
	require.NoError(t, svc.CreateAccount(ctx, account))

	assert.NotEmpty(t, account.ID)
	assert.NotZero(t, account.UpdatedAt)

	stored, err := svc.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, stored.Balance)

	pending, err := store.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.OperationCreate, pending[0].Operation)
	assert.Equal(t, models.CollectionAccounts, pending[0].StoreName)
	assert.Equal(t, account.ID, pending[0].RecordID)
	require.NotNil(t, pending[0].Data)
	assert.Equal(t, account.UpdatedAt, pending[0].Data.UpdatedAt)
}

func TestUpdateAccountRequiresExisting(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.UpdateAccount(context.Background(), &models.Record{ID: "missing"})

	assert.True(t, errors.Is(err, storage.ErrRecordNotFound))
}

func TestUpdateAccountAdvancesTimestamp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	account := &models.Record{Balance: 100}
	require.NoError(t, svc.CreateAccount(ctx, account))
	created := account.UpdatedAt

	updated := &models.Record{ID: account.ID, Balance: 200}
	require.NoError(t, svc.UpdateAccount(ctx, updated))

	assert.Greater(t, updated.UpdatedAt, created)
}

func TestDeleteAccountEnqueuesTombstone(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	account := &models.Record{Balance: 100}
	require.NoError(t, svc.CreateAccount(ctx, account))
	require.NoError(t, svc.DeleteAccount(ctx, account.ID))

	_, err := svc.GetAccount(ctx, account.ID)
	assert.True(t, errors.Is(err, storage.ErrRecordNotFound))

	// Запись осталась надгробием, не удалена физически
	raw, err := store.Get(ctx, models.CollectionAccounts, account.ID)
	require.NoError(t, err)
	assert.True(t, raw.Deleted)

	pending, err := store.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, models.OperationDelete, pending[1].Operation)
	require.NotNil(t, pending[1].Data)
	assert.True(t, pending[1].Data.Deleted)
}

func TestAddMovementAppliesBalanceImmediately(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	account := &models.Record{Balance: 1000}
	require.NoError(t, svc.CreateAccount(ctx, account))

	movement := &models.Record{AccountID: account.ID, Amount: -500}
	require.NoError(t, svc.AddMovement(ctx, movement))

	stored, err := svc.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, stored.Balance)
}

func TestUpdateMovementAdjustsBalanceByDelta(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	account := &models.Record{Balance: 1000}
	require.NoError(t, svc.CreateAccount(ctx, account))

	movement := &models.Record{AccountID: account.ID, Amount: -500}
	require.NoError(t, svc.AddMovement(ctx, movement))

	movement.Amount = -300
	require.NoError(t, svc.UpdateMovement(ctx, movement))

	stored, err := svc.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 700.0, stored.Balance)
}

func TestUpdateMovementMovesAmountBetweenAccounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := &models.Record{Balance: 1000}
	second := &models.Record{Balance: 0}
	require.NoError(t, svc.CreateAccount(ctx, first))
	require.NoError(t, svc.CreateAccount(ctx, second))

	movement := &models.Record{AccountID: first.ID, Amount: -200}
	require.NoError(t, svc.AddMovement(ctx, movement))

	movement.AccountID = second.ID
	require.NoError(t, svc.UpdateMovement(ctx, movement))

	firstStored, err := svc.GetAccount(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, firstStored.Balance)

	secondStored, err := svc.GetAccount(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, -200.0, secondStored.Balance)
}

func TestDeleteMovementReversesBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	account := &models.Record{Balance: 1000}
	require.NoError(t, svc.CreateAccount(ctx, account))

	movement := &models.Record{AccountID: account.ID, Amount: -500}
	require.NoError(t, svc.AddMovement(ctx, movement))
	require.NoError(t, svc.DeleteMovement(ctx, movement.ID))

	stored, err := svc.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, stored.Balance)
}

func TestAddMovementWithoutAccountSucceeds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Счет мог еще не доехать до устройства: движение сохраняется,
	// баланс скорректируется при следующем пересчете
	movement := &models.Record{AccountID: "unknown", Amount: -500}
	assert.NoError(t, svc.AddMovement(ctx, movement))
}

func TestListSkipsTombstones(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category := &models.Record{}
	require.NoError(t, svc.CreateCategory(ctx, category))
	require.NoError(t, svc.DeleteCategory(ctx, category.ID))

	keep := &models.Record{}
	require.NoError(t, svc.CreateCategory(ctx, keep))

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, keep.ID, categories[0].ID)
}

func TestRecurringCRUD(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	recurring := &models.Record{Amount: -100}
	require.NoError(t, svc.CreateRecurring(ctx, recurring))

	recurring.Amount = -150
	require.NoError(t, svc.UpdateRecurring(ctx, recurring))

	list, err := svc.ListRecurring(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, -150.0, list[0].Amount)

	require.NoError(t, svc.DeleteRecurring(ctx, recurring.ID))

	list, err = svc.ListRecurring(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	size, err := store.QueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}
