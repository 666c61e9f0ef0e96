package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/models"
)

// Service определяет интерфейс для локальных операций над финансовыми данными.
// Каждая мутация проходит один и тот же путь: запись получает штамп
// updated_at, сохраняется локально и встает в очередь синхронизации.
// Подтверждения мастера мутация не ждет - интерфейс остается отзывчивым
// в офлайне.
type Service interface {
	CreateAccount(ctx context.Context, account *models.Record) error
	UpdateAccount(ctx context.Context, account *models.Record) error
	DeleteAccount(ctx context.Context, id string) error
	GetAccount(ctx context.Context, id string) (*models.Record, error)
	ListAccounts(ctx context.Context) ([]*models.Record, error)

	CreateCategory(ctx context.Context, category *models.Record) error
	UpdateCategory(ctx context.Context, category *models.Record) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]*models.Record, error)

	CreateRecurring(ctx context.Context, recurring *models.Record) error
	UpdateRecurring(ctx context.Context, recurring *models.Record) error
	DeleteRecurring(ctx context.Context, id string) error
	ListRecurring(ctx context.Context) ([]*models.Record, error)

	AddMovement(ctx context.Context, movement *models.Record) error
	UpdateMovement(ctx context.Context, movement *models.Record) error
	DeleteMovement(ctx context.Context, id string) error
	ListMovements(ctx context.Context) ([]*models.Record, error)
}

// service handles local mutations and the denormalized account balance
type service struct {
	records storage.RecordStore
	queue   storage.QueueStorage
}

// NewService creates a new data service
func NewService(records storage.RecordStore, queue storage.QueueStorage) Service {
	return &service{
		records: records,
		queue:   queue,
	}
}

// create сохраняет новую запись и ставит мутацию в очередь
func (s *service) create(ctx context.Context, collection string, record *models.Record) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	if err := s.records.PutWithMeta(ctx, collection, record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return s.enqueue(ctx, collection, record, models.OperationCreate)
}

// update перезаписывает существующую запись и ставит мутацию в очередь
func (s *service) update(ctx context.Context, collection string, record *models.Record) error {
	if record.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}

	if _, err := s.records.Get(ctx, collection, record.ID); err != nil {
		return fmt.Errorf("failed to load record %s: %w", record.ID, err)
	}

	if err := s.records.PutWithMeta(ctx, collection, record); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return s.enqueue(ctx, collection, record, models.OperationUpdate)
}

// delete ставит надгробие и ставит мутацию в очередь.
// Физическое удаление невозможно: надгробие должно доехать до
// остальных устройств кластера.
func (s *service) delete(ctx context.Context, collection, id string) error {
	if err := s.records.SoftDelete(ctx, collection, id); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	// Снимок после удаления несет надгробие и свежий штамп
	tombstone, err := s.records.Get(ctx, collection, id)
	if err != nil {
		return fmt.Errorf("failed to load tombstone %s: %w", id, err)
	}

	return s.enqueue(ctx, collection, tombstone, models.OperationDelete)
}

// enqueue добавляет мутацию в очередь синхронизации
func (s *service) enqueue(ctx context.Context, collection string, record *models.Record, op models.Operation) error {
	entry := &models.QueueEntry{
		ID:        uuid.New().String(),
		StoreName: collection,
		RecordID:  record.ID,
		Operation: op,
		Data:      record.Clone(),
		CreatedAt: time.Now(),
	}

	if err := s.queue.Enqueue(ctx, entry); err != nil {
		return fmt.Errorf("failed to enqueue mutation: %w", err)
	}

	return nil
}

// adjustBalance корректирует баланс счета на delta.
// Отсутствие счета не считается ошибкой мутации движения.
func (s *service) adjustBalance(ctx context.Context, accountID string, delta float64) error {
	if accountID == "" || delta == 0 {
		return nil
	}

	err := s.records.Adjust(ctx, models.CollectionAccounts, accountID, func(account *models.Record) error {
		account.Balance += delta
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to adjust balance of account %s: %w", accountID, err)
	}

	return nil
}

// CreateAccount adds a new account to local storage
func (s *service) CreateAccount(ctx context.Context, account *models.Record) error {
	return s.create(ctx, models.CollectionAccounts, account)
}

// UpdateAccount overwrites an existing account
func (s *service) UpdateAccount(ctx context.Context, account *models.Record) error {
	return s.update(ctx, models.CollectionAccounts, account)
}

// DeleteAccount tombstones an account
func (s *service) DeleteAccount(ctx context.Context, id string) error {
	return s.delete(ctx, models.CollectionAccounts, id)
}

// GetAccount retrieves an account by ID
func (s *service) GetAccount(ctx context.Context, id string) (*models.Record, error) {
	account, err := s.records.Get(ctx, models.CollectionAccounts, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	if account.Deleted {
		return nil, storage.ErrRecordNotFound
	}
	return account, nil
}

// ListAccounts returns all non-deleted accounts
func (s *service) ListAccounts(ctx context.Context) ([]*models.Record, error) {
	return s.records.GetActive(ctx, models.CollectionAccounts)
}

// CreateCategory adds a new category to local storage
func (s *service) CreateCategory(ctx context.Context, category *models.Record) error {
	return s.create(ctx, models.CollectionCategories, category)
}

// UpdateCategory overwrites an existing category
func (s *service) UpdateCategory(ctx context.Context, category *models.Record) error {
	return s.update(ctx, models.CollectionCategories, category)
}

// DeleteCategory tombstones a category
func (s *service) DeleteCategory(ctx context.Context, id string) error {
	return s.delete(ctx, models.CollectionCategories, id)
}

// ListCategories returns all non-deleted categories
func (s *service) ListCategories(ctx context.Context) ([]*models.Record, error) {
	return s.records.GetActive(ctx, models.CollectionCategories)
}

// CreateRecurring adds a new recurring operation to local storage
func (s *service) CreateRecurring(ctx context.Context, recurring *models.Record) error {
	return s.create(ctx, models.CollectionRecurring, recurring)
}

// UpdateRecurring overwrites an existing recurring operation
func (s *service) UpdateRecurring(ctx context.Context, recurring *models.Record) error {
	return s.update(ctx, models.CollectionRecurring, recurring)
}

// DeleteRecurring tombstones a recurring operation
func (s *service) DeleteRecurring(ctx context.Context, id string) error {
	return s.delete(ctx, models.CollectionRecurring, id)
}

// ListRecurring returns all non-deleted recurring operations
func (s *service) ListRecurring(ctx context.Context) ([]*models.Record, error) {
	return s.records.GetActive(ctx, models.CollectionRecurring)
}

// AddMovement сохраняет движение и сразу применяет его к балансу счета.
// Баланс корректируется локально, не дожидаясь вердикта мастера:
// применение собственного подтвержденного изменения дает нулевую разницу.
func (s *service) AddMovement(ctx context.Context, movement *models.Record) error {
	if err := s.create(ctx, models.CollectionMovements, movement); err != nil {
		return err
	}
	return s.adjustBalance(ctx, movement.AccountID, movement.Amount)
}

// UpdateMovement перезаписывает движение, корректируя балансы затронутых
// счетов на разницу. Перенос движения на другой счет откатывает сумму
// на старом счете и применяет на новом.
func (s *service) UpdateMovement(ctx context.Context, movement *models.Record) error {
	if movement.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}

	previous, err := s.records.Get(ctx, models.CollectionMovements, movement.ID)
	if err != nil {
		return fmt.Errorf("failed to load movement %s: %w", movement.ID, err)
	}

	if err := s.records.PutWithMeta(ctx, models.CollectionMovements, movement); err != nil {
		return fmt.Errorf("failed to save movement: %w", err)
	}

	if err := s.enqueue(ctx, models.CollectionMovements, movement, models.OperationUpdate); err != nil {
		return err
	}

	if previous.Deleted {
		// Воскрешение надгробия: прежняя сумма в балансе не учтена
		return s.adjustBalance(ctx, movement.AccountID, movement.Amount)
	}

	if previous.AccountID != movement.AccountID {
		if err := s.adjustBalance(ctx, previous.AccountID, -previous.Amount); err != nil {
			return err
		}
		return s.adjustBalance(ctx, movement.AccountID, movement.Amount)
	}

	return s.adjustBalance(ctx, movement.AccountID, movement.Amount-previous.Amount)
}

// DeleteMovement ставит надгробие на движение и откатывает его сумму
func (s *service) DeleteMovement(ctx context.Context, id string) error {
	previous, err := s.records.Get(ctx, models.CollectionMovements, id)
	if err != nil {
		return fmt.Errorf("failed to load movement %s: %w", id, err)
	}

	alreadyDeleted := previous.Deleted

	if err := s.delete(ctx, models.CollectionMovements, id); err != nil {
		return err
	}

	if alreadyDeleted {
		return nil
	}

	return s.adjustBalance(ctx, previous.AccountID, -previous.Amount)
}

// ListMovements returns all non-deleted movements
func (s *service) ListMovements(ctx context.Context) ([]*models.Record, error) {
	return s.records.GetActive(ctx, models.CollectionMovements)
}
