package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/finkeeper/internal/client/storage"
	"github.com/iudanet/finkeeper/internal/models"
)

// SideEffect реагирует на применение изменений к коллекции.
// Используется для поддержания денормализованных агрегатов
// (баланс счета по движениям).
type SideEffect interface {
	// Collection возвращает коллекцию, изменения которой интересны эффекту
	Collection() string

	// OnUpsert вызывается после записи победителя.
	// existing - прежняя версия (nil, если записи не было).
	OnUpsert(ctx context.Context, existing, winner *models.Record) error

	// OnDelete вызывается перед удалением живой записи
	OnDelete(ctx context.Context, existing *models.Record) error
}

// balanceSideEffect поддерживает агрегат balance счета:
// каждое движение прибавляет свою сумму к балансу счета,
// удаление движения - вычитает.
type balanceSideEffect struct {
	records storage.RecordStore
}

// NewBalanceSideEffect создает эффект пересчета баланса счетов по движениям
func NewBalanceSideEffect(records storage.RecordStore) SideEffect {
	return &balanceSideEffect{records: records}
}

func (b *balanceSideEffect) Collection() string { return models.CollectionMovements }

func (b *balanceSideEffect) OnUpsert(ctx context.Context, existing, winner *models.Record) error {
	if winner == nil {
		return nil
	}

	// Победитель-надгробие снимает сумму живого движения с баланса
	if winner.Deleted {
		return b.OnDelete(ctx, existing)
	}

	if winner.AccountID == "" {
		return nil
	}

	delta := winner.Amount
	if existing != nil && !existing.Deleted {
		// Прежняя сумма уже учтена в балансе
		delta -= existing.Amount
	}

	return b.adjust(ctx, winner.AccountID, delta)
}

func (b *balanceSideEffect) OnDelete(ctx context.Context, existing *models.Record) error {
	if existing == nil || existing.Deleted || existing.AccountID == "" {
		return nil
	}

	return b.adjust(ctx, existing.AccountID, -existing.Amount)
}

func (b *balanceSideEffect) adjust(ctx context.Context, accountID string, delta float64) error {
	if delta == 0 {
		return nil
	}

	err := b.records.Adjust(ctx, models.CollectionAccounts, accountID, func(account *models.Record) error {
		account.Balance += delta
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to adjust balance of account %s: %w", accountID, err)
	}

	return nil
}

// applyUpsertEffects запускает эффекты коллекции после записи победителя.
// Ошибка эффекта не отменяет уже примененное изменение, только логируется.
func (s *service) applyUpsertEffects(ctx context.Context, collection string, existing, winner *models.Record) {
	for _, effect := range s.sideEffects {
		if effect.Collection() != collection {
			continue
		}
		if err := effect.OnUpsert(ctx, existing, winner); err != nil {
			s.logger.Warn("Side effect failed on upsert", "collection", collection, "error", err)
		}
	}
}

// applyDeleteEffects запускает эффекты коллекции перед удалением записи
func (s *service) applyDeleteEffects(ctx context.Context, collection string, existing *models.Record) {
	for _, effect := range s.sideEffects {
		if effect.Collection() != collection {
			continue
		}
		if err := effect.OnDelete(ctx, existing); err != nil {
			s.logger.Warn("Side effect failed on delete", "collection", collection, "error", err)
		}
	}
}

// mergeChange разрешает одно изменение от slave против состояния мастера.
// Правила last-write-wins с преимуществом мастера при равных метках:
//  1. DELETE (или входящее надгробие) применяется без сравнения меток;
//  2. отсутствующая запись создается;
//  3. метка из будущего (> now + допуск) отклоняется;
//  4. иначе побеждает более новая версия, при равенстве - мастер.
func (s *service) mergeChange(ctx context.Context, change *models.QueueEntry) models.MergeResult {
	result := models.MergeResult{
		SyncID:    change.ID,
		RecordID:  change.RecordID,
		StoreName: change.StoreName,
	}

	existing, err := s.records.Get(ctx, change.StoreName, change.RecordID)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		result.Status = models.MergeError
		result.Error = err.Error()
		return result
	}

	// Снапшот с выставленным is_deleted - то же удаление, даже если
	// операция в очереди помечена как UPDATE
	if change.Operation == models.OperationDelete || (change.Data != nil && change.Data.Deleted) {
		return s.mergeDelete(ctx, change, existing, result)
	}

	incoming := change.Data
	if incoming == nil {
		result.Status = models.MergeError
		result.Error = "change carries no record data"
		return result
	}

	if existing == nil {
		if err := s.records.Put(ctx, change.StoreName, incoming); err != nil {
			result.Status = models.MergeError
			result.Error = err.Error()
			return result
		}
		s.applyUpsertEffects(ctx, change.StoreName, nil, incoming)
		result.Status = models.MergeCreated
		result.Winner = incoming
		return result
	}

	maxTimestamp := s.clock.Now().Add(ClockDriftTolerance).UnixMilli()
	if incoming.UpdatedAt > maxTimestamp {
		s.logger.Warn("Rejected change with future timestamp",
			"store", change.StoreName,
			"record_id", change.RecordID,
			"updated_at", incoming.UpdatedAt)
		result.Status = models.MergeRejectedFutureTS
		result.Winner = existing
		return result
	}

	switch {
	case incoming.NewerThan(existing):
		if err := s.records.Put(ctx, change.StoreName, incoming); err != nil {
			result.Status = models.MergeError
			result.Error = err.Error()
			return result
		}
		s.applyUpsertEffects(ctx, change.StoreName, existing, incoming)
		result.Status = models.MergeUpdated
		result.Winner = incoming

	case incoming.UpdatedAt == existing.UpdatedAt:
		result.Status = models.MergeConflictEqualMaster
		result.Winner = existing

	default:
		result.Status = models.MergeConflictMaster
		result.Winner = existing
	}

	return result
}

// mergeDelete обрабатывает удаление независимо от меток времени.
// Отсутствующая запись получает надгробие, чтобы удаление пережило
// запоздавшие обновления.
func (s *service) mergeDelete(ctx context.Context, change *models.QueueEntry, existing *models.Record, result models.MergeResult) models.MergeResult {
	if existing == nil {
		if change.Data != nil {
			tombstone := change.Data.Clone()
			tombstone.Deleted = true
			if err := s.records.Put(ctx, change.StoreName, tombstone); err != nil {
				result.Status = models.MergeError
				result.Error = err.Error()
				return result
			}
			result.Winner = tombstone
		}
		result.Status = models.MergeDeleted
		return result
	}

	if !existing.Deleted {
		s.applyDeleteEffects(ctx, change.StoreName, existing)
	}

	if err := s.records.SoftDelete(ctx, change.StoreName, change.RecordID); err != nil {
		result.Status = models.MergeError
		result.Error = err.Error()
		return result
	}

	result.Status = models.MergeDeleted
	return result
}

// applyMergeResult применяет вердикт мастера к локальному хранилищу.
// Запись очереди удаляется только после успешного применения - до этого
// момента мутация считается неподтвержденной.
func (s *service) applyMergeResult(ctx context.Context, result *models.MergeResult) error {
	return s.applyVerdict(ctx, result, true)
}

// applyReplicatedResult применяет запись bootstrap-батча. Побочные эффекты
// отключены: снапшот счета из стадии REFERENCE уже несет итоговый баланс,
// пересчет по движениям удвоил бы суммы.
func (s *service) applyReplicatedResult(ctx context.Context, result *models.MergeResult) error {
	return s.applyVerdict(ctx, result, false)
}

func (s *service) applyVerdict(ctx context.Context, result *models.MergeResult, withEffects bool) error {
	existing, err := s.records.Get(ctx, result.StoreName, result.RecordID)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return fmt.Errorf("failed to read record %s: %w", result.RecordID, err)
	}

	switch result.Status {
	case models.MergeCreated, models.MergeUpdated,
		models.MergeConflictMaster, models.MergeConflictEqualMaster:
		if result.Winner == nil {
			return fmt.Errorf("merge result %s for %s carries no winner", result.Status, result.RecordID)
		}
		if err := s.records.Put(ctx, result.StoreName, result.Winner); err != nil {
			return fmt.Errorf("failed to store winner %s: %w", result.RecordID, err)
		}
		if withEffects {
			s.applyUpsertEffects(ctx, result.StoreName, existing, result.Winner)
		}

	case models.MergeDeleted:
		switch {
		case existing != nil && !existing.Deleted:
			if withEffects {
				s.applyDeleteEffects(ctx, result.StoreName, existing)
			}
			if err := s.records.SoftDelete(ctx, result.StoreName, result.RecordID); err != nil {
				return fmt.Errorf("failed to soft-delete record %s: %w", result.RecordID, err)
			}
		case existing == nil && result.Winner != nil:
			if err := s.records.Put(ctx, result.StoreName, result.Winner); err != nil {
				return fmt.Errorf("failed to store tombstone %s: %w", result.RecordID, err)
			}
		}

	case models.MergeNotFound:
		// Мастер не знает запись: откатываем локальную копию целиком
		if existing != nil {
			if withEffects && !existing.Deleted {
				s.applyDeleteEffects(ctx, result.StoreName, existing)
			}
			if err := s.records.Delete(ctx, result.StoreName, result.RecordID); err != nil {
				return fmt.Errorf("failed to remove record %s: %w", result.RecordID, err)
			}
		}

	case models.MergeRejectedFutureTS:
		s.logger.Warn("Change rejected by master: timestamp too far in the future",
			"store", result.StoreName,
			"record_id", result.RecordID)

	case models.MergeError:
		s.logger.Warn("Master failed to merge change",
			"store", result.StoreName,
			"record_id", result.RecordID,
			"error", result.Error)

	default:
		s.logger.Warn("Unknown merge status skipped",
			"status", result.Status,
			"record_id", result.RecordID)
	}

	if result.SyncID != "" {
		if err := s.queue.Remove(ctx, result.SyncID); err != nil {
			return fmt.Errorf("failed to remove queue entry %s: %w", result.SyncID, err)
		}
	}

	switch result.Status {
	case models.MergeCreated, models.MergeUpdated, models.MergeDeleted:
		s.emitDataChanged(DataChange{
			Store:    result.StoreName,
			RecordID: result.RecordID,
			Status:   result.Status,
		})
	}

	return nil
}
