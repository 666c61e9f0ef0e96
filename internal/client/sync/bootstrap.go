package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iudanet/finkeeper/internal/models"
)

// Константы начальной репликации
const (
	// BootstrapBatchSize количество записей в одном батче
	BootstrapBatchSize = 50
	// BootstrapPollInterval интервал опроса relay во время bootstrap
	BootstrapPollInterval = 2000 * time.Millisecond
	// MaxPollAttempts число опросов до получения BOOTSTRAP_COMPLETE
	MaxPollAttempts = 60
	// ExtendedPollAttempts дополнительные опросы за недостающими батчами
	// после получения BOOTSTRAP_COMPLETE
	ExtendedPollAttempts = 15
)

// RequestInitialSync выполняет полную репликацию состояния с мастера:
// стадия REFERENCE (счета, категории, регулярные операции), затем
// TRANSACTIONAL (движения). Каждая стадия начинается с очистки своих
// коллекций, поэтому частичный успех не фиксируется.
func (s *service) RequestInitialSync(ctx context.Context) error {
	if !s.busy.TryLock() {
		return ErrBusy
	}
	defer s.busy.Unlock()

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return err
	}

	if cfg.Role == models.RoleMaster {
		return ErrMasterBootstrap
	}

	for _, stage := range []models.BootstrapStage{models.StageReference, models.StageTransactional} {
		if err := s.bootstrapStage(ctx, cfg, stage); err != nil {
			s.emitBootstrapProgress(BootstrapProgress{
				Event: BootstrapFailed,
				Stage: stage,
				Error: err.Error(),
			})
			return err
		}
	}

	s.emitBootstrapProgress(BootstrapProgress{Event: BootstrapFinished})
	s.logger.Info("Initial sync finished")

	return nil
}

// bootstrapSession накапливает состояние одной стадии репликации
type bootstrapSession struct {
	complete       *models.BootstrapComplete
	seen           map[int]bool
	stage          models.BootstrapStage
	recordsApplied int
}

// missing возвращает номера батчей, не полученных к моменту COMPLETE
func (b *bootstrapSession) missing() []int {
	if b.complete == nil {
		return nil
	}

	var missing []int
	for n := 1; n <= b.complete.BatchesSent; n++ {
		if !b.seen[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

// bootstrapStage реплицирует одну стадию: очистка коллекций, запрос
// мастеру, затем опрос relay до получения всех батчей и COMPLETE.
func (s *service) bootstrapStage(ctx context.Context, cfg *models.SyncConfig, stage models.BootstrapStage) error {
	for _, collection := range stage.Collections() {
		if err := s.records.Clear(ctx, collection); err != nil {
			return fmt.Errorf("failed to clear collection %s: %w", collection, err)
		}
		s.emitBootstrapProgress(BootstrapProgress{
			Event:      BootstrapCollectionCleared,
			Stage:      stage,
			Collection: collection,
		})
	}

	request := models.SyncRequest{
		MessageHeader: s.header(models.MessageSyncRequest),
		Stage:         stage,
		Changes:       []models.QueueEntry{},
		InitialSync:   true,
	}

	payload, err := s.cipher.EncryptJSON(request)
	if err != nil {
		return fmt.Errorf("failed to encrypt bootstrap request: %w", err)
	}

	if err := s.transport.Push(ctx, cfg.PushTarget(), payload); err != nil {
		return fmt.Errorf("failed to request bootstrap stage %s: %w", stage, err)
	}

	s.emitBootstrapProgress(BootstrapProgress{Event: BootstrapStageStarted, Stage: stage})
	s.logger.Info("Bootstrap stage requested", "stage", stage)

	session := &bootstrapSession{stage: stage, seen: make(map[int]bool)}

	for attempt := 0; attempt < MaxPollAttempts; attempt++ {
		if attempt > 0 {
			if err := s.clock.Sleep(ctx, BootstrapPollInterval); err != nil {
				return err
			}
		}

		if err := s.pollBootstrap(ctx, session); err != nil {
			return err
		}

		if session.complete != nil {
			break
		}
	}

	if session.complete == nil {
		return &BootstrapTimeoutError{Stage: stage}
	}

	// COMPLETE мог обогнать часть батчей: добираем недостающие
	missing := session.missing()
	for attempt := 0; attempt < ExtendedPollAttempts && len(missing) > 0; attempt++ {
		s.logger.Warn("Bootstrap batches missing after completion",
			"stage", stage,
			"missing", missing,
			"attempt", attempt+1)

		if err := s.clock.Sleep(ctx, BootstrapPollInterval); err != nil {
			return err
		}

		if err := s.pollBootstrap(ctx, session); err != nil {
			return err
		}

		missing = session.missing()
	}

	if len(missing) > 0 {
		return &BootstrapTimeoutError{Stage: stage, Missing: missing}
	}

	s.emitBootstrapProgress(BootstrapProgress{
		Event:          BootstrapStageCompleted,
		Stage:          stage,
		BatchesApplied: session.complete.BatchesSent,
		TotalBatches:   session.complete.BatchesSent,
		RecordsApplied: session.recordsApplied,
	})

	s.logger.Info("Bootstrap stage completed",
		"stage", stage,
		"records", session.recordsApplied,
		"batches", session.complete.BatchesSent)

	return nil
}

// pollBootstrap делает один опрос relay и обрабатывает bootstrap-сообщения.
// Сообщения других типов откладывать некуда, они подтверждаются и пропускаются.
func (s *service) pollBootstrap(ctx context.Context, session *bootstrapSession) error {
	messages, err := s.transport.Pull(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull during bootstrap: %w", err)
	}

	for _, message := range messages {
		var raw json.RawMessage
		if err := s.cipher.DecryptJSON(message.Payload, &raw); err != nil {
			s.logger.Warn("Failed to decrypt message during bootstrap",
				"from", message.From,
				"error", err)
			continue
		}

		var header models.MessageHeader
		if err := json.Unmarshal(raw, &header); err != nil {
			s.logger.Warn("Failed to parse message header during bootstrap", "error", err)
			continue
		}

		switch header.Type {
		case models.MessageBootstrapBatch:
			if err := s.applyBootstrapBatch(ctx, session, raw); err != nil {
				return err
			}

		case models.MessageBootstrapComplete:
			var complete models.BootstrapComplete
			if err := json.Unmarshal(raw, &complete); err != nil {
				s.logger.Warn("Failed to parse bootstrap completion", "error", err)
				continue
			}
			if complete.Stage != session.stage {
				s.logger.Warn("Bootstrap completion for wrong stage skipped",
					"got", complete.Stage,
					"want", session.stage)
				continue
			}
			session.complete = &complete

		case models.MessageBootstrapError:
			var bootErr models.BootstrapError
			if err := json.Unmarshal(raw, &bootErr); err != nil {
				s.logger.Warn("Failed to parse bootstrap error", "error", err)
				continue
			}
			return &BootstrapServerError{Stage: session.stage, Cause: bootErr.Error}

		default:
			s.logger.Debug("Non-bootstrap message skipped during bootstrap",
				"type", header.Type,
				"from", message.From)
		}
	}

	return nil
}

// applyBootstrapBatch применяет один батч. Дубликаты (повторная доставка)
// распознаются по номеру батча и пропускаются.
func (s *service) applyBootstrapBatch(ctx context.Context, session *bootstrapSession, raw json.RawMessage) error {
	var batch models.BootstrapBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		s.logger.Warn("Failed to parse bootstrap batch", "error", err)
		return nil
	}

	if batch.Stage != session.stage {
		s.logger.Warn("Bootstrap batch for wrong stage skipped",
			"got", batch.Stage,
			"want", session.stage)
		return nil
	}

	if session.seen[batch.BatchNumber] {
		s.logger.Debug("Duplicate bootstrap batch skipped", "batch", batch.BatchNumber)
		return nil
	}

	for i := range batch.Records {
		if err := s.applyReplicatedResult(ctx, &batch.Records[i]); err != nil {
			return fmt.Errorf("failed to apply bootstrap batch %d: %w", batch.BatchNumber, err)
		}
	}

	session.seen[batch.BatchNumber] = true
	session.recordsApplied += len(batch.Records)

	s.emitBootstrapProgress(BootstrapProgress{
		Event:          BootstrapBatchApplied,
		Stage:          session.stage,
		BatchesApplied: len(session.seen),
		TotalBatches:   batch.TotalBatches,
		RecordsApplied: session.recordsApplied,
	})

	return nil
}

// serveBootstrap раздает состояние мастера по запросу slave:
// активные записи стадии нарезаются на батчи по 50 и отправляются
// через relay, завершаясь сообщением BOOTSTRAP_COMPLETE.
func (s *service) serveBootstrap(ctx context.Context, requester string, stage models.BootstrapStage) error {
	if stage != models.StageReference && stage != models.StageTransactional {
		s.pushBootstrapError(ctx, requester, stage, fmt.Sprintf("unknown bootstrap stage %q", stage))
		return fmt.Errorf("unknown bootstrap stage %q requested by %s", stage, requester)
	}

	var records []models.MergeResult
	for _, collection := range stage.Collections() {
		active, err := s.records.GetActive(ctx, collection)
		if err != nil {
			s.pushBootstrapError(ctx, requester, stage, err.Error())
			return fmt.Errorf("failed to collect collection %s for bootstrap: %w", collection, err)
		}
		for _, record := range active {
			records = append(records, models.MergeResult{
				RecordID:  record.ID,
				StoreName: collection,
				Status:    models.MergeCreated,
				Winner:    record,
			})
		}
	}

	total := (len(records) + BootstrapBatchSize - 1) / BootstrapBatchSize

	for n := 1; n <= total; n++ {
		low := (n - 1) * BootstrapBatchSize
		high := low + BootstrapBatchSize
		if high > len(records) {
			high = len(records)
		}

		batch := models.BootstrapBatch{
			MessageHeader: s.header(models.MessageBootstrapBatch),
			Stage:         stage,
			Records:       records[low:high],
			BatchNumber:   n,
			TotalBatches:  total,
			IsFinal:       n == total,
		}

		payload, err := s.cipher.EncryptJSON(batch)
		if err != nil {
			s.pushBootstrapError(ctx, requester, stage, err.Error())
			return fmt.Errorf("failed to encrypt bootstrap batch %d: %w", n, err)
		}

		if err := s.transport.Push(ctx, requester, payload); err != nil {
			return fmt.Errorf("failed to push bootstrap batch %d: %w", n, err)
		}
	}

	complete := models.BootstrapComplete{
		MessageHeader: s.header(models.MessageBootstrapComplete),
		Stage:         stage,
		TotalRecords:  len(records),
		BatchesSent:   total,
	}

	payload, err := s.cipher.EncryptJSON(complete)
	if err != nil {
		return fmt.Errorf("failed to encrypt bootstrap completion: %w", err)
	}

	if err := s.transport.Push(ctx, requester, payload); err != nil {
		return fmt.Errorf("failed to push bootstrap completion: %w", err)
	}

	s.logger.Info("Bootstrap stage served",
		"requester", requester,
		"stage", stage,
		"records", len(records),
		"batches", total)

	return nil
}

// pushBootstrapError отправляет slave сообщение об ошибке, по возможности
func (s *service) pushBootstrapError(ctx context.Context, requester string, stage models.BootstrapStage, cause string) {
	bootErr := models.BootstrapError{
		MessageHeader: s.header(models.MessageBootstrapError),
		Stage:         stage,
		Error:         cause,
	}

	payload, err := s.cipher.EncryptJSON(bootErr)
	if err != nil {
		s.logger.Warn("Failed to encrypt bootstrap error", "error", err)
		return
	}

	if err := s.transport.Push(ctx, requester, payload); err != nil {
		s.logger.Warn("Failed to push bootstrap error", "requester", requester, "error", err)
	}
}
