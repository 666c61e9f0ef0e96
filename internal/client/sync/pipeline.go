package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/finkeeper/internal/models"
)

// push отправляет неотправленные мутации очереди.
// Записи помечаются synced=1, но остаются в очереди до применения
// соответствующего MergeResult.
func (s *service) push(ctx context.Context, cfg *models.SyncConfig) (int, error) {
	pending, err := s.queue.GetPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read pending queue: %w", err)
	}

	if len(pending) == 0 {
		return 0, nil
	}

	changes := make([]models.QueueEntry, 0, len(pending))
	ids := make([]string, 0, len(pending))
	for _, entry := range pending {
		changes = append(changes, *entry)
		ids = append(ids, entry.ID)
	}

	request := models.SyncRequest{
		MessageHeader: s.header(models.MessageSyncRequest),
		Changes:       changes,
	}

	payload, err := s.cipher.EncryptJSON(request)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt sync request: %w", err)
	}

	if err := s.transport.Push(ctx, cfg.PushTarget(), payload); err != nil {
		return 0, err
	}

	if err := s.queue.MarkSynced(ctx, ids); err != nil {
		return len(changes), fmt.Errorf("failed to mark entries synced: %w", err)
	}

	s.logger.Info("Pushed local changes", "count", len(changes), "target", cfg.PushTarget())

	return len(changes), nil
}

// pull забирает входящие сообщения и раздает их обработчикам по типу.
// Ошибка расшифровки изолируется на уровне одного сообщения
// и не прерывает обработку остальных.
func (s *service) pull(ctx context.Context, cfg *models.SyncConfig) (int, int, error) {
	messages, err := s.transport.Pull(ctx)
	if err != nil {
		return 0, 0, err
	}

	conflicts := 0
	for _, message := range messages {
		delta, err := s.dispatch(ctx, cfg, message.From, message.Payload)
		if err != nil {
			s.logger.Warn("Failed to process inbound message",
				"from", message.From,
				"message_id", message.MessageID,
				"error", err)
			continue
		}
		conflicts += delta
	}

	return len(messages), conflicts, nil
}

// dispatch расшифровывает сообщение и выполняет обработчик его типа.
// Возвращает количество конфликтов, разрешенных при обработке.
func (s *service) dispatch(ctx context.Context, cfg *models.SyncConfig, from, payload string) (int, error) {
	var raw json.RawMessage
	if err := s.cipher.DecryptJSON(payload, &raw); err != nil {
		return 0, fmt.Errorf("failed to decrypt message: %w", err)
	}

	var header models.MessageHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return 0, fmt.Errorf("failed to parse message header: %w", err)
	}

	if header.SchemaVersion != models.SchemaVersion {
		s.logger.Warn("Schema version mismatch",
			"got", header.SchemaVersion,
			"want", models.SchemaVersion,
			"type", header.Type)
	}

	switch header.Type {
	case models.MessageSyncRequest:
		return 0, s.handleSyncRequest(ctx, cfg, from, raw)

	case models.MessageSyncResponse:
		return s.handleSyncResponse(ctx, raw)

	case models.MessageClusterUpdate:
		// Зарезервировано: подтверждаем и идем дальше
		s.logger.Debug("Cluster update acknowledged", "from", from)
		return 0, nil

	case models.MessageBootstrapBatch, models.MessageBootstrapComplete, models.MessageBootstrapError:
		// Bootstrap-сообщения вне выделенного поллера только подтверждаются
		s.logger.Debug("Bootstrap message outside poller acknowledged", "type", header.Type, "from", from)
		return 0, nil

	default:
		s.logger.Warn("Unknown message type skipped", "type", header.Type, "from", from)
		return 0, nil
	}
}

// handleSyncRequest обрабатывает изменения от slave. Только мастер
// разрешает конфликты; на slave такое сообщение игнорируется.
func (s *service) handleSyncRequest(ctx context.Context, cfg *models.SyncConfig, from string, raw json.RawMessage) error {
	if cfg.Role != models.RoleMaster {
		s.logger.Warn("Sync request received by non-master device", "from", from)
		return nil
	}

	var request models.SyncRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		return fmt.Errorf("failed to parse sync request: %w", err)
	}

	// Запрос начальной репликации уходит в bootstrap-раздачу
	if request.InitialSync {
		return s.serveBootstrap(ctx, from, request.Stage)
	}

	results := make([]models.MergeResult, 0, len(request.Changes))
	for i := range request.Changes {
		results = append(results, s.mergeChange(ctx, &request.Changes[i]))
	}

	response := models.SyncResponse{
		MessageHeader: s.header(models.MessageSyncResponse),
		Results:       results,
	}

	payload, err := s.cipher.EncryptJSON(response)
	if err != nil {
		return fmt.Errorf("failed to encrypt sync response: %w", err)
	}

	if err := s.transport.Push(ctx, from, payload); err != nil {
		return fmt.Errorf("failed to push sync response: %w", err)
	}

	s.logger.Info("Merged changes from slave", "from", from, "count", len(results))

	return nil
}

// handleSyncResponse применяет вердикты мастера.
// Ошибка применения изолируется на уровне одного результата.
func (s *service) handleSyncResponse(ctx context.Context, raw json.RawMessage) (int, error) {
	var response models.SyncResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return 0, fmt.Errorf("failed to parse sync response: %w", err)
	}

	conflicts := 0
	for i := range response.Results {
		result := &response.Results[i]
		if result.Status.IsConflict() {
			conflicts++
		}
		if err := s.applyMergeResult(ctx, result); err != nil {
			s.logger.Warn("Failed to apply merge result",
				"record_id", result.RecordID,
				"status", result.Status,
				"error", err)
		}
	}

	return conflicts, nil
}

// header заполняет общие поля конверта
func (s *service) header(msgType models.MessageType) models.MessageHeader {
	return models.MessageHeader{
		Type:          msgType,
		SchemaVersion: models.SchemaVersion,
		Timestamp:     s.clock.Now().UnixMilli(),
	}
}
