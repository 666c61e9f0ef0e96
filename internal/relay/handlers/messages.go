package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/finkeeper/internal/models"
	"github.com/iudanet/finkeeper/internal/relay/storage"
	"github.com/iudanet/finkeeper/pkg/api"
)

// MessageHandler обрабатывает store-and-forward операции relay.
// Полезные нагрузки - непрозрачный шифротекст: relay только маршрутизирует.
type MessageHandler struct {
	logger   *slog.Logger
	devices  storage.DeviceStorage
	messages storage.MessageStorage
}

// NewMessageHandler создает новый handler почтовых ящиков
func NewMessageHandler(logger *slog.Logger, devices storage.DeviceStorage, messages storage.MessageStorage) *MessageHandler {
	return &MessageHandler{
		logger:   logger,
		devices:  devices,
		messages: messages,
	}
}

// Push обрабатывает POST /api/v1/messages/push
// Кладет сообщение в ящик получателя. Если мастер адресует сообщение
// самому себе, оно рассылается во все остальные ящики кластера.
func (h *MessageHandler) Push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	senderID, ok := GetDeviceID(ctx)
	if !ok {
		h.logger.Error("device id not found in context")
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode push request", slog.Any("error", err))
		sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.RecipientID == "" {
		sendError(w, "recipient_id is required", http.StatusBadRequest)
		return
	}
	if req.Payload == "" {
		sendError(w, "payload is required", http.StatusBadRequest)
		return
	}

	sender, err := h.devices.GetDevice(ctx, senderID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get sender device", slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	recipients, err := h.resolveRecipients(ctx, sender, req.RecipientID)
	if err != nil {
		var httpErr *routeError
		if errors.As(err, &httpErr) {
			sendError(w, httpErr.message, httpErr.status)
			return
		}
		h.logger.ErrorContext(ctx, "failed to resolve recipients", slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	for _, recipientID := range recipients {
		msg := &models.StoredMessage{
			MessageID:   uuid.New().String(),
			RecipientID: recipientID,
			SenderID:    senderID,
			Payload:     req.Payload,
			CreatedAt:   now,
		}
		if err := h.messages.EnqueueMessage(ctx, msg); err != nil {
			h.logger.ErrorContext(ctx, "failed to enqueue message",
				slog.String("recipient", recipientID),
				slog.Any("error", err))
			sendError(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	h.logger.InfoContext(ctx, "message accepted",
		slog.String("sender", senderID),
		slog.Int("recipients", len(recipients)))

	sendJSON(w, api.PushResponse{Success: true, Recipients: len(recipients)}, http.StatusOK)
}

// routeError ошибка маршрутизации с HTTP-статусом
type routeError struct {
	message string
	status  int
}

func (e *routeError) Error() string { return e.message }

// resolveRecipients возвращает список ящиков для доставки.
// Self-push мастера разворачивается в fanout по кластеру.
func (h *MessageHandler) resolveRecipients(ctx context.Context, sender *models.Device, recipientID string) ([]string, error) {
	if sender.Role == models.RoleMaster && recipientID == sender.DeviceID {
		cluster, err := h.devices.GetClusterDevices(ctx, sender.DeviceID)
		if err != nil {
			return nil, err
		}
		recipients := make([]string, 0, len(cluster))
		for _, d := range cluster {
			if d.DeviceID != sender.DeviceID {
				recipients = append(recipients, d.DeviceID)
			}
		}
		return recipients, nil
	}

	recipient, err := h.devices.GetDevice(ctx, recipientID)
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			return nil, &routeError{message: "recipient not found", status: http.StatusNotFound}
		}
		return nil, err
	}

	// Маршрутизация только внутри своего кластера
	if recipient.ClusterID() != sender.ClusterID() {
		return nil, &routeError{message: "recipient belongs to another cluster", status: http.StatusForbidden}
	}

	return []string{recipientID}, nil
}

// Pull обрабатывает GET /api/v1/messages/pull
// Забирает и удаляет содержимое ящика устройства
func (h *MessageHandler) Pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		h.logger.Error("device id not found in context")
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	stored, err := h.messages.DrainMessages(ctx, deviceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to drain mailbox",
			slog.String("device_id", deviceID),
			slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	messages := make([]api.RelayMessage, 0, len(stored))
	for _, msg := range stored {
		messages = append(messages, api.RelayMessage{
			From:      msg.SenderID,
			Payload:   msg.Payload,
			MessageID: msg.MessageID,
		})
	}

	h.logger.InfoContext(ctx, "mailbox drained",
		slog.String("device_id", deviceID),
		slog.Int("messages", len(messages)))

	sendJSON(w, api.PullResponse{Messages: messages, Success: true}, http.StatusOK)
}

// Heartbeat обрабатывает POST /api/v1/heartbeat
// Обновляет last_seen устройства и возвращает состояние кластера
func (h *MessageHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		h.logger.Error("device id not found in context")
		sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.devices.UpdateLastSeen(ctx, deviceID, time.Now()); err != nil {
		h.logger.ErrorContext(ctx, "failed to update last seen", slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	device, err := h.devices.GetDevice(ctx, deviceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get device", slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	cluster, err := h.devices.GetClusterDevices(ctx, device.ClusterID())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get cluster devices", slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	statuses := make([]api.DeviceStatus, 0, len(cluster))
	for _, d := range cluster {
		statuses = append(statuses, api.DeviceStatus{
			DeviceID: d.DeviceID,
			Role:     string(d.Role),
			LastSeen: d.LastSeen,
		})
	}

	pending, err := h.messages.CountPending(ctx, deviceID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count pending messages", slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(w, api.HeartbeatResponse{
		Devices: statuses,
		Pending: pending,
		Success: true,
	}, http.StatusOK)
}
