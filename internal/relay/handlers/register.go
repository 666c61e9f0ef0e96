package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/finkeeper/internal/crypto"
	"github.com/iudanet/finkeeper/internal/models"
	"github.com/iudanet/finkeeper/internal/relay/storage"
	"github.com/iudanet/finkeeper/pkg/api"
)

// RegisterHandler обрабатывает регистрацию устройств в кластере
type RegisterHandler struct {
	logger    *slog.Logger
	devices   storage.DeviceStorage
	jwtConfig JWTConfig
}

// NewRegisterHandler создает новый handler для регистрации
func NewRegisterHandler(logger *slog.Logger, devices storage.DeviceStorage, jwtConfig JWTConfig) *RegisterHandler {
	return &RegisterHandler{
		logger:    logger,
		devices:   devices,
		jwtConfig: jwtConfig,
	}
}

// Register обрабатывает POST /api/v1/register
// Единственный неаутентифицированный эндпоинт: вызывается при pairing.
// Master регистрирует кластер, slave присоединяется к существующему.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.DeviceID == "" {
		sendError(w, "device_id is required", http.StatusBadRequest)
		return
	}

	role := models.DeviceRole(req.Role)
	switch role {
	case models.RoleMaster:
		if req.MasterID != "" && req.MasterID != req.DeviceID {
			sendError(w, "master must not reference another master", http.StatusBadRequest)
			return
		}
	case models.RoleSlave:
		if req.MasterID == "" {
			sendError(w, "master_id is required for slave devices", http.StatusBadRequest)
			return
		}
		// Slave присоединяется только к существующему мастеру
		master, err := h.devices.GetDevice(ctx, req.MasterID)
		if err != nil {
			if errors.Is(err, storage.ErrDeviceNotFound) {
				h.logger.WarnContext(ctx, "slave referenced unknown master",
					slog.String("device_id", req.DeviceID),
					slog.String("master_id", req.MasterID))
				sendError(w, "master device not found", http.StatusNotFound)
				return
			}
			h.logger.ErrorContext(ctx, "failed to get master device", slog.Any("error", err))
			sendError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if master.Role != models.RoleMaster {
			sendError(w, "referenced device is not a master", http.StatusBadRequest)
			return
		}
	default:
		sendError(w, "role must be master or slave", http.StatusBadRequest)
		return
	}

	token, err := GenerateDeviceToken(h.jwtConfig, req.DeviceID, role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate device token", slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	tokenHash, err := crypto.HashDeviceToken(token)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash device token", slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	device := &models.Device{
		DeviceID:  req.DeviceID,
		Role:      role,
		MasterID:  req.MasterID,
		TokenHash: tokenHash,
		CreatedAt: now,
		LastSeen:  now,
	}
	if role == models.RoleMaster {
		device.MasterID = req.DeviceID
	}

	if err := h.devices.CreateDevice(ctx, device); err != nil {
		if errors.Is(err, storage.ErrDeviceAlreadyExists) {
			h.logger.WarnContext(ctx, "device already registered", slog.String("device_id", req.DeviceID))
			sendError(w, "device already registered", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create device", slog.Any("error", err))
		sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "device registered",
		slog.String("device_id", req.DeviceID),
		slog.String("role", string(role)),
		slog.String("cluster", device.MasterID))

	resp := api.RegisterResponse{
		DeviceID:    req.DeviceID,
		DeviceToken: token,
	}

	sendJSON(w, resp, http.StatusCreated)
}

// sendJSON отправляет JSON ответ
func sendJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// sendError отправляет ошибку в JSON формате
func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, api.ErrorResponse{Error: message}, status)
}
