package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finkeeper/internal/crypto"
	"github.com/iudanet/finkeeper/internal/models"
	"github.com/iudanet/finkeeper/internal/relay/storage/sqlite"
	"github.com/iudanet/finkeeper/pkg/api"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRegisterHandler(t *testing.T) (*RegisterHandler, *sqlite.Storage) {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return NewRegisterHandler(testLogger(), store, testJWTConfig()), store
}

func doRegister(t *testing.T, h *RegisterHandler, req api.RegisterRequest) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, r)
	return w
}

func TestRegister_Master(t *testing.T) {
	h, store := setupRegisterHandler(t)

	deviceID := uuid.New().String()
	w := doRegister(t, h, api.RegisterRequest{DeviceID: deviceID, Role: "master"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.RegisterResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, deviceID, resp.DeviceID)
	require.NotEmpty(t, resp.DeviceToken)

	// Токен валиден и несет роль
	claims, err := ValidateDeviceToken(testJWTConfig(), resp.DeviceToken)
	require.NoError(t, err)
	assert.Equal(t, deviceID, claims.DeviceID)
	assert.Equal(t, "master", claims.Role)

	// Устройство сохранено, хеш токена совпадает, master_id указывает на себя
	device, err := store.GetDevice(context.Background(), deviceID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMaster, device.Role)
	assert.Equal(t, deviceID, device.MasterID)
	assert.NoError(t, crypto.VerifyDeviceToken(resp.DeviceToken, device.TokenHash))
}

func TestRegister_SlaveJoinsCluster(t *testing.T) {
	h, store := setupRegisterHandler(t)

	masterID := uuid.New().String()
	w := doRegister(t, h, api.RegisterRequest{DeviceID: masterID, Role: "master"})
	require.Equal(t, http.StatusCreated, w.Code)

	slaveID := uuid.New().String()
	w = doRegister(t, h, api.RegisterRequest{DeviceID: slaveID, Role: "slave", MasterID: masterID})
	require.Equal(t, http.StatusCreated, w.Code)

	device, err := store.GetDevice(context.Background(), slaveID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSlave, device.Role)
	assert.Equal(t, masterID, device.MasterID)
}

func TestRegister_SlaveRequiresMasterID(t *testing.T) {
	h, _ := setupRegisterHandler(t)

	w := doRegister(t, h, api.RegisterRequest{DeviceID: uuid.New().String(), Role: "slave"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_SlaveUnknownMaster(t *testing.T) {
	h, _ := setupRegisterHandler(t)

	w := doRegister(t, h, api.RegisterRequest{
		DeviceID: uuid.New().String(),
		Role:     "slave",
		MasterID: uuid.New().String(),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegister_SlaveReferencingSlave(t *testing.T) {
	h, _ := setupRegisterHandler(t)

	masterID := uuid.New().String()
	require.Equal(t, http.StatusCreated,
		doRegister(t, h, api.RegisterRequest{DeviceID: masterID, Role: "master"}).Code)

	slaveID := uuid.New().String()
	require.Equal(t, http.StatusCreated,
		doRegister(t, h, api.RegisterRequest{DeviceID: slaveID, Role: "slave", MasterID: masterID}).Code)

	// Присоединиться можно только к мастеру
	w := doRegister(t, h, api.RegisterRequest{
		DeviceID: uuid.New().String(),
		Role:     "slave",
		MasterID: slaveID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_Duplicate(t *testing.T) {
	h, _ := setupRegisterHandler(t)

	deviceID := uuid.New().String()
	require.Equal(t, http.StatusCreated,
		doRegister(t, h, api.RegisterRequest{DeviceID: deviceID, Role: "master"}).Code)

	w := doRegister(t, h, api.RegisterRequest{DeviceID: deviceID, Role: "master"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_InvalidRole(t *testing.T) {
	h, _ := setupRegisterHandler(t)

	w := doRegister(t, h, api.RegisterRequest{DeviceID: uuid.New().String(), Role: "observer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_MissingDeviceID(t *testing.T) {
	h, _ := setupRegisterHandler(t)

	w := doRegister(t, h, api.RegisterRequest{Role: "master"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
