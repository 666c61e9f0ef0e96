package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/finkeeper/internal/models"
)

// DeviceClaims представляет JWT claims токена устройства
type DeviceClaims struct {
	DeviceID string `json:"device_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Secret   []byte
	TokenTTL time.Duration
}

// contextKey тип для ключей контекста
type contextKey string

const (
	// DeviceIDKey ключ для хранения device_id в контексте
	DeviceIDKey contextKey = "device_id"
	// DeviceRoleKey ключ для хранения роли устройства в контексте
	DeviceRoleKey contextKey = "device_role"
)

// GetDeviceID извлекает device_id из контекста запроса
func GetDeviceID(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDKey).(string)
	return deviceID, ok
}

// GetDeviceRole извлекает роль устройства из контекста запроса
func GetDeviceRole(ctx context.Context) (models.DeviceRole, bool) {
	role, ok := ctx.Value(DeviceRoleKey).(models.DeviceRole)
	return role, ok
}

// GenerateDeviceToken создает JWT токен устройства.
// Токен выдается один раз при регистрации; клиент хранит его
// в локальном конфиге и передает в заголовке Authorization.
func GenerateDeviceToken(cfg JWTConfig, deviceID string, role models.DeviceRole) (string, error) {
	now := time.Now()

	claims := DeviceClaims{
		DeviceID: deviceID,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "finkeeper-relay",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateDeviceToken валидирует и парсит JWT токен устройства
func ValidateDeviceToken(cfg JWTConfig, tokenString string) (*DeviceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DeviceClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*DeviceClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
