package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/finkeeper/internal/crypto"
	"github.com/iudanet/finkeeper/internal/models"
	"github.com/iudanet/finkeeper/internal/relay/handlers"
	"github.com/iudanet/finkeeper/internal/relay/storage"
)

// AuthMiddleware создает middleware для проверки токена устройства.
// Помимо подписи JWT сверяется хеш токена из devices: регистрация
// устройства заново инвалидирует ранее выданный токен.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig, devices storage.DeviceStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header")
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("Invalid Authorization header format")
				http.Error(w, "Unauthorized: invalid token format", http.StatusUnauthorized)
				return
			}

			tokenString := parts[1]

			// Валидируем токен
			claims, err := handlers.ValidateDeviceToken(jwtConfig, tokenString)
			if err != nil {
				logger.Warn("Invalid device token", "error", err)
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			// Сверяем хеш токена с зарегистрированным устройством
			device, err := devices.GetDevice(r.Context(), claims.DeviceID)
			if err != nil {
				logger.Warn("Token for unknown device", "device_id", claims.DeviceID, "error", err)
				http.Error(w, "Unauthorized: unknown device", http.StatusUnauthorized)
				return
			}

			if err := crypto.VerifyDeviceToken(tokenString, device.TokenHash); err != nil {
				logger.Warn("Token hash mismatch", "device_id", claims.DeviceID)
				http.Error(w, "Unauthorized: token revoked", http.StatusUnauthorized)
				return
			}

			// Добавляем данные из токена в контекст
			ctx := context.WithValue(r.Context(), handlers.DeviceIDKey, claims.DeviceID)
			ctx = context.WithValue(ctx, handlers.DeviceRoleKey, models.DeviceRole(claims.Role))

			logger.Debug("Device authenticated", "device_id", claims.DeviceID, "role", claims.Role)

			// Передаем запрос дальше с обновленным контекстом
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
