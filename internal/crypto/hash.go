package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashDeviceToken хеширует токен устройства с использованием SHA256
// Relay хранит только хеш: утечка его базы не раскрывает сами токены
func HashDeviceToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("device token cannot be empty")
	}

	hash := sha256.Sum256([]byte(token))

	return hex.EncodeToString(hash[:]), nil
}

// VerifyDeviceToken проверяет, соответствует ли токен сохраненному хешу
func VerifyDeviceToken(token, hashedToken string) error {
	if token == "" {
		return fmt.Errorf("device token cannot be empty")
	}
	if hashedToken == "" {
		return fmt.Errorf("hashed token cannot be empty")
	}

	computedHash, err := HashDeviceToken(token)
	if err != nil {
		return fmt.Errorf("failed to compute token hash: %w", err)
	}

	if computedHash != hashedToken {
		return fmt.Errorf("invalid device token")
	}

	return nil
}
