// Package api описывает HTTP-контракт relay-сервера.
// Relay - недоверенное store-and-forward хранилище: все полезные
// нагрузки проходят через него в виде шифротекста.
package api

import "time"

// RegisterRequest запрос регистрации устройства в кластере
type RegisterRequest struct {
	DeviceID string `json:"device_id"`
	Role     string `json:"role"` // "master" или "slave"
	MasterID string `json:"master_id,omitempty"`
}

// RegisterResponse ответ с токеном устройства
type RegisterResponse struct {
	DeviceID    string `json:"device_id"`
	DeviceToken string `json:"device_token"`
}

// PushRequest отправка зашифрованного сообщения другому устройству.
// Если мастер адресует сообщение самому себе, relay рассылает его
// всем остальным устройствам кластера.
type PushRequest struct {
	RecipientID string `json:"recipient_id"`
	Payload     string `json:"payload"` // base64 шифротекст
}

// PushResponse результат приема сообщения relay-сервером
type PushResponse struct {
	Success    bool `json:"success"`
	Recipients int  `json:"recipients"` // количество почтовых ящиков, в которые доставлено
}

// RelayMessage одно сообщение из почтового ящика устройства
type RelayMessage struct {
	From      string `json:"from"`
	Payload   string `json:"payload"` // base64 шифротекст
	MessageID string `json:"message_id"`
}

// PullResponse содержимое почтового ящика устройства.
// Сообщения удаляются из ящика при выдаче.
type PullResponse struct {
	Messages []RelayMessage `json:"messages"`
	Success  bool           `json:"success"`
}

// DeviceStatus состояние одного устройства кластера
type DeviceStatus struct {
	LastSeen time.Time `json:"last_seen"`
	DeviceID string    `json:"device_id"`
	Role     string    `json:"role"`
}

// HeartbeatResponse состояние кластера на момент heartbeat
type HeartbeatResponse struct {
	Devices []DeviceStatus `json:"devices"`
	Pending int            `json:"pending"` // недоставленные сообщения устройства
	Success bool           `json:"success"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
