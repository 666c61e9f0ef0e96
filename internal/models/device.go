package models

import "time"

// Device зарегистрированное устройство кластера на стороне relay.
// Relay хранит только метаданные маршрутизации: роль, принадлежность
// к кластеру (master_id) и хеш токена. Содержимое сообщений ему недоступно.
type Device struct {
	CreatedAt time.Time
	LastSeen  time.Time
	DeviceID  string
	Role      DeviceRole
	MasterID  string // для master совпадает с DeviceID
	TokenHash string // SHA256 от device token, hex
}

// ClusterID возвращает идентификатор кластера устройства
func (d *Device) ClusterID() string {
	if d.Role == RoleMaster {
		return d.DeviceID
	}
	return d.MasterID
}

// StoredMessage сообщение в почтовом ящике устройства.
// Payload - непрозрачный для relay base64 шифротекст.
type StoredMessage struct {
	CreatedAt   time.Time
	MessageID   string
	RecipientID string
	SenderID    string
	Payload     string
}
