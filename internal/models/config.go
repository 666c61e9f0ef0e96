package models

// DeviceRole роль устройства в кластере синхронизации
type DeviceRole string

const (
	// RoleMaster разрешает конфликты и является источником истины при равных timestamp
	RoleMaster DeviceRole = "master"
	// RoleSlave отправляет изменения мастеру и применяет его вердикты
	RoleSlave DeviceRole = "slave"
)

// SchemaVersion текущая версия схемы сообщений кластера
const SchemaVersion = 2

// SyncConfig конфигурация синхронизации устройства.
// Singleton: загружается при старте, изменяется только при pairing.
type SyncConfig struct {
	DeviceID      string     `json:"device_id"`
	DeviceToken   string     `json:"device_token"`
	Role          DeviceRole `json:"role"`
	MasterID      string     `json:"master_id"`
	EncryptionKey string     `json:"encryption_key"` // base64, общий ключ кластера
	APIURL        string     `json:"api_url"`
	SchemaVersion int        `json:"cluster_schema_version"`
}

// IsComplete проверяет, достаточно ли конфигурации для работы движка.
// Slave дополнительно обязан знать идентификатор мастера.
func (c *SyncConfig) IsComplete() bool {
	if c == nil {
		return false
	}
	if c.DeviceID == "" || c.DeviceToken == "" || c.EncryptionKey == "" || c.APIURL == "" {
		return false
	}
	switch c.Role {
	case RoleMaster:
		return true
	case RoleSlave:
		return c.MasterID != ""
	default:
		return false
	}
}

// PushTarget возвращает устройство-получатель исходящих изменений.
// Slave шлет мастеру; мастер шлет самому себе - relay рассылает
// такое сообщение всем slave-устройствам кластера.
func (c *SyncConfig) PushTarget() string {
	if c.Role == RoleSlave {
		return c.MasterID
	}
	return c.DeviceID
}
