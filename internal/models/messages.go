package models

// MessageType тип расшифрованного сообщения между устройствами.
// Relay-сервер видит только шифротекст; эти конверты существуют
// исключительно после расшифровки на устройстве.
type MessageType string

const (
	MessageSyncRequest       MessageType = "SYNC_REQUEST"
	MessageSyncResponse      MessageType = "SYNC_RESPONSE"
	MessageClusterUpdate     MessageType = "CLUSTER_UPDATE"
	MessageBootstrapBatch    MessageType = "BOOTSTRAP_BATCH"
	MessageBootstrapComplete MessageType = "BOOTSTRAP_COMPLETE"
	MessageBootstrapError    MessageType = "BOOTSTRAP_ERROR"
)

// BootstrapStage стадия полной репликации состояния
type BootstrapStage string

const (
	// StageReference справочные коллекции (счета, категории, регулярные операции)
	StageReference BootstrapStage = "REFERENCE"
	// StageTransactional транзакционные коллекции (движения)
	StageTransactional BootstrapStage = "TRANSACTIONAL"
)

// Collections возвращает коллекции, реплицируемые на данной стадии.
func (s BootstrapStage) Collections() []string {
	if s == StageTransactional {
		return TransactionalCollections()
	}
	return ReferenceCollections()
}

// MessageHeader общие поля всех конвертов
type MessageHeader struct {
	Type          MessageType `json:"type"`
	SchemaVersion int         `json:"schema_version"`
	Timestamp     int64       `json:"ts"` // unix-время отправки в миллисекундах
}

// SyncRequest изменения от устройства либо запрос начальной репликации.
// При InitialSync=true поле Changes пустое, Stage задает стадию bootstrap.
type SyncRequest struct {
	MessageHeader
	Stage       BootstrapStage `json:"stage,omitempty"`
	Changes     []QueueEntry   `json:"changes"`
	InitialSync bool           `json:"initial_sync,omitempty"`
}

// SyncResponse вердикты мастера по изменениям из SYNC_REQUEST
type SyncResponse struct {
	MessageHeader
	Results []MergeResult `json:"results"`
}

// ClusterUpdate зарезервировано для координированных обновлений схемы
type ClusterUpdate struct {
	MessageHeader
}

// BootstrapBatch один чанк полной репликации.
// Каждая запись завернута в MergeResult со статусом CREATED,
// чтобы применяться тем же путем, что и обычные вердикты.
type BootstrapBatch struct {
	MessageHeader
	Stage        BootstrapStage `json:"stage"`
	Records      []MergeResult  `json:"records"`
	BatchNumber  int            `json:"batch_number"`
	TotalBatches int            `json:"total_batches"`
	IsFinal      bool           `json:"is_final"`
}

// BootstrapComplete терминальное сообщение стадии bootstrap
type BootstrapComplete struct {
	MessageHeader
	Stage        BootstrapStage `json:"stage"`
	TotalRecords int            `json:"total_records"`
	BatchesSent  int            `json:"batches_sent"`
}

// BootstrapError сообщение об ошибке сборки bootstrap на мастере
type BootstrapError struct {
	MessageHeader
	Stage BootstrapStage `json:"stage"`
	Error string         `json:"error"`
}
