package models

import "encoding/json"

// Имена коллекций локального хранилища.
// Справочные коллекции реплицируются на стадии bootstrap REFERENCE,
// транзакционные - на стадии TRANSACTIONAL.
const (
	CollectionAccounts   = "accounts"
	CollectionCategories = "categories"
	CollectionRecurring  = "recurring"
	CollectionMovements  = "movements"
)

// ReferenceCollections возвращает справочные коллекции (порядок фиксирован).
func ReferenceCollections() []string {
	return []string{CollectionAccounts, CollectionCategories, CollectionRecurring}
}

// TransactionalCollections возвращает транзакционные коллекции.
func TransactionalCollections() []string {
	return []string{CollectionMovements}
}

// Record представляет доменную запись, участвующую в синхронизации.
// Движок синхронизации интерпретирует только конвертные поля:
// ID, UpdatedAt, Deleted, а для движений - AccountID и Amount.
// Остальные доменные поля переносятся как есть через Extra,
// чтобы полный снимок записи не терялся при репликации.
type Record struct {
	Extra     map[string]json.RawMessage `json:"-"` // неизвестные движку доменные поля
	ID        string                     `json:"id"`
	AccountID string                     `json:"account_id,omitempty"`
	UpdatedAt int64                      `json:"updated_at"` // unix-время в миллисекундах
	Amount    float64                    `json:"amount,omitempty"`
	Balance   float64                    `json:"balance,omitempty"`
	Deleted   bool                       `json:"is_deleted"`
}

// Ключи конвертных полей, которые нельзя дублировать в Extra
var recordEnvelopeKeys = map[string]struct{}{
	"id":         {},
	"account_id": {},
	"updated_at": {},
	"amount":     {},
	"balance":    {},
	"is_deleted": {},
}

// recordEnvelope используется для (де)сериализации известных полей
type recordEnvelope struct {
	ID        string  `json:"id"`
	AccountID string  `json:"account_id,omitempty"`
	UpdatedAt int64   `json:"updated_at"`
	Amount    float64 `json:"amount,omitempty"`
	Balance   float64 `json:"balance,omitempty"`
	Deleted   bool    `json:"is_deleted"`
}

// MarshalJSON сериализует запись, объединяя конвертные поля с Extra.
func (r Record) MarshalJSON() ([]byte, error) {
	envelope, err := json.Marshal(recordEnvelope{
		ID:        r.ID,
		AccountID: r.AccountID,
		UpdatedAt: r.UpdatedAt,
		Amount:    r.Amount,
		Balance:   r.Balance,
		Deleted:   r.Deleted,
	})
	if err != nil {
		return nil, err
	}

	if len(r.Extra) == 0 {
		return envelope, nil
	}

	merged := make(map[string]json.RawMessage, len(r.Extra)+6)
	if err := json.Unmarshal(envelope, &merged); err != nil {
		return nil, err
	}
	for key, value := range r.Extra {
		if _, reserved := recordEnvelopeKeys[key]; reserved {
			continue
		}
		merged[key] = value
	}

	return json.Marshal(merged)
}

// UnmarshalJSON восстанавливает конвертные поля и складывает остальное в Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var envelope recordEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	extra := make(map[string]json.RawMessage)
	for key, value := range raw {
		if _, reserved := recordEnvelopeKeys[key]; reserved {
			continue
		}
		extra[key] = value
	}
	if len(extra) == 0 {
		extra = nil
	}

	*r = Record{
		ID:        envelope.ID,
		AccountID: envelope.AccountID,
		UpdatedAt: envelope.UpdatedAt,
		Amount:    envelope.Amount,
		Balance:   envelope.Balance,
		Deleted:   envelope.Deleted,
		Extra:     extra,
	}

	return nil
}

// NewerThan сравнивает записи по updated_at.
// Возвращает true, если текущая запись строго новее other.
func (r *Record) NewerThan(other *Record) bool {
	return r.UpdatedAt > other.UpdatedAt
}

// Clone создает глубокую копию записи
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := *r
	if r.Extra != nil {
		clone.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for key, value := range r.Extra {
			raw := make(json.RawMessage, len(value))
			copy(raw, value)
			clone.Extra[key] = raw
		}
	}

	return &clone
}
