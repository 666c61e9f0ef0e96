package cli

import (
	"encoding/json"

	"github.com/iudanet/finkeeper/internal/models"
)

// setExtra кладет произвольное поле в конверт записи.
// Поля за пределами конверта синхронизации движок не интерпретирует.
func setExtra(record *models.Record, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if record.Extra == nil {
		record.Extra = make(map[string]json.RawMessage)
	}
	record.Extra[key] = data
}

// extraString читает строковое поле из конверта записи
func extraString(record *models.Record, key string) string {
	raw, ok := record.Extra[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}
