package sync

import (
	"errors"
	"fmt"

	"github.com/iudanet/finkeeper/internal/models"
)

// Ошибки движка синхронизации
var (
	// ErrBusy другой tick или bootstrap уже выполняется
	ErrBusy = errors.New("sync already in progress")

	// ErrNotConfigured устройство не прошло pairing
	ErrNotConfigured = errors.New("device is not configured for sync")

	// ErrMasterBootstrap мастеру не у кого запрашивать начальную репликацию
	ErrMasterBootstrap = errors.New("master device cannot request initial sync")
)

// BootstrapTimeoutError стадия bootstrap не получила все батчи за отведенные
// попытки. Частичный успех не фиксируется: стадия либо полная, либо ошибка.
type BootstrapTimeoutError struct {
	Stage   models.BootstrapStage
	Missing []int // номера недоставленных батчей
}

// Error реализует интерфейс error
func (e *BootstrapTimeoutError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("bootstrap stage %s timed out: missing batches %v", e.Stage, e.Missing)
	}
	return fmt.Sprintf("bootstrap stage %s timed out: no completion received", e.Stage)
}

// BootstrapServerError мастер сообщил об ошибке сборки bootstrap.
// Причина передается вызывающему дословно.
type BootstrapServerError struct {
	Stage models.BootstrapStage
	Cause string
}

// Error реализует интерфейс error
func (e *BootstrapServerError) Error() string {
	return fmt.Sprintf("bootstrap stage %s failed on master: %s", e.Stage, e.Cause)
}
