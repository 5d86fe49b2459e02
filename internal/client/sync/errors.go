package sync

import "errors"

var (
	// ErrInfrastructure wraps store and network failures that abort a
	// synchronization pass. The pass can be retried: the synced watermark
	// did not move.
	ErrInfrastructure = errors.New("store unavailable")

	// ErrSyncInProgress возвращается при повторном запуске синхронизации реплики
	ErrSyncInProgress = errors.New("synchronization already in progress")

	// ErrModelRemoved the model no longer exists in the store
	ErrModelRemoved = errors.New("model removed from store")
)
