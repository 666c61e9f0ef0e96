package storage

import "errors"

// Common client storage errors
var (
	// ErrRecordNotFound indicates that record was not found in a collection
	ErrRecordNotFound = errors.New("record not found")

	// ErrQueueEntryNotFound indicates that sync queue entry was not found
	ErrQueueEntryNotFound = errors.New("sync queue entry not found")

	// ErrConfigNotFound indicates that no sync configuration exists yet
	ErrConfigNotFound = errors.New("sync configuration not found")

	// ErrUnknownCollection indicates that a collection name is not recognized
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
