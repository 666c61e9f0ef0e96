package storage

import "errors"

// Common relay storage errors
var (
	// ErrDeviceNotFound indicates that device was not found in storage
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceAlreadyExists indicates that device with this id is already registered
	ErrDeviceAlreadyExists = errors.New("device already exists")

	// ErrMasterNotFound indicates that slave referenced an unknown master
	ErrMasterNotFound = errors.New("master device not found")
)
