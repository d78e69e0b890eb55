package core

import "errors"

var (
	// ErrInvalidHandle is returned when a live handle was destroyed out of band.
	ErrInvalidHandle = errors.New("invalid live handle")

	// ErrModelLoad is returned when the host could not stream a model.
	ErrModelLoad = errors.New("model load failed")

	// ErrUserCancelled is returned when the operator aborts a flow.
	ErrUserCancelled = errors.New("cancelled by user")

	// ErrNoSuchSlot is returned for objective slots outside the name table.
	ErrNoSuchSlot = errors.New("objective slot out of range")

	// ErrChainGap is returned when an objective would activate after a slot
	// that no earlier objective occupies.
	ErrChainGap = errors.New("objective chain gap")

	// ErrNotFound is returned when a record is not part of the document.
	ErrNotFound = errors.New("record not found")

	// ErrHandleOwned is returned when a live handle already belongs to another record.
	ErrHandleOwned = errors.New("live handle already owned")
)

// ErrMissionNotFound is returned by storage backends for unknown mission names.
var ErrMissionNotFound = errors.New("mission not found")
