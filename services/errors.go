// Package services holds the editor's state machinery: the bounded
// history of map snapshots, the sink-backed current state, and the
// editing layer that ties the two together.
package services

import "errors"

// Sentinel errors returned by precondition checks. They can be
// matched with errors.Is; the wrapping message carries the observed
// values.
var (
	// ErrCursorOutOfRange indicates a history cursor outside [0, length)
	ErrCursorOutOfRange = errors.New("history cursor out of range")

	// ErrInvalidMaxLength indicates a retention limit below 1
	ErrInvalidMaxLength = errors.New("history limit must be at least 1")

	// ErrCellOutOfBounds indicates an edit addressed outside the map
	ErrCellOutOfBounds = errors.New("cell outside map bounds")

	// ErrUnknownTile indicates an edit carrying an unknown tile type
	ErrUnknownTile = errors.New("unknown tile type")

	// ErrInvalidTab indicates an activeTab value outside the known set
	ErrInvalidTab = errors.New("unknown editor tab")

	// ErrInvalidShape indicates a map shape without positive dimensions
	ErrInvalidShape = errors.New("map shape must have positive rows and columns")

	// ErrEmptyEdit indicates an edit request without any cells
	ErrEmptyEdit = errors.New("edit contains no cells")
)
