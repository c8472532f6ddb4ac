package kanban

import (
	"errors"
	"fmt"
)

var (
	// ErrTicketNotPlaced is returned when a ticket is not in any column.
	ErrTicketNotPlaced = errors.New("ticket not placed on board")
	// ErrColumnNotFound is returned when a column ID does not resolve.
	ErrColumnNotFound = errors.New("column not found")
	// ErrWipLimitExceeded is returned when a move targets a full column.
	ErrWipLimitExceeded = errors.New("wip limit exceeded")
	// ErrHoldingColumnNotEmpty is returned when removing a holding column
	// that still has tickets.
	ErrHoldingColumnNotEmpty = errors.New("holding column not empty")
	// ErrInvalidWipLimit is returned for a WIP limit below 1.
	ErrInvalidWipLimit = errors.New("wip limit must be a positive integer")
)

// WipLimitError reports which column blocked a move.
type WipLimitError struct {
	ColumnID   string
	ColumnName string
	Limit      int
}

func (e *WipLimitError) Error() string {
	return fmt.Sprintf("column %q is at its WIP limit of %d", e.ColumnName, e.Limit)
}

func (e *WipLimitError) Unwrap() error {
	return ErrWipLimitExceeded
}
