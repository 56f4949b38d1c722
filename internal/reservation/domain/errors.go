package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrReservationNotFound  = errors.New("reservation_not_found")
	ErrReservationNotActive = errors.New("reservation_not_active")
	ErrCustomerNameRequired = errors.New("customer_name_required")
	ErrReservedAtRequired   = errors.New("reserved_at_required")
	ErrReservedAtInPast     = errors.New("reserved_at_in_past")
)

// WindowConflictError names the reservation already holding the slot.
type WindowConflictError struct {
	CustomerName string
	ReservedAt   time.Time
}

func (e *WindowConflictError) Error() string {
	return fmt.Sprintf("reservation conflict: %s already holds %s",
		e.CustomerName, e.ReservedAt.Format("15:04"))
}

// TableOccupiedError means the table is occupied right now and the
// requested time sits too close to be honored.
type TableOccupiedError struct {
	ReservedAt time.Time
}

func (e *TableOccupiedError) Error() string {
	return fmt.Sprintf("table occupied and reservation at %s is too close",
		e.ReservedAt.Format("15:04"))
}
