package domain

import "errors"

var (
	ErrTableNotFound = errors.New("table_not_found")
	ErrTableInactive = errors.New("table_inactive")

	// Conflict sentinels surface their text to the client.
	ErrTableNumberTaken   = errors.New("table number already in use")
	ErrTableHasOpenOrder  = errors.New("table has an open order")
	ErrTableHasDependents = errors.New("table has orders or reservations; deactivate it instead of deleting")
)
