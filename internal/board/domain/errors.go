package domain

import (
	"fmt"
	"time"
)

// TableBlockedError rejects a manual open while a near-term reservation
// holds the table, naming who holds it and when.
type TableBlockedError struct {
	CustomerName string
	ReservedAt   time.Time
}

func (e *TableBlockedError) Error() string {
	return fmt.Sprintf("table blocked by reservation for %s at %s",
		e.CustomerName, e.ReservedAt.Format("15:04"))
}
