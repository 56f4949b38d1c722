package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Unique-violation message fragments per backend: postgres 23505,
// sqlite 2067.
var duplicateKeyFragments = []string{
	"duplicate key value violates unique constraint",
	"UNIQUE constraint failed",
}

// IsDuplicateKeyErr reports whether err is a unique-constraint violation.
// The insert-or-fetch paths (open order, payment) key their idempotent
// fallback on this.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, fragment := range duplicateKeyFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
