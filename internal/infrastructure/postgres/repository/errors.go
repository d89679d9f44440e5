package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isUniqueViolation matches translated gorm errors and raw driver messages
// from postgres and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
