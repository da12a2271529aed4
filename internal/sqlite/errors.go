package sqlite

import (
	"fmt"
	"strings"

	"github.com/ganot/taskdesk/internal/repository"
)

func isAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "readonly database") ||
		strings.Contains(msg, "unable to open database") ||
		strings.Contains(msg, "authorization denied")
}

func isDiskFull(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "database or disk is full")
}

// mapError translates driver failures into repository sentinels.
func mapError(op string, err error) error {
	switch {
	case isDiskFull(err):
		return fmt.Errorf("%s: %w: %v", op, repository.ErrQuotaExceeded, err)
	case isAccessDenied(err):
		return fmt.Errorf("%s: %w: %v", op, repository.ErrAccessDenied, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
