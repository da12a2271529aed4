package quicktask

import "errors"

var (
	// ErrTaskNotFound reports a lookup of a quick task that doesn't exist.
	ErrTaskNotFound = errors.New("quick task not found")
)
