// Package desktop integrates with the host operating system: folders, the
// notes application, the clipboard and external task lists. Every
// collaborator may be missing; callers get a Notice instead of a failure.
package desktop

import (
	"context"
	"errors"
	"os/exec"
)

// ErrUnavailable indicates the host does not support the operation.
var ErrUnavailable = errors.New("desktop integration unavailable")

// Level is the severity of a Notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient user-visible message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Runner executes an external command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
