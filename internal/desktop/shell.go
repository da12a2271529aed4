package desktop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	osDarwin  = "darwin"
	osWindows = "windows"
	osLinux   = "linux"
)

const (
	openCommand     = "open"
	explorerCommand = "explorer"
	xdgOpenCommand  = "xdg-open"
	osascript       = "osascript"
	zenity          = "zenity"

	macOSSelectFlag    = "-R"
	windowsSelectParam = "/select,"
)

// FolderResult reports the outcome of opening a folder.
type FolderResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SelectResult reports the outcome of a folder picker.
type SelectResult struct {
	Success  bool   `json:"success"`
	Path     string `json:"path,omitempty"`
	Canceled bool   `json:"canceled,omitempty"`
}

// Shell is the host file manager.
type Shell interface {
	OpenFolder(ctx context.Context, path string) FolderResult
	SelectFolder(ctx context.Context) (SelectResult, error)
	ShowItemInFolder(ctx context.Context, path string) error
}

// OSShell drives the platform file manager through external commands.
type OSShell struct {
	goos   string
	run    Runner
	logger *slog.Logger
}

// NewOSShell creates a shell for the running platform.
func NewOSShell(logger *slog.Logger) *OSShell {
	return newOSShell(runtime.GOOS, execRunner, logger)
}

func newOSShell(goos string, run Runner, logger *slog.Logger) *OSShell {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OSShell{goos: goos, run: run, logger: logger}
}

// OpenFolder opens a directory in the file manager.
func (s *OSShell) OpenFolder(ctx context.Context, path string) FolderResult {
	path = strings.TrimSpace(path)
	if path == "" {
		return FolderResult{Error: "folder path is empty"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return FolderResult{Error: fmt.Sprintf("folder not found: %s", path)}
	}
	if !info.IsDir() {
		return FolderResult{Error: fmt.Sprintf("not a folder: %s", path)}
	}

	var name string
	switch s.goos {
	case osDarwin:
		name = openCommand
	case osWindows:
		name = explorerCommand
	case osLinux:
		name = xdgOpenCommand
	default:
		return FolderResult{Error: ErrUnavailable.Error()}
	}

	if _, err := s.run(ctx, name, path); err != nil {
		s.logger.Warn("failed to open folder", "path", path, "error", err)
		return FolderResult{Error: err.Error()}
	}
	return FolderResult{Success: true}
}

// SelectFolder shows a native folder picker.
func (s *OSShell) SelectFolder(ctx context.Context) (SelectResult, error) {
	var (
		out []byte
		err error
	)
	switch s.goos {
	case osDarwin:
		out, err = s.run(ctx, osascript, "-e", `POSIX path of (choose folder)`)
	case osLinux:
		out, err = s.run(ctx, zenity, "--file-selection", "--directory")
	default:
		return SelectResult{}, ErrUnavailable
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return SelectResult{Canceled: true}, nil
		}
		return SelectResult{}, fmt.Errorf("folder picker: %w", err)
	}

	path := strings.TrimSpace(string(out))
	if path == "" {
		return SelectResult{Canceled: true}, nil
	}
	return SelectResult{Success: true, Path: filepath.Clean(path)}, nil
}

// ShowItemInFolder reveals a file in the file manager, selecting it where
// the platform supports that.
func (s *OSShell) ShowItemInFolder(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("item does not exist: %w", err)
	}

	switch s.goos {
	case osDarwin:
		_, err = s.run(ctx, openCommand, macOSSelectFlag, abs)
	case osWindows:
		_, err = s.run(ctx, explorerCommand, windowsSelectParam+abs)
	case osLinux:
		// Selection is not standardized on Linux; open the parent instead.
		_, err = s.run(ctx, xdgOpenCommand, filepath.Dir(abs))
	default:
		return ErrUnavailable
	}
	return err
}
