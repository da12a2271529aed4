package desktop

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// NoteCreator creates a note in the host notes application.
type NoteCreator interface {
	CreateNote(ctx context.Context, content string) bool
}

// AppleNotes creates notes in macOS Notes through AppleScript.
type AppleNotes struct {
	goos   string
	run    Runner
	md     goldmark.Markdown
	logger *slog.Logger
}

// NewAppleNotes creates a NoteCreator that only succeeds on macOS.
func NewAppleNotes(logger *slog.Logger) *AppleNotes {
	return newAppleNotes(runtime.GOOS, execRunner, logger)
}

func newAppleNotes(goos string, run Runner, logger *slog.Logger) *AppleNotes {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AppleNotes{
		goos:   goos,
		run:    run,
		md:     goldmark.New(goldmark.WithRendererOptions(html.WithHardWraps())),
		logger: logger,
	}
}

// CreateNote renders content to HTML and adds it as a new note.
func (n *AppleNotes) CreateNote(ctx context.Context, content string) bool {
	if n.goos != osDarwin {
		return false
	}
	body, err := n.render(content)
	if err != nil {
		n.logger.Warn("failed to render note", "error", err)
		return false
	}

	script := `tell application "Notes" to make new note with properties {body:"` + escapeAppleScript(body) + `"}`
	if _, err := n.run(ctx, osascript, "-e", script); err != nil {
		n.logger.Warn("failed to create note", "error", err)
		return false
	}
	return true
}

func (n *AppleNotes) render(content string) (string, error) {
	var buf bytes.Buffer
	if err := n.md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
