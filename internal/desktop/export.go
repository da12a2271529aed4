package desktop

import (
	"context"
	"log/slog"
)

const (
	msgNoteCreated     = "📝 נוצר פתק חדש באפליקציית הפתקים"
	msgCopiedClipboard = "📋 הרשימה הועתקה ללוח! הדבק בפתקים או בכל אפליקציה אחרת"
	msgClipboardFailed = "❌ לא ניתן להעתיק ללוח"
)

// NotesExporter sends formatted text to the notes application and falls
// back to the clipboard. Either collaborator may be nil.
type NotesExporter struct {
	notes     NoteCreator
	clipboard Clipboard
	logger    *slog.Logger
}

// NewNotesExporter creates an exporter.
func NewNotesExporter(notes NoteCreator, clip Clipboard, logger *slog.Logger) *NotesExporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NotesExporter{notes: notes, clipboard: clip, logger: logger}
}

// Export delivers content and returns the notice to show.
func (e *NotesExporter) Export(ctx context.Context, content string) Notice {
	if e.notes != nil && e.notes.CreateNote(ctx, content) {
		return Notice{Level: LevelSuccess, Message: msgNoteCreated}
	}
	e.logger.Info("notes app unavailable, falling back to clipboard")

	if e.clipboard == nil {
		return Notice{Level: LevelError, Message: msgClipboardFailed}
	}
	if err := e.clipboard.WriteAll(content); err != nil {
		e.logger.Warn("failed to copy to clipboard", "error", err)
		return Notice{Level: LevelError, Message: msgClipboardFailed}
	}
	return Notice{Level: LevelSuccess, Message: msgCopiedClipboard}
}
