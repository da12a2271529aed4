package desktop

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganot/taskdesk/internal/domain/quicktask"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	out   string
	err   error
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return []byte(f.out), f.err
}

func TestOSShell_OpenFolder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	r := &fakeRunner{}
	shell := newOSShell(osLinux, r.run, nil)
	require.Equal(t, FolderResult{Success: true}, shell.OpenFolder(ctx, dir))
	require.Equal(t, []call{{name: xdgOpenCommand, args: []string{dir}}}, r.calls)

	mac := newOSShell(osDarwin, r.run, nil)
	require.True(t, mac.OpenFolder(ctx, dir).Success)
	require.Equal(t, openCommand, r.calls[1].name)
}

func TestOSShell_OpenFolderErrors(t *testing.T) {
	ctx := context.Background()
	r := &fakeRunner{}
	shell := newOSShell(osLinux, r.run, nil)

	require.False(t, shell.OpenFolder(ctx, "  ").Success)
	require.Contains(t, shell.OpenFolder(ctx, filepath.Join(t.TempDir(), "missing")).Error, "folder not found")

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	require.Contains(t, shell.OpenFolder(ctx, file).Error, "not a folder")
	require.Empty(t, r.calls)

	failing := newOSShell(osLinux, (&fakeRunner{err: errors.New("boom")}).run, nil)
	res := failing.OpenFolder(ctx, t.TempDir())
	require.False(t, res.Success)
	require.Equal(t, "boom", res.Error)

	plan9 := newOSShell("plan9", r.run, nil)
	require.Equal(t, ErrUnavailable.Error(), plan9.OpenFolder(ctx, t.TempDir()).Error)
}

func TestOSShell_SelectFolder(t *testing.T) {
	ctx := context.Background()

	r := &fakeRunner{out: "/Users/me/Projects/acme/\n"}
	res, err := newOSShell(osDarwin, r.run, nil).SelectFolder(ctx)
	require.NoError(t, err)
	require.Equal(t, SelectResult{Success: true, Path: "/Users/me/Projects/acme"}, res)
	require.Equal(t, osascript, r.calls[0].name)

	canceled := &fakeRunner{err: &exec.ExitError{}}
	res, err = newOSShell(osLinux, canceled.run, nil).SelectFolder(ctx)
	require.NoError(t, err)
	require.True(t, res.Canceled)
	require.Equal(t, zenity, canceled.calls[0].name)

	_, err = newOSShell(osWindows, r.run, nil).SelectFolder(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOSShell_ShowItemInFolder(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	r := &fakeRunner{}
	require.NoError(t, newOSShell(osDarwin, r.run, nil).ShowItemInFolder(ctx, file))
	require.Equal(t, call{name: openCommand, args: []string{macOSSelectFlag, file}}, r.calls[0])

	require.NoError(t, newOSShell(osLinux, r.run, nil).ShowItemInFolder(ctx, file))
	require.Equal(t, call{name: xdgOpenCommand, args: []string{filepath.Dir(file)}}, r.calls[1])

	require.Error(t, newOSShell(osLinux, r.run, nil).ShowItemInFolder(ctx, file+".missing"))
}

func TestAppleNotes_CreateNote(t *testing.T) {
	ctx := context.Background()

	r := &fakeRunner{}
	notes := newAppleNotes(osDarwin, r.run, nil)
	require.True(t, notes.CreateNote(ctx, "☐ first\n☐ second"))
	require.Len(t, r.calls, 1)
	require.Equal(t, osascript, r.calls[0].name)
	script := r.calls[0].args[1]
	require.True(t, strings.HasPrefix(script, `tell application "Notes" to make new note`))
	require.Contains(t, script, "☐ first<br>")

	failing := newAppleNotes(osDarwin, (&fakeRunner{err: errors.New("denied")}).run, nil)
	require.False(t, failing.CreateNote(ctx, "x"))

	require.False(t, newAppleNotes(osLinux, r.run, nil).CreateNote(ctx, "x"))
	require.Len(t, r.calls, 1)
}

func TestEscapeAppleScript(t *testing.T) {
	require.Equal(t, `say \"hi\" \\ bye`, escapeAppleScript(`say "hi" \ bye`))
}

type fakeNotes struct{ ok bool }

func (f fakeNotes) CreateNote(context.Context, string) bool { return f.ok }

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func TestNotesExporter(t *testing.T) {
	ctx := context.Background()

	clip := &fakeClipboard{}
	n := NewNotesExporter(fakeNotes{ok: true}, clip, nil).Export(ctx, "content")
	require.Equal(t, Notice{Level: LevelSuccess, Message: msgNoteCreated}, n)
	require.Empty(t, clip.text)

	n = NewNotesExporter(fakeNotes{ok: false}, clip, nil).Export(ctx, "content")
	require.Equal(t, Notice{Level: LevelSuccess, Message: msgCopiedClipboard}, n)
	require.Equal(t, "content", clip.text)

	n = NewNotesExporter(nil, &fakeClipboard{err: ErrUnavailable}, nil).Export(ctx, "content")
	require.Equal(t, LevelError, n.Level)

	n = NewNotesExporter(nil, nil, nil).Export(ctx, "content")
	require.Equal(t, LevelError, n.Level)
}

type fakeSync struct {
	authErr error
	items   []string
	ok      bool
}

func (f *fakeSync) Initialize(context.Context, string, string) error { return nil }
func (f *fakeSync) Authenticate(context.Context) error              { return f.authErr }
func (f *fakeSync) SignOut(context.Context) error                   { return nil }
func (f *fakeSync) CreateTaskListFromItems(_ context.Context, items []string) (bool, error) {
	f.items = items
	return f.ok, nil
}

func TestExportPendingQuickTasks(t *testing.T) {
	ctx := context.Background()
	tasks := []quicktask.QuickTask{
		{ID: "1", Title: "call"},
		{ID: "2", Title: "done", Completed: true},
		{ID: "3", Title: "invoice"},
	}

	sync := &fakeSync{ok: true}
	n := ExportPendingQuickTasks(ctx, sync, tasks, nil)
	require.Equal(t, LevelSuccess, n.Level)
	require.Equal(t, []string{"call", "invoice"}, sync.items)

	n = ExportPendingQuickTasks(ctx, &fakeSync{authErr: errors.New("no token")}, tasks, nil)
	require.Equal(t, LevelError, n.Level)

	n = ExportPendingQuickTasks(ctx, &fakeSync{ok: true}, tasks[1:2], nil)
	require.Equal(t, LevelInfo, n.Level)

	n = ExportPendingQuickTasks(ctx, nil, tasks, nil)
	require.Equal(t, LevelError, n.Level)
}
