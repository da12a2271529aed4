package quicktask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/ganot/taskdesk/internal/codec"
	"github.com/ganot/taskdesk/internal/domain/activity"
	"github.com/ganot/taskdesk/internal/ident"
	"github.com/ganot/taskdesk/internal/persist"
	"github.com/ganot/taskdesk/internal/repository"
)

var errNoop = errors.New("no change")

// Store owns the quick-task collection, newest first.
type Store struct {
	kv     Storage
	opts   Options
	logger *slog.Logger
	writer *persist.Scheduler[[]QuickTask]

	commitMu sync.Mutex
	mu       sync.Mutex
	tasks    []QuickTask
	revision uint64
}

// NewStore creates a quick-task store. Call Load before use.
func NewStore(kv Storage, opts Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		kv:     kv,
		opts:   opts.withDefaults(),
		logger: logger.With("store", "quick_tasks"),
		tasks:  []QuickTask{},
	}
	s.writer = persist.NewScheduler(s.opts.SaveDebounce, s.save)
	return s
}

// Load replaces the collection with the persisted document, keeping at most
// MaxItems records.
func (s *Store) Load(ctx context.Context) {
	tasks := s.read(ctx)
	if len(tasks) > s.opts.MaxItems {
		tasks = tasks[:s.opts.MaxItems]
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	s.revision++
}

func (s *Store) read(ctx context.Context) []QuickTask {
	key := s.opts.StorageKey
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return []QuickTask{}
	}
	if err != nil {
		repository.ClassifyStorageError(ctx, s.logger, s.kv, "load "+key, err)
		return []QuickTask{}
	}

	tasks, skipped, ok := codec.DecodeRecords(raw, s.decodeTask)
	if !ok {
		if strings.TrimSpace(raw) != "" {
			s.logger.Warn("stored quick tasks are malformed, discarding", "key", key)
			if err := s.kv.Remove(ctx, key); err != nil {
				repository.ClassifyStorageError(ctx, s.logger, s.kv, "remove "+key, err)
			}
		}
		return []QuickTask{}
	}
	if skipped > 0 {
		s.logger.Warn("skipped unreadable stored quick tasks", "key", key, "skipped", skipped)
	}
	return slices.DeleteFunc(tasks, func(t QuickTask) bool { return t.ID == "" })
}

// storedTask leaves CreatedAt raw so a bad date does not reject the task.
type storedTask struct {
	QuickTask
	CreatedAt json.RawMessage `json:"createdAt"`
}

// decodeTask revives one stored task. An unreadable CreatedAt becomes now.
func (s *Store) decodeTask(raw json.RawMessage) (QuickTask, bool) {
	if t, ok := codec.TryDecode[QuickTask](string(raw)); ok {
		return t, true
	}
	stored, ok := codec.TryDecode[storedTask](string(raw))
	if !ok {
		return QuickTask{}, false
	}
	t := stored.QuickTask
	created, ok := codec.ReviveTime(stored.CreatedAt)
	if !ok {
		created = s.opts.Now()
	}
	t.CreatedAt = created
	return t, true
}

// Add prepends a new task. A blank title is ignored and returns (nil, nil).
func (s *Store) Add(ctx context.Context, title string) (*QuickTask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	task := QuickTask{
		ID:        ident.New(),
		Title:     title,
		CreatedAt: s.opts.Now(),
	}
	_ = s.commit(func(cur []QuickTask) ([]QuickTask, error) {
		return append([]QuickTask{task}, cur...), nil
	})
	s.record(ctx, task.ID, activity.TypeQuickTaskAdded, fmt.Sprintf("added quick task %q", title))
	return &task, nil
}

// Toggle flips the completed flag of a task. An unknown id is a no-op and
// returns (nil, nil).
func (s *Store) Toggle(ctx context.Context, id string) (*QuickTask, error) {
	task, err := s.update(id, func(t *QuickTask) { t.Completed = !t.Completed })
	if err != nil || task == nil {
		return nil, err
	}
	s.record(ctx, id, activity.TypeQuickTaskToggled, fmt.Sprintf("quick task %q completed=%t", task.Title, task.Completed))
	return task, nil
}

// SetFolderLink attaches a folder link to a task. An empty link clears it.
// An unknown id is a no-op and returns (nil, nil).
func (s *Store) SetFolderLink(ctx context.Context, id, link string) (*QuickTask, error) {
	return s.update(id, func(t *QuickTask) { t.FolderLink = strings.TrimSpace(link) })
}

// Delete removes a task. An unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) bool {
	var title string
	err := s.commit(func(cur []QuickTask) ([]QuickTask, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, errNoop
		}
		title = cur[idx].Title
		return slices.Delete(slices.Clone(cur), idx, idx+1), nil
	})
	if err != nil {
		return false
	}
	s.record(ctx, id, activity.TypeQuickTaskDeleted, fmt.Sprintf("deleted quick task %q", title))
	return true
}

// List returns a copy of the collection.
func (s *Store) List() []QuickTask {
	return s.Snapshot().Tasks
}

// Pending returns the incomplete tasks in collection order.
func (s *Store) Pending() []QuickTask {
	return slices.DeleteFunc(s.List(), func(t QuickTask) bool { return t.Completed })
}

// Snapshot returns the collection together with its revision.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Revision: s.revision, Tasks: slices.Clone(s.tasks)}
}

// Flush writes any pending change now.
func (s *Store) Flush(ctx context.Context) {
	for s.writer.Flush() {
	}
}

// Close flushes the pending write and stops scheduling new ones.
func (s *Store) Close(ctx context.Context) {
	s.writer.Close(true)
}

func (s *Store) update(id string, fn func(*QuickTask)) (*QuickTask, error) {
	var updated QuickTask
	err := s.commit(func(cur []QuickTask) ([]QuickTask, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, errNoop
		}
		next := slices.Clone(cur)
		fn(&next[idx])
		updated = next[idx]
		return next, nil
	})
	if errors.Is(err, errNoop) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) commit(fn func(cur []QuickTask) ([]QuickTask, error)) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	next, err := fn(s.tasks)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.tasks = next
	s.revision++
	s.mu.Unlock()

	s.writer.ScheduleWrite(next)
	return nil
}

func (s *Store) save(snapshot []QuickTask) {
	ctx := context.Background()
	key := s.opts.StorageKey

	kept := trimToCapacity(snapshot, s.opts.MaxItems, s.opts.KeepCompleted)
	doc, ok := codec.Encode(kept)
	if !ok {
		s.logger.Error("failed to encode quick tasks", "key", key)
		return
	}
	if err := s.kv.Set(ctx, key, doc); err != nil {
		repository.ClassifyStorageError(ctx, s.logger, s.kv, "save "+key, err)
		return
	}

	if len(kept) < len(snapshot) {
		s.reconcile(ctx, snapshot, droppedIDs(snapshot, kept))
	}
}

// reconcile drops from memory the tasks the capacity trim left out. Commits
// that landed after snapshot was taken get the trimmed collection scheduled
// in place of their own pending write.
func (s *Store) reconcile(ctx context.Context, snapshot []QuickTask, dropped map[string]bool) {
	// A synchronous write runs inside commit, which already holds commitMu.
	async := s.opts.SaveDebounce > 0
	if async {
		s.commitMu.Lock()
	}
	s.mu.Lock()
	changed := !slices.Equal(s.tasks, snapshot)
	next := slices.DeleteFunc(slices.Clone(s.tasks), func(t QuickTask) bool { return dropped[t.ID] })
	s.tasks = next
	s.revision++
	s.mu.Unlock()
	if async {
		if changed {
			s.writer.ScheduleWrite(next)
		}
		s.commitMu.Unlock()
	}

	s.logger.Info("trimmed completed quick tasks", "dropped", len(dropped))
	s.record(ctx, "", activity.TypeCollectionTruncated, fmt.Sprintf("trimmed %d completed quick tasks", len(dropped)))
}

func droppedIDs(before, after []QuickTask) map[string]bool {
	kept := make(map[string]bool, len(after))
	for _, t := range after {
		kept[t.ID] = true
	}
	dropped := make(map[string]bool)
	for _, t := range before {
		if !kept[t.ID] {
			dropped[t.ID] = true
		}
	}
	return dropped
}

// trimToCapacity keeps every incomplete task plus the keepCompleted most
// recently created completed ones when the collection exceeds max. Order is
// preserved.
func trimToCapacity(tasks []QuickTask, max, keepCompleted int) []QuickTask {
	if len(tasks) <= max {
		return tasks
	}

	var completed []int
	for i, t := range tasks {
		if t.Completed {
			completed = append(completed, i)
		}
	}
	slices.SortStableFunc(completed, func(a, b int) int {
		return tasks[b].CreatedAt.Compare(tasks[a].CreatedAt)
	})
	if len(completed) > keepCompleted {
		completed = completed[:keepCompleted]
	}
	keep := make(map[int]bool, len(completed))
	for _, i := range completed {
		keep[i] = true
	}

	out := make([]QuickTask, 0, len(tasks)-len(completed))
	for i, t := range tasks {
		if !t.Completed || keep[i] {
			out = append(out, t)
		}
	}
	return out
}

func indexOf(tasks []QuickTask, id string) int {
	return slices.IndexFunc(tasks, func(t QuickTask) bool { return t.ID == id })
}

func (s *Store) record(ctx context.Context, id string, typ activity.ActivityType, summary string) {
	if s.opts.Activity == nil {
		return
	}
	s.opts.Activity.Record(ctx, activity.CollectionQuickTasks, id, typ, summary)
}
