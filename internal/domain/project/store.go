package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ganot/taskdesk/internal/domain/activity"
	"github.com/ganot/taskdesk/internal/ident"
	"github.com/ganot/taskdesk/internal/persist"
)

// Store owns the canonical project collection. Every mutation schedules a
// debounced write of the whole collection.
type Store struct {
	kv     Storage
	opts   Options
	logger *slog.Logger
	writer *persist.Scheduler[[]Project]

	// commitMu orders commits so snapshots reach the writer in revision
	// order. Lock order is commitMu then mu.
	commitMu sync.Mutex
	mu       sync.Mutex
	projects []Project
	revision uint64
}

// errNoop aborts a commit without changing the collection.
var errNoop = errors.New("no change")

// NewStore creates a project store. Call Load before use.
func NewStore(kv Storage, opts Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		kv:       kv,
		opts:     opts.withDefaults(),
		logger:   logger.With("store", "projects"),
		projects: []Project{},
	}
	s.writer = persist.NewScheduler(s.opts.SaveDebounce, s.save)
	return s
}

// Create validates req and prepends a new project to the collection.
func (s *Store) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	if err := ValidateCreateInput(req, s.opts.Currencies); err != nil {
		return nil, err
	}

	tasks := make([]SubTask, 0, len(req.Tasks))
	for _, t := range req.Tasks {
		if strings.TrimSpace(t.Text) == "" {
			return nil, fmt.Errorf("%w: sub-task text is required", ErrInvalidInput)
		}
		if t.ID == "" {
			t.ID = ident.New()
		}
		tasks = append(tasks, t)
	}

	status := req.WorkStatus
	if status == "" {
		status = StatusNotStarted
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	currency := req.Currency
	if currency == "" {
		currency = s.opts.Currencies[0]
	}

	now := s.opts.Now()
	proj := Project{
		ID:                 ident.New(),
		ProjectName:        strings.TrimSpace(req.ProjectName),
		ProjectDescription: req.ProjectDescription,
		FolderPath:         req.FolderPath,
		FolderLink:         req.FolderLink,
		ClientName:         strings.TrimSpace(req.ClientName),
		ClientPhone:        req.Contact.Phone,
		ClientPhone2:       req.Contact.Phone2,
		ClientWhatsapp:     req.Contact.Whatsapp,
		ClientWhatsapp2:    req.Contact.Whatsapp2,
		ClientEmail:        req.Contact.Email,
		Tasks:              tasks,
		WorkStatus:         status,
		Priority:           priority,
		Price:              req.Price,
		Currency:           currency,
		IsPaid:             req.IsPaid,
		IsCompleted:        req.IsCompleted,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	_ = s.commit(func(cur []Project) ([]Project, error) {
		return append([]Project{proj}, cur...), nil
	})

	s.record(ctx, proj.ID, activity.TypeProjectCreated, fmt.Sprintf("created project %q", proj.ProjectName))

	out := proj.clone()
	return &out, nil
}

// Update applies patch to the project with id and refreshes UpdatedAt.
// An unknown id is a no-op and returns (nil, nil).
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*Project, error) {
	if err := ValidatePatch(patch, s.opts.Currencies); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(p *Project) error {
		patch.apply(p)
		return nil
	})
}

// Delete removes the project with id. An unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) bool {
	var name string
	err := s.commit(func(cur []Project) ([]Project, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, errNoop
		}
		name = cur[idx].ProjectName
		return slices.Delete(slices.Clone(cur), idx, idx+1), nil
	})
	if err != nil {
		return false
	}

	s.record(ctx, id, activity.TypeProjectDeleted, fmt.Sprintf("deleted project %q", name))
	return true
}

// BatchDelete removes every listed project and returns how many existed.
func (s *Store) BatchDelete(ctx context.Context, ids []string) int {
	removed := 0
	for _, id := range ids {
		if s.Delete(ctx, id) {
			removed++
		}
	}
	return removed
}

// Get returns a copy of the project with id.
func (s *Store) Get(id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.projects, id)
	if idx < 0 {
		return nil, ErrProjectNotFound
	}
	out := s.projects[idx].clone()
	return &out, nil
}

// List returns a copy of the collection in its current order.
func (s *Store) List() []Project {
	return s.Snapshot().Projects
}

// Snapshot returns the collection together with its revision. The revision
// changes on every mutation.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.clone()
	}
	return Snapshot{Revision: s.revision, Projects: out}
}

// Stats derives statistics from the current collection.
func (s *Store) Stats() Stats {
	return ComputeStats(s.List())
}

// AddSubTask appends a sub-task to a project.
func (s *Store) AddSubTask(ctx context.Context, projectID, text string) (*Project, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: sub-task text is required", ErrInvalidInput)
	}
	proj, err := s.mutate(ctx, projectID, func(p *Project) error {
		p.Tasks = append(slices.Clone(p.Tasks), SubTask{ID: ident.New(), Text: text})
		return nil
	})
	if err == nil && proj == nil {
		return nil, ErrProjectNotFound
	}
	return proj, err
}

// ToggleSubTask flips the completion flag of a sub-task.
func (s *Store) ToggleSubTask(ctx context.Context, projectID, subTaskID string) (*Project, error) {
	proj, err := s.mutate(ctx, projectID, func(p *Project) error {
		tasks := slices.Clone(p.Tasks)
		for i := range tasks {
			if tasks[i].ID == subTaskID {
				tasks[i].IsCompleted = !tasks[i].IsCompleted
				p.Tasks = tasks
				return nil
			}
		}
		return ErrSubTaskNotFound
	})
	if err == nil && proj == nil {
		return nil, ErrProjectNotFound
	}
	return proj, err
}

// RemoveSubTask deletes a sub-task from a project.
func (s *Store) RemoveSubTask(ctx context.Context, projectID, subTaskID string) (*Project, error) {
	proj, err := s.mutate(ctx, projectID, func(p *Project) error {
		idx := slices.IndexFunc(p.Tasks, func(t SubTask) bool { return t.ID == subTaskID })
		if idx < 0 {
			return ErrSubTaskNotFound
		}
		p.Tasks = slices.Delete(slices.Clone(p.Tasks), idx, idx+1)
		return nil
	})
	if err == nil && proj == nil {
		return nil, ErrProjectNotFound
	}
	return proj, err
}

// SyncClientContact re-copies contact data into every project of the named
// client (case-insensitive) and returns how many were updated.
func (s *Store) SyncClientContact(ctx context.Context, clientName string, contact Contact) int {
	name := strings.ToLower(strings.TrimSpace(clientName))
	if name == "" {
		return 0
	}

	var ids []string
	for _, p := range s.List() {
		if strings.ToLower(p.ClientName) == name {
			ids = append(ids, p.ID)
		}
	}

	patch := Patch{}.SetContact(contact)
	updated := 0
	for _, id := range ids {
		if proj, err := s.Update(ctx, id, patch); err == nil && proj != nil {
			updated++
		}
	}
	return updated
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

// mutate runs fn on a copy of the project with id and commits it with a
// refreshed UpdatedAt. An unknown id returns (nil, nil).
func (s *Store) mutate(ctx context.Context, id string, fn func(*Project) error) (*Project, error) {
	var updated Project
	err := s.commit(func(cur []Project) ([]Project, error) {
		idx := indexOf(cur, id)
		if idx < 0 {
			return nil, errNoop
		}
		updated = cur[idx].clone()
		if err := fn(&updated); err != nil {
			return nil, err
		}
		updated.UpdatedAt = s.nextUpdatedAt(updated)

		next := slices.Clone(cur)
		next[idx] = updated
		return next, nil
	})
	if errors.Is(err, errNoop) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, id, activity.TypeProjectUpdated, fmt.Sprintf("updated project %q", updated.ProjectName))

	out := updated.clone()
	return &out, nil
}

// nextUpdatedAt never moves UpdatedAt backwards or before CreatedAt.
func (s *Store) nextUpdatedAt(p Project) time.Time {
	now := s.opts.Now()
	if now.Before(p.UpdatedAt) {
		now = p.UpdatedAt
	}
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	return now
}

func indexOf(projects []Project, id string) int {
	return slices.IndexFunc(projects, func(p Project) bool { return p.ID == id })
}

// commit replaces the collection with fn's result, bumps the revision and
// schedules a write. The slice passed to fn must not be modified in place.
func (s *Store) commit(fn func(cur []Project) ([]Project, error)) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	next, err := fn(s.projects)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.projects = next
	s.revision++
	s.mu.Unlock()

	s.writer.ScheduleWrite(next)
	return nil
}

func (s *Store) record(ctx context.Context, id string, typ activity.ActivityType, summary string) {
	if s.opts.Activity == nil {
		return
	}
	s.opts.Activity.Record(ctx, activity.CollectionProjects, id, typ, summary)
}
