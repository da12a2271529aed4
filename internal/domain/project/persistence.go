package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ganot/taskdesk/internal/codec"
	"github.com/ganot/taskdesk/internal/domain/activity"
	"github.com/ganot/taskdesk/internal/repository"
)

// Load replaces the in-memory collection with the persisted document. A
// missing, oversized or malformed document yields an empty collection; the
// latter two are removed from storage.
func (s *Store) Load(ctx context.Context) {
	projects := s.read(ctx)

	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = projects
	s.revision++
}

func (s *Store) read(ctx context.Context) []Project {
	key := s.opts.StorageKey
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return []Project{}
	}
	if err != nil {
		repository.ClassifyStorageError(ctx, s.logger, s.kv, "load "+key, err)
		return []Project{}
	}

	if len(raw) > s.opts.MaxDocumentBytes {
		s.logger.Warn("stored document exceeds size limit, discarding",
			"key", key, "bytes", len(raw), "limit", s.opts.MaxDocumentBytes)
		s.discard(ctx, key)
		return []Project{}
	}

	projects, skipped, ok := codec.DecodeRecords(raw, s.decodeProject)
	if !ok {
		if strings.TrimSpace(raw) != "" {
			s.logger.Warn("stored document is malformed, discarding", "key", key)
			s.discard(ctx, key)
		}
		return []Project{}
	}
	if skipped > 0 {
		s.logger.Warn("skipped unreadable stored projects", "key", key, "skipped", skipped)
	}

	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.ID == "" {
			continue
		}
		if p.Tasks == nil {
			p.Tasks = []SubTask{}
		}
		out = append(out, p)
	}
	s.logger.Debug("loaded projects", "count", len(out))
	return out
}

// storedProject leaves the timestamps raw so a bad date does not reject the
// rest of the record.
type storedProject struct {
	Project
	CreatedAt json.RawMessage `json:"createdAt"`
	UpdatedAt json.RawMessage `json:"updatedAt"`
}

// decodeProject revives one stored project. Unreadable dates are replaced by
// the other timestamp, or by now when neither can be read.
func (s *Store) decodeProject(raw json.RawMessage) (Project, bool) {
	if p, ok := codec.TryDecode[Project](string(raw)); ok {
		return p, true
	}
	stored, ok := codec.TryDecode[storedProject](string(raw))
	if !ok {
		return Project{}, false
	}

	p := stored.Project
	created, createdOK := codec.ReviveTime(stored.CreatedAt)
	updated, updatedOK := codec.ReviveTime(stored.UpdatedAt)
	switch {
	case createdOK && updatedOK:
	case createdOK:
		updated = created
	case updatedOK:
		created = updated
	default:
		created = s.opts.Now()
		updated = created
	}
	if updated.Before(created) {
		updated = created
	}
	p.CreatedAt, p.UpdatedAt = created, updated
	s.logger.Warn("repaired stored project dates", "id", p.ID)
	return p, true
}

func (s *Store) discard(ctx context.Context, key string) {
	if err := s.kv.Remove(ctx, key); err != nil {
		repository.ClassifyStorageError(ctx, s.logger, s.kv, "remove "+key, err)
	}
}

// save writes a snapshot, shrinking it when it does not fit. Runs on the
// scheduler, never with s.mu held.
func (s *Store) save(snapshot []Project) {
	ctx := context.Background()
	key := s.opts.StorageKey

	kept := snapshot
	doc, ok := codec.Encode(kept)
	if !ok {
		s.logger.Error("failed to encode projects", "key", key)
		return
	}

	if len(doc) > s.opts.MaxDocumentBytes {
		kept = keepMostRecent(kept, sizeEvictionKeep)
		s.logger.Warn("projects document exceeds size limit, keeping most recent",
			"bytes", len(doc), "limit", s.opts.MaxDocumentBytes, "before", len(snapshot), "after", len(kept))
		doc, _ = codec.Encode(kept)
	}

	err := s.kv.Set(ctx, key, doc)
	if err != nil {
		repository.ClassifyStorageError(ctx, s.logger, s.kv, "save "+key, err)
		if !errors.Is(err, repository.ErrQuotaExceeded) {
			return
		}
		kept = keepMostRecent(kept, quotaEvictionKeep)
		doc, _ = codec.Encode(kept)
		if err := s.kv.Set(ctx, key, doc); err != nil {
			s.logger.Error("retry after quota error failed, write dropped", "key", key, "error", err)
			return
		}
		s.logger.Warn("saved reduced projects document after quota error", "after", len(kept))
	}

	if len(kept) < len(snapshot) {
		s.reconcile(ctx, snapshot, droppedIDs(snapshot, kept))
	}
}

// reconcile removes projects that had to be dropped from storage so memory
// matches what was persisted. When commits landed after snapshot was taken,
// their pending writes may still carry dropped projects, so the reconciled
// collection is scheduled again.
func (s *Store) reconcile(ctx context.Context, snapshot []Project, dropped []string) {
	if len(dropped) == 0 {
		return
	}

	// A synchronous write runs inside commit, which already holds commitMu.
	async := s.opts.SaveDebounce > 0
	if async {
		s.commitMu.Lock()
	}
	s.mu.Lock()
	changed := !sameRecords(s.projects, snapshot)
	next := slices.DeleteFunc(slices.Clone(s.projects), func(p Project) bool {
		return slices.Contains(dropped, p.ID)
	})
	s.projects = next
	s.revision++
	s.mu.Unlock()
	if async {
		if changed {
			s.writer.ScheduleWrite(next)
		}
		s.commitMu.Unlock()
	}

	s.logger.Warn("projects collection truncated to fit storage", "dropped", len(dropped))
	s.record(ctx, "", activity.TypeCollectionTruncated, fmt.Sprintf("dropped %d projects to fit storage", len(dropped)))
	if s.opts.OnTruncate != nil {
		s.opts.OnTruncate(dropped)
	}
}

// keepMostRecent keeps floor(len*share) projects with the latest UpdatedAt,
// preserving their original order.
func keepMostRecent(projects []Project, share float64) []Project {
	n := int(float64(len(projects)) * share)
	if n >= len(projects) {
		return projects
	}

	order := make([]int, len(projects))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return projects[b].UpdatedAt.Compare(projects[a].UpdatedAt)
	})

	keep := make(map[int]bool, n)
	for _, i := range order[:n] {
		keep[i] = true
	}
	out := make([]Project, 0, n)
	for i, p := range projects {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// sameRecords reports whether a and b hold the same revisions of the same
// projects in the same order.
func sameRecords(a, b []Project) bool {
	return slices.EqualFunc(a, b, func(x, y Project) bool {
		return x.ID == y.ID && x.UpdatedAt.Equal(y.UpdatedAt)
	})
}

func droppedIDs(before, after []Project) []string {
	kept := make(map[string]bool, len(after))
	for _, p := range after {
		kept[p.ID] = true
	}
	var dropped []string
	for _, p := range before {
		if !kept[p.ID] {
			dropped = append(dropped, p.ID)
		}
	}
	return dropped
}
