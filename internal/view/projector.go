package view

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ganot/taskdesk/internal/domain/project"
)

const (
	defaultProjectionTTL = 5 * time.Minute
	projectionCleanup    = 10 * time.Minute
)

// Source provides revisioned snapshots of the project collection.
type Source interface {
	Snapshot() project.Snapshot
}

// Request describes one projection of the collection.
type Request struct {
	Query    Query
	Sort     SortState
	Page     int
	PageSize int
}

// Result is a projected page together with stats over the full collection.
type Result struct {
	Revision uint64
	Page     Page[project.Project]
	Stats    project.Stats
	// Filtered is the number of projects matching the query.
	Filtered int
}

// Projector memoizes projections per collection revision, so repeated
// requests against an unchanged collection are not recomputed.
type Projector struct {
	source Source
	cache  *cache.Cache
	logger *slog.Logger
}

// NewProjector creates a projector over source. ttl <= 0 uses a default.
func NewProjector(source Source, ttl time.Duration, logger *slog.Logger) *Projector {
	if ttl <= 0 {
		ttl = defaultProjectionTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Projector{
		source: source,
		cache:  cache.New(ttl, projectionCleanup),
		logger: logger,
	}
}

// Project filters, sorts and paginates the current collection. Results may
// be shared between callers and must be treated as read-only.
func (p *Projector) Project(req Request) Result {
	snap := p.source.Snapshot()
	key := fmt.Sprintf("page|%d|%+v", snap.Revision, req)
	if v, ok := p.cache.Get(key); ok {
		return v.(Result)
	}

	sortState := req.Sort
	if sortState.Field == "" {
		sortState = DefaultSort
	}
	filtered := Filter(snap.Projects, req.Query)
	sorted := Sort(filtered, sortState.Field, sortState.Direction)

	res := Result{
		Revision: snap.Revision,
		Page:     Paginate(sorted, req.Page, req.PageSize),
		Stats:    p.stats(snap),
		Filtered: len(filtered),
	}
	p.cache.SetDefault(key, res)
	p.logger.Debug("computed projection", "revision", snap.Revision, "matched", len(filtered))
	return res
}

// Stats returns memoized statistics for the current collection.
func (p *Projector) Stats() project.Stats {
	return p.stats(p.source.Snapshot())
}

func (p *Projector) stats(snap project.Snapshot) project.Stats {
	key := fmt.Sprintf("stats|%d", snap.Revision)
	if v, ok := p.cache.Get(key); ok {
		return v.(project.Stats)
	}
	st := project.ComputeStats(snap.Projects)
	p.cache.SetDefault(key, st)
	return st
}

// Reset drops every memoized projection.
func (p *Projector) Reset() {
	p.cache.Flush()
}
