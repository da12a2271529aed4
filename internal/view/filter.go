// Package view derives filtered, sorted and paginated projections of the
// project collection for list, table and dashboard surfaces.
package view

import (
	"strings"

	"github.com/ganot/taskdesk/internal/domain/project"
)

// StatusFilter selects projects by their completion flag.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

// PriorityAll disables priority filtering.
const PriorityAll = "all"

// Query is the filter state shared by every view.
type Query struct {
	Search   string
	Priority string
	Status   StatusFilter
}

// Filter returns the projects matching q, preserving order. Search is a
// case-insensitive substring match over project name, client name and
// description.
func Filter(projects []project.Project, q Query) []project.Project {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]project.Project, 0, len(projects))
	for _, p := range projects {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if q.Priority != "" && q.Priority != PriorityAll && string(p.Priority) != q.Priority {
			continue
		}
		switch q.Status {
		case StatusCompleted:
			if !p.IsCompleted {
				continue
			}
		case StatusPending:
			if p.IsCompleted {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p project.Project, search string) bool {
	return strings.Contains(strings.ToLower(p.ProjectName), search) ||
		strings.Contains(strings.ToLower(p.ClientName), search) ||
		strings.Contains(strings.ToLower(p.ProjectDescription), search)
}
