package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ganot/taskdesk/internal/domain/project"
)

// SortField names a sortable project column.
type SortField string

const (
	SortByProjectName SortField = "projectName"
	SortByClientName  SortField = "clientName"
	SortByPrice       SortField = "price"
	SortByPriority    SortField = "priority"
	SortByWorkStatus  SortField = "workStatus"
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
)

// Direction is the sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultSort is the table's initial ordering.
var DefaultSort = SortState{Field: SortByUpdatedAt, Direction: Desc}

// SortState is the active column and direction of a table.
type SortState struct {
	Field     SortField
	Direction Direction
}

// Toggle returns the state after a click on field: the same column flips
// direction, a new column starts ascending.
func (s SortState) Toggle(field SortField) SortState {
	if s.Field == field {
		if s.Direction == Asc {
			return SortState{Field: field, Direction: Desc}
		}
		return SortState{Field: field, Direction: Asc}
	}
	return SortState{Field: field, Direction: Asc}
}

// Sort returns a stably sorted copy of projects. Unknown fields keep the
// input order.
func Sort(projects []project.Project, field SortField, dir Direction) []project.Project {
	out := slices.Clone(projects)
	compare := comparator(field)
	if compare == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b project.Project) int {
		c := compare(a, b)
		if dir == Desc {
			return -c
		}
		return c
	})
	return out
}

func comparator(field SortField) func(a, b project.Project) int {
	switch field {
	case SortByProjectName:
		return func(a, b project.Project) int { return strings.Compare(a.ProjectName, b.ProjectName) }
	case SortByClientName:
		return func(a, b project.Project) int { return strings.Compare(a.ClientName, b.ClientName) }
	case SortByPrice:
		return func(a, b project.Project) int { return cmp.Compare(a.Price, b.Price) }
	case SortByPriority:
		return func(a, b project.Project) int { return cmp.Compare(a.Priority.Rank(), b.Priority.Rank()) }
	case SortByWorkStatus:
		return func(a, b project.Project) int { return strings.Compare(string(a.WorkStatus), string(b.WorkStatus)) }
	case SortByCreatedAt:
		return func(a, b project.Project) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByUpdatedAt:
		return func(a, b project.Project) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	}
	return nil
}
