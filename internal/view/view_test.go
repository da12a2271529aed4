package view

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganot/taskdesk/internal/domain/project"
)

func fixture() []project.Project {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []project.Project{
		{ID: "1", ProjectName: "Website", ClientName: "Acme", ProjectDescription: "landing page", Priority: project.PriorityHigh, Price: 300, UpdatedAt: base.Add(3 * time.Hour)},
		{ID: "2", ProjectName: "Logo", ClientName: "Globex", Priority: project.PriorityLow, Price: 100, IsCompleted: true, UpdatedAt: base.Add(1 * time.Hour)},
		{ID: "3", ProjectName: "Brochure", ClientName: "Acme Print", ProjectDescription: "Tri-fold", Priority: project.PriorityMedium, Price: 200, UpdatedAt: base.Add(2 * time.Hour)},
	}
}

func ids(ps []project.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	ps := fixture()

	require.Equal(t, []string{"1", "2", "3"}, ids(Filter(ps, Query{})))
	require.Equal(t, []string{"1", "3"}, ids(Filter(ps, Query{Search: "ACME"})))
	require.Equal(t, []string{"3"}, ids(Filter(ps, Query{Search: "tri-"})))
	require.Equal(t, []string{"1"}, ids(Filter(ps, Query{Search: "landing"})))
	require.Equal(t, []string{"2"}, ids(Filter(ps, Query{Priority: "low"})))
	require.Equal(t, []string{"1", "2", "3"}, ids(Filter(ps, Query{Priority: PriorityAll, Status: StatusAll})))
	require.Equal(t, []string{"2"}, ids(Filter(ps, Query{Status: StatusCompleted})))
	require.Equal(t, []string{"1", "3"}, ids(Filter(ps, Query{Status: StatusPending})))
	require.Equal(t, []string{"3"}, ids(Filter(ps, Query{Search: "acme", Priority: "medium", Status: StatusPending})))
}

func TestSort(t *testing.T) {
	ps := fixture()

	require.Equal(t, []string{"3", "2", "1"}, ids(Sort(ps, SortByProjectName, Asc)))
	require.Equal(t, []string{"1", "3", "2"}, ids(Sort(ps, SortByPrice, Desc)))
	require.Equal(t, []string{"2", "3", "1"}, ids(Sort(ps, SortByPriority, Asc)))
	require.Equal(t, []string{"1", "3", "2"}, ids(Sort(ps, SortByUpdatedAt, Desc)))
	require.Equal(t, []string{"1", "2", "3"}, ids(Sort(ps, "unknown", Asc)))

	// input untouched
	require.Equal(t, []string{"1", "2", "3"}, ids(ps))
}

func TestSort_Stable(t *testing.T) {
	ps := []project.Project{
		{ID: "a", ClientName: "Acme"},
		{ID: "b", ClientName: "Acme"},
		{ID: "c", ClientName: "Acme"},
	}
	require.Equal(t, []string{"a", "b", "c"}, ids(Sort(ps, SortByClientName, Desc)))
}

func TestSortState_Toggle(t *testing.T) {
	s := DefaultSort.Toggle(SortByUpdatedAt)
	require.Equal(t, SortState{Field: SortByUpdatedAt, Direction: Asc}, s)
	s = s.Toggle(SortByUpdatedAt)
	require.Equal(t, Desc, s.Direction)
	s = s.Toggle(SortByPrice)
	require.Equal(t, SortState{Field: SortByPrice, Direction: Asc}, s)
}

func TestPaginate(t *testing.T) {
	items := make([]int, 45)
	for i := range items {
		items[i] = i
	}

	p := Paginate(items, 1, 20)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 0, p.Start)
	require.Equal(t, 20, p.End)
	require.Len(t, p.Items, 20)

	p = Paginate(items, 3, 20)
	require.Equal(t, []int{40, 41, 42, 43, 44}, p.Items)

	p = Paginate(items, 99, 20)
	require.Equal(t, 3, p.Page)

	p = Paginate(items, -4, 20)
	require.Equal(t, 1, p.Page)

	p = Paginate(items, 1, 0)
	require.Equal(t, DefaultPageSize, p.PageSize)

	empty := Paginate([]int{}, 5, 10)
	require.Equal(t, 1, empty.Page)
	require.Equal(t, 0, empty.TotalPages)
	require.Empty(t, empty.Items)
}

func TestPageNumbers(t *testing.T) {
	require.Equal(t, []int{1, 2, 3}, PageNumbers(2, 3, 5))
	require.Equal(t, []int{1, 2, 3, 4, 5}, PageNumbers(1, 10, 5))
	require.Equal(t, []int{1, 2, 3, 4, 5}, PageNumbers(3, 10, 5))
	require.Equal(t, []int{2, 3, 4, 5, 6}, PageNumbers(4, 10, 5))
	require.Equal(t, []int{6, 7, 8, 9, 10}, PageNumbers(8, 10, 5))
	require.Equal(t, []int{6, 7, 8, 9, 10}, PageNumbers(42, 10, 5))
	require.Empty(t, PageNumbers(1, 0, 5))
}

func TestValidPageSize(t *testing.T) {
	require.True(t, ValidPageSize(50))
	require.False(t, ValidPageSize(7))
}

func TestVisibleRange(t *testing.T) {
	r := VisibleRange(8, 200, 600, 400, 2)
	require.Equal(t, Range{Start: 0, End: 8, ContentHeight: 1600}, r)

	r = VisibleRange(100, 200, 600, 0, 2)
	require.True(t, r.Virtualized)
	require.Equal(t, 0, r.Start)
	require.Equal(t, 6, r.End)

	r = VisibleRange(100, 200, 600, 2000, 2)
	require.Equal(t, 8, r.Start)
	require.Equal(t, 16, r.End)

	r = VisibleRange(100, 200, 600, 1_000_000, 2)
	require.Equal(t, 100, r.End)
	require.Equal(t, 20000, r.ContentHeight)
}

func TestSearchDebouncer_AppliesLatestTerm(t *testing.T) {
	var mu sync.Mutex
	var applied []string
	d := NewSearchDebouncer(20*time.Millisecond, func(term string) {
		mu.Lock()
		defer mu.Unlock()
		applied = append(applied, term)
	})

	for _, term := range []string{"a", "ac", "acm", "acme"} {
		d.Set(term)
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(applied) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	require.Equal(t, []string{"acme"}, applied)
	mu.Unlock()

	d.Set("x")
	d.Stop()
	time.Sleep(40 * time.Millisecond)
	mu.Lock()
	require.Equal(t, []string{"acme"}, applied)
	mu.Unlock()
}

func TestSearchDebouncer_DrivesProjection(t *testing.T) {
	src := &countingSource{snap: project.Snapshot{Revision: 1, Projects: fixture()}}
	p := NewProjector(src, time.Minute, nil)

	var mu sync.Mutex
	var results []Result
	d := NewSearchDebouncer(time.Hour, func(term string) {
		res := p.Project(Request{Query: Query{Search: term}, Page: 1, PageSize: 10})
		mu.Lock()
		defer mu.Unlock()
		results = append(results, res)
	})
	defer d.Stop()

	for _, term := range []string{"g", "gl", "glo"} {
		d.Set(term)
	}
	require.True(t, d.Flush())
	require.False(t, d.Flush())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	require.Equal(t, []string{"2"}, ids(results[0].Page.Items))
	require.Equal(t, 1, results[0].Filtered)
}

type countingSource struct {
	mu    sync.Mutex
	snap  project.Snapshot
	calls int
}

func (c *countingSource) Snapshot() project.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.snap
}

func TestProjector_MemoizesByRevision(t *testing.T) {
	src := &countingSource{snap: project.Snapshot{Revision: 1, Projects: fixture()}}
	p := NewProjector(src, time.Minute, nil)

	req := Request{Query: Query{Search: "acme"}, Sort: SortState{Field: SortByPrice, Direction: Asc}, Page: 1, PageSize: 10}
	first := p.Project(req)
	require.Equal(t, []string{"3", "1"}, ids(first.Page.Items))
	require.Equal(t, 2, first.Filtered)
	require.Equal(t, 3, first.Stats.Total)

	again := p.Project(req)
	require.Equal(t, first, again)

	src.mu.Lock()
	src.snap = project.Snapshot{Revision: 2, Projects: fixture()[:1]}
	src.mu.Unlock()

	next := p.Project(req)
	require.Equal(t, uint64(2), next.Revision)
	require.Equal(t, []string{"1"}, ids(next.Page.Items))
	require.Equal(t, 1, p.Stats().Total)
}

func TestProjector_DefaultSort(t *testing.T) {
	src := &countingSource{snap: project.Snapshot{Revision: 1, Projects: fixture()}}
	p := NewProjector(src, 0, nil)

	res := p.Project(Request{})
	require.Equal(t, []string{"1", "3", "2"}, ids(res.Page.Items))
	require.Equal(t, DefaultPageSize, res.Page.PageSize)
}
