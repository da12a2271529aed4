package view

import "slices"

// PageSizeOptions are the page sizes offered by the paginated list.
var PageSizeOptions = []int{10, 20, 50, 100}

const (
	DefaultPageSize = 20
	// DefaultPageWindow is how many page numbers the navigation shows.
	DefaultPageWindow = 5
)

// Page is one page of a list. Start and End are zero-based item offsets,
// End exclusive.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalPages int
	Total      int
	Start      int
	End        int
}

// Paginate returns the requested page, clamping page into [1, TotalPages].
// A pageSize <= 0 uses DefaultPageSize.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	page = max(1, min(page, totalPages))

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	return Page[T]{
		Items:      slices.Clone(items[start:end]),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      total,
		Start:      start,
		End:        end,
	}
}

// ValidPageSize reports whether size is one of PageSizeOptions.
func ValidPageSize(size int) bool {
	return slices.Contains(PageSizeOptions, size)
}

// PageNumbers returns up to window page numbers centred on current where
// possible.
func PageNumbers(current, totalPages, window int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	if window <= 0 {
		window = DefaultPageWindow
	}
	current = max(1, min(current, totalPages))

	count := min(window, totalPages)
	half := window / 2
	var first int
	switch {
	case totalPages <= window:
		first = 1
	case current <= half+1:
		first = 1
	case current >= totalPages-half:
		first = totalPages - window + 1
	default:
		first = current - half
	}

	out := make([]int, count)
	for i := range out {
		out[i] = first + i
	}
	return out
}
