package view

const (
	DefaultItemHeight     = 200
	DefaultViewportHeight = 600
	DefaultOverscan       = 2
	// VirtualizeThreshold is the list length up to which every item renders.
	VirtualizeThreshold = 10
)

// Range is the slice of a list to render. End is exclusive.
type Range struct {
	Start         int
	End           int
	Virtualized   bool
	ContentHeight int
}

// VisibleRange computes which items of a fixed-height list intersect the
// viewport at the given scroll offset, widened by overscan items each side.
func VisibleRange(total, itemHeight, viewport, offset, overscan int) Range {
	if itemHeight <= 0 {
		itemHeight = DefaultItemHeight
	}
	if viewport <= 0 {
		viewport = DefaultViewportHeight
	}
	total = max(total, 0)
	height := total * itemHeight

	if total <= VirtualizeThreshold {
		return Range{Start: 0, End: total, ContentHeight: height}
	}

	offset = max(0, min(offset, max(height-viewport, 0)))
	overscan = max(overscan, 0)
	first := offset / itemHeight
	visible := (viewport + itemHeight - 1) / itemHeight

	return Range{
		Start:         max(0, first-overscan),
		End:           min(total, first+visible+overscan+1),
		Virtualized:   true,
		ContentHeight: height,
	}
}
