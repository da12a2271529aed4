package view

import (
	"time"

	"github.com/ganot/taskdesk/internal/persist"
)

// DefaultSearchDebounce is the quiet period before a search term applies.
const DefaultSearchDebounce = 300 * time.Millisecond

// SearchDebouncer applies only the latest search term once typing pauses.
// It serves interactive callers that feed keystrokes into a Query; the MCP
// tools receive finished terms and call Projector.Project directly.
type SearchDebouncer struct {
	sched *persist.Scheduler[string]
}

// NewSearchDebouncer calls apply with the latest term after delay of quiet.
func NewSearchDebouncer(delay time.Duration, apply func(term string)) *SearchDebouncer {
	return &SearchDebouncer{sched: persist.NewScheduler(delay, apply)}
}

// Set records a new term and restarts the quiet period.
func (d *SearchDebouncer) Set(term string) {
	d.sched.ScheduleWrite(term)
}

// Flush applies a pending term immediately and reports whether one was applied.
func (d *SearchDebouncer) Flush() bool {
	return d.sched.Flush()
}

// Stop discards a pending term.
func (d *SearchDebouncer) Stop() {
	d.sched.Close(false)
}
