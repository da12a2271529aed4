package quicktask

import (
	"fmt"
	"strings"
	"time"
)

// FormatNotes renders the pending tasks as a plain-text checklist note.
func FormatNotes(tasks []QuickTask, now time.Time) string {
	date := now.Format("2.1.2006")

	var pending []QuickTask
	for _, t := range tasks {
		if !t.Completed {
			pending = append(pending, t)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📝 רשימת משימות - %s\n\n", date)
	if len(pending) == 0 {
		b.WriteString("🎉 כל המשימות הושלמו!\n")
		return b.String()
	}

	for _, t := range pending {
		fmt.Fprintf(&b, "☐ %s\n", t.Title)
	}
	fmt.Fprintf(&b, "\n📊 סה\"כ משימות פתוחות: %d\n", len(pending))
	fmt.Fprintf(&b, "📅 נוצר: %s\n", date)
	b.WriteString("\n💡 כדי לסמן משימה כהושלמה - סמן ✓ ליד הטקסט\n")
	return b.String()
}
