package project

import (
	"fmt"
	"strings"
	"time"
)

var statusLabels = map[WorkStatus]string{
	StatusNotStarted: "⏳ לא החל",
	StatusInProgress: "🔄 בתהליך",
	StatusReview:     "👀 בבדיקה",
	StatusOnHold:     "⏸️ מושעה",
	StatusCompleted:  "✅ הושלם",
}

var priorityLabels = map[Priority]string{
	PriorityHigh:   "🔴 גבוהה",
	PriorityMedium: "🟡 בינונית",
	PriorityLow:    "🟢 נמוכה",
}

// FormatNotes renders projects as a plain-text note.
func FormatNotes(projects []Project, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 רשימת פרויקטים - %s\n\n", now.Format("2.1.2006"))

	completed, paid := 0, 0
	for i, p := range projects {
		if p.IsCompleted {
			completed++
		}
		if p.IsPaid {
			paid++
		}

		fmt.Fprintf(&b, "%d. 📂 %s\n", i+1, p.ProjectName)
		fmt.Fprintf(&b, "   👤 לקוח: %s\n", p.ClientName)
		if p.ProjectDescription != "" {
			fmt.Fprintf(&b, "   📝 תיאור: %s\n", p.ProjectDescription)
		}
		fmt.Fprintf(&b, "   📊 סטטוס: %s\n", label(statusLabels[p.WorkStatus], string(p.WorkStatus)))
		fmt.Fprintf(&b, "   ⚡ עדיפות: %s\n", label(priorityLabels[p.Priority], string(p.Priority)))
		if p.Price > 0 {
			fmt.Fprintf(&b, "   💰 מחיר: %s %s\n", formatPrice(p.Price), p.Currency)
			fmt.Fprintf(&b, "   💳 שולם: %s\n", yesNo(p.IsPaid, "כן", "לא"))
		}
		if p.ClientPhone != "" {
			fmt.Fprintf(&b, "   📞 טלפון: %s\n", p.ClientPhone)
		}
		if p.ClientEmail != "" {
			fmt.Fprintf(&b, "   📧 אימייל: %s\n", p.ClientEmail)
		}
		if len(p.Tasks) > 0 {
			b.WriteString("   📋 משימות:\n")
			for _, t := range p.Tasks {
				fmt.Fprintf(&b, "      %s %s\n", yesNo(t.IsCompleted, "✅", "☐"), t.Text)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("📊 סיכום:\n")
	fmt.Fprintf(&b, "• סה\"כ פרויקטים: %d\n", len(projects))
	fmt.Fprintf(&b, "• הושלמו: %d\n", completed)
	fmt.Fprintf(&b, "• שולמו: %d\n", paid)
	return b.String()
}

func label(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
