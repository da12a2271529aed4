package desktop

import (
	"context"
	"log/slog"

	"github.com/ganot/taskdesk/internal/domain/quicktask"
)

const (
	msgTaskListCreated = "✅ רשימת המשימות נוצרה בהצלחה"
	msgTaskListFailed  = "❌ שגיאה ביצירת רשימת המשימות"
	msgNothingPending  = "אין משימות פתוחות לייצוא"
)

// TaskListSync is an external task-list service. Data only flows out.
type TaskListSync interface {
	Initialize(ctx context.Context, clientID, apiKey string) error
	Authenticate(ctx context.Context) error
	SignOut(ctx context.Context) error
	CreateTaskListFromItems(ctx context.Context, items []string) (bool, error)
}

// ExportPendingQuickTasks sends the titles of pending quick tasks to sync.
func ExportPendingQuickTasks(ctx context.Context, sync TaskListSync, tasks []quicktask.QuickTask, logger *slog.Logger) Notice {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if sync == nil {
		return Notice{Level: LevelError, Message: msgTaskListFailed}
	}

	var items []string
	for _, t := range tasks {
		if !t.Completed {
			items = append(items, t.Title)
		}
	}
	if len(items) == 0 {
		return Notice{Level: LevelInfo, Message: msgNothingPending}
	}

	if err := sync.Authenticate(ctx); err != nil {
		logger.Warn("task list authentication failed", "error", err)
		return Notice{Level: LevelError, Message: msgTaskListFailed}
	}
	ok, err := sync.CreateTaskListFromItems(ctx, items)
	if err != nil || !ok {
		logger.Warn("failed to create task list", "items", len(items), "error", err)
		return Notice{Level: LevelError, Message: msgTaskListFailed}
	}
	return Notice{Level: LevelSuccess, Message: msgTaskListCreated}
}
