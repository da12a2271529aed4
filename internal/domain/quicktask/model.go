package quicktask

import "time"

// QuickTask is a lightweight to-do item outside any project.
type QuickTask struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Completed  bool      `json:"completed"`
	CreatedAt  time.Time `json:"createdAt"`
	FolderLink string    `json:"folderLink,omitempty"`
}

// Snapshot is a point-in-time copy of the collection.
type Snapshot struct {
	Revision uint64
	Tasks    []QuickTask
}
