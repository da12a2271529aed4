package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated      ActivityType = "project_created"
	TypeProjectUpdated      ActivityType = "project_updated"
	TypeProjectDeleted      ActivityType = "project_deleted"
	TypeQuickTaskAdded      ActivityType = "quick_task_added"
	TypeQuickTaskToggled    ActivityType = "quick_task_toggled"
	TypeQuickTaskDeleted    ActivityType = "quick_task_deleted"
	TypeClientSaved         ActivityType = "client_saved"
	TypeClientDeleted       ActivityType = "client_deleted"
	TypeCollectionTruncated ActivityType = "collection_truncated"
)

// Collection names used in activity entries.
const (
	CollectionProjects   = "projects"
	CollectionQuickTasks = "quick_tasks"
	CollectionClients    = "clients"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	Collection   string       `json:"collection"`
	EntityID     *string      `json:"entity_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
