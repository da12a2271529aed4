package mcp

import (
	"github.com/ganot/taskdesk/internal/domain/client"
	"github.com/ganot/taskdesk/internal/domain/project"
	"github.com/ganot/taskdesk/internal/domain/quicktask"
)

// ContactParams carries client contact channels.
type ContactParams struct {
	Phone     string `json:"phone,omitempty"`
	Phone2    string `json:"phone2,omitempty"`
	Whatsapp  string `json:"whatsapp,omitempty"`
	Whatsapp2 string `json:"whatsapp2,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (c ContactParams) toContact() project.Contact {
	return project.Contact{
		Phone:     c.Phone,
		Phone2:    c.Phone2,
		Whatsapp:  c.Whatsapp,
		Whatsapp2: c.Whatsapp2,
		Email:     c.Email,
	}
}

// CreateProjectParams represents create_project arguments.
type CreateProjectParams struct {
	ProjectName        string        `json:"project_name"`
	ProjectDescription string        `json:"project_description,omitempty"`
	ClientName         string        `json:"client_name"`
	Contact            ContactParams `json:"contact,omitempty"`
	FolderPath         string        `json:"folder_path,omitempty"`
	FolderLink         string        `json:"folder_link,omitempty"`
	Tasks              []string      `json:"tasks,omitempty"`
	WorkStatus         string        `json:"work_status,omitempty"`
	Priority           string        `json:"priority,omitempty"`
	Price              float64       `json:"price,omitempty"`
	Currency           string        `json:"currency,omitempty"`
	IsPaid             bool          `json:"is_paid,omitempty"`
	IsCompleted        bool          `json:"is_completed,omitempty"`
	SaveClient         bool          `json:"save_client,omitempty"`
}

// UpdateProjectParams represents update_project arguments. Omitted fields
// are left unchanged.
type UpdateProjectParams struct {
	ID                 string         `json:"id"`
	ProjectName        *string        `json:"project_name,omitempty"`
	ProjectDescription *string        `json:"project_description,omitempty"`
	ClientName         *string        `json:"client_name,omitempty"`
	Contact            *ContactParams `json:"contact,omitempty"`
	FolderPath         *string        `json:"folder_path,omitempty"`
	FolderLink         *string        `json:"folder_link,omitempty"`
	WorkStatus         *string        `json:"work_status,omitempty"`
	Priority           *string        `json:"priority,omitempty"`
	Price              *float64       `json:"price,omitempty"`
	Currency           *string        `json:"currency,omitempty"`
	IsPaid             *bool          `json:"is_paid,omitempty"`
	IsCompleted        *bool          `json:"is_completed,omitempty"`
}

func (p UpdateProjectParams) toPatch() project.Patch {
	patch := project.Patch{
		ProjectName:        p.ProjectName,
		ProjectDescription: p.ProjectDescription,
		ClientName:         p.ClientName,
		FolderPath:         p.FolderPath,
		FolderLink:         p.FolderLink,
		Price:              p.Price,
		Currency:           p.Currency,
		IsPaid:             p.IsPaid,
		IsCompleted:        p.IsCompleted,
	}
	if p.Contact != nil {
		patch = patch.SetContact(p.Contact.toContact())
	}
	if p.WorkStatus != nil {
		patch = patch.SetWorkStatus(project.WorkStatus(*p.WorkStatus))
	}
	if p.Priority != nil {
		patch = patch.SetPriority(project.Priority(*p.Priority))
	}
	return patch
}

// IDParams carries a single entity ID.
type IDParams struct {
	ID string `json:"id"`
}

// DeleteProjectsParams represents delete_projects arguments.
type DeleteProjectsParams struct {
	IDs []string `json:"ids"`
}

// ListProjectsParams represents list_projects arguments.
type ListProjectsParams struct {
	Search    string `json:"search,omitempty"`
	Priority  string `json:"priority,omitempty"`
	Status    string `json:"status,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Page      int    `json:"page,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
}

// ListProjectsResponse is one page of the filtered, sorted collection.
type ListProjectsResponse struct {
	Projects    []project.Project `json:"projects"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	TotalPages  int               `json:"total_pages"`
	Total       int               `json:"total"`
	Filtered    int               `json:"filtered"`
	PageNumbers []int             `json:"page_numbers"`
	Revision    uint64            `json:"revision"`
}

// SubTaskParams addresses a sub-task inside a project.
type SubTaskParams struct {
	ProjectID string `json:"project_id"`
	SubTaskID string `json:"sub_task_id,omitempty"`
	Text      string `json:"text,omitempty"`
}

// ExportProjectsParams represents export_projects arguments.
type ExportProjectsParams struct {
	Format string `json:"format,omitempty"`
}

// ExportProjectsResponse reports where the export was written.
type ExportProjectsResponse struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

// AddQuickTaskParams represents add_quick_task arguments.
type AddQuickTaskParams struct {
	Title      string `json:"title"`
	FolderLink string `json:"folder_link,omitempty"`
}

// SetQuickTaskLinkParams represents set_quick_task_link arguments.
type SetQuickTaskLinkParams struct {
	ID         string `json:"id"`
	FolderLink string `json:"folder_link"`
}

// ListQuickTasksParams represents list_quick_tasks arguments.
type ListQuickTasksParams struct {
	PendingOnly bool `json:"pending_only,omitempty"`
}

// ListQuickTasksResponse lists quick tasks with a pending count.
type ListQuickTasksResponse struct {
	Tasks   []quicktask.QuickTask `json:"tasks"`
	Pending int                   `json:"pending"`
}

// SaveClientParams represents save_client arguments.
type SaveClientParams struct {
	Name    string        `json:"name"`
	Contact ContactParams `json:"contact,omitempty"`
	// SyncProjects re-copies the saved contact into the client's projects.
	SyncProjects bool `json:"sync_projects,omitempty"`
}

// SaveClientResponse returns the saved client and how many projects were
// refreshed.
type SaveClientResponse struct {
	Client          *client.Client `json:"client"`
	ProjectsUpdated int            `json:"projects_updated"`
}

// NameParams carries a client name or search query.
type NameParams struct {
	Name string `json:"name"`
}

// ContactLinksParams represents contact_links arguments.
type ContactLinksParams struct {
	Phone        string `json:"phone,omitempty"`
	Whatsapp     string `json:"whatsapp,omitempty"`
	Email        string `json:"email,omitempty"`
	Message      string `json:"message,omitempty"`
	EmailSubject string `json:"email_subject,omitempty"`
}

// ContactLinksResponse holds the generated deep links. Channels that were
// not supplied or failed validation are omitted and reported in Errors.
type ContactLinksResponse struct {
	Phone     string            `json:"phone,omitempty"`
	Tel       string            `json:"tel,omitempty"`
	Whatsapp  string            `json:"whatsapp,omitempty"`
	Mailto    string            `json:"mailto,omitempty"`
	Valid     *bool             `json:"valid,omitempty"`
	PhoneType string            `json:"phone_type,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// ExportNotesParams represents export_notes arguments.
type ExportNotesParams struct {
	Collection string `json:"collection"`
}

// ExportNotesResponse reports the notice shown to the user and the exported text.
type ExportNotesResponse struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Content string `json:"content"`
}

// OpenFolderParams represents open_folder arguments.
type OpenFolderParams struct {
	Path   string `json:"path"`
	Reveal bool   `json:"reveal,omitempty"`
}

// GetRecentActivityParams represents get_recent_activity arguments.
type GetRecentActivityParams struct {
	Collection string `json:"collection,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}
