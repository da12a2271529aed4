package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/taskdesk/internal/contact"
	"github.com/ganot/taskdesk/internal/desktop"
	"github.com/ganot/taskdesk/internal/domain/activity"
	"github.com/ganot/taskdesk/internal/domain/client"
	"github.com/ganot/taskdesk/internal/domain/project"
	"github.com/ganot/taskdesk/internal/domain/quicktask"
	"github.com/ganot/taskdesk/internal/view"
)

const defaultActivityLimit = 20

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Update(ctx context.Context, id string, patch project.Patch) (*project.Project, error)
	Delete(ctx context.Context, id string) bool
	BatchDelete(ctx context.Context, ids []string) int
	Get(id string) (*project.Project, error)
	List() []project.Project
	AddSubTask(ctx context.Context, projectID, text string) (*project.Project, error)
	ToggleSubTask(ctx context.Context, projectID, subTaskID string) (*project.Project, error)
	RemoveSubTask(ctx context.Context, projectID, subTaskID string) (*project.Project, error)
	SyncClientContact(ctx context.Context, clientName string, contact project.Contact) int
	WriteExport(dir, format string) (string, error)
}

// ProjectViews serves memoized list pages and statistics.
type ProjectViews interface {
	Project(req view.Request) view.Result
	Stats() project.Stats
}

// QuickTaskService defines quick task operations needed by MCP.
type QuickTaskService interface {
	Add(ctx context.Context, title string) (*quicktask.QuickTask, error)
	Toggle(ctx context.Context, id string) (*quicktask.QuickTask, error)
	SetFolderLink(ctx context.Context, id, link string) (*quicktask.QuickTask, error)
	Delete(ctx context.Context, id string) bool
	List() []quicktask.QuickTask
	Pending() []quicktask.QuickTask
}

// ClientService defines client directory operations needed by MCP.
type ClientService interface {
	Upsert(ctx context.Context, in client.Input) (*client.Client, error)
	FindByName(name string) (*client.Client, bool)
	Suggest(query string) []client.Client
	Delete(ctx context.Context, id string) bool
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// NotesExporter delivers formatted text to the user's notes.
type NotesExporter interface {
	Export(ctx context.Context, content string) desktop.Notice
}

// Services contains all domain services needed by MCP. Notes, Shell and
// TaskList may be nil; the matching tools then report an error notice.
type Services struct {
	Projects   ProjectService
	Views      ProjectViews
	QuickTasks QuickTaskService
	Clients    ClientService
	Activity   ActivityService
	Contacts   *contact.Handler
	Notes      NotesExporter
	Shell      desktop.Shell
	TaskList   desktop.TaskListSync
	// ExportDir is where export_projects writes files.
	ExportDir string
	// PageSize is the list_projects page size when a request leaves it unset.
	PageSize int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler dispatches MCP commands.
type Handler struct {
	svc    Services
	logger *slog.Logger
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if svc.Contacts == nil {
		svc.Contacts = contact.NewHandler(contact.DefaultCountryCode)
	}
	if svc.Now == nil {
		svc.Now = time.Now
	}
	if svc.ExportDir == "" {
		svc.ExportDir = "."
	}
	if svc.PageSize <= 0 {
		svc.PageSize = view.DefaultPageSize
	}
	return &Handler{svc: svc, logger: logger}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.createProject(ctx, req)
	case "update_project":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.svc.Projects.Update(ctx, req.ID, req.toPatch())
		if err != nil {
			return nil, mapError(err)
		}
		if proj == nil {
			return nil, mapError(project.ErrProjectNotFound)
		}
		return proj, nil
	case "delete_project":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": h.svc.Projects.Delete(ctx, req.ID)}, nil
	case "delete_projects":
		var req DeleteProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": h.svc.Projects.BatchDelete(ctx, req.IDs)}, nil
	case "get_project":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.svc.Projects.Get(req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "list_projects":
		var req ListProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.listProjects(req), nil
	case "get_project_stats":
		return h.svc.Views.Stats(), nil
	case "add_sub_task":
		var req SubTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.svc.Projects.AddSubTask(ctx, req.ProjectID, req.Text)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "toggle_sub_task":
		var req SubTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.svc.Projects.ToggleSubTask(ctx, req.ProjectID, req.SubTaskID)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "remove_sub_task":
		var req SubTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, err := h.svc.Projects.RemoveSubTask(ctx, req.ProjectID, req.SubTaskID)
		if err != nil {
			return nil, mapError(err)
		}
		return proj, nil
	case "export_projects":
		var req ExportProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		format := strings.ToLower(req.Format)
		if format == "" {
			format = project.FormatCSV
		}
		path, err := h.svc.Projects.WriteExport(h.svc.ExportDir, format)
		if err != nil {
			return nil, mapError(err)
		}
		h.logger.Info("exported projects", "format", format, "path", path)
		return ExportProjectsResponse{Path: path, Format: format}, nil
	case "open_folder":
		var req OpenFolderParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.openFolder(ctx, req)

	case "add_quick_task":
		var req AddQuickTaskParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		task, err := h.svc.QuickTasks.Add(ctx, req.Title)
		if err != nil {
			return nil, mapError(err)
		}
		if task == nil {
			return nil, &APIError{Code: "INVALID_INPUT", Message: "title is required"}
		}
		if req.FolderLink != "" {
			linked, err := h.svc.QuickTasks.SetFolderLink(ctx, task.ID, req.FolderLink)
			if err != nil {
				return nil, mapError(err)
			}
			if linked != nil {
				task = linked
			}
		}
		return task, nil
	case "toggle_quick_task":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		task, err := h.svc.QuickTasks.Toggle(ctx, req.ID)
		if err != nil {
			return nil, mapError(err)
		}
		if task == nil {
			return nil, mapError(quicktask.ErrTaskNotFound)
		}
		return task, nil
	case "set_quick_task_link":
		var req SetQuickTaskLinkParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		task, err := h.svc.QuickTasks.SetFolderLink(ctx, req.ID, req.FolderLink)
		if err != nil {
			return nil, mapError(err)
		}
		if task == nil {
			return nil, mapError(quicktask.ErrTaskNotFound)
		}
		return task, nil
	case "delete_quick_task":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": h.svc.QuickTasks.Delete(ctx, req.ID)}, nil
	case "list_quick_tasks":
		var req ListQuickTasksParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		pending := h.svc.QuickTasks.Pending()
		tasks := pending
		if !req.PendingOnly {
			tasks = h.svc.QuickTasks.List()
		}
		return ListQuickTasksResponse{Tasks: tasks, Pending: len(pending)}, nil
	case "sync_task_list":
		notice := desktop.ExportPendingQuickTasks(ctx, h.svc.TaskList, h.svc.QuickTasks.List(), h.logger)
		return notice, nil

	case "save_client":
		var req SaveClientParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.saveClient(ctx, req)
	case "find_client":
		var req NameParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		c, ok := h.svc.Clients.FindByName(req.Name)
		return map[string]any{"found": ok, "client": c}, nil
	case "suggest_clients":
		var req NameParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return map[string]any{"clients": h.svc.Clients.Suggest(req.Name)}, nil
	case "delete_client":
		var req IDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": h.svc.Clients.Delete(ctx, req.ID)}, nil
	case "contact_links":
		var req ContactLinksParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.contactLinks(req), nil

	case "export_notes":
		var req ExportNotesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.exportNotes(ctx, req)
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Limit <= 0 {
			req.Limit = defaultActivityLimit
		}
		opts := activity.ListActivityOptions{
			Collection: req.Collection,
			Limit:      req.Limit,
		}
		if req.EntityID != "" {
			opts.EntityID = &req.EntityID
		}
		entries, err := h.svc.Activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, mapError(err)
		}
		return map[string]any{"entries": entries}, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func (h *Handler) createProject(ctx context.Context, req CreateProjectParams) (any, error) {
	tasks := make([]project.SubTask, 0, len(req.Tasks))
	for _, text := range req.Tasks {
		tasks = append(tasks, project.SubTask{Text: text})
	}

	contactData := req.Contact.toContact()
	if req.Contact == (ContactParams{}) {
		if c, ok := h.svc.Clients.FindByName(req.ClientName); ok {
			contactData = c.Contact()
		}
	}

	proj, err := h.svc.Projects.Create(ctx, project.CreateRequest{
		ProjectName:        req.ProjectName,
		ProjectDescription: req.ProjectDescription,
		FolderPath:         req.FolderPath,
		FolderLink:         req.FolderLink,
		ClientName:         req.ClientName,
		Contact:            contactData,
		Tasks:              tasks,
		WorkStatus:         project.WorkStatus(req.WorkStatus),
		Priority:           project.Priority(req.Priority),
		Price:              req.Price,
		Currency:           req.Currency,
		IsPaid:             req.IsPaid,
		IsCompleted:        req.IsCompleted,
	})
	if err != nil {
		return nil, mapError(err)
	}

	if req.SaveClient {
		if _, err := h.svc.Clients.Upsert(ctx, clientInput(req.ClientName, contactData)); err != nil {
			h.logger.Warn("failed to save client with project", "client", req.ClientName, "error", err)
		}
	}
	return proj, nil
}

func (h *Handler) listProjects(req ListProjectsParams) ListProjectsResponse {
	sortState := view.DefaultSort
	if req.SortBy != "" {
		sortState = view.SortState{Field: view.SortField(req.SortBy), Direction: view.Asc}
		if strings.EqualFold(req.SortOrder, string(view.Desc)) {
			sortState.Direction = view.Desc
		}
	}
	status := view.StatusFilter(req.Status)
	if status == "" {
		status = view.StatusAll
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = h.svc.PageSize
	}

	res := h.svc.Views.Project(view.Request{
		Query: view.Query{
			Search:   req.Search,
			Priority: req.Priority,
			Status:   status,
		},
		Sort:     sortState,
		Page:     req.Page,
		PageSize: pageSize,
	})

	items := res.Page.Items
	if items == nil {
		items = []project.Project{}
	}
	return ListProjectsResponse{
		Projects:    items,
		Page:        res.Page.Page,
		PageSize:    res.Page.PageSize,
		TotalPages:  res.Page.TotalPages,
		Total:       res.Stats.Total,
		Filtered:    res.Filtered,
		PageNumbers: view.PageNumbers(res.Page.Page, res.Page.TotalPages, view.DefaultPageWindow),
		Revision:    res.Revision,
	}
}

func (h *Handler) saveClient(ctx context.Context, req SaveClientParams) (any, error) {
	c, err := h.svc.Clients.Upsert(ctx, clientInput(req.Name, req.Contact.toContact()))
	if err != nil {
		return nil, mapError(err)
	}
	resp := SaveClientResponse{Client: c}
	if req.SyncProjects {
		resp.ProjectsUpdated = h.svc.Projects.SyncClientContact(ctx, c.Name, c.Contact())
	}
	return resp, nil
}

func (h *Handler) contactLinks(req ContactLinksParams) ContactLinksResponse {
	var resp ContactLinksResponse
	fail := func(channel string, err error) {
		if resp.Errors == nil {
			resp.Errors = map[string]string{}
		}
		resp.Errors[channel] = err.Error()
	}

	if req.Phone != "" {
		v := h.svc.Contacts.Validate(req.Phone)
		resp.Valid = &v.Valid
		resp.PhoneType = string(v.Type)
		resp.Phone = h.svc.Contacts.Format(req.Phone)
		if tel, err := h.svc.Contacts.TelLink(req.Phone); err != nil {
			fail("phone", err)
		} else {
			resp.Tel = tel
		}
	}

	whatsapp := req.Whatsapp
	if whatsapp == "" {
		whatsapp = req.Phone
	}
	if whatsapp != "" {
		if wa, err := h.svc.Contacts.WhatsAppLink(whatsapp, req.Message); err != nil {
			fail("whatsapp", err)
		} else {
			resp.Whatsapp = wa.URL
		}
	}

	if req.Email != "" {
		if link, err := contact.MailtoLink(req.Email, req.EmailSubject); err != nil {
			fail("email", err)
		} else {
			resp.Mailto = link
		}
	}
	return resp
}

func (h *Handler) exportNotes(ctx context.Context, req ExportNotesParams) (any, error) {
	now := h.svc.Now()
	var content string
	switch req.Collection {
	case "", activity.CollectionProjects:
		content = project.FormatNotes(h.svc.Projects.List(), now)
	case activity.CollectionQuickTasks:
		content = quicktask.FormatNotes(h.svc.QuickTasks.List(), now)
	default:
		return nil, &APIError{
			Code:         "INVALID_INPUT",
			Message:      fmt.Sprintf("unknown collection %q", req.Collection),
			RecoveryHint: "Use projects or quick_tasks",
		}
	}

	notice := desktop.Notice{Level: desktop.LevelInfo}
	if h.svc.Notes != nil {
		notice = h.svc.Notes.Export(ctx, content)
	}
	return ExportNotesResponse{Level: string(notice.Level), Message: notice.Message, Content: content}, nil
}

func (h *Handler) openFolder(ctx context.Context, req OpenFolderParams) (any, error) {
	if h.svc.Shell == nil {
		return desktop.FolderResult{Error: desktop.ErrUnavailable.Error()}, nil
	}
	if req.Reveal {
		if err := h.svc.Shell.ShowItemInFolder(ctx, req.Path); err != nil {
			return desktop.FolderResult{Error: err.Error()}, nil
		}
		return desktop.FolderResult{Success: true}, nil
	}
	return h.svc.Shell.OpenFolder(ctx, req.Path), nil
}

func clientInput(name string, c project.Contact) client.Input {
	return client.Input{
		Name:      name,
		Phone:     c.Phone,
		Phone2:    c.Phone2,
		Whatsapp:  c.Whatsapp,
		Whatsapp2: c.Whatsapp2,
		Email:     c.Email,
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), RecoveryHint: "Check argument names and types against the tool schema"}
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
