package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `taskdesk tracks freelance work: Projects (with sub-tasks), Quick Tasks and a Client directory.

Workflow:
1) Orient: get_project_stats, then list_projects (filters, sort, pages of 20 by default).
2) Before creating a project for an existing client, call suggest_clients or find_client; create_project
   fills missing contact data from the directory. Pass save_client=true to store new contact data.
3) Edits: update_project only changes the fields you pass. Deleting an unknown ID is a no-op.
4) Quick tasks are a short scratch list: add_quick_task, toggle_quick_task, list_quick_tasks.
5) Reporting: export_projects writes CSV/XLSX; export_notes formats a note (Hebrew) for the notes app.

Storage is bounded. Oversized collections are trimmed to the most recently updated items;
get_recent_activity shows collection_truncated events when that happens.

Docs:
- taskdesk://docs/index
- taskdesk://docs/fields
- taskdesk://docs/storage
- taskdesk://stats (live statistics)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "taskdesk://docs/index",
		Name:        "docs_index",
		Title:       "taskdesk docs index",
		Description: "Entry point: which tools exist and what to read next.",
		Content: `# taskdesk: Agent Docs Index

## Tools by area

- Projects: create_project, update_project, get_project, list_projects, delete_project, delete_projects,
  get_project_stats, add_sub_task, toggle_sub_task, remove_sub_task, export_projects, open_folder
- Quick tasks: add_quick_task, toggle_quick_task, set_quick_task_link, delete_quick_task, list_quick_tasks,
  sync_task_list
- Clients: save_client, find_client, suggest_clients, delete_client, contact_links
- Reporting: export_notes, get_recent_activity

## Read on demand

- ` + "`taskdesk://docs/fields`" + ` for project fields, statuses and validation rules.
- ` + "`taskdesk://docs/storage`" + ` for persistence limits and what happens when they are hit.
`,
	},
	{
		URI:         "taskdesk://docs/fields",
		Name:        "docs_fields",
		Title:       "Project fields and rules",
		Description: "Project fields, enums and validation.",
		Content: `# Project fields and rules

- project_name and client_name are required and must not be blank.
- work_status: not_started | in_progress | review | on_hold | completed (default not_started).
- priority: low | medium | high (default medium).
- price must not be negative; currency must be one of the configured codes.
- is_completed and work_status are independent. Setting one never changes the other.
- updatedAt is refreshed on every edit and never moves backwards.

## Statistics

- completionRate = round(100 * completed / total), 0 when there are no projects.
- paymentRate = round(100 * paid / total).
- totalRevenue sums paid prices, pendingRevenue sums unpaid prices, regardless of currency.

## Listing

list_projects filters by search text (name, client, description), priority and completion,
sorts by one field, and returns a page. Out-of-range pages are clamped.
`,
	},
	{
		URI:         "taskdesk://docs/storage",
		Name:        "docs_storage",
		Title:       "Storage limits",
		Description: "Debounced writes, size limits and truncation behavior.",
		Content: `# Storage limits

Each collection is saved as one document after a short quiet period, so a burst of edits
produces one write.

- Projects: a document over the size limit keeps the 70% most recently updated projects.
  If the storage quota is exceeded, disposable temp_/cache_ keys are removed and the
  50% most recent projects are written instead.
- Quick tasks: at most 100 are kept. All open tasks survive; the most recent 20 completed
  tasks are kept when trimming is needed.
- Clients: saved on every change.

Items dropped to fit storage are removed from memory too and reported as a
collection_truncated activity entry.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			return textResource(req, doc.URI, "text/markdown", doc.Content), nil
		})
	}
}

// registerStatsResource exposes live project statistics.
func registerStatsResource(server *sdkmcp.Server, views ProjectViews) {
	const uri = "taskdesk://stats"
	server.AddResource(&sdkmcp.Resource{
		URI:         uri,
		Name:        "stats",
		Title:       "Project statistics",
		Description: "Totals, revenue and completion/payment rates for all projects.",
		MIMEType:    "application/json",
	}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		data, err := json.Marshal(views.Stats())
		if err != nil {
			return nil, err
		}
		return textResource(req, uri, "application/json", string(data)), nil
	})
}

func textResource(req *sdkmcp.ReadResourceRequest, uri, mimeType, text string) *sdkmcp.ReadResourceResult {
	if req != nil && req.Params != nil && req.Params.URI != "" {
		uri = req.Params.URI
	}
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}
