package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes one MCP tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
	ReadOnly    bool
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

func boolean(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func number(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func integer(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

var contactSchema = object(map[string]any{
	"phone":     str("Primary phone"),
	"phone2":    str("Secondary phone"),
	"whatsapp":  str("Primary WhatsApp number"),
	"whatsapp2": str("Secondary WhatsApp number"),
	"email":     str("Email address"),
})

var workStatuses = []string{"not_started", "in_progress", "review", "on_hold", "completed"}

var priorities = []string{"low", "medium", "high"}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Projects
		{
			Name:        "create_project",
			Description: "Create a project for a client. Missing contact data is filled from the client directory.",
			InputSchema: object(map[string]any{
				"project_name":        str("Project display name"),
				"project_description": str("Free-text description"),
				"client_name":         str("Client name"),
				"contact":             contactSchema,
				"folder_path":         str("Local folder path"),
				"folder_link":         str("Shared folder URL"),
				"tasks": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Initial sub-task texts",
				},
				"work_status":  enum("Work status (default not_started)", workStatuses...),
				"priority":     enum("Priority (default medium)", priorities...),
				"price":        number("Price, must not be negative"),
				"currency":     str("Currency code from the configured set"),
				"is_paid":      boolean("Payment received"),
				"is_completed": boolean("Project completed"),
				"save_client":  boolean("Also save the client and contact to the directory"),
			}, "project_name", "client_name"),
		},
		{
			Name:        "update_project",
			Description: "Update fields of a project. Omitted fields are left unchanged.",
			InputSchema: object(map[string]any{
				"id":                  str("Project ID"),
				"project_name":        str("Project display name"),
				"project_description": str("Free-text description"),
				"client_name":         str("Client name"),
				"contact":             contactSchema,
				"folder_path":         str("Local folder path"),
				"folder_link":         str("Shared folder URL"),
				"work_status":         enum("Work status", workStatuses...),
				"priority":            enum("Priority", priorities...),
				"price":               number("Price, must not be negative"),
				"currency":            str("Currency code"),
				"is_paid":             boolean("Payment received"),
				"is_completed":        boolean("Project completed"),
			}, "id"),
		},
		{
			Name:        "delete_project",
			Description: "Delete a project. Deleting an unknown ID is a no-op.",
			InputSchema: object(map[string]any{"id": str("Project ID")}, "id"),
		},
		{
			Name:        "delete_projects",
			Description: "Delete several projects and report how many existed",
			InputSchema: object(map[string]any{
				"ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Project IDs",
				},
			}, "ids"),
		},
		{
			Name:        "get_project",
			Description: "Get a project with its sub-tasks",
			InputSchema: object(map[string]any{"id": str("Project ID")}, "id"),
			ReadOnly:    true,
		},
		{
			Name:        "list_projects",
			Description: "List projects with search, filters, sorting and pagination",
			InputSchema: object(map[string]any{
				"search":     str("Case-insensitive match on project name, client name or description"),
				"priority":   enum("Priority filter", "all", "low", "medium", "high"),
				"status":     enum("Completion filter", "all", "completed", "pending"),
				"sort_by":    enum("Sort field (default updatedAt)", "projectName", "clientName", "price", "priority", "workStatus", "createdAt", "updatedAt"),
				"sort_order": enum("Sort direction", "asc", "desc"),
				"page":       integer("1-based page number, clamped to the available range"),
				"page_size":  integer("Items per page: 10, 20, 50 or 100"),
			}),
			ReadOnly: true,
		},
		{
			Name:        "get_project_stats",
			Description: "Get totals, revenue and completion/payment rates across all projects",
			InputSchema: object(map[string]any{}),
			ReadOnly:    true,
		},
		{
			Name:        "add_sub_task",
			Description: "Append a sub-task to a project",
			InputSchema: object(map[string]any{
				"project_id": str("Project ID"),
				"text":       str("Sub-task text"),
			}, "project_id", "text"),
		},
		{
			Name:        "toggle_sub_task",
			Description: "Flip the completion flag of a sub-task",
			InputSchema: object(map[string]any{
				"project_id":  str("Project ID"),
				"sub_task_id": str("Sub-task ID"),
			}, "project_id", "sub_task_id"),
		},
		{
			Name:        "remove_sub_task",
			Description: "Remove a sub-task from a project",
			InputSchema: object(map[string]any{
				"project_id":  str("Project ID"),
				"sub_task_id": str("Sub-task ID"),
			}, "project_id", "sub_task_id"),
		},
		{
			Name:        "export_projects",
			Description: "Write all projects to a CSV or XLSX file in the export directory",
			InputSchema: object(map[string]any{
				"format": enum("File format (default csv)", "csv", "xlsx"),
			}),
		},
		{
			Name:        "open_folder",
			Description: "Open a project folder in the file manager, or reveal a file in its folder",
			InputSchema: object(map[string]any{
				"path":   str("Folder or file path"),
				"reveal": boolean("Reveal the item in its parent folder instead of opening it"),
			}, "path"),
		},

		// Quick tasks
		{
			Name:        "add_quick_task",
			Description: "Add a quick task to the top of the list",
			InputSchema: object(map[string]any{
				"title":       str("Task title"),
				"folder_link": str("Optional folder link"),
			}, "title"),
		},
		{
			Name:        "toggle_quick_task",
			Description: "Flip the completion flag of a quick task",
			InputSchema: object(map[string]any{"id": str("Quick task ID")}, "id"),
		},
		{
			Name:        "set_quick_task_link",
			Description: "Set or clear the folder link of a quick task",
			InputSchema: object(map[string]any{
				"id":          str("Quick task ID"),
				"folder_link": str("Folder link, empty to clear"),
			}, "id", "folder_link"),
		},
		{
			Name:        "delete_quick_task",
			Description: "Delete a quick task. Deleting an unknown ID is a no-op.",
			InputSchema: object(map[string]any{"id": str("Quick task ID")}, "id"),
		},
		{
			Name:        "list_quick_tasks",
			Description: "List quick tasks, newest first",
			InputSchema: object(map[string]any{
				"pending_only": boolean("Only tasks that are not completed"),
			}),
			ReadOnly: true,
		},
		{
			Name:        "sync_task_list",
			Description: "Send pending quick task titles to the connected task-list service",
			InputSchema: object(map[string]any{}),
		},

		// Clients
		{
			Name:        "save_client",
			Description: "Create or update a client by name (case-insensitive)",
			InputSchema: object(map[string]any{
				"name":          str("Client name"),
				"contact":       contactSchema,
				"sync_projects": boolean("Copy the saved contact into every project of this client"),
			}, "name"),
		},
		{
			Name:        "find_client",
			Description: "Find a client by exact name, ignoring case",
			InputSchema: object(map[string]any{"name": str("Client name")}, "name"),
			ReadOnly:    true,
		},
		{
			Name:        "suggest_clients",
			Description: "Suggest up to 10 clients whose name contains the query, prefix matches first",
			InputSchema: object(map[string]any{"name": str("Partial client name")}, "name"),
			ReadOnly:    true,
		},
		{
			Name:        "delete_client",
			Description: "Delete a client from the directory",
			InputSchema: object(map[string]any{"id": str("Client ID")}, "id"),
		},
		{
			Name:        "contact_links",
			Description: "Validate a phone number and build tel, WhatsApp and mailto links",
			InputSchema: object(map[string]any{
				"phone":         str("Phone number"),
				"whatsapp":      str("WhatsApp number (defaults to phone)"),
				"email":         str("Email address"),
				"message":       str("Prefilled WhatsApp message"),
				"email_subject": str("Prefilled email subject"),
			}),
			ReadOnly: true,
		},

		// Notes and activity
		{
			Name:        "export_notes",
			Description: "Format projects or quick tasks as a note and send it to the notes app, falling back to the clipboard",
			InputSchema: object(map[string]any{
				"collection": enum("What to export (default projects)", "projects", "quick_tasks"),
			}),
		},
		{
			Name:        "get_recent_activity",
			Description: "List recent changes across projects, quick tasks and clients",
			InputSchema: object(map[string]any{
				"collection": enum("Collection filter", "projects", "quick_tasks", "clients"),
				"entity_id":  str("Only changes to this entity"),
				"limit":      integer("Maximum entries (default 20)"),
			}),
			ReadOnly: true,
		},
	}
}

// registerTools adds every catalog tool to server, dispatching through h.
func registerTools(server *sdkmcp.Server, h *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		tool := &sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}
		if def.ReadOnly {
			tool.Annotations = &sdkmcp.ToolAnnotations{ReadOnlyHint: true}
		}

		server.AddTool(tool, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := h.Handle(ctx, name, args)
			if err != nil {
				logger.Debug("tool call failed", "tool", name, "error", err)
				return toolError(err), nil
			}
			return toolResult(result)
		})
	}
}

func toolResult(v any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	payload := &APIError{Code: "INTERNAL", Message: err.Error()}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		payload = apiErr
	}
	data, _ := json.Marshal(payload)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
