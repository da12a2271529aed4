package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/taskdesk/internal/contact"
	"github.com/ganot/taskdesk/internal/domain/client"
	"github.com/ganot/taskdesk/internal/domain/project"
	"github.com/ganot/taskdesk/internal/domain/quicktask"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects to find a valid ID"}
	case errors.Is(err, project.ErrSubTaskNotFound):
		return &APIError{Code: "SUBTASK_NOT_FOUND", Message: "sub-task not found", RecoveryHint: "Call get_project to list its sub-tasks"}
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Fix the named field and retry"}
	case errors.Is(err, project.ErrUnsupportedFormat):
		return &APIError{Code: "UNSUPPORTED_FORMAT", Message: err.Error(), RecoveryHint: "Use csv or xlsx"}
	case errors.Is(err, quicktask.ErrTaskNotFound):
		return &APIError{Code: "QUICK_TASK_NOT_FOUND", Message: "quick task not found", RecoveryHint: "Call list_quick_tasks to find a valid ID"}
	case errors.Is(err, client.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "A client name is required"}
	case errors.Is(err, contact.ErrEmptyPhone),
		errors.Is(err, contact.ErrPhoneTooShort),
		errors.Is(err, contact.ErrPhoneTooLong),
		errors.Is(err, contact.ErrInvalidEmail):
		return &APIError{Code: "INVALID_CONTACT", Message: err.Error()}
	default:
		return nil
	}
}
