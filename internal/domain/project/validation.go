package project

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// CreateRequest describes a project creation request.
type CreateRequest struct {
	ProjectName        string
	ProjectDescription string
	FolderPath         string
	FolderLink         string
	ClientName         string
	Contact            Contact
	Tasks              []SubTask
	WorkStatus         WorkStatus
	Priority           Priority
	Price              float64
	Currency           string
	IsPaid             bool
	IsCompleted        bool
}

// ValidateCreateInput checks a creation request against the allowed currencies.
func ValidateCreateInput(req CreateRequest, currencies []string) error {
	if strings.TrimSpace(req.ProjectName) == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}
	if req.WorkStatus != "" && !req.WorkStatus.Valid() {
		return fmt.Errorf("%w: unknown work status %q", ErrInvalidInput, req.WorkStatus)
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, req.Priority)
	}
	if err := validatePrice(req.Price); err != nil {
		return err
	}
	if req.Currency != "" && !slices.Contains(currencies, req.Currency) {
		return fmt.Errorf("%w: currency %q is not allowed", ErrInvalidInput, req.Currency)
	}
	return nil
}

// ValidatePatch checks only the fields a patch sets.
func ValidatePatch(p Patch, currencies []string) error {
	if p.ProjectName != nil && strings.TrimSpace(*p.ProjectName) == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}
	if p.ClientName != nil && strings.TrimSpace(*p.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}
	if p.WorkStatus != nil && !p.WorkStatus.Valid() {
		return fmt.Errorf("%w: unknown work status %q", ErrInvalidInput, *p.WorkStatus)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *p.Priority)
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Currency != nil && !slices.Contains(currencies, *p.Currency) {
		return fmt.Errorf("%w: currency %q is not allowed", ErrInvalidInput, *p.Currency)
	}
	if p.Tasks != nil {
		for _, t := range *p.Tasks {
			if strings.TrimSpace(t.Text) == "" {
				return fmt.Errorf("%w: sub-task text is required", ErrInvalidInput)
			}
		}
	}
	return nil
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidInput)
	}
	return nil
}
