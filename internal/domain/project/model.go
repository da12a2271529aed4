package project

import "time"

// WorkStatus is the progress state of a project
type WorkStatus string

const (
	StatusNotStarted WorkStatus = "not_started"
	StatusInProgress WorkStatus = "in_progress"
	StatusReview     WorkStatus = "review"
	StatusOnHold     WorkStatus = "on_hold"
	StatusCompleted  WorkStatus = "completed"
)

// Priority ranks projects for the user
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultCurrencies is the allowed currency set when none is configured.
var DefaultCurrencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "ILS"}

// Valid reports whether s is a known work status.
func (s WorkStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusReview, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities from low to high.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

// SubTask is a checklist item inside a project
type SubTask struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

// Project is a freelance job for a client. JSON names match the persisted
// document layout.
//
// IsCompleted and WorkStatus are independent; neither is derived from the other.
type Project struct {
	ID                 string     `json:"id"`
	ProjectName        string     `json:"projectName"`
	ProjectDescription string     `json:"projectDescription"`
	FolderPath         string     `json:"folderPath,omitempty"`
	FolderLink         string     `json:"folderLink,omitempty"`
	ClientName         string     `json:"clientName"`
	ClientPhone        string     `json:"clientPhone,omitempty"`
	ClientPhone2       string     `json:"clientPhone2,omitempty"`
	ClientWhatsapp     string     `json:"clientWhatsapp,omitempty"`
	ClientWhatsapp2    string     `json:"clientWhatsapp2,omitempty"`
	ClientEmail        string     `json:"clientEmail,omitempty"`
	Tasks              []SubTask  `json:"tasks"`
	WorkStatus         WorkStatus `json:"workStatus"`
	Priority           Priority   `json:"priority"`
	Price              float64    `json:"price"`
	Currency           string     `json:"currency"`
	IsPaid             bool       `json:"isPaid"`
	IsCompleted        bool       `json:"isCompleted"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// CompletedSubTasks counts checked sub-tasks.
func (p Project) CompletedSubTasks() int {
	n := 0
	for _, t := range p.Tasks {
		if t.IsCompleted {
			n++
		}
	}
	return n
}

func (p Project) clone() Project {
	if p.Tasks != nil {
		p.Tasks = append([]SubTask(nil), p.Tasks...)
	}
	return p
}

// Contact is the client contact data copied into a project.
type Contact struct {
	Phone     string
	Phone2    string
	Whatsapp  string
	Whatsapp2 string
	Email     string
}

// Snapshot is a point-in-time copy of the collection.
type Snapshot struct {
	Revision uint64
	Projects []Project
}

// Stats summarizes the collection.
type Stats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"inProgress"`
	Paid           int     `json:"paid"`
	Unpaid         int     `json:"unpaid"`
	TotalRevenue   float64 `json:"totalRevenue"`
	PendingRevenue float64 `json:"pendingRevenue"`
	CompletionRate int     `json:"completionRate"`
	PaymentRate    int     `json:"paymentRate"`
}
