package client

import (
	"time"

	"github.com/ganot/taskdesk/internal/domain/project"
)

// Client is a directory entry reused to prefill project contact fields.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Phone2    string    `json:"phone2,omitempty"`
	Whatsapp  string    `json:"whatsapp,omitempty"`
	Whatsapp2 string    `json:"whatsapp2,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Contact returns the contact data as copied into projects.
func (c Client) Contact() project.Contact {
	return project.Contact{
		Phone:     c.Phone,
		Phone2:    c.Phone2,
		Whatsapp:  c.Whatsapp,
		Whatsapp2: c.Whatsapp2,
		Email:     c.Email,
	}
}

// Input is the data accepted by Upsert.
type Input struct {
	Name      string
	Phone     string
	Phone2    string
	Whatsapp  string
	Whatsapp2 string
	Email     string
}
