package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a chat thread with one employee. The most recently created
// conversation per employee is treated as "current"; there is no explicit
// distinguishing flag.
type Conversation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_id"`
	Title      *string   `gorm:"type:varchar(255)" json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Messages    []Message                `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	Attachments []ConversationAttachment `gorm:"foreignKey:ConversationID" json:"attachments,omitempty"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
