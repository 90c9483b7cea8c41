package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Task tracks one unit of work assigned to an AI employee. Priority is a
// historically free-form string; it is normalized into lanes at the read
// edge (see the board package). CompletedAt is set if and only if the status
// is completed; the verify and board write paths enforce this together.
type Task struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string     `gorm:"not null" json:"title"`
	Description        *string    `gorm:"type:text" json:"description"`
	Priority           string     `gorm:"type:varchar(20)" json:"priority"`
	Status             TaskStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedBy          uuid.UUID  `gorm:"type:uuid;not null;index" json:"created_by"`
	AssignedEmployeeID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_employee_id"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Relations
	AssignedEmployee *Employee `gorm:"foreignKey:AssignedEmployeeID" json:"assigned_employee,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
