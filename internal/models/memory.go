package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeMemory is a short remembered fact ("factlet") about an employee's
// past interactions. The top-N by importance are injected into LLM context.
type EmployeeMemory struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID      uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_id"`
	Factlet         string    `gorm:"type:text;not null" json:"factlet"`
	ImportanceScore float64   `gorm:"not null;default:0" json:"importance_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relations
	Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

func (m *EmployeeMemory) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
