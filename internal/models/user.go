package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AIProvider selects which gateway route the chat consumer uses.
type AIProvider string

const (
	ProviderGemini AIProvider = "gemini"
	ProviderOpenAI AIProvider = "openai"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    *string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName     *string    `gorm:"type:varchar(100)" json:"last_name"`
	Role         string     `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	AIProvider   AIProvider `gorm:"column:ai_provider;type:varchar(20);not null;default:'gemini'" json:"ai_provider"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Employees []Employee `gorm:"foreignKey:UserID" json:"-"`
	Tasks     []Task     `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsSupervisor reports whether the user may access supervisor surfaces.
// Authorization is role strings only, nothing finer grained.
func (u *User) IsSupervisor() bool {
	return u.Role == "supervisor" || u.Role == "admin"
}
