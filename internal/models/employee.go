package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

type Expertise string

const (
	ExpertiseHR        Expertise = "HR"
	ExpertiseMarketing Expertise = "Marketing & Design"
	ExpertiseTech      Expertise = "Technology"
	ExpertiseFinance   Expertise = "Finance"
	ExpertiseGTM       Expertise = "GTM & Market Analysis"
	ExpertisePolishing Expertise = "Report Polishing"
)

// Expertises is the closed set of valid expertise tags.
var Expertises = []Expertise{
	ExpertiseHR,
	ExpertiseMarketing,
	ExpertiseTech,
	ExpertiseFinance,
	ExpertiseGTM,
	ExpertisePolishing,
}

// ValidExpertise reports whether e is a member of the closed set.
func ValidExpertise(e Expertise) bool {
	for _, known := range Expertises {
		if e == known {
			return true
		}
	}
	return false
}

func ValidGender(g Gender) bool {
	return g == GenderMale || g == GenderFemale || g == GenderNeutral
}

type EmployeeLevel string

const (
	LevelJunior EmployeeLevel = "junior"
	LevelSenior EmployeeLevel = "senior"
)

type EmployeeRole string

const (
	RoleEmployee EmployeeRole = "employee"
	RoleManager  EmployeeRole = "manager"
)

// Employee is a simulated AI employee owned by a user. Deletion is a soft
// marker with a stated 30-day grace period before presumed hard deletion;
// the grace period itself is policy, not enforced here. DeletedAt is an
// explicit column rather than gorm.DeletedAt so that soft-deleted rows stay
// reachable by direct id lookup for historical task references.
type Employee struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string        `gorm:"type:varchar(255);not null" json:"name"`
	Gender         Gender        `gorm:"type:varchar(10);not null;default:'neutral'" json:"gender"`
	Expertise      Expertise     `gorm:"type:varchar(50);not null" json:"expertise"`
	Level          EmployeeLevel `gorm:"type:varchar(10);not null;default:'junior'" json:"level"`
	Role           EmployeeRole  `gorm:"type:varchar(10);not null;default:'employee'" json:"role"`
	AvatarURL      *string       `gorm:"type:text" json:"avatar_url"`
	OfferLetterURL *string       `gorm:"type:text" json:"offer_letter_url"`
	DeletedAt      *time.Time    `gorm:"index" json:"deleted_at"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Relations
	Memory        []EmployeeMemory `gorm:"foreignKey:EmployeeID" json:"-"`
	Conversations []Conversation   `gorm:"foreignKey:EmployeeID" json:"-"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Deleted reports whether the employee carries the soft-delete marker.
func (e *Employee) Deleted() bool {
	return e.DeletedAt != nil
}
