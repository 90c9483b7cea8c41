package dto

import (
	"time"

	"github.com/emploai/emploai-server/internal/models"
	"github.com/google/uuid"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         uuid.UUID         `json:"id"`
	Email      string            `json:"email"`
	FirstName  *string           `json:"first_name"`
	LastName   *string           `json:"last_name"`
	Role       string            `json:"role"`
	AIProvider models.AIProvider `json:"ai_provider"`
}

// EmployeeDTO represents an employee in API responses
type EmployeeDTO struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Gender         models.Gender        `json:"gender"`
	Expertise      models.Expertise     `json:"expertise"`
	Level          models.EmployeeLevel `json:"level"`
	Role           models.EmployeeRole  `json:"role"`
	AvatarURL      *string              `json:"avatar_url"`
	OfferLetterURL *string              `json:"offer_letter_url"`
	Deleted        bool                 `json:"deleted"`
	CreatedAt      time.Time            `json:"created_at"`
}

// MemoryDTO represents one remembered factlet in API responses
type MemoryDTO struct {
	ID              uuid.UUID `json:"id"`
	EmployeeID      uuid.UUID `json:"employee_id"`
	Factlet         string    `json:"factlet"`
	ImportanceScore float64   `json:"importance_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		AIProvider: user.AIProvider,
	}
}

// ToEmployeeDTO converts an Employee model to EmployeeDTO
func ToEmployeeDTO(e models.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:             e.ID,
		Name:           e.Name,
		Gender:         e.Gender,
		Expertise:      e.Expertise,
		Level:          e.Level,
		Role:           e.Role,
		AvatarURL:      e.AvatarURL,
		OfferLetterURL: e.OfferLetterURL,
		Deleted:        e.Deleted(),
		CreatedAt:      e.CreatedAt,
	}
}

// ToEmployeeDTOs converts a slice of employees
func ToEmployeeDTOs(employees []models.Employee) []EmployeeDTO {
	out := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		out[i] = ToEmployeeDTO(e)
	}
	return out
}

// ToMemoryDTO converts an EmployeeMemory model to MemoryDTO
func ToMemoryDTO(m models.EmployeeMemory) MemoryDTO {
	return MemoryDTO{
		ID:              m.ID,
		EmployeeID:      m.EmployeeID,
		Factlet:         m.Factlet,
		ImportanceScore: m.ImportanceScore,
		CreatedAt:       m.CreatedAt,
	}
}
