package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidGender     = errors.New("invalid gender tag")
	ErrInvalidExpertise  = errors.New("expertise must be one of the known tags")
	ErrNotEmployeeOwner  = errors.New("employee belongs to another user")
	ErrEmployeeIsDeleted = errors.New("employee has been deleted")
)

// EmployeeService handles the employee roster.
type EmployeeService struct {
	employeeRepo repository.EmployeeRepository
	taskRepo     repository.TaskRepository
	audit        *AuditService
}

// NewEmployeeService creates a new EmployeeService.
func NewEmployeeService(employeeRepo repository.EmployeeRepository, taskRepo repository.TaskRepository, audit *AuditService) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		taskRepo:     taskRepo,
		audit:        audit,
	}
}

// CreateEmployeeInput represents input for creating an employee.
type CreateEmployeeInput struct {
	UserID    uuid.UUID
	Name      string
	Gender    models.Gender
	Expertise models.Expertise
	Level     models.EmployeeLevel
	Role      models.EmployeeRole
	AvatarURL string
}

// Create validates the closed-set tags and persists a new employee.
func (s *EmployeeService) Create(input CreateEmployeeInput) (*models.Employee, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if !models.ValidGender(input.Gender) {
		return nil, ErrInvalidGender
	}
	if !models.ValidExpertise(input.Expertise) {
		return nil, ErrInvalidExpertise
	}
	if input.Level == "" {
		input.Level = models.LevelJunior
	}
	if input.Role == "" {
		input.Role = models.RoleEmployee
	}

	employee := &models.Employee{
		UserID:    input.UserID,
		Name:      input.Name,
		Gender:    input.Gender,
		Expertise: input.Expertise,
		Level:     input.Level,
		Role:      input.Role,
	}
	if input.AvatarURL != "" {
		employee.AvatarURL = &input.AvatarURL
	}

	if err := s.employeeRepo.Create(employee); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	s.audit.Record(AuditEvent{
		ActorID:    input.UserID.String(),
		EntityType: "employee",
		EntityID:   employee.ID.String(),
		Action:     "create",
	})
	return employee, nil
}

// List returns the user's active (non-deleted) employees.
func (s *EmployeeService) List(userID uuid.UUID) ([]models.Employee, error) {
	return s.employeeRepo.ListActive(userID)
}

// Get returns an employee by id, including soft-deleted ones.
func (s *EmployeeService) Get(id uuid.UUID) (*models.Employee, error) {
	employee, err := s.employeeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return employee, nil
}

// SoftDelete marks the employee as deleted. The row stays retrievable by
// direct lookup; listing queries exclude it.
func (s *EmployeeService) SoftDelete(id, actorID uuid.UUID) error {
	employee, err := s.Get(id)
	if err != nil {
		return err
	}
	if employee.UserID != actorID {
		return ErrNotEmployeeOwner
	}
	if employee.Deleted() {
		return ErrEmployeeIsDeleted
	}

	if err := s.employeeRepo.SoftDelete(id, time.Now()); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	s.audit.Record(AuditEvent{
		ActorID:    actorID.String(),
		EntityType: "employee",
		EntityID:   id.String(),
		Action:     "soft_delete",
	})
	return nil
}

// Manager returns the organization manager, or nil when none exists.
func (s *EmployeeService) Manager(userID uuid.UUID) (*models.Employee, error) {
	manager, err := s.employeeRepo.Manager(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find manager: %w", err)
	}
	return manager, nil
}

// Insights is the dashboard summary block.
type Insights struct {
	ActiveEmployees int64 `json:"active_employees"`
	PendingTasks    int64 `json:"pending_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
}

// GetInsights computes the dashboard counters for a user.
func (s *EmployeeService) GetInsights(userID uuid.UUID) (*Insights, error) {
	employees, err := s.employeeRepo.CountActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}
	pending, err := s.taskRepo.CountByStatus(userID, models.TaskStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	completed, err := s.taskRepo.CountByStatus(userID, models.TaskStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}
	return &Insights{
		ActiveEmployees: employees,
		PendingTasks:    pending,
		CompletedTasks:  completed,
	}, nil
}
