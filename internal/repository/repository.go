package repository

import (
	"time"

	"github.com/emploai/emploai-server/internal/models"
	"github.com/google/uuid"
)

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	// Create creates a new employee
	Create(employee *models.Employee) error

	// FindByID finds an employee by ID, including soft-deleted rows so
	// historical task references stay resolvable
	FindByID(id uuid.UUID) (*models.Employee, error)

	// ListActive lists a user's employees that carry no deletion marker
	ListActive(userID uuid.UUID) ([]models.Employee, error)

	// SoftDelete sets the deletion timestamp without removing the row
	SoftDelete(id uuid.UUID, at time.Time) error

	// Manager returns "the" organization manager: the first-created,
	// non-deleted manager-role employee
	Manager(userID uuid.UUID) (*models.Employee, error)

	// CountActive counts non-deleted employees for a user
	CountActive(userID uuid.UUID) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	CreatedBy          uuid.UUID
	Status             *models.TaskStatus
	AssignedEmployeeID *uuid.UUID
	Page               int
	PageSize           int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(task *models.Task) error
	FindByID(id uuid.UUID, preload ...string) (*models.Task, error)
	List(filter TaskFilter) ([]models.Task, int64, error)
	Update(task *models.Task) error

	// SetStatus writes status and completion timestamp atomically so the
	// completed_at-iff-completed invariant holds
	SetStatus(id uuid.UUID, status models.TaskStatus, completedAt *time.Time) error

	// Pending returns the user's pending tasks, newest first
	Pending(createdBy uuid.UUID) ([]models.Task, error)

	CountByStatus(createdBy uuid.UUID, status models.TaskStatus) (int64, error)
}

// ConversationRepository defines the interface for chat persistence
type ConversationRepository interface {
	Create(conv *models.Conversation) error

	// Current returns the employee's most recently created conversation
	Current(employeeID uuid.UUID) (*models.Conversation, error)

	// Messages returns a conversation's messages ordered by creation time ascending
	Messages(conversationID uuid.UUID) ([]models.Message, error)

	AddMessage(msg *models.Message) error
	AddAttachment(att *models.ConversationAttachment) error
	Attachments(conversationID uuid.UUID) ([]models.ConversationAttachment, error)
}

// MemoryRepository defines the interface for employee memory access
type MemoryRepository interface {
	Create(m *models.EmployeeMemory) error

	// TopNForUser returns the highest-importance factlets across all of a
	// user's non-deleted employees, with the owning employee preloaded
	TopNForUser(userID uuid.UUID, n int) ([]models.EmployeeMemory, error)

	ListByEmployee(employeeID uuid.UUID) ([]models.EmployeeMemory, error)

	// Delete removes one factlet; gorm.ErrRecordNotFound when the id does
	// not belong to the employee
	Delete(id, employeeID uuid.UUID) error
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	FindByID(id uuid.UUID) (*models.Group, error)
	List(createdBy uuid.UUID) ([]models.Group, error)
	Delete(id uuid.UUID) error
	AddMember(member *models.GroupMember) error
	RemoveMember(groupID, employeeID uuid.UUID) error
}

// CompanyRepository defines the interface for the per-user company row
type CompanyRepository interface {
	FindByUser(userID uuid.UUID) (*models.CompanyInfo, error)
	Upsert(info *models.CompanyInfo) error
}

// AuditRepository appends to the write-only audit log
type AuditRepository interface {
	Append(entry *models.AuditLog) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uuid.UUID) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// ChainTemplateRepository stores supervisor decomposition templates
type ChainTemplateRepository interface {
	Create(t *models.ChainTemplate) error
	List() ([]models.ChainTemplate, error)
}
