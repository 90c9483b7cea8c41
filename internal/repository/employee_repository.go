package repository

import (
	"time"

	"github.com/emploai/emploai-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmployeeRepository is a GORM implementation of EmployeeRepository
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

func (r *GormEmployeeRepository) Create(employee *models.Employee) error {
	return r.db.Create(employee).Error
}

// FindByID finds an employee by ID. Soft-deleted rows are returned so task
// history can still resolve "Sam - Technology" after Sam is gone.
func (r *GormEmployeeRepository) FindByID(id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.First(&employee, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *GormEmployeeRepository) ListActive(userID uuid.UUID) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("created_at ASC").
		Find(&employees).Error
	return employees, err
}

func (r *GormEmployeeRepository) SoftDelete(id uuid.UUID, at time.Time) error {
	return r.db.Model(&models.Employee{}).
		Where("id = ?", id).
		Update("deleted_at", at).Error
}

// Manager returns the first-created, non-deleted manager-role employee.
// First created wins on ties.
func (r *GormEmployeeRepository) Manager(userID uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.
		Where("user_id = ? AND role = ? AND deleted_at IS NULL", userID, models.RoleManager).
		Order("created_at ASC").
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *GormEmployeeRepository) CountActive(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Employee{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
