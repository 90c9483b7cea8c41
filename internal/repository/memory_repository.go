package repository

import (
	"github.com/emploai/emploai-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMemoryRepository is a GORM implementation of MemoryRepository
type GormMemoryRepository struct {
	db *gorm.DB
}

// NewMemoryRepository creates a new MemoryRepository
func NewMemoryRepository(db *gorm.DB) MemoryRepository {
	return &GormMemoryRepository{db: db}
}

func (r *GormMemoryRepository) Create(m *models.EmployeeMemory) error {
	return r.db.Create(m).Error
}

// TopNForUser pulls the shared knowledge base: the highest-importance
// factlets across the user's non-deleted employees.
func (r *GormMemoryRepository) TopNForUser(userID uuid.UUID, n int) ([]models.EmployeeMemory, error) {
	var memory []models.EmployeeMemory
	err := r.db.
		Joins("JOIN employees ON employees.id = employee_memories.employee_id").
		Where("employees.user_id = ? AND employees.deleted_at IS NULL", userID).
		Order("employee_memories.importance_score DESC").
		Limit(n).
		Preload("Employee").
		Find(&memory).Error
	return memory, err
}

func (r *GormMemoryRepository) Delete(id, employeeID uuid.UUID) error {
	result := r.db.
		Where("id = ? AND employee_id = ?", id, employeeID).
		Delete(&models.EmployeeMemory{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormMemoryRepository) ListByEmployee(employeeID uuid.UUID) ([]models.EmployeeMemory, error) {
	var memory []models.EmployeeMemory
	err := r.db.
		Where("employee_id = ?", employeeID).
		Order("importance_score DESC").
		Find(&memory).Error
	return memory, err
}
