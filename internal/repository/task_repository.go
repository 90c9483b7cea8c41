package repository

import (
	"time"

	"github.com/emploai/emploai-server/internal/database"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

func (r *GormTaskRepository) FindByID(id uuid.UUID, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.created_by = ?", filter.CreatedBy)
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AssignedEmployeeID != nil {
		query = query.Where("tasks.assigned_employee_id = ?", *filter.AssignedEmployeeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Offset: (filter.Page - 1) * filter.PageSize,
			Limit:  filter.PageSize,
		}))
	}

	if err := listQuery.Preload("AssignedEmployee").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// SetStatus writes status and completed_at together. Approval sets both;
// rejection clears the timestamp along with resetting the status.
func (r *GormTaskRepository) SetStatus(id uuid.UUID, status models.TaskStatus, completedAt *time.Time) error {
	return r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		}).Error
}

func (r *GormTaskRepository) Pending(createdBy uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("created_by = ? AND status = ?", createdBy, models.TaskStatusPending).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) CountByStatus(createdBy uuid.UUID, status models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("created_by = ? AND status = ?", createdBy, status).
		Count(&count).Error
	return count, err
}
