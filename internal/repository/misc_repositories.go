package repository

import (
	"github.com/emploai/emploai-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormGroupRepository is a GORM implementation of GroupRepository
type GormGroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

func (r *GormGroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

func (r *GormGroupRepository) FindByID(id uuid.UUID) (*models.Group, error) {
	var group models.Group
	err := r.db.
		Preload("Members").
		Preload("Members.Employee").
		First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GormGroupRepository) List(createdBy uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.
		Where("created_by = ?", createdBy).
		Order("created_at DESC").
		Preload("Members").
		Preload("Members.Employee").
		Find(&groups).Error
	return groups, err
}

func (r *GormGroupRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", id).Error
	})
}

func (r *GormGroupRepository) AddMember(member *models.GroupMember) error {
	return r.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
}

func (r *GormGroupRepository) RemoveMember(groupID, employeeID uuid.UUID) error {
	return r.db.
		Where("group_id = ? AND employee_id = ?", groupID, employeeID).
		Delete(&models.GroupMember{}).Error
}

// GormCompanyRepository is a GORM implementation of CompanyRepository
type GormCompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &GormCompanyRepository{db: db}
}

func (r *GormCompanyRepository) FindByUser(userID uuid.UUID) (*models.CompanyInfo, error) {
	var info models.CompanyInfo
	if err := r.db.First(&info, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *GormCompanyRepository) Upsert(info *models.CompanyInfo) error {
	if info.ID == uuid.Nil {
		var existing models.CompanyInfo
		err := r.db.First(&existing, "user_id = ?", info.UserID).Error
		if err == nil {
			info.ID = existing.ID
			info.CreatedAt = existing.CreatedAt
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
	}
	return r.db.Save(info).Error
}

// GormAuditRepository is a GORM implementation of AuditRepository
type GormAuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Append(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *GormUserRepository) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// GormChainTemplateRepository is a GORM implementation of ChainTemplateRepository
type GormChainTemplateRepository struct {
	db *gorm.DB
}

func NewChainTemplateRepository(db *gorm.DB) ChainTemplateRepository {
	return &GormChainTemplateRepository{db: db}
}

func (r *GormChainTemplateRepository) Create(t *models.ChainTemplate) error {
	return r.db.Create(t).Error
}

func (r *GormChainTemplateRepository) List() ([]models.ChainTemplate, error) {
	var templates []models.ChainTemplate
	err := r.db.Order("created_at DESC").Find(&templates).Error
	return templates, err
}
