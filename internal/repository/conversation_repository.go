package repository

import (
	"github.com/emploai/emploai-server/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormConversationRepository is a GORM implementation of ConversationRepository
type GormConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) Create(conv *models.Conversation) error {
	return r.db.Create(conv).Error
}

// Current returns the most recently created conversation for the employee.
func (r *GormConversationRepository) Current(employeeID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *GormConversationRepository) Messages(conversationID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *GormConversationRepository) AddMessage(msg *models.Message) error {
	return r.db.Create(msg).Error
}

func (r *GormConversationRepository) AddAttachment(att *models.ConversationAttachment) error {
	return r.db.Create(att).Error
}

func (r *GormConversationRepository) Attachments(conversationID uuid.UUID) ([]models.ConversationAttachment, error) {
	var attachments []models.ConversationAttachment
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&attachments).Error
	return attachments, err
}
