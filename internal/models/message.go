package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message ordering is by created_at ascending. There is no sequence number,
// so same-timestamp ties are possible and left unresolved.
type Message struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Role           MessageRole `gorm:"type:varchar(20);not null" json:"role"`
	Content        string      `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ConversationAttachment carries an uploaded file tied to a conversation.
// MessageID is an explicit foreign key; earlier iterations associated
// attachments to messages by timestamp proximity, which mis-associated files
// when messages arrived in rapid succession.
type ConversationAttachment struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversation_id"`
	MessageID      *uuid.UUID `gorm:"type:uuid;index" json:"message_id"`
	FileName       string     `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath       string     `gorm:"type:text;not null" json:"file_path"`
	FileSize       int64      `gorm:"not null" json:"file_size"`
	ContentType    string     `gorm:"type:varchar(100);not null" json:"content_type"`
	UploadedBy     uuid.UUID  `gorm:"type:uuid;not null" json:"uploaded_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (a *ConversationAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
