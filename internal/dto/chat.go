package dto

import (
	"time"

	"github.com/emploai/emploai-server/internal/models"
	"github.com/google/uuid"
)

// MessageDTO represents a chat message in API responses
type MessageDTO struct {
	ID             uuid.UUID          `json:"id"`
	ConversationID uuid.UUID          `json:"conversation_id"`
	Role           models.MessageRole `json:"role"`
	Content        string             `json:"content"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ConversationDTO represents a conversation in API responses
type ConversationDTO struct {
	ID         uuid.UUID    `json:"id"`
	EmployeeID uuid.UUID    `json:"employee_id"`
	Title      *string      `json:"title"`
	Messages   []MessageDTO `json:"messages"`
	CreatedAt  time.Time    `json:"created_at"`
}

// AttachmentDTO represents an uploaded conversation file
type AttachmentDTO struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	MessageID      *uuid.UUID `json:"message_id"`
	FileName       string     `json:"file_name"`
	FileSize       int64      `json:"file_size"`
	ContentType    string     `json:"content_type"`
	URL            string     `json:"url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// GroupDTO represents an employee group in API responses
type GroupDTO struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Members     []EmployeeDTO `json:"members"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(m models.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

// ToConversationDTO converts a Conversation model with its messages
func ToConversationDTO(conv models.Conversation, messages []models.Message) ConversationDTO {
	msgs := make([]MessageDTO, len(messages))
	for i, m := range messages {
		msgs[i] = ToMessageDTO(m)
	}
	return ConversationDTO{
		ID:         conv.ID,
		EmployeeID: conv.EmployeeID,
		Title:      conv.Title,
		Messages:   msgs,
		CreatedAt:  conv.CreatedAt,
	}
}

// ToAttachmentDTO converts a ConversationAttachment model; url is the
// signed download link, empty when the caller does not issue one.
func ToAttachmentDTO(a models.ConversationAttachment, url string) AttachmentDTO {
	return AttachmentDTO{
		ID:             a.ID,
		ConversationID: a.ConversationID,
		MessageID:      a.MessageID,
		FileName:       a.FileName,
		FileSize:       a.FileSize,
		ContentType:    a.ContentType,
		URL:            url,
		CreatedAt:      a.CreatedAt,
	}
}

// ToGroupDTO converts a Group model with preloaded members
func ToGroupDTO(g models.Group) GroupDTO {
	members := make([]EmployeeDTO, 0, len(g.Members))
	for _, m := range g.Members {
		if m.Employee != nil {
			members = append(members, ToEmployeeDTO(*m.Employee))
		}
	}
	return GroupDTO{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Members:     members,
		CreatedAt:   g.CreatedAt,
	}
}
