package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/emploai/emploai-server/internal/apierrors"
	"github.com/emploai/emploai-server/internal/constants"
	"github.com/emploai/emploai-server/internal/dto"
	"github.com/emploai/emploai-server/internal/llm"
	"github.com/emploai/emploai-server/internal/middleware"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/emploai/emploai-server/internal/services"
	"github.com/emploai/emploai-server/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler coordinates the conversation surfaces: the streaming chat
// turn, the transcript, and file attachments.
type ChatHandler struct {
	chatService     *services.ChatService
	employeeService *services.EmployeeService
	convRepo        repository.ConversationRepository
	store           *storage.Store
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService *services.ChatService, employeeService *services.EmployeeService, convRepo repository.ConversationRepository, store *storage.Store) *ChatHandler {
	return &ChatHandler{
		chatService:     chatService,
		employeeService: employeeService,
		convRepo:        convRepo,
		store:           store,
	}
}

// SendMessage runs one chat turn against an employee. The reply arrives as
// a text/event-stream of token events, each carrying the accumulated text
// so far; the client replaces its placeholder with the accumulator rather
// than appending. A final done event carries the persisted message.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	type SendRequest struct {
		Content string `json:"content" binding:"required"`
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sse := newSSEWriter(c.Writer)
	msg, err := h.chatService.Send(c.Request.Context(), services.SendInput{
		UserID:     userID,
		EmployeeID: employeeID,
		Content:    req.Content,
		AuthToken:  bearerToken(c),
		OnToken: func(token, accumulated string) {
			sse.event("token", gin.H{"token": token, "accumulated": accumulated})
		},
	})
	if err != nil {
		respondChatError(c, sse, err)
		return
	}

	sse.event("done", dto.ToMessageDTO(*msg))
}

// GetConversation returns the employee's current conversation with all
// messages.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	conv, messages, err := h.chatService.Transcript(userID, employeeID)
	if err != nil {
		respondEmployeeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToConversationDTO(*conv, messages))
}

// UploadAttachment stores a file against the employee's current
// conversation and returns its descriptor with a signed download link.
func (h *ChatHandler) UploadAttachment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	conv, _, err := h.chatService.Transcript(userID, employeeID)
	if err != nil {
		respondEmployeeError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Missing file")
		return
	}

	src, err := file.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read upload")
		return
	}
	defer src.Close()

	objectPath := storage.AttachmentPath(userID.String(), conv.ID.String(), file.Filename)
	size, err := h.store.Save(objectPath, src)
	if err != nil {
		apierrors.InternalError(c, "Failed to store file")
		return
	}

	var messageID *uuid.UUID
	if raw := c.PostForm("message_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid message_id")
			return
		}
		messageID = &id
	}

	att := &models.ConversationAttachment{
		ConversationID: conv.ID,
		MessageID:      messageID,
		FileName:       file.Filename,
		FilePath:       objectPath,
		FileSize:       size,
		ContentType:    file.Header.Get("Content-Type"),
		UploadedBy:     userID,
	}
	if err := h.convRepo.AddAttachment(att); err != nil {
		apierrors.InternalError(c, "Failed to save attachment")
		return
	}

	url := h.store.SignedURL(att.FilePath, constants.SignedURLTTLSeconds*time.Second)
	c.JSON(http.StatusCreated, dto.ToAttachmentDTO(*att, url))
}

// ListAttachments returns the current conversation's attachments, each with
// a fresh signed link.
func (h *ChatHandler) ListAttachments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	conv, _, err := h.chatService.Transcript(userID, employeeID)
	if err != nil {
		respondEmployeeError(c, err)
		return
	}

	attachments, err := h.convRepo.Attachments(conv.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch attachments")
		return
	}

	out := make([]dto.AttachmentDTO, len(attachments))
	for i, a := range attachments {
		url := h.store.SignedURL(a.FilePath, constants.SignedURLTTLSeconds*time.Second)
		out[i] = dto.ToAttachmentDTO(a, url)
	}
	c.JSON(http.StatusOK, gin.H{"attachments": out})
}

// respondChatError maps a chat failure onto the stream when headers are
// already out, falling back to plain JSON when they are not.
func respondChatError(c *gin.Context, sse *sseWriter, err error) {
	if c.Writer.Written() {
		if errors.Is(err, context.Canceled) {
			return
		}
		status := http.StatusInternalServerError
		var se *llm.StatusError
		if errors.As(err, &se) {
			status = se.Code
		}
		sse.event("error", gin.H{"status": status, "error": chatErrorMessage(err)})
		return
	}

	switch {
	case errors.Is(err, services.ErrContentRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmployeeNotFound),
		errors.Is(err, services.ErrNotEmployeeOwner):
		apierrors.NotFound(c, services.ErrEmployeeNotFound.Error())
	case errors.Is(err, services.ErrChatWithDeleted):
		apierrors.Conflict(c, err.Error())
	default:
		var se *llm.StatusError
		if errors.As(err, &se) {
			apierrors.RespondGatewayStatus(c, se.Code)
			return
		}
		apierrors.InternalError(c, "Internal server error")
	}
}

func chatErrorMessage(err error) string {
	var se *llm.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests:
			return "Rate limit exceeded, try again shortly"
		case http.StatusPaymentRequired:
			return "AI credits exhausted"
		}
	}
	return "Chat request failed"
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}
