package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/emploai/emploai-server/internal/constants"
	"github.com/emploai/emploai-server/internal/llm"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrContentRequired = errors.New("message content is required")
	ErrChatWithDeleted = errors.New("cannot chat with a deleted employee")
)

// ChatService drives a conversation turn: persist the user message, stream
// the assistant reply from the gateway token by token, and persist the
// final accumulated text once the stream completes. While streaming, the
// reply exists only as the decoder's accumulator (the client-side
// placeholder); nothing is persisted if the request fails or is canceled.
type ChatService struct {
	convRepo     repository.ConversationRepository
	employeeRepo repository.EmployeeRepository
	memoryRepo   repository.MemoryRepository
	companyRepo  repository.CompanyRepository
	userRepo     repository.UserRepository
	client       *llm.Client
}

// NewChatService creates a new ChatService.
func NewChatService(
	convRepo repository.ConversationRepository,
	employeeRepo repository.EmployeeRepository,
	memoryRepo repository.MemoryRepository,
	companyRepo repository.CompanyRepository,
	userRepo repository.UserRepository,
	client *llm.Client,
) *ChatService {
	return &ChatService{
		convRepo:     convRepo,
		employeeRepo: employeeRepo,
		memoryRepo:   memoryRepo,
		companyRepo:  companyRepo,
		userRepo:     userRepo,
		client:       client,
	}
}

// SendInput describes one user chat turn.
type SendInput struct {
	UserID     uuid.UUID
	EmployeeID uuid.UUID
	Content    string
	AuthToken  string

	// OnToken receives every decoded token together with the accumulated
	// text so far, so the handler can mutate the in-flight placeholder
	// (replace with the accumulator, not append).
	OnToken func(token, accumulated string)
}

// Send runs one chat turn and returns the persisted assistant message.
func (s *ChatService) Send(ctx context.Context, input SendInput) (*models.Message, error) {
	if input.Content == "" {
		return nil, ErrContentRequired
	}

	employee, err := s.employeeRepo.FindByID(input.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	if employee.UserID != input.UserID {
		return nil, ErrNotEmployeeOwner
	}
	if employee.Deleted() {
		return nil, ErrChatWithDeleted
	}

	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	conv, err := s.currentConversation(employee.ID)
	if err != nil {
		return nil, err
	}

	history, err := s.convRepo.Messages(conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	userMsg := &models.Message{
		ConversationID: conv.ID,
		Role:           models.MessageRoleUser,
		Content:        input.Content,
	}
	if err := s.convRepo.AddMessage(userMsg); err != nil {
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	transcript := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		transcript = append(transcript, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	transcript = append(transcript, llm.Message{Role: string(models.MessageRoleUser), Content: input.Content})

	stream, err := s.openStream(ctx, user, employee, transcript, input.AuthToken)
	if err != nil {
		// Non-OK gateway response or transport failure: surface it, keep no
		// partial assistant content.
		return nil, err
	}
	defer stream.Close()

	decoder := &llm.StreamDecoder{OnToken: input.OnToken}
	if err := decoder.Consume(ctx, stream); err != nil {
		// Cancellation or mid-stream transport error: the accumulated text
		// is dropped, nothing is persisted.
		return nil, err
	}

	assistantMsg := &models.Message{
		ConversationID: conv.ID,
		Role:           models.MessageRoleAssistant,
		Content:        decoder.Text(),
	}
	if err := s.convRepo.AddMessage(assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}
	return assistantMsg, nil
}

// Transcript returns the current conversation's messages for an employee.
func (s *ChatService) Transcript(userID, employeeID uuid.UUID) (*models.Conversation, []models.Message, error) {
	employee, err := s.employeeRepo.FindByID(employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEmployeeNotFound
		}
		return nil, nil, fmt.Errorf("failed to find employee: %w", err)
	}
	if employee.UserID != userID {
		return nil, nil, ErrNotEmployeeOwner
	}

	conv, err := s.currentConversation(employeeID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.convRepo.Messages(conv.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	return conv, messages, nil
}

func (s *ChatService) currentConversation(employeeID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.convRepo.Current(employeeID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	conv = &models.Conversation{EmployeeID: employeeID}
	if err := s.convRepo.Create(conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (s *ChatService) openStream(ctx context.Context, user *models.User, employee *models.Employee, transcript []llm.Message, authToken string) (io.ReadCloser, error) {
	if user.AIProvider == models.ProviderOpenAI {
		return s.client.StreamOpenAI(ctx, authToken, llm.OpenAIRequest{
			Messages:    transcript,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		})
	}

	memory, err := s.memoryRepo.TopNForUser(user.ID, constants.MemoryTopN)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory: %w", err)
	}
	factlets := make([]llm.Factlet, len(memory))
	for i, m := range memory {
		factlets[i] = llm.Factlet{Factlet: m.Factlet}
		if m.Employee != nil {
			factlets[i].EmployeeName = m.Employee.Name
		}
	}

	roster, err := s.employeeRepo.ListActive(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	entries := make([]llm.RosterEntry, len(roster))
	for i, e := range roster {
		entries[i] = llm.RosterEntry{
			Name:           e.Name,
			Expertise:      string(e.Expertise),
			Level:          string(e.Level),
			Role:           string(e.Role),
			HasOfferLetter: e.OfferLetterURL != nil,
		}
	}

	var companyInfo map[string]any
	if info, err := s.companyRepo.FindByUser(user.ID); err == nil {
		companyInfo = map[string]any{
			"company_name":      info.CompanyName,
			"industry":          info.Industry,
			"mission":           info.Mission,
			"vision":            info.Vision,
			"values":            info.Values,
			"culture":           info.Culture,
			"benefits":          info.Benefits,
			"products_services": info.ProductsServices,
			"policies":          info.Policies,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load company info: %w", err)
	}

	return s.client.StreamChat(ctx, authToken, llm.ChatRequest{
		Messages:    transcript,
		Expertise:   string(employee.Expertise),
		Memory:      factlets,
		Employees:   entries,
		CompanyInfo: companyInfo,
	})
}
