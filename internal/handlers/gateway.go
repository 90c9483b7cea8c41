package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emploai/emploai-server/internal/apierrors"
	"github.com/emploai/emploai-server/internal/llm"
	"github.com/emploai/emploai-server/internal/logger"
	"github.com/emploai/emploai-server/internal/prompts"
	"github.com/emploai/emploai-server/internal/services"
	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultChatModel = "google/gemini-2.5-flash"
	// Switched to when the request asks for an image, explicitly or by
	// keyword in the last user message.
	imageChatModel = "google/gemini-2.5-flash-image-preview"

	heartbeatInterval  = 15 * time.Second
	runUpdatedInterval = 30 * time.Second
)

// GatewayHandler implements the standalone AI gateway routes. They carry no
// session; the chat consumer and external clients call them directly.
type GatewayHandler struct {
	registry     *prompts.Registry
	upstreamURL  string
	upstreamKey  string
	openaiClient *openai.Client
	auditService *services.AuditService
	httpClient   *http.Client
}

// NewGatewayHandler creates a new GatewayHandler. upstreamURL is the
// Gemini-compatible provider base; openaiKey configures the alternate route.
func NewGatewayHandler(registry *prompts.Registry, upstreamURL, upstreamKey, openaiKey string, auditService *services.AuditService) *GatewayHandler {
	return &GatewayHandler{
		registry:     registry,
		upstreamURL:  upstreamURL,
		upstreamKey:  upstreamKey,
		openaiClient: openai.NewClient(openaiKey),
		auditService: auditService,
		httpClient:   &http.Client{},
	}
}

// Chat serves POST /chat: builds the persona system prompt, forwards to the
// upstream provider with streaming on, and proxies the native SSE bytes
// unmodified. Upstream rate-limit and payment statuses pass through as 429
// and 402.
func (h *GatewayHandler) Chat(c *gin.Context) {
	var req llm.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		apierrors.BadRequest(c, "messages is required")
		return
	}

	system := h.registry.SystemPrompt(req.Expertise)
	system = prompts.AppendCompanyContext(system, req.CompanyInfo)
	system = prompts.AppendRosterContext(system, req.Employees)
	system = prompts.AppendMemoryContext(system, req.Memory)
	system = prompts.AppendFormattingRules(system)

	model := defaultChatModel
	if req.GenerateImage || prompts.WantsImage(req.Messages) {
		model = imageChatModel
	}

	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, req.Messages...)

	body, err := json.Marshal(map[string]any{
		"model":    model,
		"stream":   true,
		"messages": messages,
	})
	if err != nil {
		apierrors.InternalError(c, "Failed to encode upstream request")
		return
	}

	upstream, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost,
		h.upstreamURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		apierrors.InternalError(c, "Failed to build upstream request")
		return
	}
	upstream.Header.Set("Content-Type", "application/json")
	upstream.Header.Set("Authorization", "Bearer "+h.upstreamKey)

	resp, err := h.httpClient.Do(upstream)
	if err != nil {
		logger.Error("gateway chat upstream call failed", "err", err)
		apierrors.InternalError(c, "AI gateway error")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn("gateway chat upstream status", "status", resp.StatusCode, "body", string(data))
		apierrors.RespondGatewayStatus(c, resp.StatusCode)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	proxyStream(c, resp.Body)
}

// OpenAI serves POST /openai. useStream=false returns the whole reply as
// {content}; otherwise the reply is re-emitted as an OpenAI-style SSE
// stream, prefixed by one synthetic hello event.
func (h *GatewayHandler) OpenAI(c *gin.Context) {
	type openAIRequest struct {
		Messages    []llm.Message `json:"messages" binding:"required,min=1"`
		Model       string        `json:"model"`
		Temperature float64       `json:"temperature"`
		UseStream   *bool         `json:"useStream"`
	}

	var req openAIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	model := req.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	completionReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	}

	// Streaming is the default; callers opt out explicitly.
	if req.UseStream != nil && !*req.UseStream {
		resp, err := h.openaiClient.CreateChatCompletion(c.Request.Context(), completionReq)
		if err != nil {
			h.respondOpenAIError(c, err)
			return
		}
		if len(resp.Choices) == 0 {
			apierrors.InternalError(c, "Empty completion")
			return
		}
		c.JSON(http.StatusOK, gin.H{"content": resp.Choices[0].Message.Content})
		return
	}

	stream, err := h.openaiClient.CreateChatCompletionStream(c.Request.Context(), completionReq)
	if err != nil {
		h.respondOpenAIError(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sse := newSSEWriter(c.Writer)
	sse.raw("event: hello\ndata: {\"ok\":true}\n\n")

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Warn("gateway openai stream interrupted", "err", err)
			break
		}
		data, err := json.Marshal(chunk)
		if err != nil {
			continue
		}
		sse.raw(fmt.Sprintf("data: %s\n\n", data))
	}
	sse.raw("data: [DONE]\n\n")
}

// Audit serves POST /audit: validate, append, and always answer ok. An
// append failure is logged server-side only; the caller's contract is
// fire-and-forget.
func (h *GatewayHandler) Audit(c *gin.Context) {
	type auditRequest struct {
		ActorID    string         `json:"actorId" binding:"required"`
		OrgID      *string        `json:"orgId"`
		EntityType string         `json:"entityType" binding:"required"`
		EntityID   string         `json:"entityId" binding:"required"`
		Action     string         `json:"action" binding:"required"`
		Ts         *time.Time     `json:"ts"`
		Details    map[string]any `json:"details"`
	}

	var req auditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Missing required fields")
		return
	}

	event := services.AuditEvent{
		ActorID:    req.ActorID,
		OrgID:      req.OrgID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Action:     req.Action,
		Details:    req.Details,
	}
	if req.Ts != nil {
		event.Ts = *req.Ts
	}

	if err := h.auditService.Append(event); err != nil {
		logger.Error("audit append failed", "entity_type", req.EntityType, "action", req.Action, "err", err)
	}

	ts := event.Ts
	if ts.IsZero() {
		ts = time.Now()
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "ts": ts.UTC().Format(time.RFC3339)})
}

// Events serves GET /events?userId=...: a keep-alive event stream with one
// hello, a heartbeat every 15s, and a placeholder run.updated every 30s.
func (h *GatewayHandler) Events(c *gin.Context) {
	userID := c.Query("userId")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sse := newSSEWriter(c.Writer)
	sse.event("hello", gin.H{"ok": true, "userId": userID})

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	runUpdated := time.NewTicker(runUpdatedInterval)
	defer runUpdated.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-heartbeat.C:
			sse.event("heartbeat", gin.H{"ts": t.UTC().Format(time.RFC3339)})
		case t := <-runUpdated.C:
			sse.event("run.updated", gin.H{"ts": t.UTC().Format(time.RFC3339)})
		}
	}
}

func (h *GatewayHandler) respondOpenAIError(c *gin.Context, err error) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		logger.Warn("gateway openai upstream status", "status", apiErr.HTTPStatusCode, "err", err)
		apierrors.RespondGatewayStatus(c, apiErr.HTTPStatusCode)
		return
	}
	logger.Error("gateway openai call failed", "err", err)
	apierrors.InternalError(c, "AI gateway error")
}

// proxyStream forwards upstream bytes as they arrive, flushing per chunk so
// tokens reach the client without buffering.
func proxyStream(c *gin.Context, r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				return
			}
			c.Writer.Flush()
		}
		if err != nil {
			return
		}
	}
}
