package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/emploai/emploai-server/internal/apierrors"
	"github.com/emploai/emploai-server/internal/dto"
	"github.com/emploai/emploai-server/internal/middleware"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/realtime"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/emploai/emploai-server/internal/services"
	"github.com/emploai/emploai-server/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// boardRefreshInterval paces stream pushes when changes arrive in bursts.
const boardRefreshInterval = time.Second

// TaskHandler coordinates task and priority-board HTTP handlers.
type TaskHandler struct {
	taskService     *services.TaskService
	employeeService *services.EmployeeService
	hub             *realtime.Hub
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, employeeService *services.EmployeeService, hub *realtime.Hub) *TaskHandler {
	return &TaskHandler{
		taskService:     taskService,
		employeeService: employeeService,
		hub:             hub,
	}
}

// CreateTask persists a new task. Priority is stored as received; it is
// normalized into a lane only when the board is read.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateRequest struct {
		Title              string     `json:"title" binding:"required"`
		Description        string     `json:"description"`
		Priority           string     `json:"priority"`
		AssignedEmployeeID *uuid.UUID `json:"assigned_employee_id"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(services.CreateTaskInput{
		Title:              req.Title,
		Description:        req.Description,
		Priority:           req.Priority,
		AssignedEmployeeID: req.AssignedEmployeeID,
		CreatedBy:          userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns the user's tasks, optionally filtered by status or
// assignee, paginated.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		CreatedBy: userID,
		Page:      params.Page,
		PageSize:  params.Limit,
	}

	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		switch status {
		case models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted:
			filter.Status = &status
		default:
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
	}
	if raw := c.Query("assigned_employee_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_employee_id")
			return
		}
		filter.AssignedEmployeeID = &id
	}

	tasks, total, err := h.taskService.List(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks: dto.ToTaskDTOs(tasks),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTask returns one task with its assignee.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task id")
		return
	}

	task, err := h.taskService.Get(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	if task.CreatedBy != userID {
		apierrors.NotFound(c, services.ErrTaskNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// VerifyTask approves or rejects a task.
func (h *TaskHandler) VerifyTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task id")
		return
	}

	type VerifyRequest struct {
		Approved *bool `json:"approved" binding:"required"`
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Verify(id, userID, *req.Approved)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// SuggestAssignee recommends an employee for a draft task by expertise
// keyword match. Returns null when nothing matches.
func (h *TaskHandler) SuggestAssignee(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type SuggestRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	employees, err := h.employeeService.List(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch employees")
		return
	}

	suggested := services.SuggestAssignee(req.Title, req.Description, employees)
	if suggested == nil {
		c.JSON(http.StatusOK, gin.H{"employee": nil})
		return
	}

	employeeDTO := dto.ToEmployeeDTO(*suggested)
	c.JSON(http.StatusOK, gin.H{"employee": employeeDTO})
}

// GetBoard returns the current priority lanes.
func (h *TaskHandler) GetBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardResponse(h.taskService.Lanes(userID)))
}

// StreamBoard pushes the full board as a text/event-stream: once on
// connect, then again after every task change. The whole board is refetched
// and resent each time rather than diffed.
func (h *TaskHandler) StreamBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	changes, cancel := h.hub.Subscribe(userID.String())
	defer cancel()

	sse := newSSEWriter(c.Writer)
	sse.event("board", dto.ToBoardResponse(h.taskService.Lanes(userID)))

	ctx := c.Request.Context()
	throttle := time.NewTicker(boardRefreshInterval)
	defer throttle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			// Coalesce bursts into at most one push per interval.
			select {
			case <-throttle.C:
			case <-ctx.Done():
				return
			}
			sse.event("board", dto.ToBoardResponse(h.taskService.Lanes(userID)))
		}
	}
}

type sseWriter struct {
	w gin.ResponseWriter
}

func newSSEWriter(w gin.ResponseWriter) *sseWriter {
	return &sseWriter{w: w}
}

func (s *sseWriter) event(name string, data any) {
	j, _ := json.Marshal(data)
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, j)
	s.w.Flush()
}

func (s *sseWriter) raw(line string) {
	fmt.Fprint(s.w, line)
	s.w.Flush()
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrUnknownAssignee):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTaskCreator):
		apierrors.NotFound(c, services.ErrTaskNotFound.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
