package handlers

import (
	"errors"
	"net/http"

	"github.com/emploai/emploai-server/internal/apierrors"
	"github.com/emploai/emploai-server/internal/dto"
	"github.com/emploai/emploai-server/internal/middleware"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/emploai/emploai-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeHandler coordinates roster HTTP handlers.
type EmployeeHandler struct {
	employeeService *services.EmployeeService
	memoryRepo      repository.MemoryRepository
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(employeeService *services.EmployeeService, memoryRepo repository.MemoryRepository) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
		memoryRepo:      memoryRepo,
	}
}

// CreateEmployee hires a new simulated employee.
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateRequest struct {
		Name      string `json:"name" binding:"required,max=255"`
		Gender    string `json:"gender" binding:"required"`
		Expertise string `json:"expertise" binding:"required"`
		Level     string `json:"level"`
		Role      string `json:"role"`
		AvatarURL string `json:"avatar_url"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	employee, err := h.employeeService.Create(services.CreateEmployeeInput{
		UserID:    userID,
		Name:      req.Name,
		Gender:    models.Gender(req.Gender),
		Expertise: models.Expertise(req.Expertise),
		Level:     models.EmployeeLevel(req.Level),
		Role:      models.EmployeeRole(req.Role),
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondEmployeeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEmployeeDTO(*employee))
}

// ListEmployees returns the user's active roster.
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	employees, err := h.employeeService.List(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch employees")
		return
	}

	c.JSON(http.StatusOK, gin.H{"employees": dto.ToEmployeeDTOs(employees)})
}

// GetEmployee returns one employee, soft-deleted rows included so
// historical task views keep resolving names.
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	employee, err := h.employeeService.Get(id)
	if err != nil {
		respondEmployeeError(c, err)
		return
	}
	if employee.UserID != userID {
		apierrors.NotFound(c, services.ErrEmployeeNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, dto.ToEmployeeDTO(*employee))
}

// DeleteEmployee fires an employee: the row is marked, never removed.
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	if err := h.employeeService.SoftDelete(id, userID); err != nil {
		respondEmployeeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Employee deleted"})
}

// GetManager returns the organization manager, or null when none exists.
func (h *EmployeeHandler) GetManager(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	manager, err := h.employeeService.Manager(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch manager")
		return
	}
	if manager == nil {
		c.JSON(http.StatusOK, gin.H{"manager": nil})
		return
	}

	managerDTO := dto.ToEmployeeDTO(*manager)
	c.JSON(http.StatusOK, gin.H{"manager": managerDTO})
}

// GetInsights returns the dashboard counters.
func (h *EmployeeHandler) GetInsights(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	insights, err := h.employeeService.GetInsights(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to compute insights")
		return
	}

	c.JSON(http.StatusOK, insights)
}

// ListMemory returns an employee's remembered factlets.
func (h *EmployeeHandler) ListMemory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	employee, err := h.employeeService.Get(id)
	if err != nil {
		respondEmployeeError(c, err)
		return
	}
	if employee.UserID != userID {
		apierrors.NotFound(c, services.ErrEmployeeNotFound.Error())
		return
	}

	memory, err := h.memoryRepo.ListByEmployee(id)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch memory")
		return
	}

	out := make([]dto.MemoryDTO, len(memory))
	for i, m := range memory {
		out[i] = dto.ToMemoryDTO(m)
	}
	c.JSON(http.StatusOK, gin.H{"memory": out})
}

// AddMemory stores one factlet for an employee.
func (h *EmployeeHandler) AddMemory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	employee, err := h.employeeService.Get(id)
	if err != nil {
		respondEmployeeError(c, err)
		return
	}
	if employee.UserID != userID {
		apierrors.NotFound(c, services.ErrEmployeeNotFound.Error())
		return
	}
	if employee.Deleted() {
		apierrors.Conflict(c, services.ErrEmployeeIsDeleted.Error())
		return
	}

	type MemoryRequest struct {
		Factlet         string  `json:"factlet" binding:"required"`
		ImportanceScore float64 `json:"importance_score"`
	}

	var req MemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	m := &models.EmployeeMemory{
		EmployeeID:      id,
		Factlet:         req.Factlet,
		ImportanceScore: req.ImportanceScore,
	}
	if err := h.memoryRepo.Create(m); err != nil {
		apierrors.InternalError(c, "Failed to store memory")
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemoryDTO(*m))
}

// DeleteMemory forgets one factlet.
func (h *EmployeeHandler) DeleteMemory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}
	memoryID, err := uuid.Parse(c.Param("memoryId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid memory id")
		return
	}

	employee, err := h.employeeService.Get(id)
	if err != nil {
		respondEmployeeError(c, err)
		return
	}
	if employee.UserID != userID {
		apierrors.NotFound(c, services.ErrEmployeeNotFound.Error())
		return
	}

	if err := h.memoryRepo.Delete(memoryID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Memory not found")
			return
		}
		apierrors.InternalError(c, "Failed to delete memory")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Memory deleted"})
}

func respondEmployeeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidGender),
		errors.Is(err, services.ErrInvalidExpertise):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmployeeNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotEmployeeOwner):
		apierrors.NotFound(c, services.ErrEmployeeNotFound.Error())
	case errors.Is(err, services.ErrEmployeeIsDeleted):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
