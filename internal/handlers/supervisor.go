package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/emploai/emploai-server/internal/apierrors"
	"github.com/emploai/emploai-server/internal/middleware"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// SupervisorHandler serves the supervisor-only surfaces. Routes using it
// sit behind the RequireSupervisor middleware.
type SupervisorHandler struct {
	templateRepo repository.ChainTemplateRepository
}

// NewSupervisorHandler creates a new SupervisorHandler.
func NewSupervisorHandler(templateRepo repository.ChainTemplateRepository) *SupervisorHandler {
	return &SupervisorHandler{
		templateRepo: templateRepo,
	}
}

// CreateChainTemplate stores a reusable task decomposition template.
func (h *SupervisorHandler) CreateChainTemplate(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateRequest struct {
		Name  string   `json:"name" binding:"required,max=255"`
		Steps []string `json:"steps" binding:"required,min=1"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	steps, err := json.Marshal(req.Steps)
	if err != nil {
		apierrors.BadRequest(c, "Invalid steps")
		return
	}

	template := &models.ChainTemplate{
		Name:      req.Name,
		Steps:     datatypes.JSON(steps),
		CreatedBy: userID,
	}
	if err := h.templateRepo.Create(template); err != nil {
		apierrors.InternalError(c, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, template)
}

// ListChainTemplates returns every stored template.
func (h *SupervisorHandler) ListChainTemplates(c *gin.Context) {
	templates, err := h.templateRepo.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch templates")
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}
