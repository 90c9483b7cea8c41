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

// GroupHandler coordinates employee group HTTP handlers.
type GroupHandler struct {
	groupRepo       repository.GroupRepository
	employeeService *services.EmployeeService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupRepo repository.GroupRepository, employeeService *services.EmployeeService) *GroupHandler {
	return &GroupHandler{
		groupRepo:       groupRepo,
		employeeService: employeeService,
	}
}

// CreateGroup creates an employee group.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateRequest struct {
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group := &models.Group{
		Name:      req.Name,
		CreatedBy: userID,
	}
	if req.Description != "" {
		group.Description = &req.Description
	}
	if err := h.groupRepo.Create(group); err != nil {
		apierrors.InternalError(c, "Failed to create group")
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupDTO(*group))
}

// ListGroups returns the user's groups with members.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	groups, err := h.groupRepo.List(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch groups")
		return
	}

	out := make([]dto.GroupDTO, len(groups))
	for i, g := range groups {
		out[i] = dto.ToGroupDTO(g)
	}
	c.JSON(http.StatusOK, gin.H{"groups": out})
}

// DeleteGroup removes a group and its memberships.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, _, ok := h.ownedGroup(c, userID)
	if !ok {
		return
	}

	if err := h.groupRepo.Delete(id); err != nil {
		apierrors.InternalError(c, "Failed to delete group")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// AddMember adds an employee to a group. Adding twice is a no-op.
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	groupID, _, ok := h.ownedGroup(c, userID)
	if !ok {
		return
	}

	type MemberRequest struct {
		EmployeeID uuid.UUID `json:"employee_id" binding:"required"`
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	employee, err := h.employeeService.Get(req.EmployeeID)
	if err != nil {
		respondEmployeeError(c, err)
		return
	}
	if employee.UserID != userID || employee.Deleted() {
		apierrors.NotFound(c, services.ErrEmployeeNotFound.Error())
		return
	}

	member := &models.GroupMember{
		GroupID:    groupID,
		EmployeeID: req.EmployeeID,
	}
	if err := h.groupRepo.AddMember(member); err != nil {
		apierrors.InternalError(c, "Failed to add member")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member added"})
}

// RemoveMember removes an employee from a group.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	groupID, _, ok := h.ownedGroup(c, userID)
	if !ok {
		return
	}

	employeeID, err := uuid.Parse(c.Param("employeeId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid employee id")
		return
	}

	if err := h.groupRepo.RemoveMember(groupID, employeeID); err != nil {
		apierrors.InternalError(c, "Failed to remove member")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// ownedGroup parses the :id param and enforces ownership, writing the error
// response itself when the lookup fails.
func (h *GroupHandler) ownedGroup(c *gin.Context, userID uuid.UUID) (uuid.UUID, *models.Group, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid group id")
		return uuid.Nil, nil, false
	}

	group, err := h.groupRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Group not found")
		} else {
			apierrors.InternalError(c, "Failed to fetch group")
		}
		return uuid.Nil, nil, false
	}
	if group.CreatedBy != userID {
		apierrors.NotFound(c, "Group not found")
		return uuid.Nil, nil, false
	}
	return id, group, true
}
