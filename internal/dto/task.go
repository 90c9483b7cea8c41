package dto

import (
	"time"

	"github.com/emploai/emploai-server/internal/board"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/utils"
	"github.com/google/uuid"
)

// TaskDTO represents a task in API responses. Lane is the normalized
// priority; Priority echoes the raw stored string.
type TaskDTO struct {
	ID                 uuid.UUID         `json:"id"`
	Title              string            `json:"title"`
	Description        *string           `json:"description"`
	Priority           string            `json:"priority"`
	Lane               board.Lane        `json:"lane"`
	Status             models.TaskStatus `json:"status"`
	AssignedEmployeeID *uuid.UUID        `json:"assigned_employee_id"`
	AssignedEmployee   *EmployeeDTO      `json:"assigned_employee,omitempty"`
	CompletedAt        *time.Time        `json:"completed_at"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// BoardResponse represents the three priority lanes plus the
// unclassified bucket, each already sorted for display.
type BoardResponse struct {
	P1           []TaskDTO `json:"p1"`
	P2           []TaskDTO `json:"p2"`
	P3           []TaskDTO `json:"p3"`
	Unclassified []TaskDTO `json:"unclassified"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		Priority:           task.Priority,
		Lane:               board.ParsePriority(task.Priority),
		Status:             task.Status,
		AssignedEmployeeID: task.AssignedEmployeeID,
		CompletedAt:        task.CompletedAt,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
	}

	// Include assignee if preloaded
	if task.AssignedEmployee != nil {
		assignee := ToEmployeeDTO(*task.AssignedEmployee)
		dto.AssignedEmployee = &assignee
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

// ToBoardResponse converts grouped lanes into the board payload
func ToBoardResponse(lanes board.Lanes) BoardResponse {
	return BoardResponse{
		P1:           ToTaskDTOs(lanes.P1),
		P2:           ToTaskDTOs(lanes.P2),
		P3:           ToTaskDTOs(lanes.P3),
		Unclassified: ToTaskDTOs(lanes.Unclassified),
	}
}
