package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emploai/emploai-server/internal/board"
	"github.com/emploai/emploai-server/internal/logger"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/emploai/emploai-server/internal/realtime"
	"github.com/emploai/emploai-server/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrNotTaskCreator  = errors.New("only the task creator can perform this action")
	ErrUnknownAssignee = errors.New("assigned employee does not exist")
)

// TaskService handles task business logic, the priority board included.
type TaskService struct {
	taskRepo     repository.TaskRepository
	employeeRepo repository.EmployeeRepository
	hub          *realtime.Hub
	audit        *AuditService
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, employeeRepo repository.EmployeeRepository, hub *realtime.Hub, audit *AuditService) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		employeeRepo: employeeRepo,
		hub:          hub,
		audit:        audit,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title              string
	Description        string
	Priority           string // free-form; normalized at the read edge
	AssignedEmployeeID *uuid.UUID
	CreatedBy          uuid.UUID
}

// Create persists a new task with status defaulting to pending.
func (s *TaskService) Create(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if input.AssignedEmployeeID != nil {
		if _, err := s.employeeRepo.FindByID(*input.AssignedEmployeeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownAssignee
			}
			return nil, fmt.Errorf("failed to verify assignee: %w", err)
		}
	}

	task := &models.Task{
		Title:              input.Title,
		Priority:           input.Priority,
		Status:             models.TaskStatusPending,
		CreatedBy:          input.CreatedBy,
		AssignedEmployeeID: input.AssignedEmployeeID,
	}
	if input.Description != "" {
		task.Description = &input.Description
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.notifyChange(input.CreatedBy, task.ID, "create")
	return task, nil
}

// List returns the user's tasks with the (possibly soft-deleted) assigned
// employee preloaded; a stale "Sam - Technology" join is tolerated, not an
// error.
func (s *TaskService) List(filter repository.TaskFilter) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Get returns one task with relations.
func (s *TaskService) Get(id uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, "AssignedEmployee")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// Verify approves or rejects a pending task. Approval sets status completed
// together with the completion timestamp; rejection resets the task to
// pending and clears the timestamp, keeping the completed_at-iff-completed
// invariant intact.
func (s *TaskService) Verify(taskID, actorID uuid.UUID, approved bool) (*models.Task, error) {
	task, err := s.Get(taskID)
	if err != nil {
		return nil, err
	}
	if task.CreatedBy != actorID {
		return nil, ErrNotTaskCreator
	}

	if approved {
		now := time.Now()
		err = s.taskRepo.SetStatus(taskID, models.TaskStatusCompleted, &now)
	} else {
		err = s.taskRepo.SetStatus(taskID, models.TaskStatusPending, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	action := "reject"
	if approved {
		action = "approve"
	}
	s.notifyChange(actorID, taskID, action)
	return s.Get(taskID)
}

// Lanes computes the live priority board from the user's pending tasks.
// A fetch error yields empty lanes and a log line; there is no retry loop,
// the next change notification is the retry trigger.
func (s *TaskService) Lanes(userID uuid.UUID) board.Lanes {
	tasks, err := s.taskRepo.Pending(userID)
	if err != nil {
		logger.Error("board fetch failed", "user_id", userID.String(), "err", err)
		return board.Lanes{}
	}
	return board.Group(tasks)
}

func (s *TaskService) notifyChange(actorID, taskID uuid.UUID, action string) {
	s.audit.Record(AuditEvent{
		ActorID:    actorID.String(),
		EntityType: "task",
		EntityID:   taskID.String(),
		Action:     action,
	})
	if s.hub != nil {
		s.hub.Notify(actorID.String())
	}
}

// SuggestAssignee scores each employee by substring match of their lowercased
// expertise tag inside the task title (weight 2) and description (weight 1).
// The highest scorer above zero wins; ties break by input order.
func SuggestAssignee(title, description string, employees []models.Employee) *models.Employee {
	title = strings.ToLower(title)
	description = strings.ToLower(description)

	var best *models.Employee
	bestScore := 0
	for i := range employees {
		e := &employees[i]
		if e.Deleted() {
			continue
		}
		expertise := strings.ToLower(string(e.Expertise))
		score := 0
		if strings.Contains(title, expertise) {
			score += 2
		}
		if strings.Contains(description, expertise) {
			score++
		}
		if score > bestScore {
			best = e
			bestScore = score
		}
	}
	return best
}
