package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/regioninvest/portal/internal/domain"
	"github.com/regioninvest/portal/internal/service"
)

const dateLayout = "2006-01-02"

// TaskHandler handles task endpoints.
type TaskHandler struct {
	tasks       *service.TaskService
	completions *service.CompletionService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService, completions *service.CompletionService) *TaskHandler {
	return &TaskHandler{tasks: tasks, completions: completions}
}

type createTaskRequest struct {
	ProjectID   int64   `json:"project_id" validate:"required"`
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	AssigneeID  *int64  `json:"assignee_id"`
	StartDate   *string `json:"start_date"`
	DueDate     *string `json:"due_date"`
}

// Create creates a new task, with the caller as its creator.
func (h *TaskHandler) Create(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startDate, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		return err
	}
	dueDate, err := parseDate(req.DueDate, "due_date")
	if err != nil {
		return err
	}

	task, err := h.tasks.Create(c.Request().Context(), service.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		CreatorID:   userID,
		StartDate:   startDate,
		DueDate:     dueDate,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, task)
}

// Get returns one task with its completion history.
func (h *TaskHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	task, err := h.tasks.Get(ctx, id)
	if err != nil {
		return err
	}

	completions, err := h.completions.ListByTask(ctx, task.ID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, map[string]any{
		"task":        task,
		"completions": completions,
	})
}

// ListByProject returns all tasks of a project.
func (h *TaskHandler) ListByProject(c echo.Context) error {
	projectID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	tasks, err := h.tasks.ListByProject(c.Request().Context(), projectID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, tasks)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}

func parseDate(s *string, field string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return &t, nil
}
