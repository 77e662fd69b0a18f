package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/regioninvest/portal/internal/domain"
)

// ProjectLister is the project directory slice consumed by this handler.
type ProjectLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Project, error)
}

// ProjectHandler handles project listing for the portal UI.
type ProjectHandler struct {
	projects ProjectLister
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects ProjectLister) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// ListMine returns the projects owned by the caller.
func (h *ProjectHandler) ListMine(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	projects, err := h.projects.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, projects)
}
