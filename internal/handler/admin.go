package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/regioninvest/portal/internal/service"
)

// AdminHandler handles administrative triggers.
type AdminHandler struct {
	overdue *service.OverdueService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(overdue *service.OverdueService) *AdminHandler {
	return &AdminHandler{overdue: overdue}
}

// RunOverdueSweep triggers an immediate overdue sweep and reports what
// it did. The scheduled job runs the same code path.
func (h *AdminHandler) RunOverdueSweep(c echo.Context) error {
	result, err := h.overdue.Run(c.Request().Context())
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, result)
}
