package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/tracker/internal/service"
)

// ProjectHandler serves project endpoints.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	var in service.CreateProjectInput
	if err := bind(c, &in); err != nil {
		return err
	}

	project, err := h.projects.Create(c.Request().Context(), userID, in)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, project)
}

// List handles GET /projects.
func (h *ProjectHandler) List(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	projects, err := h.projects.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, projects)
}

// Get handles GET /projects/:key.
func (h *ProjectHandler) Get(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	project, err := h.projects.Get(c.Request().Context(), userID, c.Param("key"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, project)
}

// Stats handles GET /projects/:key/stats.
func (h *ProjectHandler) Stats(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	stats, err := h.projects.Stats(c.Request().Context(), userID, c.Param("key"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, stats)
}
