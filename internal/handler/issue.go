package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/tracker/internal/service"
)

// IssueHandler serves issue and board endpoints.
type IssueHandler struct {
	issues *service.IssueService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(issues *service.IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

// Create handles POST /projects/:key/issues.
func (h *IssueHandler) Create(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	var in service.CreateIssueInput
	if err := bind(c, &in); err != nil {
		return err
	}

	issue, err := h.issues.Create(c.Request().Context(), userID, c.Param("key"), in)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, issue)
}

// List handles GET /projects/:key/issues?q=&status=&type=.
func (h *IssueHandler) List(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	var in service.ListIssuesInput
	if err := bind(c, &in); err != nil {
		return err
	}

	issues, err := h.issues.List(c.Request().Context(), userID, c.Param("key"), in)
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, issues)
}

// Get handles GET /projects/:key/issues/:issueKey.
func (h *IssueHandler) Get(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	issue, err := h.issues.Get(c.Request().Context(), userID, c.Param("key"), c.Param("issueKey"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, issue)
}

// Update handles PATCH /projects/:key/issues/:issueKey.
func (h *IssueHandler) Update(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	var in service.UpdateIssueInput
	if err := bind(c, &in); err != nil {
		return err
	}

	issue, err := h.issues.Update(c.Request().Context(), userID, c.Param("key"), c.Param("issueKey"), in)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, issue)
}

// Move handles PATCH /projects/:key/issues/:issueKey/status.
func (h *IssueHandler) Move(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	var in service.MoveIssueInput
	if err := bind(c, &in); err != nil {
		return err
	}

	issue, err := h.issues.Move(c.Request().Context(), userID, c.Param("key"), c.Param("issueKey"), in)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, issue)
}

// Board handles GET /projects/:key/board.
func (h *IssueHandler) Board(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	board, err := h.issues.Board(c.Request().Context(), userID, c.Param("key"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, board)
}
