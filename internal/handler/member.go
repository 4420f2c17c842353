package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/service"
)

// MemberHandler serves project membership endpoints.
type MemberHandler struct {
	members *service.MemberService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members *service.MemberService) *MemberHandler {
	return &MemberHandler{members: members}
}

// List handles GET /projects/:key/members.
func (h *MemberHandler) List(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	members, err := h.members.List(c.Request().Context(), userID, c.Param("key"))
	if err != nil {
		return err
	}
	return JSONList(c, http.StatusOK, members)
}

// Add handles POST /projects/:key/members.
func (h *MemberHandler) Add(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}

	var in service.AddMemberInput
	if err := bind(c, &in); err != nil {
		return err
	}

	member, err := h.members.Add(c.Request().Context(), userID, c.Param("key"), in)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, member)
}

// UpdateRole handles PATCH /projects/:key/members/:userID.
func (h *MemberHandler) UpdateRole(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}
	targetID, err := targetUserID(c)
	if err != nil {
		return err
	}

	var in service.UpdateMemberRoleInput
	if err := bind(c, &in); err != nil {
		return err
	}

	member, err := h.members.UpdateRole(c.Request().Context(), userID, c.Param("key"), targetID, in)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, member)
}

// Remove handles DELETE /projects/:key/members/:userID.
func (h *MemberHandler) Remove(c echo.Context) error {
	userID, err := mustUserID(c)
	if err != nil {
		return err
	}
	targetID, err := targetUserID(c)
	if err != nil {
		return err
	}

	if err := h.members.Remove(c.Request().Context(), userID, c.Param("key"), targetID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func targetUserID(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).MustInt64("userID", &id).BindError(); err != nil {
		return 0, fmt.Errorf("%w: user id must be an integer", domain.ErrInvalidInput)
	}
	return id, nil
}
