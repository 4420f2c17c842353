package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/validate"
)

// AddMemberInput identifies the user to invite and the role to grant.
type AddMemberInput struct {
	Email string             `json:"email" validate:"required,email"`
	Role  domain.ProjectRole `json:"role" validate:"omitempty,enum"`
}

// UpdateMemberRoleInput carries the new role of a member.
type UpdateMemberRoleInput struct {
	Role domain.ProjectRole `json:"role" validate:"required,enum"`
}

// MemberService manages project memberships.
type MemberService struct {
	guard     *AccessGuard
	members   MemberStore
	users     UserStore
	validator *validate.Validator
}

// NewMemberService creates a new MemberService.
func NewMemberService(guard *AccessGuard, members MemberStore, users UserStore, v *validate.Validator) *MemberService {
	return &MemberService{guard: guard, members: members, users: users, validator: v}
}

// List returns the members of a project. Any member may list.
func (s *MemberService) List(ctx context.Context, userID int64, key string) ([]domain.Member, error) {
	project, err := s.guard.Resolve(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	return s.members.List(ctx, project.ID)
}

// Add invites an existing user, found by email, into the project.
func (s *MemberService) Add(ctx context.Context, userID int64, key string, in AddMemberInput) (*domain.Member, error) {
	project, err := s.guard.ResolveManager(ctx, userID, key)
	if err != nil {
		return nil, err
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = domain.DefaultProjectRole
	}
	if in.Role == domain.ProjectRoleOwner {
		return nil, &domain.ValidationError{Field: "role", Message: "owner cannot be assigned"}
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", in.Email, domain.ErrNotFound)
		}
		return nil, err
	}

	if err := s.members.Add(ctx, project.ID, user.ID, in.Role); err != nil {
		return nil, fmt.Errorf("add %s to %s: %w", in.Email, project.Key, err)
	}

	slog.InfoContext(ctx, "member added",
		"project", project.Key,
		"member_id", user.ID,
		"role", in.Role,
		"by", userID,
	)

	return s.members.Find(ctx, project.ID, user.ID)
}

// Remove takes a member out of the project. Nobody can remove themselves or the owner.
func (s *MemberService) Remove(ctx context.Context, userID int64, key string, targetID int64) error {
	project, err := s.guard.ResolveManager(ctx, userID, key)
	if err != nil {
		return err
	}
	if targetID == userID {
		return fmt.Errorf("%w: cannot remove yourself", domain.ErrInvalidInput)
	}

	role, err := s.members.Role(ctx, project.ID, targetID)
	if err != nil {
		return err
	}
	if role == domain.ProjectRoleOwner {
		return fmt.Errorf("%w: the project owner cannot be removed", domain.ErrForbidden)
	}

	if err := s.members.Remove(ctx, project.ID, targetID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "member removed", "project", project.Key, "member_id", targetID, "by", userID)
	return nil
}

// UpdateRole changes the role of a member. Ownership is never granted or taken away here.
func (s *MemberService) UpdateRole(ctx context.Context, userID int64, key string, targetID int64, in UpdateMemberRoleInput) (*domain.Member, error) {
	project, err := s.guard.ResolveManager(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}
	if in.Role == domain.ProjectRoleOwner {
		return nil, &domain.ValidationError{Field: "role", Message: "owner cannot be assigned"}
	}

	current, err := s.members.Role(ctx, project.ID, targetID)
	if err != nil {
		return nil, err
	}
	if current == domain.ProjectRoleOwner {
		return nil, fmt.Errorf("%w: the owner's role cannot be changed", domain.ErrForbidden)
	}

	if err := s.members.UpdateRole(ctx, project.ID, targetID, in.Role); err != nil {
		return nil, err
	}
	return s.members.Find(ctx, project.ID, targetID)
}
