package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sumire/tracker/internal/domain"
)

// AccessGuard resolves a project key for an acting user.
type AccessGuard struct {
	projects ProjectStore
	members  MemberStore
}

// NewAccessGuard creates a new AccessGuard.
func NewAccessGuard(projects ProjectStore, members MemberStore) *AccessGuard {
	return &AccessGuard{projects: projects, members: members}
}

// Resolve returns the project identified by key together with the caller's
// role. An unknown key yields domain.ErrNotFound; a project the user does not
// belong to yields domain.ErrNotMember.
func (g *AccessGuard) Resolve(ctx context.Context, userID int64, key string) (*domain.MemberProject, error) {
	project, err := g.projects.FindByKey(ctx, strings.ToUpper(key))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("project %q: %w", key, domain.ErrNotFound)
		}
		return nil, err
	}

	role, err := g.members.Role(ctx, project.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("project %q: %w", project.Key, domain.ErrNotMember)
		}
		return nil, err
	}

	return &domain.MemberProject{Project: *project, Role: role}, nil
}

// ResolveWritable is Resolve for operations that change issues. Viewers get
// domain.ErrForbidden.
func (g *AccessGuard) ResolveWritable(ctx context.Context, userID int64, key string) (*domain.MemberProject, error) {
	project, err := g.Resolve(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if !project.Role.CanWrite() {
		return nil, fmt.Errorf("%w: role %s is read-only", domain.ErrForbidden, project.Role)
	}
	return project, nil
}

// ResolveManager is Resolve for membership management, which needs owner or admin.
func (g *AccessGuard) ResolveManager(ctx context.Context, userID int64, key string) (*domain.MemberProject, error) {
	project, err := g.Resolve(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if !project.Role.CanManageMembers() {
		return nil, fmt.Errorf("%w: role %s cannot manage members", domain.ErrForbidden, project.Role)
	}
	return project, nil
}
