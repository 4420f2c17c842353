package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/validate"
)

// CreateProjectInput holds the fields accepted when creating a project.
type CreateProjectInput struct {
	Key         string  `json:"key" validate:"required,project_key"`
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
}

// ProjectService handles project lifecycle and read models.
type ProjectService struct {
	guard     *AccessGuard
	projects  ProjectStore
	validator *validate.Validator
}

// NewProjectService creates a new ProjectService.
func NewProjectService(guard *AccessGuard, projects ProjectStore, v *validate.Validator) *ProjectService {
	return &ProjectService{guard: guard, projects: projects, validator: v}
}

// Create inserts a project and makes the caller its owner.
func (s *ProjectService) Create(ctx context.Context, userID int64, in CreateProjectInput) (*domain.Project, error) {
	in.Key = strings.ToUpper(strings.TrimSpace(in.Key))
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	project, err := s.projects.Create(ctx, domain.NewProject{
		Key:         in.Key,
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   userID,
	})
	if err != nil {
		return nil, fmt.Errorf("create project %s: %w", in.Key, err)
	}

	slog.InfoContext(ctx, "project created", "project", project.Key, "user_id", userID)
	return project, nil
}

// List returns the projects the user belongs to.
func (s *ProjectService) List(ctx context.Context, userID int64) ([]domain.MemberProject, error) {
	return s.projects.ListForUser(ctx, userID)
}

// Get returns a project the user belongs to.
func (s *ProjectService) Get(ctx context.Context, userID int64, key string) (*domain.MemberProject, error) {
	return s.guard.Resolve(ctx, userID, key)
}

// Stats returns issue counts for a project.
func (s *ProjectService) Stats(ctx context.Context, userID int64, key string) (*domain.ProjectStats, error) {
	project, err := s.guard.Resolve(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	return s.projects.Stats(ctx, project.ID)
}
