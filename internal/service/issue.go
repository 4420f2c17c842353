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

// CreateIssueInput holds the fields accepted when creating an issue.
type CreateIssueInput struct {
	Title       string               `json:"title" validate:"required,min=1,max=255"`
	Description *string              `json:"description" validate:"omitnil,max=10000"`
	Type        domain.IssueType     `json:"type" validate:"required,enum"`
	Priority    domain.IssuePriority `json:"priority" validate:"omitempty,enum"`
	AssigneeID  *int64               `json:"assignee_id" validate:"omitnil,gt=0"`
	ParentKey   *string              `json:"parent_key" validate:"omitnil,min=1"`
}

// UpdateIssueInput is a partial update. Absent fields are left as they are.
type UpdateIssueInput struct {
	Title            *string               `json:"title" validate:"omitnil,min=1,max=255"`
	Description      *string               `json:"description" validate:"omitnil,max=10000"`
	ClearDescription bool                  `json:"clear_description"`
	Type             *domain.IssueType     `json:"type" validate:"omitnil,enum"`
	Priority         *domain.IssuePriority `json:"priority" validate:"omitnil,enum"`
	Status           *domain.IssueStatus   `json:"status" validate:"omitnil,enum"`
	AssigneeID       *int64                `json:"assignee_id" validate:"omitnil,gt=0"`
	ClearAssignee    bool                  `json:"clear_assignee"`
}

// MoveIssueInput carries the target column of a board move.
type MoveIssueInput struct {
	Status domain.IssueStatus `json:"status" validate:"required,enum"`
}

// ListIssuesInput narrows an issue listing.
type ListIssuesInput struct {
	Search string             `query:"q" json:"q" validate:"max=255"`
	Status domain.IssueStatus `query:"status" json:"status" validate:"omitempty,enum"`
	Type   domain.IssueType   `query:"type" json:"type" validate:"omitempty,enum"`
}

// IssueService handles issue creation, editing and the board read model.
type IssueService struct {
	guard     *AccessGuard
	issues    IssueStore
	members   MemberStore
	validator *validate.Validator
}

// NewIssueService creates a new IssueService.
func NewIssueService(guard *AccessGuard, issues IssueStore, members MemberStore, v *validate.Validator) *IssueService {
	return &IssueService{guard: guard, issues: issues, members: members, validator: v}
}

// Create files a new issue in the project identified by key. The caller
// becomes the reporter. Access is checked first, then the input; the issue
// number is only allocated once both pass.
func (s *IssueService) Create(ctx context.Context, userID int64, key string, in CreateIssueInput) (*domain.Issue, error) {
	project, err := s.guard.ResolveWritable(ctx, userID, key)
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	if in.AssigneeID != nil {
		if err := s.checkAssignee(ctx, project.ID, *in.AssigneeID); err != nil {
			return nil, err
		}
	}

	var parentID *int64
	if in.ParentKey != nil {
		parent, err := s.issues.FindByKey(ctx, project.ID, strings.ToUpper(*in.ParentKey))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.ValidationError{Field: "parent_key", Message: "no such issue in this project"}
			}
			return nil, err
		}
		parentID = &parent.ID
	}

	issue, err := s.issues.Create(ctx, domain.NewIssue{
		ProjectID:   project.ID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Priority:    in.Priority,
		ParentID:    parentID,
		ReporterID:  userID,
		AssigneeID:  in.AssigneeID,
	})
	if err != nil {
		return nil, fmt.Errorf("create issue in %s: %w", project.Key, err)
	}

	slog.InfoContext(ctx, "issue created",
		"issue", issue.Key,
		"project", project.Key,
		"reporter_id", userID,
	)

	return issue, nil
}

// List returns the project's issues, newest first.
func (s *IssueService) List(ctx context.Context, userID int64, key string, in ListIssuesInput) ([]domain.Issue, error) {
	project, err := s.guard.Resolve(ctx, userID, key)
	if err != nil {
		return nil, err
	}

	in.Search = strings.TrimSpace(in.Search)
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	return s.issues.List(ctx, project.ID, domain.IssueFilter{
		Search: in.Search,
		Status: in.Status,
		Type:   in.Type,
	})
}

// Get returns an issue with its reporter and assignee.
func (s *IssueService) Get(ctx context.Context, userID int64, key, issueKey string) (*domain.IssueDetails, error) {
	project, err := s.guard.Resolve(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	return s.issues.Details(ctx, project.ID, strings.ToUpper(issueKey))
}

// Update applies a partial update to an issue.
func (s *IssueService) Update(ctx context.Context, userID int64, key, issueKey string, in UpdateIssueInput) (*domain.Issue, error) {
	project, err := s.guard.ResolveWritable(ctx, userID, key)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}
	if in.AssigneeID != nil && !in.ClearAssignee {
		if err := s.checkAssignee(ctx, project.ID, *in.AssigneeID); err != nil {
			return nil, err
		}
	}

	issue, err := s.issues.Update(ctx, project.ID, strings.ToUpper(issueKey), domain.IssueUpdate{
		Title:            in.Title,
		Description:      in.Description,
		ClearDescription: in.ClearDescription,
		Type:             in.Type,
		Priority:         in.Priority,
		Status:           in.Status,
		AssigneeID:       in.AssigneeID,
		ClearAssignee:    in.ClearAssignee,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "issue updated", "issue", issue.Key, "by", userID)
	return issue, nil
}

// Move changes the status of an issue, as a board drag-and-drop does.
func (s *IssueService) Move(ctx context.Context, userID int64, key, issueKey string, in MoveIssueInput) (*domain.Issue, error) {
	project, err := s.guard.ResolveWritable(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(&in); err != nil {
		return nil, err
	}

	issue, err := s.issues.UpdateStatus(ctx, project.ID, strings.ToUpper(issueKey), in.Status)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "issue moved", "issue", issue.Key, "status", issue.Status, "by", userID)
	return issue, nil
}

// Board groups the project's issues into the board columns. Cancelled
// issues are not shown.
func (s *IssueService) Board(ctx context.Context, userID int64, key string) ([]domain.BoardColumn, error) {
	project, err := s.guard.Resolve(ctx, userID, key)
	if err != nil {
		return nil, err
	}

	issues, err := s.issues.List(ctx, project.ID, domain.IssueFilter{})
	if err != nil {
		return nil, err
	}

	byStatus := make(map[domain.IssueStatus][]domain.Issue, len(domain.BoardColumns))
	for _, issue := range issues {
		byStatus[issue.Status] = append(byStatus[issue.Status], issue)
	}

	columns := make([]domain.BoardColumn, 0, len(domain.BoardColumns))
	for _, status := range domain.BoardColumns {
		col := domain.BoardColumn{Status: status, Issues: byStatus[status]}
		if col.Issues == nil {
			col.Issues = []domain.Issue{}
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func (s *IssueService) checkAssignee(ctx context.Context, projectID, assigneeID int64) error {
	_, err := s.members.Role(ctx, projectID, assigneeID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ValidationError{Field: "assignee_id", Message: "must be a project member"}
	}
	return err
}
