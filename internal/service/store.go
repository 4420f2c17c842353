package service

import (
	"context"

	"github.com/sumire/tracker/internal/domain"
)

// ProjectStore defines the project data access interface.
type ProjectStore interface {
	Create(ctx context.Context, in domain.NewProject) (*domain.Project, error)
	FindByKey(ctx context.Context, key string) (*domain.Project, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.MemberProject, error)
	Stats(ctx context.Context, projectID int64) (*domain.ProjectStats, error)
}

// MemberStore defines the membership data access interface.
type MemberStore interface {
	Role(ctx context.Context, projectID, userID int64) (domain.ProjectRole, error)
	Find(ctx context.Context, projectID, userID int64) (*domain.Member, error)
	List(ctx context.Context, projectID int64) ([]domain.Member, error)
	Add(ctx context.Context, projectID, userID int64, role domain.ProjectRole) error
	Remove(ctx context.Context, projectID, userID int64) error
	UpdateRole(ctx context.Context, projectID, userID int64, role domain.ProjectRole) error
}

// IssueStore defines the issue data access interface. Create allocates the
// issue number and inserts the row in one transaction.
type IssueStore interface {
	Create(ctx context.Context, in domain.NewIssue) (*domain.Issue, error)
	FindByKey(ctx context.Context, projectID int64, key string) (*domain.Issue, error)
	Details(ctx context.Context, projectID int64, key string) (*domain.IssueDetails, error)
	List(ctx context.Context, projectID int64, filter domain.IssueFilter) ([]domain.Issue, error)
	Update(ctx context.Context, projectID int64, key string, u domain.IssueUpdate) (*domain.Issue, error)
	UpdateStatus(ctx context.Context, projectID int64, key string, status domain.IssueStatus) (*domain.Issue, error)
}
