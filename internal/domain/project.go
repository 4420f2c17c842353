package domain

import "time"

// ProjectRole is the role a member holds within one project.
type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleAdmin  ProjectRole = "admin"
	ProjectRoleMember ProjectRole = "member"
	ProjectRoleViewer ProjectRole = "viewer"
)

// DefaultProjectRole is assigned to members added without an explicit role.
const DefaultProjectRole = ProjectRoleMember

// Valid reports whether r is a known project role.
func (r ProjectRole) Valid() bool {
	switch r {
	case ProjectRoleOwner, ProjectRoleAdmin, ProjectRoleMember, ProjectRoleViewer:
		return true
	}
	return false
}

// CanManageMembers reports whether the role may add, remove or re-role members.
func (r ProjectRole) CanManageMembers() bool {
	return r == ProjectRoleOwner || r == ProjectRoleAdmin
}

// CanWrite reports whether the role may create and edit issues.
func (r ProjectRole) CanWrite() bool {
	return r != ProjectRoleViewer && r.Valid()
}

// Project represents a workspace that owns issues and their numbering counter.
type Project struct {
	ID              int64     `json:"id" db:"id"`
	Key             string    `json:"key" db:"key"`
	Name            string    `json:"name" db:"name"`
	Description     *string   `json:"description,omitempty" db:"description"`
	NextIssueNumber int64     `json:"next_issue_number" db:"next_issue_number"`
	CreatedBy       int64     `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// MemberProject is a project as seen by one of its members.
type MemberProject struct {
	Project
	Role ProjectRole `json:"role" db:"role"`
}

// Member is a user's membership in a project.
type Member struct {
	UserID      int64       `json:"user_id" db:"user_id"`
	DisplayName string      `json:"display_name" db:"display_name"`
	Email       string      `json:"email" db:"email"`
	AvatarURL   *string     `json:"avatar_url,omitempty" db:"avatar_url"`
	Role        ProjectRole `json:"role" db:"role"`
	JoinedAt    time.Time   `json:"joined_at" db:"joined_at"`
}

// ProjectStats summarizes issue counts for a project.
type ProjectStats struct {
	TotalIssues int                 `json:"total_issues"`
	DoneIssues  int                 `json:"done_issues"`
	ByStatus    map[IssueStatus]int `json:"by_status"`
}

// NewProject carries the fields needed to persist a project.
type NewProject struct {
	Key         string
	Name        string
	Description *string
	CreatedBy   int64
}
