package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IssueType classifies an issue.
type IssueType string

const (
	IssueTypeEpic    IssueType = "epic"
	IssueTypeStory   IssueType = "story"
	IssueTypeTask    IssueType = "task"
	IssueTypeBug     IssueType = "bug"
	IssueTypeSubtask IssueType = "subtask"
)

// Valid reports whether t is a known issue type.
func (t IssueType) Valid() bool {
	switch t {
	case IssueTypeEpic, IssueTypeStory, IssueTypeTask, IssueTypeBug, IssueTypeSubtask:
		return true
	}
	return false
}

// IssueStatus represents the workflow column of an issue.
type IssueStatus string

const (
	IssueStatusBacklog    IssueStatus = "backlog"
	IssueStatusTodo       IssueStatus = "todo"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusInReview   IssueStatus = "in_review"
	IssueStatusDone       IssueStatus = "done"
	IssueStatusCancelled  IssueStatus = "cancelled"
)

// InitialIssueStatus is the status every new issue starts in.
const InitialIssueStatus = IssueStatusBacklog

// BoardColumns lists the statuses shown on the board, left to right.
var BoardColumns = []IssueStatus{
	IssueStatusBacklog,
	IssueStatusTodo,
	IssueStatusInProgress,
	IssueStatusInReview,
	IssueStatusDone,
}

// Valid reports whether s is a known issue status.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusBacklog, IssueStatusTodo, IssueStatusInProgress,
		IssueStatusInReview, IssueStatusDone, IssueStatusCancelled:
		return true
	}
	return false
}

// Closed reports whether the status ends the issue's lifecycle.
func (s IssueStatus) Closed() bool {
	return s == IssueStatusDone || s == IssueStatusCancelled
}

// IssuePriority ranks issues.
type IssuePriority string

const (
	IssuePriorityLowest  IssuePriority = "lowest"
	IssuePriorityLow     IssuePriority = "low"
	IssuePriorityMedium  IssuePriority = "medium"
	IssuePriorityHigh    IssuePriority = "high"
	IssuePriorityHighest IssuePriority = "highest"
)

// DefaultIssuePriority is used when an issue is created without a priority.
const DefaultIssuePriority = IssuePriorityMedium

// Valid reports whether p is a known priority.
func (p IssuePriority) Valid() bool {
	switch p {
	case IssuePriorityLowest, IssuePriorityLow, IssuePriorityMedium,
		IssuePriorityHigh, IssuePriorityHighest:
		return true
	}
	return false
}

// Issue represents a work item within a project.
type Issue struct {
	ID          int64         `json:"id" db:"id"`
	ProjectID   int64         `json:"project_id" db:"project_id"`
	Number      int64         `json:"number" db:"number"`
	Key         string        `json:"key" db:"key"`
	Title       string        `json:"title" db:"title"`
	Description *string       `json:"description,omitempty" db:"description"`
	Type        IssueType     `json:"type" db:"type"`
	Status      IssueStatus   `json:"status" db:"status"`
	Priority    IssuePriority `json:"priority" db:"priority"`
	ParentID    *int64        `json:"parent_id,omitempty" db:"parent_id"`
	ReporterID  int64         `json:"reporter_id" db:"reporter_id"`
	AssigneeID  *int64        `json:"assignee_id,omitempty" db:"assignee_id"`
	ClosedAt    *time.Time    `json:"closed_at,omitempty" db:"closed_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// IssueDetails is an issue together with the people attached to it.
type IssueDetails struct {
	Issue
	Reporter UserSummary  `json:"reporter"`
	Assignee *UserSummary `json:"assignee,omitempty"`
}

// IssueFilter narrows an issue listing. Zero values match everything.
type IssueFilter struct {
	Search string
	Status IssueStatus
	Type   IssueType
}

// BoardColumn is one status column of a project board.
type BoardColumn struct {
	Status IssueStatus `json:"status"`
	Issues []Issue     `json:"issues"`
}

// FormatIssueKey derives the human-readable key of an issue.
func FormatIssueKey(projectKey string, number int64) string {
	return projectKey + "-" + strconv.FormatInt(number, 10)
}

// ParseIssueKey splits an issue key into its project key and number.
func ParseIssueKey(key string) (string, int64, error) {
	idx := strings.LastIndexByte(key, '-')
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, fmt.Errorf("%w: malformed issue key %q", ErrInvalidInput, key)
	}
	n, err := strconv.ParseInt(key[idx+1:], 10, 64)
	if err != nil || n < 1 {
		return "", 0, fmt.Errorf("%w: malformed issue key %q", ErrInvalidInput, key)
	}
	return key[:idx], n, nil
}

// NewIssue carries the fields of an issue before its number is allocated.
type NewIssue struct {
	ProjectID   int64
	Title       string
	Description *string
	Type        IssueType
	Priority    IssuePriority
	ParentID    *int64
	ReporterID  int64
	AssigneeID  *int64
}

// IssueUpdate is a partial update. Nil fields are left unchanged;
// ClearAssignee and ClearDescription null out their columns.
type IssueUpdate struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Type             *IssueType
	Priority         *IssuePriority
	Status           *IssueStatus
	AssigneeID       *int64
	ClearAssignee    bool
}

// Empty reports whether the update changes nothing.
func (u IssueUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && !u.ClearDescription &&
		u.Type == nil && u.Priority == nil && u.Status == nil &&
		u.AssigneeID == nil && !u.ClearAssignee
}
