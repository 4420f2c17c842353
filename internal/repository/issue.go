package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/storage"
)

const issueColumns = `id, project_id, number, key, title, description, type, status, priority,
	parent_id, reporter_id, assignee_id, closed_at, created_at, updated_at`

// IssueRepository handles issue data access operations.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new IssueRepository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create allocates the next key of the project and inserts the issue in the
// same transaction. If the insert fails the counter increment is rolled back
// with it.
func (r *IssueRepository) Create(ctx context.Context, in domain.NewIssue) (*domain.Issue, error) {
	priority := in.Priority
	if priority == "" {
		priority = domain.DefaultIssuePriority
	}

	var issue domain.Issue

	err := storage.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		alloc, err := AllocateIssueKey(ctx, tx, in.ProjectID)
		if err != nil {
			return err
		}

		var id int64
		err = tx.QueryRowxContext(ctx, tx.Rebind(
			`INSERT INTO issues (project_id, number, key, title, description, type, status, priority,
			                     parent_id, reporter_id, assignee_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 RETURNING id`),
			in.ProjectID, alloc.Number, alloc.Key, in.Title, in.Description, in.Type,
			domain.InitialIssueStatus, priority, in.ParentID, in.ReporterID, in.AssigneeID,
		).Scan(&id)
		if err != nil {
			return classify("insert issue "+alloc.Key, err)
		}

		found, err := findIssue(ctx, tx, "id = ?", id)
		if err != nil {
			return err
		}
		issue = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// FindByKey retrieves an issue of a project by its key.
func (r *IssueRepository) FindByKey(ctx context.Context, projectID int64, key string) (*domain.Issue, error) {
	return findIssue(ctx, r.db, "project_id = ? AND key = ?", projectID, key)
}

func findIssue(ctx context.Context, q queryer, where string, args ...any) (*domain.Issue, error) {
	var issue domain.Issue
	err := sqlx.GetContext(ctx, q, &issue, q.Rebind(
		`SELECT `+issueColumns+` FROM issues WHERE `+where), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find issue: %w", err)
	}
	return &issue, nil
}

type issueDetailsRow struct {
	domain.Issue
	ReporterName   string  `db:"reporter_name"`
	ReporterAvatar *string `db:"reporter_avatar"`
	AssigneeName   *string `db:"assignee_name"`
	AssigneeAvatar *string `db:"assignee_avatar"`
}

// Details retrieves an issue with its reporter and assignee.
func (r *IssueRepository) Details(ctx context.Context, projectID int64, key string) (*domain.IssueDetails, error) {
	var row issueDetailsRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(
		`SELECT i.id, i.project_id, i.number, i.key, i.title, i.description, i.type, i.status,
		        i.priority, i.parent_id, i.reporter_id, i.assignee_id, i.closed_at,
		        i.created_at, i.updated_at,
		        rep.display_name AS reporter_name, rep.avatar_url AS reporter_avatar,
		        asg.display_name AS assignee_name, asg.avatar_url AS assignee_avatar
		   FROM issues i
		   JOIN users rep ON rep.id = i.reporter_id
		   LEFT JOIN users asg ON asg.id = i.assignee_id
		  WHERE i.project_id = ? AND i.key = ?`), projectID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("issue details %s: %w", key, err)
	}

	details := &domain.IssueDetails{
		Issue: row.Issue,
		Reporter: domain.UserSummary{
			ID:          row.ReporterID,
			DisplayName: row.ReporterName,
			AvatarURL:   row.ReporterAvatar,
		},
	}
	if row.AssigneeID != nil && row.AssigneeName != nil {
		details.Assignee = &domain.UserSummary{
			ID:          *row.AssigneeID,
			DisplayName: *row.AssigneeName,
			AvatarURL:   row.AssigneeAvatar,
		}
	}
	return details, nil
}

// List returns the issues of a project matching filter, newest first.
func (r *IssueRepository) List(ctx context.Context, projectID int64, filter domain.IssueFilter) ([]domain.Issue, error) {
	var (
		where = []string{"project_id = ?"}
		args  = []any{projectID}
	)

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(key) LIKE ?)")
		pattern := "%" + strings.ToLower(search) + "%"
		args = append(args, pattern, pattern)
	}

	issues := []domain.Issue{}
	err := r.db.SelectContext(ctx, &issues, r.db.Rebind(
		`SELECT `+issueColumns+`
		   FROM issues
		  WHERE `+strings.Join(where, " AND ")+`
		  ORDER BY created_at DESC, id DESC`), args...)
	if err != nil {
		return nil, fmt.Errorf("list issues for project %d: %w", projectID, err)
	}
	return issues, nil
}

// Update applies a partial update to an issue. Entering a closed status stamps
// closed_at; leaving one clears it.
func (r *IssueRepository) Update(ctx context.Context, projectID int64, key string, u domain.IssueUpdate) (*domain.Issue, error) {
	var (
		sets []string
		args []any
	)

	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}
	switch {
	case u.ClearDescription:
		sets = append(sets, "description = NULL")
	case u.Description != nil:
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, *u.Type)
	}
	if u.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *u.Priority)
	}
	switch {
	case u.ClearAssignee:
		sets = append(sets, "assignee_id = NULL")
	case u.AssigneeID != nil:
		sets = append(sets, "assignee_id = ?")
		args = append(args, *u.AssigneeID)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
		if u.Status.Closed() {
			sets = append(sets, "closed_at = COALESCE(closed_at, CURRENT_TIMESTAMP)")
		} else {
			sets = append(sets, "closed_at = NULL")
		}
	}

	if len(sets) == 0 {
		return r.FindByKey(ctx, projectID, key)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, projectID, key)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE issues
		    SET `+strings.Join(sets, ", ")+`
		  WHERE project_id = ? AND key = ?`), args...)
	if err != nil {
		return nil, classify("update issue "+key, err)
	}

	if err := expectAffected(res); err != nil {
		return nil, err
	}

	return r.FindByKey(ctx, projectID, key)
}

// UpdateStatus moves an issue to another workflow status.
func (r *IssueRepository) UpdateStatus(ctx context.Context, projectID int64, key string, status domain.IssueStatus) (*domain.Issue, error) {
	return r.Update(ctx, projectID, key, domain.IssueUpdate{Status: &status})
}
