package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/storage"
)

const projectColumns = `id, key, name, description, next_issue_number, created_by, created_at, updated_at`

// ProjectRepository handles project data access operations.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project and makes its creator the owner in one transaction.
// A taken key yields domain.ErrConflict.
func (r *ProjectRepository) Create(ctx context.Context, in domain.NewProject) (*domain.Project, error) {
	var project domain.Project

	err := storage.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id int64
		err := tx.QueryRowxContext(ctx, tx.Rebind(
			`INSERT INTO projects (key, name, description, created_by)
			 VALUES (?, ?, ?, ?)
			 RETURNING id`),
			in.Key, in.Name, in.Description, in.CreatedBy,
		).Scan(&id)
		if err != nil {
			return classify("insert project", err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO project_memberships (project_id, user_id, role) VALUES (?, ?, ?)`),
			id, in.CreatedBy, domain.ProjectRoleOwner,
		); err != nil {
			return classify("insert owner membership", err)
		}

		return sqlx.GetContext(ctx, tx, &project, tx.Rebind(
			`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByKey retrieves a project by its key.
func (r *ProjectRepository) FindByKey(ctx context.Context, key string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.GetContext(ctx, &project, r.db.Rebind(
		`SELECT `+projectColumns+` FROM projects WHERE key = ?`), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project by key %s: %w", key, err)
	}
	return &project, nil
}

// ListForUser returns every project the user is a member of, with their role.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID int64) ([]domain.MemberProject, error) {
	projects := []domain.MemberProject{}
	err := r.db.SelectContext(ctx, &projects, r.db.Rebind(
		`SELECT p.id, p.key, p.name, p.description, p.next_issue_number, p.created_by,
		        p.created_at, p.updated_at, m.role
		   FROM projects p
		   JOIN project_memberships m ON m.project_id = p.id
		  WHERE m.user_id = ?
		  ORDER BY p.name, p.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list projects for user %d: %w", userID, err)
	}
	return projects, nil
}

// Stats counts a project's issues per status.
func (r *ProjectRepository) Stats(ctx context.Context, projectID int64) (*domain.ProjectStats, error) {
	var rows []struct {
		Status domain.IssueStatus `db:"status"`
		Count  int                `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(
		`SELECT status, COUNT(*) AS count
		   FROM issues
		  WHERE project_id = ?
		  GROUP BY status`), projectID)
	if err != nil {
		return nil, fmt.Errorf("project stats %d: %w", projectID, err)
	}

	stats := &domain.ProjectStats{ByStatus: make(map[domain.IssueStatus]int, len(rows))}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
		stats.TotalIssues += row.Count
		if row.Status == domain.IssueStatusDone {
			stats.DoneIssues = row.Count
		}
	}
	return stats, nil
}
