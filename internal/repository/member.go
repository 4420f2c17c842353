package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/tracker/internal/domain"
)

// MemberRepository handles project membership data access operations.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Role returns the role of a user in a project, or domain.ErrNotFound when
// the user is not a member.
func (r *MemberRepository) Role(ctx context.Context, projectID, userID int64) (domain.ProjectRole, error) {
	var role domain.ProjectRole
	err := r.db.GetContext(ctx, &role, r.db.Rebind(
		`SELECT role FROM project_memberships WHERE project_id = ? AND user_id = ?`), projectID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("membership role %d/%d: %w", projectID, userID, err)
	}
	return role, nil
}

// List returns the members of a project ordered by join time.
func (r *MemberRepository) List(ctx context.Context, projectID int64) ([]domain.Member, error) {
	members := []domain.Member{}
	err := r.db.SelectContext(ctx, &members, r.db.Rebind(
		`SELECT u.id AS user_id, u.display_name, u.email, u.avatar_url, m.role, m.created_at AS joined_at
		   FROM project_memberships m
		   JOIN users u ON u.id = m.user_id
		  WHERE m.project_id = ?
		  ORDER BY m.created_at, u.id`), projectID)
	if err != nil {
		return nil, fmt.Errorf("list members of project %d: %w", projectID, err)
	}
	return members, nil
}

// Find returns one member of a project.
func (r *MemberRepository) Find(ctx context.Context, projectID, userID int64) (*domain.Member, error) {
	var m domain.Member
	err := r.db.GetContext(ctx, &m, r.db.Rebind(
		`SELECT u.id AS user_id, u.display_name, u.email, u.avatar_url, m.role, m.created_at AS joined_at
		   FROM project_memberships m
		   JOIN users u ON u.id = m.user_id
		  WHERE m.project_id = ? AND m.user_id = ?`), projectID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find member %d/%d: %w", projectID, userID, err)
	}
	return &m, nil
}

// Add makes a user a member of a project. An existing membership yields domain.ErrConflict.
func (r *MemberRepository) Add(ctx context.Context, projectID, userID int64, role domain.ProjectRole) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO project_memberships (project_id, user_id, role) VALUES (?, ?, ?)`),
		projectID, userID, role)
	if err != nil {
		return classify("add member", err)
	}
	return nil
}

// Remove deletes a membership.
func (r *MemberRepository) Remove(ctx context.Context, projectID, userID int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`DELETE FROM project_memberships WHERE project_id = ? AND user_id = ?`), projectID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return expectAffected(res)
}

// UpdateRole changes the role of an existing member.
func (r *MemberRepository) UpdateRole(ctx context.Context, projectID, userID int64, role domain.ProjectRole) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE project_memberships
		    SET role = ?, updated_at = CURRENT_TIMESTAMP
		  WHERE project_id = ? AND user_id = ?`), role, projectID, userID)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
