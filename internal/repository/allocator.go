package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/tracker/internal/domain"
)

// IssueAllocation is a reserved issue number and the key derived from it.
type IssueAllocation struct {
	Number int64
	Key    string
}

// AllocateIssueKey reserves the next issue number of a project inside tx.
//
// The counter is advanced and read back by one UPDATE ... RETURNING
// statement, so concurrent allocations for the same project serialize on the
// project row and each observes the other's increment. The issued number is
// the counter value before the increment. Nothing is visible to other
// transactions until tx commits; a rollback returns the number to the pool,
// which keeps committed numbers gap-free. This is the only code path that
// writes projects.next_issue_number.
func AllocateIssueKey(ctx context.Context, tx *sqlx.Tx, projectID int64) (IssueAllocation, error) {
	var (
		alloc      IssueAllocation
		projectKey string
	)

	err := tx.QueryRowxContext(ctx, tx.Rebind(
		`UPDATE projects
		    SET next_issue_number = next_issue_number + 1
		  WHERE id = ?
		 RETURNING key, next_issue_number - 1`), projectID,
	).Scan(&projectKey, &alloc.Number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IssueAllocation{}, domain.ErrNotFound
		}
		return IssueAllocation{}, fmt.Errorf("allocate issue number for project %d: %w", projectID, err)
	}

	alloc.Key = domain.FormatIssueKey(projectKey, alloc.Number)
	return alloc, nil
}
