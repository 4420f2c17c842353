// Package storagetest provides migrated throwaway databases for tests.
package storagetest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/sumire/tracker/internal/storage"
)

// NewSQLite opens a migrated SQLite database in a per-test temp directory,
// configured the way storage.Open configures it.
func NewSQLite(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "tracker.db")
	db, err := storage.Open(context.Background(), storage.DriverSQLite, dsn)
	require.NoError(t, err)
	return migrated(t, db)
}

// NewSQLitePool is NewSQLite with conns connections, so concurrent
// transactions overlap inside the database instead of queueing in the pool.
func NewSQLitePool(t testing.TB, conns int) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "tracker.db")
	db, err := storage.OpenSQLite(context.Background(), dsn, conns)
	require.NoError(t, err)
	return migrated(t, db)
}

func migrated(t testing.TB, db *sqlx.DB) *sqlx.DB {
	t.Helper()

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, storage.Migrate(context.Background(), db))
	return db
}

// CreateUser inserts a password user and returns its id.
func CreateUser(t testing.TB, db *sqlx.DB, email string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowxContext(context.Background(), db.Rebind(
		`INSERT INTO users (provider, provider_id, email, display_name)
		 VALUES ('password', ?, ?, ?)
		 RETURNING id`), email, email, email).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateProject inserts a project owned by ownerID and returns its id.
func CreateProject(t testing.TB, db *sqlx.DB, key string, ownerID int64) int64 {
	t.Helper()

	var id int64
	err := db.QueryRowxContext(context.Background(), db.Rebind(
		`INSERT INTO projects (key, name, created_by) VALUES (?, ?, ?) RETURNING id`),
		key, fmt.Sprintf("Project %s", key), ownerID).Scan(&id)
	require.NoError(t, err)

	_, err = db.ExecContext(context.Background(), db.Rebind(
		`INSERT INTO project_memberships (project_id, user_id, role) VALUES (?, ?, 'owner')`),
		id, ownerID)
	require.NoError(t, err)
	return id
}

// NextIssueNumber reads a project's counter.
func NextIssueNumber(t testing.TB, db *sqlx.DB, projectID int64) int64 {
	t.Helper()

	var n int64
	err := db.GetContext(context.Background(), &n, db.Rebind(
		`SELECT next_issue_number FROM projects WHERE id = ?`), projectID)
	require.NoError(t, err)
	return n
}
