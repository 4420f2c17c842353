package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/repository"
	"github.com/sumire/tracker/internal/storage/storagetest"
)

func ptr[T any](v T) *T { return &v }

func TestIssueRepositoryCreate(t *testing.T) {
	db := storagetest.NewSQLite(t)
	ctx := context.Background()
	reporter := storagetest.CreateUser(t, db, "rep@x.io")
	assignee := storagetest.CreateUser(t, db, "asg@x.io")
	projectID := storagetest.CreateProject(t, db, "PAY", reporter)
	repo := repository.NewIssueRepository(db)

	issue, err := repo.Create(ctx, domain.NewIssue{
		ProjectID:   projectID,
		Title:       "Refund flow",
		Description: ptr("Handle partial refunds"),
		Type:        domain.IssueTypeStory,
		ReporterID:  reporter,
		AssigneeID:  &assignee,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), issue.Number)
	assert.Equal(t, "PAY-1", issue.Key)
	assert.Equal(t, domain.IssueStatusBacklog, issue.Status)
	assert.Equal(t, domain.IssuePriorityMedium, issue.Priority)
	assert.Equal(t, reporter, issue.ReporterID)
	require.NotNil(t, issue.AssigneeID)
	assert.Equal(t, assignee, *issue.AssigneeID)
	assert.Nil(t, issue.ClosedAt)
	assert.False(t, issue.CreatedAt.IsZero())

	second, err := repo.Create(ctx, domain.NewIssue{
		ProjectID:  projectID,
		Title:      "Chargebacks",
		Type:       domain.IssueTypeBug,
		Priority:   domain.IssuePriorityHigh,
		ParentID:   &issue.ID,
		ReporterID: reporter,
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-2", second.Key)
	assert.Equal(t, domain.IssuePriorityHigh, second.Priority)
	require.NotNil(t, second.ParentID)
	assert.Equal(t, issue.ID, *second.ParentID)
}

func TestIssueRepositoryCreateFailureLeavesCounter(t *testing.T) {
	db := storagetest.NewSQLite(t)
	ctx := context.Background()
	reporter := storagetest.CreateUser(t, db, "rep@x.io")
	projectID := storagetest.CreateProject(t, db, "PAY", reporter)
	repo := repository.NewIssueRepository(db)

	before := storagetest.NextIssueNumber(t, db, projectID)

	// The insert fails on the assignee foreign key after the counter was bumped.
	_, err := repo.Create(ctx, domain.NewIssue{
		ProjectID:  projectID,
		Title:      "Orphan",
		Type:       domain.IssueTypeTask,
		ReporterID: reporter,
		AssigneeID: ptr(int64(9999)),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, before, storagetest.NextIssueNumber(t, db, projectID))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM issues`))
	assert.Zero(t, count)

	issue, err := repo.Create(ctx, domain.NewIssue{
		ProjectID:  projectID,
		Title:      "First real issue",
		Type:       domain.IssueTypeTask,
		ReporterID: reporter,
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-1", issue.Key)
}

func TestIssueRepositoryCreateUnknownProject(t *testing.T) {
	db := storagetest.NewSQLite(t)
	reporter := storagetest.CreateUser(t, db, "rep@x.io")

	_, err := repository.NewIssueRepository(db).Create(context.Background(), domain.NewIssue{
		ProjectID:  12345,
		Title:      "Nowhere",
		Type:       domain.IssueTypeTask,
		ReporterID: reporter,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIssueRepositoryListFilters(t *testing.T) {
	db := storagetest.NewSQLite(t)
	ctx := context.Background()
	reporter := storagetest.CreateUser(t, db, "rep@x.io")
	projectID := storagetest.CreateProject(t, db, "WEB", reporter)
	otherID := storagetest.CreateProject(t, db, "OPS", reporter)
	repo := repository.NewIssueRepository(db)

	for _, in := range []domain.NewIssue{
		{ProjectID: projectID, Title: "Login page", Type: domain.IssueTypeStory},
		{ProjectID: projectID, Title: "Login crash", Type: domain.IssueTypeBug},
		{ProjectID: projectID, Title: "Footer", Type: domain.IssueTypeTask},
		{ProjectID: otherID, Title: "Login alerts", Type: domain.IssueTypeTask},
	} {
		in.ReporterID = reporter
		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
	}
	_, err := repo.UpdateStatus(ctx, projectID, "WEB-3", domain.IssueStatusDone)
	require.NoError(t, err)

	all, err := repo.List(ctx, projectID, domain.IssueFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "WEB-3", all[0].Key, "newest first")

	logins, err := repo.List(ctx, projectID, domain.IssueFilter{Search: "LOGIN"})
	require.NoError(t, err)
	assert.Len(t, logins, 2)

	bugs, err := repo.List(ctx, projectID, domain.IssueFilter{Search: "login", Type: domain.IssueTypeBug})
	require.NoError(t, err)
	require.Len(t, bugs, 1)
	assert.Equal(t, "WEB-2", bugs[0].Key)

	done, err := repo.List(ctx, projectID, domain.IssueFilter{Status: domain.IssueStatusDone})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Footer", done[0].Title)

	byKey, err := repo.List(ctx, projectID, domain.IssueFilter{Search: "web-2"})
	require.NoError(t, err)
	require.Len(t, byKey, 1)
}

func TestIssueRepositoryUpdate(t *testing.T) {
	db := storagetest.NewSQLite(t)
	ctx := context.Background()
	reporter := storagetest.CreateUser(t, db, "rep@x.io")
	assignee := storagetest.CreateUser(t, db, "asg@x.io")
	projectID := storagetest.CreateProject(t, db, "UPD", reporter)
	repo := repository.NewIssueRepository(db)

	_, err := repo.Create(ctx, domain.NewIssue{
		ProjectID:   projectID,
		Title:       "Draft",
		Description: ptr("old"),
		Type:        domain.IssueTypeTask,
		ReporterID:  reporter,
	})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, projectID, "UPD-1", domain.IssueUpdate{
		Title:            ptr("Final"),
		ClearDescription: true,
		Type:             ptr(domain.IssueTypeBug),
		Priority:         ptr(domain.IssuePriorityHighest),
		AssigneeID:       &assignee,
	})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Nil(t, updated.Description)
	assert.Equal(t, domain.IssueTypeBug, updated.Type)
	assert.Equal(t, domain.IssuePriorityHighest, updated.Priority)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, assignee, *updated.AssigneeID)
	assert.Equal(t, "UPD-1", updated.Key, "key is immutable")

	closed, err := repo.UpdateStatus(ctx, projectID, "UPD-1", domain.IssueStatusDone)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)

	reopened, err := repo.UpdateStatus(ctx, projectID, "UPD-1", domain.IssueStatusTodo)
	require.NoError(t, err)
	assert.Nil(t, reopened.ClosedAt)

	unassigned, err := repo.Update(ctx, projectID, "UPD-1", domain.IssueUpdate{ClearAssignee: true})
	require.NoError(t, err)
	assert.Nil(t, unassigned.AssigneeID)

	_, err = repo.UpdateStatus(ctx, projectID, "UPD-99", domain.IssueStatusDone)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIssueRepositoryDetails(t *testing.T) {
	db := storagetest.NewSQLite(t)
	ctx := context.Background()
	reporter := storagetest.CreateUser(t, db, "rep@x.io")
	assignee := storagetest.CreateUser(t, db, "asg@x.io")
	projectID := storagetest.CreateProject(t, db, "DET", reporter)
	repo := repository.NewIssueRepository(db)

	_, err := repo.Create(ctx, domain.NewIssue{ProjectID: projectID, Title: "Unassigned", Type: domain.IssueTypeTask, ReporterID: reporter})
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.NewIssue{ProjectID: projectID, Title: "Assigned", Type: domain.IssueTypeTask, ReporterID: reporter, AssigneeID: &assignee})
	require.NoError(t, err)

	d1, err := repo.Details(ctx, projectID, "DET-1")
	require.NoError(t, err)
	assert.Equal(t, reporter, d1.Reporter.ID)
	assert.Equal(t, "rep@x.io", d1.Reporter.DisplayName)
	assert.Nil(t, d1.Assignee)

	d2, err := repo.Details(ctx, projectID, "DET-2")
	require.NoError(t, err)
	require.NotNil(t, d2.Assignee)
	assert.Equal(t, assignee, d2.Assignee.ID)

	_, err = repo.Details(ctx, projectID, "DET-3")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
