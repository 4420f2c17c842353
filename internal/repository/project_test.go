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

func TestProjectRepositoryCreate(t *testing.T) {
	db := storagetest.NewSQLite(t)
	ctx := context.Background()
	owner := storagetest.CreateUser(t, db, "owner@x.io")
	projects := repository.NewProjectRepository(db)
	members := repository.NewMemberRepository(db)

	p, err := projects.Create(ctx, domain.NewProject{
		Key:         "PAY",
		Name:        "Payments",
		Description: ptr("Money in, money out"),
		CreatedBy:   owner,
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY", p.Key)
	assert.Equal(t, int64(1), p.NextIssueNumber)
	assert.Equal(t, owner, p.CreatedBy)

	role, err := members.Role(ctx, p.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectRoleOwner, role)

	_, err = projects.Create(ctx, domain.NewProject{Key: "PAY", Name: "Again", CreatedBy: owner})
	require.ErrorIs(t, err, domain.ErrConflict)

	found, err := projects.FindByKey(ctx, "PAY")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	_, err = projects.FindByKey(ctx, "NOPE")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRepositoryListForUser(t *testing.T) {
	db := storagetest.NewSQLite(t)
	ctx := context.Background()
	alice := storagetest.CreateUser(t, db, "alice@x.io")
	bob := storagetest.CreateUser(t, db, "bob@x.io")
	projects := repository.NewProjectRepository(db)
	members := repository.NewMemberRepository(db)

	web, err := projects.Create(ctx, domain.NewProject{Key: "WEB", Name: "Website", CreatedBy: alice})
	require.NoError(t, err)
	_, err = projects.Create(ctx, domain.NewProject{Key: "API", Name: "Backend", CreatedBy: alice})
	require.NoError(t, err)
	require.NoError(t, members.Add(ctx, web.ID, bob, domain.ProjectRoleViewer))

	aliceProjects, err := projects.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, aliceProjects, 2)
	assert.Equal(t, "API", aliceProjects[0].Key, "ordered by name")
	assert.Equal(t, domain.ProjectRoleOwner, aliceProjects[0].Role)

	bobProjects, err := projects.ListForUser(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobProjects, 1)
	assert.Equal(t, "WEB", bobProjects[0].Key)
	assert.Equal(t, domain.ProjectRoleViewer, bobProjects[0].Role)
}

func TestProjectRepositoryStats(t *testing.T) {
	db := storagetest.NewSQLite(t)
	ctx := context.Background()
	owner := storagetest.CreateUser(t, db, "owner@x.io")
	projectID := storagetest.CreateProject(t, db, "STA", owner)
	issues := repository.NewIssueRepository(db)

	for i := 0; i < 3; i++ {
		_, err := issues.Create(ctx, domain.NewIssue{ProjectID: projectID, Title: "x", Type: domain.IssueTypeTask, ReporterID: owner})
		require.NoError(t, err)
	}
	_, err := issues.UpdateStatus(ctx, projectID, "STA-1", domain.IssueStatusDone)
	require.NoError(t, err)

	stats, err := repository.NewProjectRepository(db).Stats(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalIssues)
	assert.Equal(t, 1, stats.DoneIssues)
	assert.Equal(t, 2, stats.ByStatus[domain.IssueStatusBacklog])
}
