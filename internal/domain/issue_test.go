package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatIssueKey(t *testing.T) {
	assert.Equal(t, "ABC-1", FormatIssueKey("ABC", 1))
	assert.Equal(t, "PAY-1042", FormatIssueKey("PAY", 1042))
}

func TestParseIssueKey(t *testing.T) {
	tests := []struct {
		in      string
		project string
		number  int64
		wantErr bool
	}{
		{in: "ABC-1", project: "ABC", number: 1},
		{in: "A1B2-77", project: "A1B2", number: 77},
		{in: "ABC", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "ABC-", wantErr: true},
		{in: "ABC-0", wantErr: true},
		{in: "ABC-x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			project, number, err := ParseIssueKey(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.project, project)
			assert.Equal(t, tt.number, number)
		})
	}
}

func TestIssueStatusClosed(t *testing.T) {
	assert.True(t, IssueStatusDone.Closed())
	assert.True(t, IssueStatusCancelled.Closed())
	assert.False(t, IssueStatusInReview.Closed())
	assert.NotContains(t, BoardColumns, IssueStatusCancelled)
}

func TestIssueUpdateEmpty(t *testing.T) {
	assert.True(t, IssueUpdate{}.Empty())
	status := IssueStatusDone
	assert.False(t, IssueUpdate{Status: &status}.Empty())
	assert.False(t, IssueUpdate{ClearAssignee: true}.Empty())
}

func TestEnumsRejectUnknownValues(t *testing.T) {
	assert.True(t, IssueTypeBug.Valid())
	assert.False(t, IssueType("feature").Valid())
	assert.True(t, IssueStatusInReview.Valid())
	assert.False(t, IssueStatus("open").Valid())
	assert.True(t, IssuePriorityHighest.Valid())
	assert.False(t, IssuePriority("urgent").Valid())
	assert.False(t, ProjectRole("guest").Valid())
}

func TestProjectRolePermissions(t *testing.T) {
	assert.True(t, ProjectRoleOwner.CanManageMembers())
	assert.True(t, ProjectRoleAdmin.CanManageMembers())
	assert.False(t, ProjectRoleMember.CanManageMembers())

	assert.True(t, ProjectRoleMember.CanWrite())
	assert.False(t, ProjectRoleViewer.CanWrite())
	assert.False(t, ProjectRole("").CanWrite())
}

func TestErrNotMemberIsForbidden(t *testing.T) {
	assert.True(t, errors.Is(ErrNotMember, ErrForbidden))
	assert.False(t, errors.Is(ErrNotMember, ErrNotFound))
}
