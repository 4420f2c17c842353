package repository_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/sumire/tracker/internal/domain"
	"github.com/sumire/tracker/internal/repository"
	"github.com/sumire/tracker/internal/storage"
	"github.com/sumire/tracker/internal/storage/storagetest"
)

func allocate(t *testing.T, db *sqlx.DB, projectID int64) repository.IssueAllocation {
	t.Helper()

	var alloc repository.IssueAllocation
	err := storage.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		var err error
		alloc, err = repository.AllocateIssueKey(context.Background(), tx, projectID)
		return err
	})
	require.NoError(t, err)
	return alloc
}

func TestAllocateIssueKeySequential(t *testing.T) {
	db := storagetest.NewSQLite(t)
	owner := storagetest.CreateUser(t, db, "owner@x.io")
	projectID := storagetest.CreateProject(t, db, "ABC", owner)

	want := []repository.IssueAllocation{
		{Number: 1, Key: "ABC-1"},
		{Number: 2, Key: "ABC-2"},
		{Number: 3, Key: "ABC-3"},
	}
	for _, w := range want {
		assert.Equal(t, w, allocate(t, db, projectID))
	}
	assert.Equal(t, int64(4), storagetest.NextIssueNumber(t, db, projectID))
}

func TestAllocateIssueKeyUnknownProject(t *testing.T) {
	db := storagetest.NewSQLite(t)

	err := storage.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := repository.AllocateIssueKey(context.Background(), tx, 404)
		return err
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAllocateIssueKeyRollbackRestoresCounter(t *testing.T) {
	db := storagetest.NewSQLite(t)
	owner := storagetest.CreateUser(t, db, "owner@x.io")
	projectID := storagetest.CreateProject(t, db, "RB", owner)

	allocate(t, db, projectID)
	before := storagetest.NextIssueNumber(t, db, projectID)

	abort := errors.New("abort after allocation")
	err := storage.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		alloc, err := repository.AllocateIssueKey(context.Background(), tx, projectID)
		require.NoError(t, err)
		require.Equal(t, "RB-2", alloc.Key)
		return abort
	})
	require.ErrorIs(t, err, abort)

	assert.Equal(t, before, storagetest.NextIssueNumber(t, db, projectID))
	assert.Equal(t, repository.IssueAllocation{Number: 2, Key: "RB-2"}, allocate(t, db, projectID))
}

func TestAllocateIssueKeyConcurrentIsUniqueAndGapFree(t *testing.T) {
	const n = 64

	db := storagetest.NewSQLite(t)
	owner := storagetest.CreateUser(t, db, "owner@x.io")
	projectID := storagetest.CreateProject(t, db, "CON", owner)

	var (
		mu      sync.Mutex
		numbers []int64
		g       errgroup.Group
	)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return storage.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
				alloc, err := repository.AllocateIssueKey(context.Background(), tx, projectID)
				if err != nil {
					return err
				}
				mu.Lock()
				numbers = append(numbers, alloc.Number)
				mu.Unlock()
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())

	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	require.Len(t, numbers, n)
	for i, got := range numbers {
		assert.Equal(t, int64(i+1), got)
	}
	assert.Equal(t, int64(n+1), storagetest.NextIssueNumber(t, db, projectID))
}

func TestAllocateIssueKeyProjectsAreIndependent(t *testing.T) {
	db := storagetest.NewSQLite(t)
	allocateConcurrently(t, db, 30, "AAA", "BBB")
}

// Each transaction below runs on its own connection, so allocations overlap
// inside SQLite and are serialized only by its write lock.
func TestAllocateIssueKeyConcurrentAcrossConnections(t *testing.T) {
	db := storagetest.NewSQLitePool(t, 4)
	allocateConcurrently(t, db, 24, "AAA", "BBB")
}

func allocateConcurrently(t *testing.T, db *sqlx.DB, perProject int, projectKeys ...string) {
	t.Helper()

	owner := storagetest.CreateUser(t, db, "owner@x.io")
	projects := map[string]int64{}
	for _, key := range projectKeys {
		projects[key] = storagetest.CreateProject(t, db, key, owner)
	}

	var (
		mu   sync.Mutex
		keys = map[string][]int64{}
		g    errgroup.Group
	)
	for i := 0; i < perProject; i++ {
		for key, id := range projects {
			g.Go(func() error {
				return storage.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
					alloc, err := repository.AllocateIssueKey(context.Background(), tx, id)
					if err != nil {
						return err
					}
					mu.Lock()
					keys[key] = append(keys[key], alloc.Number)
					mu.Unlock()
					return nil
				})
			})
		}
	}
	require.NoError(t, g.Wait())

	for key, id := range projects {
		nums := keys[key]
		sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
		require.Len(t, nums, perProject, key)
		for i, got := range nums {
			assert.Equal(t, int64(i+1), got, key)
		}
		assert.Equal(t, int64(perProject+1), storagetest.NextIssueNumber(t, db, id))
	}
}

func TestAllocateIssueKeyWaitsForOpenAllocation(t *testing.T) {
	tests := []struct {
		name       string
		finish     func(tx *sqlx.Tx) error
		wantSecond repository.IssueAllocation
		wantNext   int64
	}{
		{
			name:       "first commits",
			finish:     func(tx *sqlx.Tx) error { return tx.Commit() },
			wantSecond: repository.IssueAllocation{Number: 2, Key: "ILV-2"},
			wantNext:   3,
		},
		{
			name:       "first rolls back",
			finish:     func(tx *sqlx.Tx) error { return tx.Rollback() },
			wantSecond: repository.IssueAllocation{Number: 1, Key: "ILV-1"},
			wantNext:   2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := storagetest.NewSQLitePool(t, 2)
			owner := storagetest.CreateUser(t, db, "owner@x.io")
			projectID := storagetest.CreateProject(t, db, "ILV", owner)

			first, err := db.BeginTxx(ctx, nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = first.Rollback() })

			alloc, err := repository.AllocateIssueKey(ctx, first, projectID)
			require.NoError(t, err)
			require.Equal(t, int64(1), alloc.Number)

			type result struct {
				alloc repository.IssueAllocation
				err   error
			}
			second := make(chan result, 1)
			go func() {
				var r result
				r.err = storage.WithTx(ctx, db, func(tx *sqlx.Tx) error {
					var err error
					r.alloc, err = repository.AllocateIssueKey(ctx, tx, projectID)
					return err
				})
				second <- r
			}()

			// The second allocation must wait for the first transaction, not
			// read the same counter value or fail.
			select {
			case r := <-second:
				t.Fatalf("second allocation returned while the first was open: %+v", r)
			case <-time.After(200 * time.Millisecond):
			}

			require.NoError(t, tt.finish(first))

			r := <-second
			require.NoError(t, r.err)
			assert.Equal(t, tt.wantSecond, r.alloc)
			assert.Equal(t, tt.wantNext, storagetest.NextIssueNumber(t, db, projectID))
		})
	}
}

func TestAllocateIssueKeyCancelBeforeCommitLeavesCounter(t *testing.T) {
	db := storagetest.NewSQLite(t)
	owner := storagetest.CreateUser(t, db, "owner@x.io")
	projectID := storagetest.CreateProject(t, db, "CXL", owner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := storage.WithTx(ctx, db, func(tx *sqlx.Tx) error {
		alloc, err := repository.AllocateIssueKey(ctx, tx, projectID)
		require.NoError(t, err)
		require.Equal(t, "CXL-1", alloc.Key)
		cancel()
		return nil
	})
	require.Error(t, err)

	assert.Equal(t, int64(1), storagetest.NextIssueNumber(t, db, projectID))
	assert.Equal(t, repository.IssueAllocation{Number: 1, Key: "CXL-1"}, allocate(t, db, projectID))
}
