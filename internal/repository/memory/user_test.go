package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/repository"
)

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	alice := &model.User{Email: "alice@example.com", Name: "Alice", IsActive: true}
	require.NoError(t, repo.Create(ctx, alice))
	assert.Equal(t, int64(1), alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	err := repo.Create(ctx, &model.User{Email: "ALICE@example.com", Name: "Other"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := repo.GetByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	got.Name = "Mutated"
	again, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Name, "store must hand out copies")

	bob := &model.User{Email: "bob@example.com", Name: "Bob", IsActive: true}
	require.NoError(t, repo.Create(ctx, bob))

	bob.Email = "alice@example.com"
	assert.ErrorIs(t, repo.Update(ctx, bob), repository.ErrConflict)

	bob.Email = "robert@example.com"
	require.NoError(t, repo.Update(ctx, bob))
	_, err = repo.GetByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByEmail(ctx, "robert@example.com")
	assert.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, alice.ID))
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), repository.ErrNotFound)
	_, err = repo.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, alice), repository.ErrNotFound)
}

func TestUserRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &model.User{Email: fmt.Sprintf("u%d@example.com", i)}))
	}

	page, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(2), page[0].ID)
	assert.Equal(t, int64(3), page[1].ID)

	rest, err := repo.List(ctx, 4, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	empty, err := repo.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	const n = 100
	var wg sync.WaitGroup
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := &model.User{Email: fmt.Sprintf("user%d@example.com", i)}
			if err := repo.Create(ctx, u); err == nil {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, id := range ids {
		require.NotZero(t, id)
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}

	all, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, n)
}
