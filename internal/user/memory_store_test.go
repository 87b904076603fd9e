package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Seed(User{ID: "u1", Email: "Jane@Example.com", Username: "jane_doe"})

	t.Run("by email, case-insensitive", func(t *testing.T) {
		u, err := store.Lookup(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
	})

	t.Run("by username", func(t *testing.T) {
		u, err := store.Lookup(ctx, "JANE_DOE")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := store.Lookup(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returns a copy", func(t *testing.T) {
		u, err := store.Lookup(ctx, "jane_doe")
		require.NoError(t, err)
		u.Email = "mutated@example.com"

		again, err := store.Lookup(ctx, "jane_doe")
		require.NoError(t, err)
		assert.Equal(t, "Jane@Example.com", again.Email)
	})
}

func TestMemoryStore_Create(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u, err := store.Create(ctx, CreateParams{
		Email:       "new@example.com",
		FirstName:   "New",
		LastName:    "Person",
		DisplayName: "Newbie",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "user", u.Role)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.Create(ctx, CreateParams{Email: "NEW@example.com"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := store.Create(ctx, CreateParams{Email: "other@example.com", Username: ""})
		assert.NoError(t, err)

		store.Seed(User{Email: "third@example.com", Username: "taken"})
		_, err = store.Create(ctx, CreateParams{Email: "fourth@example.com", Username: "Taken"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})
}
