package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/muhidtech/ecohaven/internal/kv"
	"github.com/muhidtech/ecohaven/internal/user"
)

type mockUserStore struct {
	mu          sync.Mutex
	users       []*user.User
	lookupCalls int
	createCalls int
	lookupErr   error
	createErr   error
}

func (m *mockUserStore) Lookup(_ context.Context, identifier string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupCalls++
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	ident := strings.ToLower(identifier)
	for _, u := range m.users {
		if strings.ToLower(u.Email) == ident || strings.ToLower(u.Username) == ident {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *mockUserStore) Create(_ context.Context, params user.CreateParams) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, params.Email) {
			return nil, user.ErrDuplicate
		}
	}
	u := &user.User{
		ID:           "u1",
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		DisplayName:  params.DisplayName,
		Role:         "user",
		PasswordHash: params.PasswordHash,
	}
	m.users = append(m.users, u)
	return u, nil
}

type brokenStore struct{ err error }

func (s brokenStore) Get(context.Context, string) (string, error) { return "", s.err }
func (s brokenStore) Set(context.Context, string, string) error   { return s.err }
func (s brokenStore) Remove(context.Context, string) error        { return nil }

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func seededStore(t *testing.T) *mockUserStore {
	t.Helper()
	return &mockUserStore{users: []*user.User{{
		ID:           "u1",
		Email:        "jane@example.com",
		Username:     "jane_doe",
		FirstName:    "Jane",
		LastName:     "Doe",
		DisplayName:  "Jane D",
		Role:         "user",
		PasswordHash: hashOf(t, "secret12"),
	}}}
}

func TestManager_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("success by email", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		sess, err := m.SignIn(ctx, "jane@example.com", "secret12")
		require.NoError(t, err)
		assert.Equal(t, "u1", sess.ID)
		assert.Equal(t, RoleUser, sess.Role)
		assert.NotEmpty(t, sess.RefreshToken)
		assert.True(t, sess.ExpiresAt.After(time.Now()))
		assert.Equal(t, StatusAuthenticated, m.Status())
	})

	t.Run("success by username", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		sess, err := m.SignIn(ctx, "jane_doe", "secret12")
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", sess.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		_, err := m.SignIn(ctx, "jane@example.com", "wrongpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, StatusError, m.Status())
		assert.Nil(t, m.Current())
	})

	t.Run("unknown user", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		_, err := m.SignIn(ctx, "ghost@example.com", "secret12")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty identifier", func(t *testing.T) {
		users := seededStore(t)
		m := NewManager(users, kv.NewMemory(), Config{TTL: time.Hour})
		_, err := m.SignIn(ctx, "  ", "secret12")
		assert.True(t, IsValidationError(err))
		assert.Zero(t, users.lookupCalls)
	})

	t.Run("malformed email", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		_, err := m.SignIn(ctx, "not an@email", "secret12")
		assert.True(t, IsValidationError(err))
	})

	t.Run("bad username characters", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		_, err := m.SignIn(ctx, "jane doe!", "secret12")
		assert.True(t, IsValidationError(err))
	})

	t.Run("short password", func(t *testing.T) {
		users := seededStore(t)
		m := NewManager(users, kv.NewMemory(), Config{TTL: time.Hour})
		_, err := m.SignIn(ctx, "jane_doe", "abc")
		assert.True(t, IsValidationError(err))
		assert.Zero(t, users.lookupCalls)
	})

	t.Run("failure preserves an existing valid session", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		_, err := m.SignIn(ctx, "jane@example.com", "secret12")
		require.NoError(t, err)

		_, err = m.SignIn(ctx, "jane@example.com", "wrongpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.NotNil(t, m.Current())
		assert.Equal(t, StatusError, m.Status())
	})
}

func TestManager_BypassCredential(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		TTL:    time.Hour,
		Bypass: &Bypass{Identifier: "admin", Password: "admin"},
	}

	t.Run("signs in as admin with empty user store", func(t *testing.T) {
		users := &mockUserStore{}
		m := NewManager(users, kv.NewMemory(), cfg)

		sess, err := m.SignIn(ctx, "admin", "admin")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, sess.Role)
		assert.True(t, m.IsAdmin())
		assert.Zero(t, users.lookupCalls)
	})

	t.Run("ignores the pair when not configured", func(t *testing.T) {
		m := NewManager(&mockUserStore{}, kv.NewMemory(), Config{TTL: time.Hour})
		_, err := m.SignIn(ctx, "admin", "admin")
		require.Error(t, err)
	})
}

func TestManager_SignUp(t *testing.T) {
	ctx := context.Background()

	params := func() SignUpParams {
		return SignUpParams{
			Email:       "new@example.com",
			Password:    "passw0rd",
			FirstName:   "New",
			LastName:    "Person",
			DisplayName: "Newbie",
		}
	}

	t.Run("success signs the account in", func(t *testing.T) {
		users := &mockUserStore{}
		m := NewManager(users, kv.NewMemory(), Config{TTL: time.Hour})

		require.NoError(t, m.SignUp(ctx, params()))
		sess := m.Current()
		require.NotNil(t, sess)
		assert.Equal(t, "new@example.com", sess.Email)
		assert.Equal(t, StatusAuthenticated, m.Status())
		assert.Equal(t, 1, users.createCalls)
	})

	t.Run("password without digit fails before any store call", func(t *testing.T) {
		users := &mockUserStore{}
		m := NewManager(users, kv.NewMemory(), Config{TTL: time.Hour})

		p := params()
		p.Password = "abcdefgh"
		err := m.SignUp(ctx, p)
		assert.True(t, IsValidationError(err))
		assert.Zero(t, users.createCalls)
	})

	t.Run("password without letter fails", func(t *testing.T) {
		m := NewManager(&mockUserStore{}, kv.NewMemory(), Config{TTL: time.Hour})
		p := params()
		p.Password = "12345678"
		assert.True(t, IsValidationError(m.SignUp(ctx, p)))
	})

	t.Run("short names fail", func(t *testing.T) {
		m := NewManager(&mockUserStore{}, kv.NewMemory(), Config{TTL: time.Hour})
		p := params()
		p.FirstName = "N"
		assert.True(t, IsValidationError(m.SignUp(ctx, p)))
	})

	t.Run("duplicate account", func(t *testing.T) {
		users := seededStore(t)
		m := NewManager(users, kv.NewMemory(), Config{TTL: time.Hour})

		p := params()
		p.Email = "jane@example.com"
		err := m.SignUp(ctx, p)
		assert.ErrorIs(t, err, user.ErrDuplicate)
		assert.Equal(t, StatusError, m.Status())
	})
}

func TestManager_ExpiredSessionLooksAbsent(t *testing.T) {
	m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
	m.mu.Lock()
	m.current = &Session{
		ID:        "u1",
		Role:      RoleAdmin,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	m.status = StatusAuthenticated
	m.mu.Unlock()

	assert.Nil(t, m.Current())
	assert.False(t, m.IsAdmin())
	assert.False(t, m.HasPermission(RoleUser))
	assert.False(t, m.HasPermission(RoleAdmin))
	assert.True(t, m.HasPermission(RoleGuest))
	assert.Equal(t, StatusIdle, m.Status())
}

func TestManager_SignOut(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	m := NewManager(seededStore(t), store, Config{TTL: time.Hour})

	_, err := m.SignIn(ctx, "jane@example.com", "secret12")
	require.NoError(t, err)

	m.SignOut(ctx)
	assert.Nil(t, m.Current())
	assert.Equal(t, StatusIdle, m.Status())
	_, err = store.Get(ctx, "session")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// Idempotent.
	m.SignOut(ctx)
	assert.Equal(t, StatusIdle, m.Status())
}

func TestManager_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("extends expiry and rotates token", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		sess, err := m.SignIn(ctx, "jane@example.com", "secret12")
		require.NoError(t, err)

		require.NoError(t, m.Refresh(ctx))
		after := m.Current()
		require.NotNil(t, after)
		assert.NotEqual(t, sess.RefreshToken, after.RefreshToken)
		assert.False(t, after.ExpiresAt.Before(sess.ExpiresAt))
	})

	t.Run("without a session", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		assert.ErrorIs(t, m.Refresh(ctx), ErrNoSession)
	})

	t.Run("without a refresh token", func(t *testing.T) {
		m := NewManager(seededStore(t), kv.NewMemory(), Config{TTL: time.Hour})
		m.mu.Lock()
		m.current = &Session{ID: "u1", Role: RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
		m.status = StatusAuthenticated
		m.mu.Unlock()

		err := m.Refresh(ctx)
		assert.True(t, IsValidationError(err))
		// Validation failures do not sign the user out.
		assert.NotNil(t, m.Current())
	})

	t.Run("storage failure forces sign-out", func(t *testing.T) {
		m := NewManager(seededStore(t), brokenStore{err: errors.New("redis down")}, Config{TTL: time.Hour})
		token, err := generateToken()
		require.NoError(t, err)
		m.mu.Lock()
		m.current = &Session{ID: "u1", Role: RoleUser, RefreshToken: token, ExpiresAt: time.Now().Add(time.Hour)}
		m.status = StatusAuthenticated
		m.mu.Unlock()

		err = m.Refresh(ctx)
		assert.ErrorIs(t, err, ErrStorage)
		assert.Nil(t, m.Current())
		assert.Equal(t, StatusIdle, m.Status())
	})
}

func TestManager_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("restores a valid snapshot", func(t *testing.T) {
		store := kv.NewMemory()
		first := NewManager(seededStore(t), store, Config{TTL: time.Hour})
		_, err := first.SignIn(ctx, "jane@example.com", "secret12")
		require.NoError(t, err)

		second := NewManager(seededStore(t), store, Config{TTL: time.Hour})
		second.Load(ctx)
		sess := second.Current()
		require.NotNil(t, sess)
		assert.Equal(t, "u1", sess.ID)
		assert.Equal(t, StatusAuthenticated, second.Status())
	})

	t.Run("discards a corrupt snapshot", func(t *testing.T) {
		store := kv.NewMemory()
		require.NoError(t, store.Set(ctx, "session", `{"id":"","role":"nope"}`))

		m := NewManager(seededStore(t), store, Config{TTL: time.Hour})
		m.Load(ctx)
		assert.Nil(t, m.Current())
		assert.Equal(t, StatusIdle, m.Status())
	})

	t.Run("discards an expired snapshot", func(t *testing.T) {
		store := kv.NewMemory()
		expired := &Session{ID: "u1", Role: RoleUser, ExpiresAt: time.Now().Add(-time.Minute)}
		raw, err := encodeSnapshot(expired)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "session", raw))

		m := NewManager(seededStore(t), store, Config{TTL: time.Hour})
		m.Load(ctx)
		assert.Nil(t, m.Current())
	})
}
