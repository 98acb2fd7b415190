package services

import (
	"context"
	"testing"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
	"judicial-archive/pkg/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, *repositories.MemoryStore, *models.User) {
	t.Helper()
	store := repositories.NewMemoryStore()
	svc := NewUserService(store, nil, repositories.NewUserCache(0), crypto.NewHasher(bcrypt.MinCost), nil)
	admin, err := svc.CreateUser(context.Background(), repositories.Actor{}, NewUser{
		Username: "admin",
		Password: "admin1234",
		Email:    "admin@court.test",
		FullName: "Admin",
		Role:     "admin",
	})
	require.NoError(t, err)
	return svc, store, admin
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	svc, store, admin := newUserService(t)
	actor := repositories.Actor{UserID: admin.ID}

	u, err := svc.CreateUser(ctx, actor, NewUser{Username: " nadia ", Password: "greffe2024", Email: "nadia@court.test", FullName: "Nadia"})
	require.NoError(t, err)
	assert.Equal(t, "nadia", u.Username)
	assert.Equal(t, models.RoleViewer, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "greffe2024", u.PasswordHash)

	_, err = svc.CreateUser(ctx, actor, NewUser{Username: "nadia", Password: "greffe2024", Email: "n2@court.test", FullName: "N"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	cases := map[string]NewUser{
		"weak password": {Username: "a", Password: "short", Email: "a@court.test", FullName: "A"},
		"bad email":     {Username: "b", Password: "greffe2024", Email: "not-an-email", FullName: "B"},
		"bad role":      {Username: "c", Password: "greffe2024", Email: "c@court.test", FullName: "C", Role: "judge"},
		"no name":       {Username: "d", Password: "greffe2024", Email: "d@court.test"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, actor, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	logs, _, err := store.ListAudit(ctx, repositories.AuditFilter{Action: "user_created"}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _, admin := newUserService(t)

	u, err := svc.Authenticate(ctx, "admin", "admin1234")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, u.ID)

	_, err = svc.Authenticate(ctx, "admin", "wrong-pass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost", "admin1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	off := false
	_, err = svc.UpdateUser(ctx, repositories.Actor{}, admin.ID, UserUpdate{IsActive: &off})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "admin", "admin1234")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	svc, store, admin := newUserService(t)
	actor := repositories.Actor{UserID: admin.ID}

	u, err := svc.CreateUser(ctx, actor, NewUser{Username: "karim", Password: "greffe2024", Email: "karim@court.test", FullName: "Karim"})
	require.NoError(t, err)

	p, err := svc.Principal(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, p.Role)

	role := "archivist"
	password := "nouveau2025"
	_, err = svc.UpdateUser(ctx, actor, u.ID, UserUpdate{Role: &role, Password: &password})
	require.NoError(t, err)

	p, err = svc.Principal(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleArchivist, p.Role, "cache invalidated on update")

	_, err = svc.Authenticate(ctx, "karim", "nouveau2025")
	assert.NoError(t, err)

	logs, _, err := store.ListAudit(ctx, repositories.AuditFilter{ResourceID: u.ID}, 0, 0)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, "role_assigned")

	empty := " "
	_, err = svc.UpdateUser(ctx, actor, u.ID, UserUpdate{FullName: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.UpdateUser(ctx, actor, "missing", UserUpdate{Role: &role})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	svc, store, admin := newUserService(t)
	actor := repositories.Actor{UserID: admin.ID}

	assert.ErrorIs(t, svc.DeleteUser(ctx, actor, admin.ID), ErrInvalidInput)

	author, err := svc.CreateUser(ctx, actor, NewUser{Username: "author", Password: "greffe2024", Email: "author@court.test", FullName: "Author"})
	require.NoError(t, err)
	require.NoError(t, store.CreateDocument(ctx, &models.Document{
		SectionID: "s1", Reference: "A.1.1.1", Title: "t", Category: models.CategoryCivil,
		Status: models.StatusPending, CreatedBy: author.ID,
	}))
	assert.ErrorIs(t, svc.DeleteUser(ctx, actor, author.ID), ErrUserHasDocuments)

	idle, err := svc.CreateUser(ctx, actor, NewUser{Username: "idle", Password: "greffe2024", Email: "idle@court.test", FullName: "Idle"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(ctx, actor, idle.ID))
	_, err = svc.GetUser(ctx, idle.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, actor, idle.ID), repositories.ErrNotFound)
}
