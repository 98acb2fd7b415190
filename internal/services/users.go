package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"judicial-archive/internal/models"
	"judicial-archive/internal/repositories"
	"judicial-archive/pkg/crypto"

	"go.uber.org/zap"
)

// UserService manages accounts and verifies credentials.
type UserService struct {
	store  repositories.Store
	audit  *repositories.AuditRepository
	cache  *repositories.UserCache
	hasher crypto.Hasher
	log    *zap.Logger
}

func NewUserService(store repositories.Store, audit *repositories.AuditRepository, cache *repositories.UserCache, hasher crypto.Hasher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	if audit == nil {
		audit = repositories.NewAuditRepository(store)
	}
	if cache == nil {
		cache = repositories.NewUserCache(0)
	}
	return &UserService{store: store, audit: audit, cache: cache, hasher: hasher, log: log}
}

type NewUser struct {
	Username string
	Password string
	Email    string
	FullName string
	Role     string
	IsActive *bool
}

type UserUpdate struct {
	Username *string
	Password *string
	Email    *string
	FullName *string
	Role     *string
	IsActive *bool
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	return u, nil
}

// Principal returns the current state of an authenticated user, served
// from the lookup cache.
func (s *UserService) Principal(ctx context.Context, id string) (*models.User, error) {
	return s.cache.Lookup(ctx, s.store, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, actor repositories.Actor, in NewUser) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, invalid("username is required")
	}
	email, err := validEmail(in.Email)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, invalid("fullName is required")
	}
	role := models.RoleViewer
	if strings.TrimSpace(in.Role) != "" {
		if role, err = models.ParseRole(in.Role); err != nil {
			return nil, invalid("%v", err)
		}
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}

	s.logAudit(ctx, actor, "user_created", u.ID, map[string]any{"username": username, "role": string(role)})
	return u, nil
}

func (s *UserService) UpdateUser(ctx context.Context, actor repositories.Actor, id string, in UserUpdate) (*models.User, error) {
	var patch models.UserPatch
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, invalid("username must not be empty")
		}
		patch.Username = &username
	}
	if in.Email != nil {
		email, err := validEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if in.FullName != nil {
		fullName := strings.TrimSpace(*in.FullName)
		if fullName == "" {
			return nil, invalid("fullName must not be empty")
		}
		patch.FullName = &fullName
	}
	if in.Role != nil {
		role, err := models.ParseRole(*in.Role)
		if err != nil {
			return nil, invalid("%v", err)
		}
		patch.Role = &role
	}
	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	patch.IsActive = in.IsActive

	u, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(id)

	s.logAudit(ctx, actor, "user_updated", id, nil)
	if patch.Role != nil {
		if err := s.audit.LogRoleAssigned(ctx, actor, id, *patch.Role); err != nil {
			s.log.Warn("audit append failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return u, nil
}

// DeleteUser removes an account. Users who created documents cannot be
// deleted, so every document keeps a resolvable creator; deactivate them
// instead.
func (s *UserService) DeleteUser(ctx context.Context, actor repositories.Actor, id string) error {
	if id == actor.UserID {
		return invalid("cannot delete your own account")
	}
	// the store checks for authored documents in the same critical section
	// as the delete
	err := s.store.DeleteUser(ctx, id)
	if errors.Is(err, repositories.ErrInUse) {
		return fmt.Errorf("user %s: %w", id, ErrUserHasDocuments)
	}
	if err != nil {
		return err
	}
	s.cache.Invalidate(id)
	s.logAudit(ctx, actor, "user_deleted", id, nil)
	return nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	if issues, err := crypto.ValidatePasswordComplexity(password); err != nil {
		return "", invalid("password %s", strings.Join(issues, ", "))
	}
	return s.hasher.Hash(password)
}

func (s *UserService) logAudit(ctx context.Context, actor repositories.Actor, action, userID string, meta map[string]any) {
	if err := s.audit.Log(ctx, actor, action, "user", userID, meta); err != nil {
		s.log.Warn("audit append failed", zap.String("action", action), zap.String("user_id", userID), zap.Error(err))
	}
}

func validEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email %q is not valid", raw)
	}
	return email, nil
}
