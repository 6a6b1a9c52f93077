package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type AuthService struct {
	Repo      *repo.GormRepo
	Secret    []byte
	TTL       time.Duration
	Publisher mykafka.Publisher
	Now       func() time.Time
}

type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrValidation)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: nome, email and senha are required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}

	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, storeErr(err, "check email")
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, storeErr(err, "create user")
	}

	publish(ctx, s.Publisher, mykafka.TopicUser, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	l.Info("user_registered", "user_id", user.ID)
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, storeErr(err, "load user")
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, errInvalidCredentials
	}

	now := clock(s.Now)
	exp := now.Add(s.TTL)
	jti := uuid.NewString()

	if err := s.Repo.CreateSession(ctx, &models.Session{
		JTI:       jti,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: exp,
	}); err != nil {
		return nil, storeErr(err, "create session")
	}

	token, err := tokens.SignSession(s.Secret, user.ID, user.Role, jti, now, exp)
	if err != nil {
		l.Error("login_error", "reason", "cannot sign session", "error", err)
		return nil, fmt.Errorf("sign session: %w", err)
	}

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Logout revokes the session behind token. Unparseable tokens have nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := tokens.SessionClaimsIgnoringExpiry(token, s.Secret)
	if err != nil || claims.ID == "" {
		return nil
	}
	if err := s.Repo.RevokeSession(ctx, claims.ID); err != nil {
		return storeErr(err, "revoke session")
	}
	return nil
}

// ResolveSession checks the server-side session behind already verified claims.
func (s *AuthService) ResolveSession(ctx context.Context, claims *tokens.SessionClaims) (Principal, error) {
	if claims == nil || claims.ID == "" {
		return Principal{}, fmt.Errorf("%w: missing session id", ErrUnauthenticated)
	}

	sess, err := s.Repo.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Principal{}, fmt.Errorf("%w: unknown session", ErrUnauthenticated)
		}
		return Principal{}, storeErr(err, "load session")
	}
	if sess.Revoked {
		return Principal{}, fmt.Errorf("%w: session revoked", ErrUnauthenticated)
	}
	if clock(s.Now).After(sess.ExpiresAt) {
		return Principal{}, fmt.Errorf("%w: session expired", ErrUnauthenticated)
	}
	uid, err := claims.UserID()
	if err != nil || uid != sess.UserID {
		return Principal{}, fmt.Errorf("%w: session subject mismatch", ErrUnauthenticated)
	}

	return Principal{UserID: sess.UserID, Role: sess.Role}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless the email is already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return storeErr(err, "check admin")
	}
	if taken {
		return nil
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin := models.User{Name: name, Email: email, PasswordHash: pwHash, Role: models.RoleAdmin}
	if err := s.Repo.CreateUser(ctx, &admin); err != nil {
		return storeErr(err, "create admin")
	}

	logging.FromContext(ctx).Info("admin_seeded", "email", email)
	return nil
}
