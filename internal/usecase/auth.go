package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/rigshop/internal/adapter/notify"
	domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"
	"github.com/polkiloo/rigshop/internal/domain/model"
	"github.com/polkiloo/rigshop/internal/domain/repository"
	pkgAuth "github.com/polkiloo/rigshop/internal/pkg/auth"
	"github.com/polkiloo/rigshop/internal/session"
)

const minPasswordLength = 8

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  string
}

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users       repository.UserRepository
	hasher      pkgAuth.PasswordHasher
	tokens      pkgAuth.Strategy
	revocations session.RevocationStore
	mail        MailQueue
	admins      []string
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthUseCase constructs AuthUseCase. Accounts registered with one of
// adminEmails receive the admin role.
func NewAuthUseCase(
	users repository.UserRepository,
	hasher pkgAuth.PasswordHasher,
	strategy pkgAuth.Strategy,
	revocations session.RevocationStore,
	mail MailQueue,
	adminEmails []string,
	logger *slog.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		users:       users,
		hasher:      hasher,
		tokens:      strategy,
		revocations: revocations,
		mail:        mail,
		admins:      adminEmails,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates a new customer account and returns an auth token.
func (u *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	email, emailErr := normalizeEmail(in.Email)

	verr := &domainErrors.ValidationError{}
	if in.Name == "" {
		verr.Add("name", "name is required")
	}
	if emailErr != nil {
		verr.Add("email", emailErr.Error())
	}
	if len(in.Password) < minPasswordLength {
		verr.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	} else if len(in.Password) > pkgAuth.MaxPasswordBytes {
		verr.Add("password", fmt.Sprintf("password must be at most %d bytes", pkgAuth.MaxPasswordBytes))
	}
	if err := verr.Err(); err != nil {
		return nil, "", err
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	role := model.RoleCustomer
	if slices.Contains(u.admins, email) {
		role = model.RoleAdmin
	}

	usr := &model.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Address:      in.Address,
		Role:         role,
		CreatedAt:    u.now().UTC(),
	}
	if err := u.users.Create(ctx, usr); err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}

	enqueueMail(u.mail, u.logger, func() (notify.Email, error) { return notify.Welcome(usr) })
	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.issue(usr)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// ParseToken validates token and rejects revoked sessions.
func (u *AuthUseCase) ParseToken(ctx context.Context, token string) (*pkgAuth.Claims, error) {
	if token == "" {
		return nil, pkgAuth.ErrInvalidToken
	}
	claims, err := u.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := u.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, pkgAuth.ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes the session identified by claims until it expires.
func (u *AuthUseCase) Logout(ctx context.Context, claims *pkgAuth.Claims) error {
	if claims == nil {
		return pkgAuth.ErrInvalidToken
	}
	return u.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

func (u *AuthUseCase) issue(usr *model.User) (string, error) {
	return u.tokens.IssueToken(pkgAuth.Subject{UserID: usr.ID, Role: string(usr.Role)})
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.New("email is invalid")
	}
	return email, nil
}
