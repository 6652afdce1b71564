package test

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgAuth "github.com/polkiloo/rigshop/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(pkgAuth.Subject) (string, error)
	ParseFn func(string) (*pkgAuth.Claims, error)
	NameVal string
}

// IssueToken returns "token:<userID>" unless overridden.
func (s StrategyStub) IssueToken(sub pkgAuth.Subject) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(sub)
	}
	return "token:" + sub.UserID, nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (*pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return &pkgAuth.Claims{UserID: "user-1", Role: "customer", TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	Claims  *pkgAuth.Claims
	Err     error
	ParseFn func(context.Context, string) (*pkgAuth.Claims, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(ctx context.Context, token string) (*pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(ctx, token)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Claims, nil
}

// RevocationStoreStub keeps revoked token ids in memory.
type RevocationStoreStub struct {
	mu      sync.Mutex
	Revoked map[string]time.Time
	Err     error
}

// Revoke records tokenID.
func (s *RevocationStoreStub) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.Revoked == nil {
		s.Revoked = make(map[string]time.Time)
	}
	s.Revoked[tokenID] = expiresAt
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (s *RevocationStoreStub) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	_, ok := s.Revoked[tokenID]
	return ok, nil
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
