package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HMACStrategy implements auth token creation/verification using HMAC signatures.
type HMACStrategy struct {
	secret []byte
	opts   Options
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	return &HMACStrategy{secret: []byte(secret), opts: opts.normalize()}
}

// IssueToken generates signed auth token for the subject.
func (s *HMACStrategy) IssueToken(sub Subject) (string, error) {
	if sub.UserID == "" || strings.Contains(sub.UserID, ":") || strings.Contains(sub.Role, ":") {
		return "", ErrInvalidToken
	}
	expires := s.opts.Now().Add(s.opts.TTL).Unix()
	payload := fmt.Sprintf("%s:%s:%s:%d", sub.UserID, sub.Role, uuid.NewString(), expires)
	sig := s.sign(payload)
	token := fmt.Sprintf("%s:%s", payload, sig)
	return base64.StdEncoding.EncodeToString([]byte(token)), nil
}

// ParseToken validates token and returns its claims.
func (s *HMACStrategy) ParseToken(token string) (*Claims, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 5 {
		return nil, ErrInvalidToken
	}

	payload := strings.Join(parts[:4], ":")
	expectedSig := s.sign(payload)
	if !hmac.Equal([]byte(expectedSig), []byte(parts[4])) {
		return nil, ErrInvalidToken
	}

	if parts[0] == "" {
		return nil, ErrInvalidToken
	}

	expires, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt := time.Unix(expires, 0)
	if expiresAt.Before(s.opts.Now()) {
		return nil, ErrInvalidToken
	}

	return &Claims{UserID: parts[0], Role: parts[1], TokenID: parts[2], ExpiresAt: expiresAt}, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
