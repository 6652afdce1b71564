package auth

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

const defaultTTL = 24 * time.Hour

// Subject identifies who a token is issued to.
type Subject struct {
	UserID string
	Role   string
}

// Claims are the verified contents of a token.
type Claims struct {
	UserID    string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

type Strategy interface {
	IssueToken(sub Subject) (string, error)
	ParseToken(token string) (*Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
	Now func() time.Time
}

func (o Options) normalize() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
