// Package auth resolves the calling owner from a signed bearer token and
// checks the email against the allowlist.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"Articulate/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller; OwnerID scopes every stored row.
type Identity struct {
	OwnerID string
	Email   string
}

// Resolver extracts an Identity from an incoming request.
type Resolver interface {
	Resolve(r *http.Request) (Identity, error)
}

// Claims 令牌载荷：sub 为 owner id
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Allowlist 允许访问的邮箱集合，大小写不敏感
type Allowlist struct {
	emails map[string]struct{}
}

// NewAllowlist builds an allowlist from already normalized or raw emails.
func NewAllowlist(emails []string) *Allowlist {
	a := &Allowlist{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			a.emails[e] = struct{}{}
		}
	}
	return a
}

// Allows reports whether email is on the list.
func (a *Allowlist) Allows(email string) bool {
	if a == nil {
		return false
	}
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// TokenService issues and verifies HS256 tokens.
type TokenService struct {
	secret    []byte
	ttl       time.Duration
	allowlist *Allowlist
	now       func() time.Time
}

// NewTokenService 创建令牌服务
func NewTokenService(secret string, ttl time.Duration, allowlist *Allowlist) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, allowlist: allowlist, now: time.Now}
}

// Issue signs a token for subject; the email must be allowlisted.
func (s *TokenService) Issue(subject, email string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("subject is required")
	}
	if !s.allowlist.Allows(email) {
		return "", fmt.Errorf("email %q is not allowlisted", email)
	}

	now := s.now()
	claims := Claims{
		Email: strings.ToLower(strings.TrimSpace(email)),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies raw and returns the identity it carries.
func (s *TokenService) Parse(raw string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid token: %v", apperr.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token has no subject", apperr.ErrUnauthorized)
	}
	if !s.allowlist.Allows(claims.Email) {
		return Identity{}, fmt.Errorf("%w: email not allowlisted", apperr.ErrUnauthorized)
	}
	return Identity{OwnerID: claims.Subject, Email: strings.ToLower(claims.Email)}, nil
}

// Resolve reads the bearer token from the Authorization header.
func (s *TokenService) Resolve(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, fmt.Errorf("%w: authorization header is required", apperr.ErrUnauthorized)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return Identity{}, fmt.Errorf("%w: invalid authorization header format", apperr.ErrUnauthorized)
	}
	return s.Parse(strings.TrimSpace(parts[1]))
}

type contextKey struct{}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity placed by the auth middleware.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.OwnerID == "" {
		return Identity{}, errors.New("identity not found in context")
	}
	return id, nil
}
