package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// issuer checks, or that carry no subject.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the signed-in resort guest or admin. It is read-only context
// for everything downstream.
type Identity struct {
	UID      string `json:"uid"`
	FullName string `json:"fullName"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Claims is the JWT payload carrying an Identity. The uid travels in the
// registered subject claim.
type Claims struct {
	FullName string `json:"name,omitempty"`
	IsAdmin  bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Provider issues and verifies HS256 identity tokens.
type Provider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewProvider creates a provider. An empty issuer disables the issuer check.
func NewProvider(secret, issuer string) *Provider {
	return &Provider{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for id valid for ttl.
func (p *Provider) Issue(id Identity, ttl time.Duration) (string, error) {
	if id.UID == "" {
		return "", fmt.Errorf("%w: uid is required", ErrInvalidToken)
	}
	now := p.now()
	claims := Claims{
		FullName: id.FullName,
		IsAdmin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify parses a token and returns the identity it carries.
func (p *Provider) Verify(raw string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UID: claims.Subject, FullName: claims.FullName, IsAdmin: claims.IsAdmin}, nil
}
