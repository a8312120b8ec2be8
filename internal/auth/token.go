package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Class distinguishes the two token kinds. Each class is signed with its
// own secret; the claim is a second check on top of that, not the primary
// separation.
type Class string

const (
	// ClassAccess marks short-lived tokens authorizing individual requests.
	ClassAccess Class = "access"
	// ClassRefresh marks long-lived tokens exchangeable for a new pair.
	ClassRefresh Class = "refresh"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// class, expiry, malformed input. Callers log the cause, not the client.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the complete trusted claim set: subject, class, issued-at,
// expires-at. Nothing else in a presented token is honored.
type Claims struct {
	jwt.RegisteredClaims
	Class Class `json:"cls"`
}

// TokenPair carries a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer mints and verifies signed tokens.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         func() time.Time
}

// NewIssuer builds an issuer from the two class secrets and their TTLs.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		clock:         time.Now,
	}
}

// AccessTTL returns the configured access token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccess mints an access-class token for the user.
func (i *Issuer) IssueAccess(userID string) (string, error) {
	return i.issue(userID, ClassAccess, i.accessSecret, i.accessTTL)
}

// IssueRefresh mints a refresh-class token for the user.
func (i *Issuer) IssueRefresh(userID string) (string, error) {
	return i.issue(userID, ClassRefresh, i.refreshSecret, i.refreshTTL)
}

// IssuePair mints both tokens for the user.
func (i *Issuer) IssuePair(userID string) (TokenPair, error) {
	access, err := i.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := i.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) issue(userID string, class Class, secret []byte, ttl time.Duration) (string, error) {
	now := i.clock()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Class: class,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks signature and expiry against the given class's secret and
// returns the subject. A token of the other class fails here twice over:
// wrong secret and wrong class claim.
func (i *Issuer) Verify(token string, class Class) (string, error) {
	secret := i.accessSecret
	if class == ClassRefresh {
		secret = i.refreshSecret
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Class != class || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
