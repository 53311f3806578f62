package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/glossary/api/internal/model"
)

const (
	DefaultSessionTTL = 12 * time.Hour
	AdminSubject      = "admin"
	issuer            = "glossary"
)

// Session is the proof of admin login handed to protected operations.
type Session struct {
	Subject   string    `json:"subject"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator checks the shared admin password and issues signed
// session tokens.
type Authenticator struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthenticator(password, secret string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Authenticator{
		password: []byte(password),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (a *Authenticator) TTL() time.Duration { return a.ttl }

// Login returns a signed token for a correct password.
func (a *Authenticator) Login(password string) (string, *Session, error) {
	if len(a.password) == 0 || subtle.ConstantTimeCompare([]byte(password), a.password) != 1 {
		return "", nil, fmt.Errorf("%w: invalid password", model.ErrUnauthorized)
	}

	now := a.now()
	session := &Session{
		Subject:   AdminSubject,
		IssuedAt:  now,
		ExpiresAt: now.Add(a.ttl),
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, session, nil
}

// Verify validates a token issued by Login.
func (a *Authenticator) Verify(tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing session", model.ErrUnauthorized)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject != AdminSubject {
		return nil, fmt.Errorf("%w: invalid session", model.ErrUnauthorized)
	}

	session := &Session{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
