package signer

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// DefaultSalt is the issuer bound into every token unless overridden with [WithSalt].
const DefaultSalt = "wtf-csrf-token"

const derivedKeySize = 32

var (
	// ErrInvalid is returned when a token is malformed or no secret verifies its signature.
	ErrInvalid = errors.New("csrf token invalid")
	// ErrExpired is returned when a token is older than the permitted age.
	ErrExpired = errors.New("csrf token expired")
	// ErrFieldMismatch is returned when a token was issued for a different form field.
	ErrFieldMismatch = errors.New("csrf token field mismatch")
	// ErrEmptySecret is returned when signing or verifying without key material.
	ErrEmptySecret = errors.New("empty signing secret")
)

// Claims is the payload embedded into a CSRF token.
type Claims struct {
	Token string `json:"tok"`
	jwt.RegisteredClaims
}

// Signer defines a public type used by goForms APIs.
//
// Signer instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Signer struct {
	salt string
	now  func() time.Time
}

// Option customizes a [Signer].
type Option func(*Signer)

// WithSalt overrides the issuer salt. Blank values are ignored.
func WithSalt(salt string) Option {
	return func(s *Signer) {
		if salt = strings.TrimSpace(salt); salt != "" {
			s.salt = salt
		}
	}
}

// WithClock sets the time source used for issuing and age checks.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Signer using [DefaultSalt] and the wall clock unless overridden.
func New(opts ...Option) *Signer {
	s := &Signer{
		salt: DefaultSalt,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Salt returns the issuer salt bound into tokens.
func (s *Signer) Salt() string {
	return s.salt
}

// Sign describes the sign operation and its observable behavior.
//
// Sign may return an error when the secret is empty or the JWT cannot be serialized.
// Sign does not mutate shared global state and can be used concurrently.
func (s *Signer) Sign(secret []byte, field, payload string) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	key, err := s.deriveKey(secret)
	if err != nil {
		return "", err
	}

	claims := Claims{
		Token: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.salt,
			Audience: jwt.ClaimStrings{field},
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// Verify checks token against each secret in order and returns the embedded payload.
//
// A maxAge of zero disables the age check. Verify returns [ErrInvalid] when no secret
// produces a valid signature, [ErrFieldMismatch] when the token was issued for another
// field and [ErrExpired] when the token is older than maxAge.
func (s *Signer) Verify(token string, secrets [][]byte, maxAge time.Duration, field string) (string, error) {
	if token == "" {
		return "", ErrInvalid
	}

	tried := 0
	for _, secret := range secrets {
		if len(secret) == 0 {
			continue
		}
		tried++

		claims, err := s.parse(token, secret, field)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
				continue
			}
			if errors.Is(err, jwt.ErrTokenInvalidAudience) {
				return "", ErrFieldMismatch
			}
			return "", fmt.Errorf("%w: %v", ErrInvalid, err)
		}

		if maxAge > 0 && s.now().Sub(claims.IssuedAt.Time) > maxAge {
			return "", ErrExpired
		}
		return claims.Token, nil
	}

	if tried == 0 {
		return "", ErrEmptySecret
	}
	return "", ErrInvalid
}

func (s *Signer) parse(token string, secret []byte, field string) (*Claims, error) {
	key, err := s.deriveKey(secret)
	if err != nil {
		return nil, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.salt),
		jwt.WithAudience(field),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)

	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.IssuedAt == nil {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *Signer) deriveKey(secret []byte) ([]byte, error) {
	key := make([]byte, derivedKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, []byte(s.salt), nil), key); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	return key, nil
}
