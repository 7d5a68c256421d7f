// Package jwtutil issues and validates the HS256 bearer tokens handed out at
// login. Tokens are never stored server side; they expire on their own.
package jwtutil

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSigningKey = errors.New("jwt signing key is not configured")
	ErrNoToken           = errors.New("no bearer token")
	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenExpired      = errors.New("token is expired")
)

// Claims is the claim set carried by every token.
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"name"`
	jwt.RegisteredClaims
}

// Options shared by Issuer and Validator. Issuer and Audience are stamped on
// issued tokens when set; they are only enforced on validation when the
// matching Validate flag is on.
type Options struct {
	Secret           string
	TTL              time.Duration
	Issuer           string
	Audience         string
	ValidateIssuer   bool
	ValidateAudience bool
	ClockSkew        time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

type Issuer struct {
	opts Options
}

func NewIssuer(opts Options) *Issuer {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	return &Issuer{opts: opts}
}

// Issue signs a token for the account and returns it with its expiry.
func (i *Issuer) Issue(userID uint, username string) (string, time.Time, error) {
	if i.opts.Secret == "" {
		return "", time.Time{}, ErrMissingSigningKey
	}

	issuedAt := i.opts.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.opts.TTL)
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if i.opts.Issuer != "" {
		claims.Issuer = i.opts.Issuer
	}
	if i.opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{i.opts.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.opts.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token failed: %w", err)
	}
	return signed, expiresAt, nil
}

type Validator struct {
	secret []byte
	parser *jwt.Parser
}

func NewValidator(opts Options) *Validator {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(opts.ClockSkew),
		jwt.WithTimeFunc(opts.now),
	}
	if opts.ValidateIssuer {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.ValidateAudience {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	return &Validator{
		secret: []byte(opts.Secret),
		parser: jwt.NewParser(parserOpts...),
	}
}

// Parse verifies the signature first and the time-based claims second, so a
// tampered token reports ErrTokenInvalid even when it is also expired.
func (v *Validator) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrNoToken
	}
	if len(v.secret) == 0 {
		return nil, ErrMissingSigningKey
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.UserID == 0 || claims.Username == "" {
		return nil, fmt.Errorf("%w: missing identity claims", ErrTokenInvalid)
	}
	return claims, nil
}
