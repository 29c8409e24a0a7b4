package handoff

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid handoff token")
	ErrExpiredToken = errors.New("handoff token expired")
)

// TokenConfig holds handoff token signing configuration.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration // default: 24 hours
	Issuer string
}

// Signer issues and validates handoff tokens. The subject of a token is
// the handoff record ID.
type Signer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewSigner(cfg TokenConfig) *Signer {
	if cfg.TTL == 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "gotit"
	}
	return &Signer{secret: cfg.Secret, ttl: cfg.TTL, issuer: cfg.Issuer}
}

// Issue signs a token for id, valid from issuedAt for the configured TTL.
func (s *Signer) Issue(id uuid.UUID, issuedAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token and returns the handoff ID it names.
func (s *Signer) Parse(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, ErrInvalidToken
	}
	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
