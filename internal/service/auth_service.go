package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"cajapos/internal/dto"
	"cajapos/internal/tiempo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthProvider checks a username/password pair and returns the canonical
// username on success.
type AuthProvider interface {
	Verify(ctx context.Context, username, password string) (string, error)
}

// staticAuthProvider is the shop's single account. The password is only ever
// known as a bcrypt hash supplied through configuration.
type staticAuthProvider struct {
	username string
	hash     []byte
}

func NewStaticAuthProvider(username, passwordHash string) AuthProvider {
	return &staticAuthProvider{
		username: normalizarUsuario(username),
		hash:     []byte(passwordHash),
	}
}

func normalizarUsuario(u string) string { return strings.ToLower(strings.TrimSpace(u)) }

func (p *staticAuthProvider) Verify(_ context.Context, username, password string) (string, error) {
	if len(p.hash) == 0 {
		return "", ErrCredenciales
	}
	userOK := subtle.ConstantTimeCompare([]byte(normalizarUsuario(username)), []byte(p.username)) == 1
	// bcrypt runs even on a username mismatch so both paths cost the same.
	passErr := bcrypt.CompareHashAndPassword(p.hash, []byte(strings.TrimSpace(password)))
	if !userOK || passErr != nil {
		return "", ErrCredenciales
	}
	return p.username, nil
}

// TokenStore remembers revoked token ids until they would have expired.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims are the custom claims embedded in every access token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, claims *Claims) error
	Authenticate(ctx context.Context, token string) (*Claims, error)
}

type authService struct {
	provider AuthProvider
	tokens   TokenStore
	secret   []byte
	ttl      time.Duration
	clock    *tiempo.Clock
}

func NewAuthService(provider AuthProvider, tokens TokenStore, secret string, ttl time.Duration, clock *tiempo.Clock) AuthService {
	return &authService{provider: provider, tokens: tokens, secret: []byte(secret), ttl: ttl, clock: clock}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	username, err := s.provider.Verify(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("firmando token: %w", err)
	}

	log.Info().Str("username", username).Msg("login")
	return &dto.LoginResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
		Username:    username,
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *Claims) error {
	if s.tokens == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.clock.Now())
	return s.tokens.Revoke(ctx, claims.ID, ttl)
}

var errTokenInvalido = errors.New("token invalido o expirado")

func (s *authService) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, errTokenInvalido
	}

	if s.tokens != nil {
		revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Revocation list unreachable: accept the signed token rather than lock the shop out.
			log.Warn().Err(err).Msg("auth: no se pudo consultar la lista de revocacion")
		} else if revoked {
			return nil, errTokenInvalido
		}
	}
	return claims, nil
}
