package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cajapos/internal/dto"
	"cajapos/internal/service"
	"cajapos/internal/tiempo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type stubTokenStore struct {
	mu       sync.Mutex
	revoked  map[string]time.Duration
	errCheck error
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{revoked: make(map[string]time.Duration)}
}

func (s *stubTokenStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = ttl
	return nil
}

func (s *stubTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errCheck != nil {
		return false, s.errCheck
	}
	_, ok := s.revoked[jti]
	return ok, nil
}

const secretoTest = "secreto-de-prueba"

func buildAuthSvc(t *testing.T, tokens service.TokenStore, clock *tiempo.Clock) service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)
	provider := service.NewStaticAuthProvider("Admin", string(hash))
	return service.NewAuthService(provider, tokens, secretoTest, 8*time.Hour, clock)
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidas(t *testing.T) {
	clock := tiempo.NewFijo(zonaTest, mediodia)
	svc := buildAuthSvc(t, nil, clock)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "  ADMIN ", Password: "clave123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*60*60, resp.ExpiresIn)
	assert.Equal(t, "admin", resp.Username)

	claims, err := svc.Authenticate(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	svc := buildAuthSvc(t, nil, tiempo.NewFijo(zonaTest, mediodia))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "otra"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "root", Password: "clave123"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestLogin_SinHashConfigurado(t *testing.T) {
	provider := service.NewStaticAuthProvider("admin", "")
	svc := service.NewAuthService(provider, nil, secretoTest, time.Hour, tiempo.NewFijo(zonaTest, mediodia))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: ""})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestAuthenticate_TokenExpirado(t *testing.T) {
	emitido := time.Date(2024, 3, 15, 8, 0, 0, 0, zonaTest)
	resp, err := buildAuthSvc(t, nil, tiempo.NewFijo(zonaTest, emitido)).
		Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "clave123"})
	require.NoError(t, err)

	despues := buildAuthSvc(t, nil, tiempo.NewFijo(zonaTest, emitido.Add(9*time.Hour)))
	_, err = despues.Authenticate(context.Background(), resp.AccessToken)
	assert.Error(t, err)
}

func TestAuthenticate_RechazaFirmaAjena(t *testing.T) {
	clock := tiempo.NewFijo(zonaTest, mediodia)
	svc := buildAuthSvc(t, nil, clock)

	claims := service.Claims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
	}
	ajeno, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("otro-secreto"))
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), ajeno)
	assert.Error(t, err)

	_, err = svc.Authenticate(context.Background(), "no.es.jwt")
	assert.Error(t, err)
}

func TestLogout_RevocaElToken(t *testing.T) {
	tokens := newStubTokenStore()
	svc := buildAuthSvc(t, tokens, tiempo.NewFijo(zonaTest, mediodia))
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "clave123"})
	require.NoError(t, err)
	claims, err := svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	assert.Equal(t, 8*time.Hour, tokens.revoked[claims.ID], "revocation lasts until expiry")

	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.Error(t, err)
}

func TestAuthenticate_ListaDeRevocacionCaidaNoBloquea(t *testing.T) {
	tokens := newStubTokenStore()
	svc := buildAuthSvc(t, tokens, tiempo.NewFijo(zonaTest, mediodia))
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "clave123"})
	require.NoError(t, err)

	tokens.errCheck = errors.New("redis caido")
	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.NoError(t, err)
}

func TestLogout_SinTokenStoreEsNoop(t *testing.T) {
	svc := buildAuthSvc(t, nil, tiempo.NewFijo(zonaTest, mediodia))
	assert.NoError(t, svc.Logout(context.Background(), &service.Claims{}))
	assert.NoError(t, svc.Logout(context.Background(), nil))
}
