package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/auth"
	"github.com/gestaozabele/ouvidoria/internal/identity"
)

var (
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

// AuthService concentra login por CPF, rotação de refresh e sessões.
type AuthService struct {
	users      *identity.Service
	tokens     TokenStore
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(users *identity.Service, tokens TokenStore, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	RefreshExpiry time.Time
	User          identity.User
}

// Login autentica servidor por CPF e senha e emite o par de tokens.
func (s *AuthService) Login(ctx context.Context, cpf, password string) (*LoginResult, error) {
	user, err := s.users.Authenticate(ctx, cpf, password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Refresh rotaciona o refresh token: consome o atual e emite par novo.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*LoginResult, error) {
	hash := auth.HashRefreshToken(raw)
	userID, err := s.tokens.Consume(ctx, hash)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, identity.ErrAccountDisabled
	}

	return s.issue(ctx, user)
}

// Logout revoga o refresh token atual.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	return s.tokens.Revoke(ctx, auth.HashRefreshToken(raw))
}

// GetMe recarrega o perfil do usuário da sessão. Sempre relê do repositório,
// então edições no próprio usuário aparecem na próxima requisição.
func (s *AuthService) GetMe(ctx context.Context, userID string) (identity.User, error) {
	return s.users.GetUser(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, user identity.User) (*LoginResult, error) {
	access, _, err := s.jwt.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expiry := time.Now().Add(s.refreshTTL)
	if err := s.tokens.Save(ctx, hash, user.ID, s.refreshTTL); err != nil {
		log.Error().Err(err).Msg("não foi possível guardar refresh token")
		return nil, err
	}

	return &LoginResult{
		AccessToken:   access,
		RefreshToken:  raw,
		RefreshExpiry: expiry,
		User:          user,
	}, nil
}
