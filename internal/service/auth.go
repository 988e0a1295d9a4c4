package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/verotasks/api/internal/auth"
	"github.com/verotasks/api/internal/member"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta revogada ou nunca provisionada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// memberDirectory é o recorte do serviço de colaboradores que a
// autenticação consome.
type memberDirectory interface {
	ProfileByEmail(ctx context.Context, email string) (*member.Profile, error)
	ResolveAccess(ctx context.Context, uid uuid.UUID) (member.Resolution, error)
}

// AuthService concentra autenticação e sessões. O estado de refresh
// vive só no Redis: chave por hash, valor é o subject, expiração é o
// TTL da própria chave.
type AuthService struct {
	members    memberDirectory
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(members memberDirectory, redisClient redisCommander, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{members: members, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	Audience     string
	AccessToken  string
	RefreshToken string
	Subject      uuid.UUID
	Roles        []string
	Profile      *MeProfile
}

// MeProfile descreve o colaborador autenticado.
type MeProfile struct {
	ID          string               `json:"id"`
	Email       string               `json:"email"`
	DisplayName string               `json:"displayName"`
	Role        string               `json:"role"`
	Telegram    *member.TelegramLink `json:"telegram,omitempty"`
}

// Login autentica por e-mail e senha. O painel destino (office ou
// master) sai do papel resolvido, não da requisição.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	profile, err := s.members.ProfileByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			log.Warn().Msg("login: colaborador não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, profile.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, profile.UID)
}

func (s *AuthService) issueTokens(ctx context.Context, uid uuid.UUID) (*LoginResult, error) {
	res, err := s.members.ResolveAccess(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !res.CanAccess() {
		return nil, ErrAccountDisabled
	}

	audience := auth.AudienceOffice
	if res.IsMaster() {
		audience = auth.AudienceMaster
	}
	roles := []string{res.Role}

	token, _, err := s.jwt.GenerateAccessToken(uid.String(), audience, roles)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	key := auth.RefreshRedisKey(audience, refreshHash)
	if err := s.redis.Set(ctx, key, uid.String(), s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{
		Audience:     audience,
		AccessToken:  token,
		RefreshToken: rawRefresh,
		Subject:      uid,
		Roles:        roles,
		Profile: &MeProfile{
			ID:          uid.String(),
			Email:       res.Email,
			DisplayName: res.DisplayName,
			Role:        res.Role,
		},
	}, nil
}

// Refresh troca refresh token por novos tokens, rotacionando a chave.
func (s *AuthService) Refresh(ctx context.Context, audience, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	key := auth.RefreshRedisKey(audience, hash)

	stored, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(stored)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	result, err := s.issueTokens(ctx, uid)
	if err != nil {
		return nil, err
	}

	// Rotação: o token usado deixa de valer imediatamente.
	if err := s.redis.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revoga o refresh token atual.
func (s *AuthService) Logout(ctx context.Context, audience, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	key := auth.RefreshRedisKey(audience, hash)
	if err := s.redis.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// GetMe retorna o perfil consolidado do subject autenticado.
func (s *AuthService) GetMe(ctx context.Context, subject uuid.UUID) (*MeProfile, []string, error) {
	res, err := s.members.ResolveAccess(ctx, subject)
	if err != nil {
		return nil, nil, err
	}
	if !res.CanAccess() {
		return nil, nil, ErrAccountDisabled
	}
	return &MeProfile{
		ID:          res.UID,
		Email:       res.Email,
		DisplayName: res.DisplayName,
		Role:        res.Role,
		Telegram:    res.Telegram,
	}, []string{res.Role}, nil
}
