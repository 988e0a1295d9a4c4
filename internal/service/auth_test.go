package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/verotasks/api/internal/auth"
	"github.com/verotasks/api/internal/member"
)

type stubMembers struct {
	profiles    map[string]*member.Profile
	resolutions map[uuid.UUID]member.Resolution
}

func (s *stubMembers) ProfileByEmail(ctx context.Context, email string) (*member.Profile, error) {
	p, ok := s.profiles[email]
	if !ok {
		return nil, member.ErrNotFound
	}
	return p, nil
}

func (s *stubMembers) ResolveAccess(ctx context.Context, uid uuid.UUID) (member.Resolution, error) {
	return s.resolutions[uid], nil
}

type stubRedis struct {
	store map[string]string
}

func newStubRedis() *stubRedis {
	return &stubRedis{store: make(map[string]string)}
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	s.store[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := s.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

const testSecret = "um-segredo-grande-o-suficiente-123456"

func newAuthFixture(t *testing.T, role string, active member.ActiveState) (*AuthService, uuid.UUID, *stubMembers) {
	t.Helper()

	uid := uuid.New()
	hash, err := auth.Hash("senha-forte-123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	members := &stubMembers{
		profiles: map[string]*member.Profile{
			"ana@verotasks.app": {UID: uid, Email: "ana@verotasks.app", DisplayName: "Ana", SenhaHash: hash},
		},
		resolutions: map[uuid.UUID]member.Resolution{
			uid: {UID: uid.String(), Email: "ana@verotasks.app", DisplayName: "Ana", Role: role, Active: active},
		},
	}

	jwtMgr := auth.NewJWTManager(testSecret, time.Minute)
	svc := NewAuthService(members, newStubRedis(), jwtMgr, time.Hour)
	return svc, uid, members
}

func TestLoginDerivesAudienceFromResolvedRole(t *testing.T) {
	cases := []struct {
		role string
		want string
	}{
		{member.RoleMaster, "master"},
		{member.RoleAdmin, "master"},
		{member.RoleOfficeAdmin, "office"},
		{member.RoleOfficeUser, "office"},
	}

	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			svc, _, _ := newAuthFixture(t, tc.role, member.ActiveYes)

			result, err := svc.Login(context.Background(), "ana@verotasks.app", "senha-forte-123")
			if err != nil {
				t.Fatalf("login deveria passar: %v", err)
			}
			if result.Audience != tc.want {
				t.Fatalf("papel %s deveria mandar para %s, foi %s", tc.role, tc.want, result.Audience)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture(t, member.RoleOfficeUser, member.ActiveYes)

	if _, err := svc.Login(context.Background(), "ana@verotasks.app", "senha-errada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("senha errada: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ninguem@verotasks.app", "tanto-faz"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("e-mail desconhecido: %v", err)
	}
}

func TestLoginBlocksDisabledAccount(t *testing.T) {
	svc, _, _ := newAuthFixture(t, member.RoleOfficeUser, member.ActiveNo)

	if _, err := svc.Login(context.Background(), "ana@verotasks.app", "senha-forte-123"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("conta revogada não loga: %v", err)
	}
}

func TestRefreshRotationInvalidatesUsedToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t, member.RoleMaster, member.ActiveYes)
	ctx := context.Background()

	login, err := svc.Login(ctx, "ana@verotasks.app", "senha-forte-123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	first, err := svc.Refresh(ctx, login.Audience, login.RefreshToken)
	if err != nil {
		t.Fatalf("primeiro refresh deveria passar: %v", err)
	}

	if _, err := svc.Refresh(ctx, login.Audience, login.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("token já usado deveria ser rejeitado: %v", err)
	}

	// O token emitido na rotação segue válido.
	if _, err := svc.Refresh(ctx, first.Audience, first.RefreshToken); err != nil {
		t.Fatalf("token rotacionado deveria valer: %v", err)
	}
}

func TestRefreshBlocksAccountRevokedMeanwhile(t *testing.T) {
	svc, uid, members := newAuthFixture(t, member.RoleOfficeUser, member.ActiveYes)
	ctx := context.Background()

	login, err := svc.Login(ctx, "ana@verotasks.app", "senha-forte-123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	res := members.resolutions[uid]
	res.Active = member.ActiveNo
	members.resolutions[uid] = res

	if _, err := svc.Refresh(ctx, login.Audience, login.RefreshToken); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("revogação derruba o refresh: %v", err)
	}
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t, member.RoleOfficeUser, member.ActiveYes)

	if _, err := svc.Refresh(context.Background(), "office", "token-inventado"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("token desconhecido: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "office", ""); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("token vazio: %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t, member.RoleOfficeUser, member.ActiveYes)
	ctx := context.Background()

	login, err := svc.Login(ctx, "ana@verotasks.app", "senha-forte-123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, login.Audience, login.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.Refresh(ctx, login.Audience, login.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("token revogado no logout deveria ser rejeitado: %v", err)
	}
}
