package member

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/auth"
	"github.com/verotasks/api/internal/util"
)

// Collaborator é a linha consolidada exibida no painel de equipe:
// cadastro + vínculo resolvidos.
type Collaborator struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
	ActiveLabel string `json:"activeLabel"`
}

// CreateUserInput são os dados para provisionar um colaborador novo.
type CreateUserInput struct {
	Email       string
	DisplayName string
	Senha       string
	Role        string
}

// Service consolida cadastros e vínculos e executa a administração de
// equipe.
type Service struct {
	repo *Repository
}

// NewService cria o serviço de colaboradores.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ResolveAccess calcula papel e atividade de um colaborador. É o ponto
// único de decisão de acesso: login e guards consultam aqui.
func (s *Service) ResolveAccess(ctx context.Context, uid uuid.UUID) (Resolution, error) {
	m, err := s.repo.GetMembership(ctx, uid)
	if err != nil {
		return Resolution{}, err
	}

	p, err := s.repo.GetProfile(ctx, uid)
	if err != nil && err != ErrNotFound {
		return Resolution{}, err
	}

	return Resolve(m, p), nil
}

// ProfileByEmail expõe a busca de cadastro por e-mail (login).
func (s *Service) ProfileByEmail(ctx context.Context, email string) (*Profile, error) {
	return s.repo.GetProfileByEmail(ctx, email)
}

// Profile expõe o cadastro pelo uid.
func (s *Service) Profile(ctx context.Context, uid uuid.UUID) (*Profile, error) {
	return s.repo.GetProfile(ctx, uid)
}

// SetTelegram grava o vínculo de Telegram já validado pelo bot.
func (s *Service) SetTelegram(ctx context.Context, uid uuid.UUID, link TelegramLink) error {
	return s.repo.SetTelegram(ctx, uid, link)
}

// ClearTelegram desfaz o vínculo de Telegram do colaborador.
func (s *Service) ClearTelegram(ctx context.Context, uid uuid.UUID) error {
	return s.repo.ClearTelegram(ctx, uid)
}

// List devolve a equipe consolidada, incluindo cadastros sem vínculo
// (exibidos como "nunca provisionado").
func (s *Service) List(ctx context.Context) ([]Collaborator, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	memberships, err := s.repo.ListMemberships(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Collaborator, 0, len(profiles))
	for _, p := range profiles {
		res := Resolve(memberships[p.UID], p)
		out = append(out, Collaborator{
			UID:         res.UID,
			Email:       res.Email,
			DisplayName: res.DisplayName,
			Role:        res.Role,
			Active:      res.Active == ActiveYes,
			ActiveLabel: res.ActiveLabel(),
		})
		delete(memberships, p.UID)
	}

	// Vínculos órfãos (sem cadastro) ainda aparecem para auditoria.
	for uid, m := range memberships {
		res := Resolve(m, nil)
		out = append(out, Collaborator{
			UID:         uid.String(),
			Role:        res.Role,
			Active:      res.Active == ActiveYes,
			ActiveLabel: res.ActiveLabel(),
		})
	}

	return out, nil
}

// CreateUser provisiona cadastro + vínculo ativo num passo só.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*Profile, error) {
	email, err := util.NormalizeEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	if err := util.ValidatePassword(in.Senha); err != nil {
		return nil, ErrWeakPassword
	}
	if err := util.RequireString(in.DisplayName, "nome"); err != nil {
		return nil, ErrNameRequired
	}
	role := NormalizeRole(in.Role)
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	hash, err := auth.Hash(in.Senha)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		UID:         uuid.New(),
		Email:       email,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Role:        role,
		SenhaHash:   hash,
	}

	if err := s.repo.CreateAccount(ctx, p, role, true); err != nil {
		return nil, err
	}
	return p, nil
}

// SetActive liga ou desliga o acesso de um colaborador.
func (s *Service) SetActive(ctx context.Context, uid uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, uid, active)
}

// SetRole troca o papel de um colaborador.
func (s *Service) SetRole(ctx context.Context, uid uuid.UUID, role string) error {
	if !IsValidRole(role) {
		return ErrInvalidRole
	}
	return s.repo.SetRole(ctx, uid, role)
}

// Provision cria ou atualiza o vínculo de um cadastro existente.
func (s *Service) Provision(ctx context.Context, uid uuid.UUID, role string, active bool) (*Membership, error) {
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if _, err := s.repo.GetProfile(ctx, uid); err != nil {
		return nil, err
	}
	return s.repo.UpsertMembership(ctx, uid, role, active)
}

// DisplayNames devolve os nomes de exibição da equipe, usados como
// rótulos extras nas sugestões de busca.
func (s *Service) DisplayNames(ctx context.Context) ([]string, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if name := strings.TrimSpace(p.DisplayName); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
