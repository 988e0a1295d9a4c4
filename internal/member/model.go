package member

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica colaborador inexistente.
	ErrNotFound = errors.New("colaborador não encontrado")
	// ErrEmailTaken indica e-mail já cadastrado.
	ErrEmailTaken = errors.New("e-mail já cadastrado")
	// ErrInvalidRole indica papel fora do vocabulário aceito.
	ErrInvalidRole = errors.New("papel inválido")
	// ErrInvalidEmail indica e-mail vazio ou malformado.
	ErrInvalidEmail = errors.New("e-mail inválido")
	// ErrWeakPassword indica senha abaixo do mínimo de 8 caracteres.
	ErrWeakPassword = errors.New("senha muito curta")
	// ErrNameRequired indica nome de exibição vazio no provisionamento.
	ErrNameRequired = errors.New("nome de exibição obrigatório")
)

// Papéis aceitos. "office" é forma legada que normaliza para
// office_user na leitura.
const (
	RoleOfficeUser  = "office_user"
	RoleOfficeAdmin = "office_admin"
	RoleMaster      = "master"
	RoleAdmin       = "admin"
)

// ActiveState distingue três situações de provisionamento: ativo,
// revogado e "nunca provisionado" (sem registro de vínculo). As duas
// últimas bloqueiam acesso, mas são exibidas de forma diferente.
type ActiveState int

const (
	ActiveUnknown ActiveState = iota
	ActiveNo
	ActiveYes
)

// Membership é o vínculo administrativo do colaborador, fonte
// prioritária de papel e do flag de atividade.
type Membership struct {
	UID       uuid.UUID  `json:"uid"`
	Role      string     `json:"role"`
	IsActive  *bool      `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// TelegramLink é o vínculo opcional com o chat do colaborador no
// Telegram. Quem valida o token de vínculo é o serviço do bot; aqui
// fica só o retrato persistido.
type TelegramLink struct {
	Linked    bool       `json:"linked"`
	ChatID    string     `json:"chatId,omitempty"`
	Username  string     `json:"username,omitempty"`
	FirstName string     `json:"firstName,omitempty"`
	LinkedAt  *time.Time `json:"linkedAt,omitempty"`
}

// Profile é o cadastro básico do colaborador. O papel aqui é
// secundário: só vale quando não há vínculo com papel definido.
type Profile struct {
	UID         uuid.UUID     `json:"uid"`
	Email       string        `json:"email"`
	DisplayName string        `json:"displayName"`
	Role        string        `json:"role,omitempty"`
	SenhaHash   string        `json:"-"`
	Telegram    *TelegramLink `json:"telegram,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// NormalizeRole traduz formas legadas e normaliza caixa. Papel vazio
// permanece vazio (ausência, não erro).
func NormalizeRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "office" {
		return RoleOfficeUser
	}
	return role
}

// IsValidRole aceita apenas o vocabulário canônico.
func IsValidRole(role string) bool {
	switch NormalizeRole(role) {
	case RoleOfficeUser, RoleOfficeAdmin, RoleMaster, RoleAdmin:
		return true
	}
	return false
}
