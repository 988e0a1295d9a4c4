package member

// Resolution é o resultado consolidado de papel e atividade para um
// colaborador, calculado a partir do vínculo e do cadastro.
type Resolution struct {
	UID         string        `json:"uid"`
	Email       string        `json:"email"`
	DisplayName string        `json:"displayName"`
	Role        string        `json:"role"`
	Telegram    *TelegramLink `json:"telegram,omitempty"`
	Active      ActiveState
}

// Resolve consolida vínculo e cadastro. Precedência de papel: vínculo >
// cadastro > nenhum. Atividade vem só do vínculo; sem vínculo o estado
// é desconhecido ("nunca provisionado"), que bloqueia acesso tanto
// quanto revogado.
func Resolve(m *Membership, p *Profile) Resolution {
	res := Resolution{Active: ActiveUnknown}

	if p != nil {
		res.UID = p.UID.String()
		res.Email = p.Email
		res.DisplayName = p.DisplayName
		res.Role = NormalizeRole(p.Role)
		res.Telegram = p.Telegram
	}

	if m != nil {
		res.UID = m.UID.String()
		if role := NormalizeRole(m.Role); role != "" {
			res.Role = role
		}
		switch {
		case m.IsActive == nil:
			res.Active = ActiveUnknown
		case *m.IsActive:
			res.Active = ActiveYes
		default:
			res.Active = ActiveNo
		}
	}

	return res
}

// CanAccess libera acesso apenas para colaborador explicitamente ativo
// com papel reconhecido. Desconhecido nunca libera.
func (r Resolution) CanAccess() bool {
	return r.Active == ActiveYes && IsValidRole(r.Role)
}

// IsMaster indica papel de supervisor ou acima.
func (r Resolution) IsMaster() bool {
	role := NormalizeRole(r.Role)
	return role == RoleMaster || role == RoleAdmin
}

// IsOfficeAdmin indica papel administrativo do escritório ou acima.
func (r Resolution) IsOfficeAdmin() bool {
	role := NormalizeRole(r.Role)
	return role == RoleOfficeAdmin || role == RoleMaster || role == RoleAdmin
}

// ActiveLabel devolve o rótulo de exibição do estado de atividade.
func (r Resolution) ActiveLabel() string {
	switch r.Active {
	case ActiveYes:
		return "ativo"
	case ActiveNo:
		return "revogado"
	default:
		return "nunca provisionado"
	}
}
