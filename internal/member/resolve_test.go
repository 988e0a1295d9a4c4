package member

import (
	"testing"

	"github.com/google/uuid"
)

func boolPtr(v bool) *bool { return &v }

func TestResolveMembershipRoleWinsOverProfileRole(t *testing.T) {
	uid := uuid.New()
	m := &Membership{UID: uid, Role: RoleOfficeAdmin, IsActive: boolPtr(true)}
	p := &Profile{UID: uid, Email: "x@y.com", Role: RoleOfficeUser}

	res := Resolve(m, p)
	if res.Role != RoleOfficeAdmin {
		t.Fatalf("papel do vínculo deveria prevalecer: %s", res.Role)
	}
	if !res.CanAccess() {
		t.Fatal("vínculo ativo com papel válido deveria liberar acesso")
	}
}

func TestResolveFallsBackToProfileRole(t *testing.T) {
	uid := uuid.New()
	m := &Membership{UID: uid, IsActive: boolPtr(true)} // vínculo sem papel
	p := &Profile{UID: uid, Role: RoleMaster}

	res := Resolve(m, p)
	if res.Role != RoleMaster {
		t.Fatalf("papel do cadastro deveria valer como fallback: %s", res.Role)
	}
	if !res.IsMaster() {
		t.Fatal("master deveria ser reconhecido")
	}
}

func TestResolveNoMembershipIsNeverProvisioned(t *testing.T) {
	p := &Profile{UID: uuid.New(), Role: RoleOfficeUser}

	res := Resolve(nil, p)
	if res.Active != ActiveUnknown {
		t.Fatalf("sem vínculo o estado é desconhecido: %d", res.Active)
	}
	if res.CanAccess() {
		t.Fatal("nunca provisionado não libera acesso")
	}
	if res.ActiveLabel() != "nunca provisionado" {
		t.Fatalf("rótulo errado: %s", res.ActiveLabel())
	}
}

func TestResolveRevokedBlocksButRendersDifferently(t *testing.T) {
	uid := uuid.New()
	revoked := Resolve(&Membership{UID: uid, Role: RoleOfficeUser, IsActive: boolPtr(false)}, nil)
	unknown := Resolve(nil, &Profile{UID: uid, Role: RoleOfficeUser})

	if revoked.CanAccess() || unknown.CanAccess() {
		t.Fatal("revogado e desconhecido bloqueiam igualmente")
	}
	if revoked.ActiveLabel() == unknown.ActiveLabel() {
		t.Fatal("revogado e nunca provisionado têm exibição distinta")
	}
}

func TestResolveNilActiveFlagIsUnknown(t *testing.T) {
	// Vínculo existe, mas sem flag gravado: trata como desconhecido,
	// nunca como ativo.
	res := Resolve(&Membership{UID: uuid.New(), Role: RoleOfficeUser}, nil)
	if res.Active != ActiveUnknown {
		t.Fatalf("flag ausente deveria ser desconhecido: %d", res.Active)
	}
	if res.CanAccess() {
		t.Fatal("flag ausente não libera acesso")
	}
}

func TestNormalizeRoleLegacyOffice(t *testing.T) {
	if NormalizeRole("office") != RoleOfficeUser {
		t.Fatal("papel legado office deveria virar office_user")
	}
	if NormalizeRole("  MASTER ") != RoleMaster {
		t.Fatal("normalização de caixa falhou")
	}
	if IsValidRole("gerente") {
		t.Fatal("papel fora do vocabulário não é válido")
	}
}

func TestResolutionRoleChecks(t *testing.T) {
	cases := []struct {
		role        string
		master      bool
		officeAdmin bool
	}{
		{RoleOfficeUser, false, false},
		{RoleOfficeAdmin, false, true},
		{RoleMaster, true, true},
		{RoleAdmin, true, true},
	}

	for _, tc := range cases {
		res := Resolution{Role: tc.role}
		if res.IsMaster() != tc.master {
			t.Errorf("IsMaster(%s) = %v", tc.role, res.IsMaster())
		}
		if res.IsOfficeAdmin() != tc.officeAdmin {
			t.Errorf("IsOfficeAdmin(%s) = %v", tc.role, res.IsOfficeAdmin())
		}
	}
}
