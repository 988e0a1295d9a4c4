package auth

import "testing"

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("senha-forte-123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := Verify("senha-forte-123", hash)
	if err != nil || !ok {
		t.Fatalf("senha certa deveria conferir: ok=%v err=%v", ok, err)
	}

	ok, err = Verify("senha-errada", hash)
	if err != nil || ok {
		t.Fatalf("senha errada não confere: ok=%v err=%v", ok, err)
	}
}

func TestHashRejectsBlankPassword(t *testing.T) {
	if _, err := Hash("   "); err == nil {
		t.Fatal("senha em branco não gera hash")
	}
}

func TestVerifyTreatsForeignHashAsMismatch(t *testing.T) {
	// Hash vindo do provedor original, em outro esquema: não confere,
	// mas também não é erro.
	ok, err := Verify("qualquer", "scrypt$N=16384$r=8$abcdef")
	if err != nil {
		t.Fatalf("hash estrangeiro não deveria virar erro: %v", err)
	}
	if ok {
		t.Fatal("hash estrangeiro nunca confere")
	}
}
