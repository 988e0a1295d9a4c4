package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// GenerateRefreshToken cria token aleatório seguro e seu hash
// persistível. Só o hash vai para o Redis; o valor cru fica no cookie.
func GenerateRefreshToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	hashed = HashRefreshToken(raw)
	return raw, hashed, nil
}

// HashRefreshToken produz hash SHA-256 base64.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RefreshRedisKey monta a chave de sessão por painel (office/master).
// O prefixo isola as sessões no Redis compartilhado com o canal de
// eventos de tarefas.
func RefreshRedisKey(audience, hash string) string {
	return fmt.Sprintf("verotasks:refresh:%s:%s", audience, hash)
}
