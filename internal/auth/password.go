package auth

import (
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

const argon2idPrefix = "$argon2id$"

// Hash gera um hash Argon2id da senha do colaborador (os parâmetros
// ficam dentro do próprio hash).
func Hash(senha string) (string, error) {
	if strings.TrimSpace(senha) == "" {
		return "", errors.New("senha vazia")
	}
	return argon2id.CreateHash(senha, params)
}

// Verify compara a senha com o hash armazenado. Cadastros migrados do
// provedor original podem carregar hash de outro esquema; esses contam
// como não confere, sem erro, até a senha ser redefinida aqui.
func Verify(senha, encodedHash string) (bool, error) {
	if !strings.HasPrefix(encodedHash, argon2idPrefix) {
		return false, nil
	}
	return argon2id.ComparePasswordAndHash(senha, encodedHash)
}
