package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Painéis que a API atende. Todo token de acesso carrega exatamente um
// deles como audience.
const (
	AudienceOffice = "office"
	AudienceMaster = "master"
)

const issuer = "verotasks-api"

// ErrUnknownAudience indica audience fora do vocabulário office/master.
var ErrUnknownAudience = errors.New("audience desconhecida")

// IsKnownAudience aceita apenas os painéis atendidos.
func IsKnownAudience(audience string) bool {
	return audience == AudienceOffice || audience == AudienceMaster
}

// Claims representa as informações presentes em um JWT de acesso.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL}
}

// GenerateAccessToken cria um JWT HS256 para o painel informado.
func (m *JWTManager) GenerateAccessToken(subject, audience string, roles []string) (string, string, error) {
	if !IsKnownAudience(audience) {
		return "", "", ErrUnknownAudience
	}

	now := time.Now().UTC()
	jti := uuid.NewString()

	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}

	return signed, jti, nil
}

// ParseAndValidate verifica assinatura, expiração, emissor e audience.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token inválido")
	}

	if len(claims.Audience) != 1 || !IsKnownAudience(claims.Audience[0]) {
		return nil, ErrUnknownAudience
	}

	return claims, nil
}
