package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port          int
	DBDSN         string
	RedisURL      string
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration
	AllowOrigins  []string

	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig

	// Integração com o serviço do bot (notificação do master).
	// Ausência não derruba a API: o encaminhamento de sinais degrada
	// para um erro explícito "missing_env" no momento do uso.
	BotBaseURL   string
	OfficeSecret string

	// Intervalo mínimo entre reenvios forçados de um mesmo sinal.
	SignalResendGap time.Duration

	// Teto de mutações por lote nas operações em massa.
	BulkBatchCap int
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTRefreshTTL = refreshTTL

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.BotBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("BOT_BASE_URL", "")), "/")
	cfg.OfficeSecret = strings.TrimSpace(getEnv("OFFICE_API_SECRET", ""))

	resendGap, err := parseDurationEnv("SIGNAL_RESEND_GAP", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.SignalResendGap = resendGap

	batchStr := getEnv("BULK_BATCH_CAP", "450")
	batchCap, err := strconv.Atoi(batchStr)
	if err != nil || batchCap <= 0 {
		return nil, errors.New("BULK_BATCH_CAP inválido")
	}
	cfg.BulkBatchCap = batchCap

	return cfg, nil
}

// NotifierConfigured indica se o encaminhamento de sinais está habilitado.
func (c *Config) NotifierConfigured() bool {
	return c.BotBaseURL != "" && c.OfficeSecret != ""
}

// MissingNotifierKeys lista as variáveis ausentes da integração com o bot.
func (c *Config) MissingNotifierKeys() []string {
	var missing []string
	if c.BotBaseURL == "" {
		missing = append(missing, "BOT_BASE_URL")
	}
	if c.OfficeSecret == "" {
		missing = append(missing, "OFFICE_API_SECRET")
	}
	return missing
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
