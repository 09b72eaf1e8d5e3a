package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

type Config struct {
	Env      string
	Database DatabaseConfig
	Server   ServerConfig
	RabbitMQ RabbitMQConfig
	Kommo    KommoConfig
	Mail     MailConfig
	Security SecurityConfig
}

type DatabaseConfig struct {
	URL string
	// pgx, postgres (lib/pq) ou memory
	Driver  string
	Migrate bool
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	// vazio: cabeçalhos de IP (X-Forwarded-For, CloudFront) são ignorados
	TrustedProxies []netip.Prefix
}

// RabbitMQConfig com URL vazia desliga a publicação de eventos do funil.
type RabbitMQConfig struct {
	URL string
}

type KommoConfig struct {
	APIToken string
	BaseURL  string
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Brand    string
}

type SecurityConfig struct {
	// token das rotas internas; vazio deixa essas rotas fechadas
	ServiceToken string
	BcryptCost   int
	// requisições por minuto por IP nos formulários públicos
	LeadRateLimit int
}

// Load lê o ambiente; fora de produção carrega o .env se existir.
func Load() (*Config, error) {
	env := getEnvWithDefault("GO_ENV", "development")
	if env != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{Env: env}
	var err error

	cfg.Database.Driver = getEnvWithDefault("DB_DRIVER", "pgx")
	switch cfg.Database.Driver {
	case "pgx", "postgres":
		if cfg.Database.URL, err = requireEnv("DATABASE_URL"); err != nil {
			return nil, err
		}
	case "memory":
	default:
		return nil, fmt.Errorf("DB_DRIVER inválido: %q (use pgx, postgres ou memory)", cfg.Database.Driver)
	}
	if cfg.Database.Migrate, err = strconv.ParseBool(getEnvWithDefault("DB_MIGRATE", "false")); err != nil {
		return nil, fmt.Errorf("failed to parse DB_MIGRATE: %w", err)
	}

	if cfg.Server.Port, err = strconv.Atoi(getEnvWithDefault("SERVER_PORT", "8080")); err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}
	cfg.Server.AllowedOrigins = splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))
	if cfg.Server.TrustedProxies, err = parsePrefixes(splitList(os.Getenv("TRUSTED_PROXIES"))); err != nil {
		return nil, fmt.Errorf("failed to parse TRUSTED_PROXIES: %w", err)
	}

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")

	cfg.Kommo.APIToken = os.Getenv("KOMMO_API_TOKEN")
	cfg.Kommo.BaseURL = getEnvWithDefault("KOMMO_BASE_URL", "https://liguemedicina.kommo.com/api/v4")

	cfg.Mail.Host = os.Getenv("MAIL_HOST")
	if cfg.Mail.Port, err = strconv.Atoi(getEnvWithDefault("MAIL_PORT", "587")); err != nil {
		return nil, fmt.Errorf("failed to parse MAIL_PORT: %w", err)
	}
	cfg.Mail.User = os.Getenv("MAIL_USER")
	cfg.Mail.Password = os.Getenv("MAIL_PASS")
	cfg.Mail.From = getEnvWithDefault("MAIL_FROM", "nao-responda@liguemedicina.com")
	cfg.Mail.Brand = getEnvWithDefault("MAIL_BRAND", "Ligue")

	cfg.Security.ServiceToken = os.Getenv("INTERNAL_API_TOKEN")
	if cfg.Security.BcryptCost, err = strconv.Atoi(getEnvWithDefault("BCRYPT_COST", "10")); err != nil {
		return nil, fmt.Errorf("failed to parse BCRYPT_COST: %w", err)
	}
	if cfg.Security.LeadRateLimit, err = strconv.Atoi(getEnvWithDefault("LEAD_RATE_LIMIT", "10")); err != nil {
		return nil, fmt.Errorf("failed to parse LEAD_RATE_LIMIT: %w", err)
	}

	return cfg, nil
}

// MailEnabled indica se o SMTP foi configurado.
func (c *Config) MailEnabled() bool {
	return c.Mail.Host != ""
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parsePrefixes aceita CIDR ("10.0.0.0/8") ou IP solto.
func parsePrefixes(items []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(items))
	for _, item := range items {
		if p, err := netip.ParsePrefix(item); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("%q não é IP nem CIDR", item)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
