// Package config gathers the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-agents-go/internal/completion"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/notify"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/otp"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/token"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/cache"
)

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"

	ProviderArk    = "ark"
	ProviderOllama = "ollama"
)

type Config struct {
	Server     ServerConfig
	Token      token.Config
	OTP        OTPConfig
	Cache      CacheConfig
	SMTP       notify.SMTPConfig
	Completion CompletionConfig
}

type ServerConfig struct {
	Addr string
}

type OTPConfig struct {
	TTL time.Duration
}

type CacheConfig struct {
	Backend string
	Redis   cache.RedisConfig
}

type CompletionConfig struct {
	Provider string
	Ark      completion.ArkConfig
	Ollama   completion.OllamaConfig
}

// MailEnabled reports whether outbound mail is configured; without it codes
// are only logged.
func (c Config) MailEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}
	tok, err := loadTokenConfig()
	if err != nil {
		return nil, err
	}
	ttl, err := parseDurationEnv("OTP_TTL", otp.DefaultTTL)
	if err != nil {
		return nil, err
	}
	cc, err := loadCacheConfig()
	if err != nil {
		return nil, err
	}
	smtp, err := loadSMTPConfig()
	if err != nil {
		return nil, err
	}
	comp, err := loadCompletionConfig()
	if err != nil {
		return nil, err
	}
	return &Config{
		Server:     server,
		Token:      tok,
		OTP:        OTPConfig{TTL: ttl},
		Cache:      cc,
		SMTP:       smtp,
		Completion: comp,
	}, nil
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}
	if strings.Contains(port, ":") {
		return ServerConfig{Addr: port}, nil
	}
	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}
	return ServerConfig{Addr: ":" + port}, nil
}

func loadTokenConfig() (token.Config, error) {
	key := strings.TrimSpace(os.Getenv("JWT_KEY"))
	if key == "" {
		return token.Config{}, fmt.Errorf("JWT_KEY is required")
	}
	minutes, err := parseIntEnv("JWT_EXPIRATION_MINUTES", 60)
	if err != nil {
		return token.Config{}, err
	}
	return token.Config{
		Key:               key,
		Issuer:            strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		Audience:          strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
		ExpirationMinutes: minutes,
	}, nil
}

func loadCacheConfig() (CacheConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("CACHE_BACKEND", CacheMemory))
	if backend != CacheMemory && backend != CacheRedis {
		return CacheConfig{}, fmt.Errorf("invalid CACHE_BACKEND value: %q", backend)
	}
	db, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Backend: backend,
		Redis: cache.RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       db,
			Prefix:   getEnvOrDefault("REDIS_PREFIX", "hcagents:otp:"),
		},
	}, nil
}

func loadSMTPConfig() (notify.SMTPConfig, error) {
	port, err := parseIntEnv("SMTP_PORT", 587)
	if err != nil {
		return notify.SMTPConfig{}, err
	}
	return notify.SMTPConfig{
		Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		Port:     port,
		Username: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     strings.TrimSpace(os.Getenv("SMTP_FROM")),
		FromName: getEnvOrDefault("SMTP_FROM_NAME", "HCAgents"),
		TLS:      getEnvOrDefault("SMTP_TLS", "mandatory"),
	}, nil
}

func loadCompletionConfig() (CompletionConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("COMPLETION_PROVIDER", ProviderArk))
	if provider != ProviderArk && provider != ProviderOllama {
		return CompletionConfig{}, fmt.Errorf("invalid COMPLETION_PROVIDER value: %q", provider)
	}
	model := strings.TrimSpace(os.Getenv("COMPLETION_MODEL"))
	timeout, err := parseDurationEnv("COMPLETION_TIMEOUT", 60*time.Second)
	if err != nil {
		return CompletionConfig{}, err
	}
	return CompletionConfig{
		Provider: provider,
		Ark: completion.ArkConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     model,
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", completion.DefaultArkBaseURL),
			Region:    getEnvOrDefault("ARK_REGION", completion.DefaultArkRegion),
		},
		Ollama: completion.OllamaConfig{
			Host:    getEnvOrDefault("OLLAMA_HOST", completion.DefaultOllamaHost),
			Model:   model,
			Timeout: timeout,
		},
	}, nil
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s value: must be positive", key)
	}
	return d, nil
}
