package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 2778
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "folio_space"
	defaultDBCharset  = "utf8mb4"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultGitHubAPI  = "https://api.github.com"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int              `yaml:"port"`
	DSN            string           `yaml:"dsn"` // MySQL DSN
	RedisURL       string           `yaml:"redis_url"`
	Env            string           `yaml:"env"` // "development" | "production"
	AllowedOrigins []string         `yaml:"allowed_origins"`
	JWTSecret      string           `yaml:"jwt_secret"`
	AI             AIConfig         `yaml:"ai"`
	GitHub         GitHubConfig     `yaml:"github"`
	Screenshot     ScreenshotConfig `yaml:"screenshot"`
	Enrichment     EnrichmentConfig `yaml:"enrichment"`
}

// AIConfig lists the configured language-model providers.
type AIConfig struct {
	Providers []AIProvider `yaml:"providers"`
}

// AIProvider describes one chat-completion provider.
type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// GitHubConfig configures the unauthenticated repository listing client.
type GitHubConfig struct {
	APIBase   string `yaml:"api_base"`
	UserAgent string `yaml:"user_agent"`
}

// ScreenshotConfig configures the primary/secondary screenshot providers.
type ScreenshotConfig struct {
	Primary   ScreenshotProvider `yaml:"primary"`
	Secondary ScreenshotProvider `yaml:"secondary"`
}

// ScreenshotProvider holds one provider's endpoint and credential.
type ScreenshotProvider struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// EnrichmentConfig bounds the per-session enrichment pipeline.
type EnrichmentConfig struct {
	MaxCallsPerSession int `yaml:"max_calls_per_session"`
	MaxFieldLength     int `yaml:"max_field_length"`
}

type rawAppConfig struct {
	Port            int              `yaml:"port"`
	DSN             string           `yaml:"dsn"`
	DatabaseURL     string           `yaml:"database_url"`
	RedisURL        string           `yaml:"redis_url"`
	DBHost          string           `yaml:"db_host"`
	DBPort          int              `yaml:"db_port"`
	DBUser          string           `yaml:"db_user"`
	DBPassword      string           `yaml:"db_password"`
	DBName          string           `yaml:"db_name"`
	DBCharset       string           `yaml:"db_charset"`
	Env             string           `yaml:"env"`
	AllowedOrigins  []string         `yaml:"allowed_origins"`
	JWTSecret       string           `yaml:"jwt_secret"`
	JWTSecretLegacy string           `yaml:"jwtsecret"`
	AI              AIConfig         `yaml:"ai"`
	GitHub          GitHubConfig     `yaml:"github"`
	Screenshot      ScreenshotConfig `yaml:"screenshot"`
	Enrichment      EnrichmentConfig `yaml:"enrichment"`
}

// Load reads the YAML config file and normalizes it into an AppConfig.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	raw := rawAppConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing file falls through to pure defaults.
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return normalize(&raw), nil
}

func normalize(raw *rawAppConfig) *AppConfig {
	cfg := &AppConfig{
		Port:           raw.Port,
		RedisURL:       strings.TrimSpace(raw.RedisURL),
		Env:            strings.ToLower(strings.TrimSpace(raw.Env)),
		AllowedOrigins: raw.AllowedOrigins,
		JWTSecret:      firstNonEmpty(raw.JWTSecret, raw.JWTSecretLegacy),
		AI:             raw.AI,
		GitHub:         raw.GitHub,
		Screenshot:     raw.Screenshot,
		Enrichment:     raw.Enrichment,
	}

	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = defaultRedisURL
	}

	cfg.DSN = firstNonEmpty(strings.TrimSpace(raw.DSN), strings.TrimSpace(raw.DatabaseURL))
	if cfg.DSN == "" {
		cfg.DSN = composeDSN(raw)
	}

	if strings.TrimSpace(cfg.GitHub.APIBase) == "" {
		cfg.GitHub.APIBase = defaultGitHubAPI
	}
	if strings.TrimSpace(cfg.GitHub.UserAgent) == "" {
		cfg.GitHub.UserAgent = "folio-space-core"
	}

	if cfg.Enrichment.MaxCallsPerSession <= 0 {
		cfg.Enrichment.MaxCallsPerSession = 5
	}
	if cfg.Enrichment.MaxFieldLength <= 0 {
		cfg.Enrichment.MaxFieldLength = 2000
	}

	return cfg
}

func composeDSN(raw *rawAppConfig) string {
	host := firstNonEmpty(strings.TrimSpace(raw.DBHost), defaultDBHost)
	port := raw.DBPort
	if port <= 0 {
		port = defaultDBPort
	}
	user := firstNonEmpty(strings.TrimSpace(raw.DBUser), defaultDBUser)
	password := firstNonEmpty(raw.DBPassword, defaultDBPassword)
	name := firstNonEmpty(strings.TrimSpace(raw.DBName), defaultDBName)
	charset := firstNonEmpty(strings.TrimSpace(raw.DBCharset), defaultDBCharset)

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		user, password, host, port, name, charset)
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return c.Env != "production"
}

// FirstEnabledAIProvider returns the first enabled provider, or nil.
func (c *AppConfig) FirstEnabledAIProvider() *AIProvider {
	for i := range c.AI.Providers {
		if c.AI.Providers[i].Enabled {
			p := c.AI.Providers[i]
			return &p
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
