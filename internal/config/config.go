// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	App     AppConfig     `mapstructure:"app"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Email   EmailConfig   `mapstructure:"email"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// AuthConfig holds session-token and Google OAuth settings.
type AuthConfig struct {
	JWTSecret           string       `mapstructure:"jwt_secret"`
	AccessTokenMinutes  int          `mapstructure:"access_token_minutes"`
	ConfirmTokenHours   int          `mapstructure:"confirm_token_hours"`
	Google              GoogleConfig `mapstructure:"google"`
	ProviderTimeoutSecs int          `mapstructure:"provider_timeout_seconds"`
}

// GoogleConfig identifies this service to the Google OAuth endpoints.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

// AppConfig points at the frontend the auth flow redirects back to.
type AppConfig struct {
	URL string `mapstructure:"url"`
}

// IngestConfig governs the tool-ingestion pipeline.
type IngestConfig struct {
	MaxTools           int    `mapstructure:"max_tools"`
	ProbeTimeoutSecs   int    `mapstructure:"probe_timeout_seconds"`
	ContentTimeoutSecs int    `mapstructure:"content_timeout_seconds"`
	LLMTimeoutSecs     int    `mapstructure:"llm_timeout_seconds"`
	FaviconTimeoutSecs int    `mapstructure:"favicon_timeout_seconds"`
	ReaderURL          string `mapstructure:"reader_url"`
	FaviconURL         string `mapstructure:"favicon_url"`
	OpenAIAPIKey       string `mapstructure:"openai_api_key"`
	OpenAIBaseURL      string `mapstructure:"openai_base_url"`
	OpenAIModel        string `mapstructure:"openai_model"`
}

// EmailConfig selects and configures the transactional mailer.
type EmailConfig struct {
	Provider          string `mapstructure:"provider"`
	APIKey            string `mapstructure:"api_key"`
	SenderAddress     string `mapstructure:"sender_address"`
	SenderName        string `mapstructure:"sender_name"`
	FeedbackRecipient string `mapstructure:"feedback_recipient"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TOOLDIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("auth.access_token_minutes", 30)
	v.SetDefault("auth.confirm_token_hours", 24*7)
	v.SetDefault("auth.provider_timeout_seconds", 5)
	v.SetDefault("ingest.max_tools", 10)
	v.SetDefault("ingest.probe_timeout_seconds", 5)
	v.SetDefault("ingest.content_timeout_seconds", 15)
	v.SetDefault("ingest.llm_timeout_seconds", 30)
	v.SetDefault("ingest.favicon_timeout_seconds", 5)
	v.SetDefault("ingest.reader_url", "https://r.jina.ai")
	v.SetDefault("ingest.favicon_url", "https://www.google.com/s2/favicons")
	v.SetDefault("ingest.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("ingest.openai_model", "gpt-4o-mini")
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.sender_address", "no-reply@appsquad.com")
	v.SetDefault("email.sender_name", "No reply")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.AccessTokenMinutes <= 0 {
		return fmt.Errorf("auth.access_token_minutes must be > 0")
	}
	if c.Auth.ConfirmTokenHours <= 0 {
		return fmt.Errorf("auth.confirm_token_hours must be > 0")
	}
	if c.Ingest.MaxTools <= 0 {
		return fmt.Errorf("ingest.max_tools must be > 0")
	}
	if c.Ingest.ProbeTimeoutSecs <= 0 || c.Ingest.ContentTimeoutSecs <= 0 ||
		c.Ingest.LLMTimeoutSecs <= 0 || c.Ingest.FaviconTimeoutSecs <= 0 {
		return fmt.Errorf("ingest timeouts must be > 0")
	}
	switch c.Email.Provider {
	case "sendgrid":
		if c.Email.APIKey == "" {
			return fmt.Errorf("email.api_key is required when email.provider is sendgrid")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}
	return nil
}

// AccessTokenTTL returns the configured session-token lifetime.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Auth.AccessTokenMinutes) * time.Minute
}

// ConfirmTokenTTL returns the configured confirmation-token lifetime.
func (c Config) ConfirmTokenTTL() time.Duration {
	return time.Duration(c.Auth.ConfirmTokenHours) * time.Hour
}
