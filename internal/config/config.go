package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AuthModeDevelopment = "development"
	AuthModeJWT         = "jwt"

	ExtractorVision          = "vision"
	ExtractorAnthropic       = "anthropic"
	ExtractorVisionGemini    = "vision-gemini"
	// OCR text is parsed by Claude instead of Gemini.
	ExtractorVisionAnthropic = "vision-anthropic"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	AuthMode            string        `mapstructure:"AUTH_MODE"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer          string        `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL         string        `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience        string        `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey      string        `mapstructure:"AUTH_SIGNING_KEY"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS        float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int           `mapstructure:"RATE_LIMIT_BURST"`
	ImageRateLimitRPS   float64       `mapstructure:"IMAGE_RATE_LIMIT_RPS"`
	ImageRateLimitBurst int           `mapstructure:"IMAGE_RATE_LIMIT_BURST"`
	BodyLimit           string        `mapstructure:"BODY_LIMIT"`
	ImageBodyLimit      string        `mapstructure:"IMAGE_BODY_LIMIT"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ExtractionTimeout   time.Duration `mapstructure:"EXTRACTION_TIMEOUT"`
	AnthropicAPIKey     string        `mapstructure:"ANTHROPIC_API_KEY"`
	AnthropicModel      string        `mapstructure:"ANTHROPIC_MODEL"`
	GeminiAPIKey        string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string        `mapstructure:"GEMINI_MODEL"`
	GoogleCredentials   string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	LabExtractor        string        `mapstructure:"LAB_EXTRACTOR"`
	MedicationExtractor string        `mapstructure:"MEDICATION_EXTRACTOR"`
	FormularyFile       string        `mapstructure:"FORMULARY_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "5001")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	// 100 requests per 15 minutes for the API, 10 for image extraction.
	v.SetDefault("RATE_LIMIT_RPS", 100.0/900.0)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("IMAGE_RATE_LIMIT_RPS", 10.0/900.0)
	v.SetDefault("IMAGE_RATE_LIMIT_BURST", 10)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("IMAGE_BODY_LIMIT", "15M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("EXTRACTION_TIMEOUT", "120s")
	v.SetDefault("ANTHROPIC_MODEL", "claude-sonnet-4-20250514")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("LAB_EXTRACTOR", ExtractorVision)
	v.SetDefault("MEDICATION_EXTRACTOR", ExtractorAnthropic)

	for _, key := range []string{
		"PORT", "ENV", "AUTH_MODE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"AUTH_ISSUER", "AUTH_JWKS_URL", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY",
		"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"IMAGE_RATE_LIMIT_RPS", "IMAGE_RATE_LIMIT_BURST",
		"BODY_LIMIT", "IMAGE_BODY_LIMIT", "REQUEST_TIMEOUT", "EXTRACTION_TIMEOUT",
		"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "GEMINI_API_KEY", "GEMINI_MODEL",
		"GOOGLE_APPLICATION_CREDENTIALS", "LAB_EXTRACTOR", "MEDICATION_EXTRACTOR",
		"FORMULARY_FILE",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.ResolvedAuthMode() == AuthModeDevelopment {
		log.Println("WARNING: development auth is active, every request runs as dev-user.")
		log.Println("WARNING: set ENV=production and AUTH_ISSUER or AUTH_JWKS_URL before deploying.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns AUTH_MODE when set, otherwise "development" in
// the development environment and "jwt" everywhere else.
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return AuthModeDevelopment
	}
	return AuthModeJWT
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	switch mode := c.ResolvedAuthMode(); mode {
	case AuthModeDevelopment:
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=development is not allowed when ENV=production")
		}
	case AuthModeJWT:
		if c.AuthIssuer == "" && c.AuthJWKSURL == "" && c.AuthSigningKey == "" {
			return fmt.Errorf("AUTH_MODE=jwt requires AUTH_ISSUER, AUTH_JWKS_URL or AUTH_SIGNING_KEY")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModeDevelopment, AuthModeJWT, mode)
	}

	switch c.LabExtractor {
	case ExtractorVision, ExtractorAnthropic:
	default:
		return fmt.Errorf("LAB_EXTRACTOR must be %q or %q, got %q", ExtractorVision, ExtractorAnthropic, c.LabExtractor)
	}
	switch c.MedicationExtractor {
	case ExtractorAnthropic, ExtractorVisionGemini, ExtractorVisionAnthropic:
	default:
		return fmt.Errorf("MEDICATION_EXTRACTOR must be %q, %q or %q, got %q",
			ExtractorAnthropic, ExtractorVisionGemini, ExtractorVisionAnthropic, c.MedicationExtractor)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.ExtractionTimeout < c.RequestTimeout {
		return fmt.Errorf("EXTRACTION_TIMEOUT (%s) must not be shorter than REQUEST_TIMEOUT (%s)", c.ExtractionTimeout, c.RequestTimeout)
	}
	return nil
}
