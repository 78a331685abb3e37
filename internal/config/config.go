package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	// Service
	Port              string        `env:"PORT" envDefault:"8080"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"5m"`
	GenerateRateLimit int           `env:"GENERATE_RATE_LIMIT" envDefault:"10"` // per IP per minute
	MaxPDFBytes       int64         `env:"MAX_PDF_BYTES" envDefault:"20971520"`
	CORSOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// AI
	AIProvider     string        `env:"AI_PROVIDER" envDefault:"gemini"` // gemini | openai
	GeminiBaseURL  string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	AITimeout      time.Duration `env:"AI_TIMEOUT" envDefault:"120s"`
	PromptMaxChars int           `env:"PROMPT_MAX_CHARS" envDefault:"25000"`

	// Artifacts
	ArtifactBackend  string        `env:"ARTIFACT_BACKEND" envDefault:"memory"` // memory | s3
	ArtifactTTL      time.Duration `env:"ARTIFACT_TTL" envDefault:"10m"`
	ArtifactCapacity int           `env:"ARTIFACT_CAPACITY" envDefault:"500"` // live artifacts before saves are refused; 0 = unbounded

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"`
	S3Secure    bool   `env:"S3_SECURE" envDefault:"true"`
	S3Prefix    string `env:"S3_PREFIX" envDefault:"artifacts"`

	// Failure notifications
	TelegramBotToken     string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAdminChatIDs []int64 `env:"TELEGRAM_ADMIN_CHAT_IDS" envSeparator:","`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	cfg.ArtifactBackend = strings.ToLower(strings.TrimSpace(cfg.ArtifactBackend))
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKey = strings.TrimSpace(cfg.S3AccessKey)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.TelegramBotToken = strings.TrimSpace(cfg.TelegramBotToken)

	if cfg.MaxPDFBytes <= 0 {
		cfg.MaxPDFBytes = 20 * 1024 * 1024
	}
	if cfg.ArtifactTTL <= 0 {
		cfg.ArtifactTTL = 10 * time.Minute
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 5 * time.Minute
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AIProvider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("AI_PROVIDER must be gemini or openai, got %q", c.AIProvider)
	}

	switch c.ArtifactBackend {
	case "memory":
	case "s3":
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required for ARTIFACT_BACKEND=s3")
		}
	default:
		return fmt.Errorf("ARTIFACT_BACKEND must be memory or s3, got %q", c.ArtifactBackend)
	}

	if c.GenerateRateLimit < 0 {
		return fmt.Errorf("GENERATE_RATE_LIMIT must not be negative")
	}
	return nil
}
