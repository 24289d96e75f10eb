package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN    string        `env:"DATABASE_URI"`
	AuthSecret     string        `env:"AUTH_SECRET"`
	BlobMaxSizeMB  int           `env:"BLOB_MAX_MB"`
	TokenTTL       time.Duration `env:"TOKEN_TTL"`
	AdminLogin     string        `env:"ADMIN_LOGIN"`
	AdminPassword  string        `env:"ADMIN_PASSWORD"`
	RiskPolicyFile string        `env:"RISK_POLICY_FILE"`
	WatermarkTTL   time.Duration `env:"WATERMARK_TTL"`
	NotifyQueue    int           `env:"NOTIFY_QUEUE"`
	WebhookURLs    []string      `env:"WEBHOOK_URLS" envSeparator:","`

	// Object storage for file content (optional; empty endpoint keeps content in the DB)
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"CLIENT_TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

const (
	defaultDSN          = "sqlite:datasentinel.db"
	defaultSecret       = "dev-secret-key"
	defaultBaseURL      = "localhost:8081"
	defaultBlobMaxMB    = 50
	defaultTokenTTL     = 24 * time.Hour
	defaultWatermarkTTL = 90 * 24 * time.Hour
	defaultNotifyQueue  = 256
	defaultMinioBucket  = "datasentinel"
)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres DSN или sqlite:<путь>)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.IntVar(&cfg.BlobMaxSizeMB, "blob-max-mb", cfg.BlobMaxSizeMB, "максимальный размер загружаемого файла, МБ")
	flag.StringVar(&cfg.RiskPolicyFile, "risk-policy", cfg.RiskPolicyFile, "YAML-файл с параметрами оценки риска")
	flag.StringVar(&cfg.AdminLogin, "admin-login", cfg.AdminLogin, "логин администратора, создаваемого при старте")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the Data Sentinel server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	// Defaults
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = defaultDSN
	}
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = defaultSecret
	}
	if cfg.BlobMaxSizeMB <= 0 {
		cfg.BlobMaxSizeMB = defaultBlobMaxMB
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.WatermarkTTL <= 0 {
		cfg.WatermarkTTL = defaultWatermarkTTL
	}
	if cfg.NotifyQueue <= 0 {
		cfg.NotifyQueue = defaultNotifyQueue
	}
	if cfg.MinioBucket == "" {
		cfg.MinioBucket = defaultMinioBucket
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// Fill client defaults if empty
	if cfg.TokenFile == "" {
		home, _ := os.UserHomeDir()
		cfg.TokenFile = filepath.Join(home, ".ds_token")
	}

	return cfg
}

// MaxUploadBytes: лимит размера файла в байтах.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.BlobMaxSizeMB) * 1024 * 1024
}

// UseMinio: содержимое файлов хранится в объектном хранилище.
func (c *Config) UseMinio() bool {
	return c.MinioEndpoint != ""
}
