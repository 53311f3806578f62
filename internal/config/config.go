package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/glossary/api/internal/validator"
)

const (
	BackendLocal  = "local"
	BackendGitHub = "github"
)

type GitHubConfig struct {
	Repo    string        `yaml:"repo"`
	Token   string        `yaml:"token"`
	Branch  string        `yaml:"branch"`
	Path    string        `yaml:"path"`
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type BackupConfig struct {
	Keep          int           `yaml:"keep"`
	MaxAge        time.Duration `yaml:"max_age"`
	PruneInterval time.Duration `yaml:"prune_interval"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type Config struct {
	Port             string        `yaml:"port"`
	DataPath         string        `yaml:"data_path"`
	StoreBackend     string        `yaml:"store_backend"`
	GitHub           GitHubConfig  `yaml:"github"`
	AdminPassword    string        `yaml:"admin_password"`
	JWTSecret        string        `yaml:"jwt_secret"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	RedisURL         string        `yaml:"redis_url"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	DatabaseURL      string        `yaml:"database_url"`
	Backup           BackupConfig  `yaml:"backup"`
	S3               S3Config      `yaml:"s3"`
	LogLevel         string        `yaml:"log_level"`
	UploadErrorLimit int           `yaml:"upload_error_limit"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	SampleFallback   bool          `yaml:"sample_fallback"`
}

const (
	minJWTSecretLen      = 16
	placeholderJWTSecret = "change-me-in-production"
)

func defaults() *Config {
	return &Config{
		Port:         "4000",
		DataPath:     "data/glossary.csv",
		StoreBackend: BackendLocal,
		GitHub: GitHubConfig{
			Branch:  "main",
			Path:    "data/glossary.csv",
			APIURL:  "https://api.github.com",
			Timeout: 15 * time.Second,
		},
		SessionTTL: 12 * time.Hour,
		CacheTTL:   5 * time.Minute,
		Backup: BackupConfig{
			Keep:          20,
			MaxAge:        30 * 24 * time.Hour,
			PruneInterval: time.Hour,
		},
		LogLevel:         "info",
		UploadErrorLimit: 10,
		MaxUploadBytes:   5 << 20,
		SampleFallback:   true,
	}
}

// Load reads .env (if present), then the YAML file named by
// GLOSSARY_CONFIG (if set), then environment variables. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("GLOSSARY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DataPath = getEnv("GLOSSARY_DATA_PATH", cfg.DataPath)
	cfg.StoreBackend = getEnv("GLOSSARY_STORE", cfg.StoreBackend)
	cfg.GitHub.Repo = getEnv("GITHUB_REPO", cfg.GitHub.Repo)
	cfg.GitHub.Token = getEnv("GITHUB_TOKEN", cfg.GitHub.Token)
	cfg.GitHub.Branch = getEnv("GITHUB_BRANCH", cfg.GitHub.Branch)
	cfg.GitHub.Path = getEnv("GITHUB_PATH", cfg.GitHub.Path)
	cfg.GitHub.APIURL = getEnv("GITHUB_API_URL", cfg.GitHub.APIURL)
	cfg.GitHub.Timeout = getEnvDuration("GITHUB_TIMEOUT", cfg.GitHub.Timeout)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Backup.Keep = getEnvInt("BACKUP_KEEP", cfg.Backup.Keep)
	cfg.Backup.MaxAge = getEnvDuration("BACKUP_MAX_AGE", cfg.Backup.MaxAge)
	cfg.Backup.PruneInterval = getEnvDuration("BACKUP_PRUNE_INTERVAL", cfg.Backup.PruneInterval)
	cfg.S3.Endpoint = getEnv("S3_ENDPOINT", cfg.S3.Endpoint)
	cfg.S3.AccessKey = getEnv("S3_ACCESS_KEY", cfg.S3.AccessKey)
	cfg.S3.SecretKey = getEnv("S3_SECRET_KEY", cfg.S3.SecretKey)
	cfg.S3.Bucket = getEnv("S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.Region = getEnv("S3_REGION", cfg.S3.Region)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.UploadErrorLimit = getEnvInt("UPLOAD_ERROR_LIMIT", cfg.UploadErrorLimit)
	cfg.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.SampleFallback = getEnvBool("SAMPLE_FALLBACK", cfg.SampleFallback)

	return cfg, nil
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendLocal:
		if c.DataPath == "" {
			errs = append(errs, errors.New("GLOSSARY_DATA_PATH is required for the local store"))
		}
	case BackendGitHub:
		if err := validator.ValidateRepo(c.GitHub.Repo); err != nil {
			errs = append(errs, err)
		}
		if err := validator.ValidateToken(c.GitHub.Token); err != nil {
			errs = append(errs, err)
		}
		if c.GitHub.Path == "" {
			errs = append(errs, errors.New("GITHUB_PATH is required for the github store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q (supported: local, github)", c.StoreBackend))
	}
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required"))
	}
	if len(c.JWTSecret) < minJWTSecretLen || c.JWTSecret == placeholderJWTSecret {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be set to a private value of at least %d bytes", minJWTSecretLen))
	}
	if c.UploadErrorLimit < 1 {
		errs = append(errs, errors.New("UPLOAD_ERROR_LIMIT must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
