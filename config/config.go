package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/farellandr/eventhub/internal/auth"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port               string         `yaml:"port"`
	GinMode            string         `yaml:"gin_mode"`
	LogLevel           string         `yaml:"log_level"`
	Database           DatabaseConfig `yaml:"database"`
	JWTSecret          string         `yaml:"jwt_secret"`
	JWTTTL             time.Duration  `yaml:"jwt_ttl"`
	BcryptCost         int            `yaml:"bcrypt_cost"`
	UploadDir          string         `yaml:"upload_dir"`
	MaxUploadMB        int64          `yaml:"max_upload_mb"`
	CORSAllowedOrigins []string       `yaml:"cors_allowed_origins"`
	Admin              AdminConfig    `yaml:"admin"`
}

type DatabaseConfig struct {
	URL          string `yaml:"url"`
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// AdminConfig describes the bootstrap administrator. Seeding is skipped
// when Password is empty.
type AdminConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

func Default() Config {
	return Config{
		Port:     "8080",
		GinMode:  "debug",
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			Name:         "eventhub",
			MaxIdleConns: 10,
			MaxOpenConns: 100,
		},
		JWTTTL:             10 * time.Hour,
		BcryptCost:         12,
		UploadDir:          "./uploads",
		MaxUploadMB:        5,
		CORSAllowedOrigins: []string{"*"},
		Admin: AdminConfig{
			Username: "admin",
			Email:    "admin@eventhub.local",
		},
	}
}

// LoadEnv loads a .env file into the process environment. A missing file
// is not an error.
func LoadEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		slog.Warn(".env file not found, using system environment variables")
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// at path, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = GetEnv("PORT", c.Port)
	c.GinMode = GetEnv("GIN_MODE", c.GinMode)
	c.LogLevel = GetEnv("LOG_LEVEL", c.LogLevel)

	c.Database.URL = GetEnv("DATABASE_URL", c.Database.URL)
	c.Database.Host = GetEnv("DB_HOST", c.Database.Host)
	c.Database.Port = GetEnv("DB_PORT", c.Database.Port)
	c.Database.User = GetEnv("DB_USER", c.Database.User)
	c.Database.Password = GetEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = GetEnv("DB_NAME", c.Database.Name)

	c.JWTSecret = GetEnv("JWT_SECRET", c.JWTSecret)
	c.UploadDir = GetEnv("UPLOAD_DIR", c.UploadDir)

	c.Admin.Username = GetEnv("ADMIN_USERNAME", c.Admin.Username)
	c.Admin.Email = GetEnv("ADMIN_EMAIL", c.Admin.Email)
	c.Admin.Password = GetEnv("ADMIN_PASSWORD", c.Admin.Password)

	if v, ok := os.LookupEnv("JWT_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_TTL: %w", err)
		}
		c.JWTTTL = ttl
	}
	if v, ok := os.LookupEnv("BCRYPT_COST"); ok {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		c.BcryptCost = cost
	}
	if v, ok := os.LookupEnv("MAX_UPLOAD_MB"); ok {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_MB: %w", err)
		}
		c.MaxUploadMB = mb
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.CORSAllowedOrigins = splitList(v)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if len(c.JWTSecret) < auth.MinSigningKeyLength {
		return fmt.Errorf("jwt secret must be at least %d bytes", auth.MinSigningKeyLength)
	}
	if c.JWTTTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("max upload size must be positive")
	}
	if c.Admin.Password != "" && (c.Admin.Username == "" || c.Admin.Email == "") {
		return errors.New("admin username and email are required when an admin password is set")
	}
	return nil
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// DSN prefers DATABASE_URL and falls back to the discrete DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

// GetEnv gets an environment variable or returns a default value if not present
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
