package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// Values shipped as fallbacks by earlier deployments. Refused outright.
var insecureDefaults = map[string]bool{
	"admin123":             true,
	"roti-secret-key-2025": true,
}

type Config struct {
	Port              int
	DatabaseURL       string
	DatabaseType      string
	AdminPassword     string
	AdminPasswordHash string
	TokenSecret       string
	Production        bool
	StaticDir         string
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("roti", flag.ContinueOnError)

	// Network and storage (CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.BoolVar(&cfg.Production, "production", false, "Serve the built frontend")
	fs.StringVar(&cfg.StaticDir, "static-dir", "", "Frontend build directory")
	fs.StringVar(&envFile, "env-file", "", "Dotenv file to load")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminPassword, "admin-password", "", "Admin password (prefer env)")
	fs.StringVar(&cfg.AdminPasswordHash, "admin-password-hash", "", "Bcrypt hash of the admin password (prefer env)")
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "Secret used to hash tokens (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3001 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == DatabasePostgres {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "roti.db"
	}

	if !cfg.Production {
		cfg.Production = os.Getenv("ROTI_ENV") == "production"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = os.Getenv("STATIC_DIR")
		if cfg.StaticDir == "" {
			cfg.StaticDir = "dist"
		}
	}

	// Secrets - MUST be provided
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	}
	if cfg.AdminPasswordHash == "" {
		cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return Config{}, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH required")
	}
	if insecureDefaults[cfg.AdminPassword] {
		return Config{}, errors.New("ADMIN_PASSWORD uses a known insecure default")
	}

	if cfg.TokenSecret == "" {
		cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	}
	if cfg.TokenSecret == "" {
		return Config{}, errors.New("TOKEN_SECRET required")
	}
	if insecureDefaults[cfg.TokenSecret] {
		return Config{}, errors.New("TOKEN_SECRET uses a known insecure default")
	}

	return cfg, nil
}

// loadEnvFile loads path, or ./.env when path is empty and the file exists.
// Variables already present in the environment are never overridden.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}
