package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rpattn/klinik/internal/db"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration of the service and CLI.
type Config struct {
	Server   ServerConfig `mapstructure:"server"`
	Database db.Config    `mapstructure:"database"`
	Import   ImportConfig `mapstructure:"import"`
	Auth     AuthConfig   `mapstructure:"auth"`
	Log      LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ImportConfig bounds a single bulk import run.
type ImportConfig struct {
	MaxRows        int    `mapstructure:"max_rows"`
	ErrorCap       int    `mapstructure:"error_cap"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	UploadDir      string `mapstructure:"upload_dir"`
}

// AuthConfig holds the bearer token secret. An empty secret enables header based identity.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml from configPath (optional) and applies KLINIK_* env overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("KLINIK") // KLINIK_DATABASE_HOST, KLINIK_IMPORT_MAX_ROWS, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Import.UploadDir == "" {
		cfg.Import.UploadDir = os.TempDir()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	dbDefaults := db.DefaultConfig()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("database.driver", dbDefaults.Driver)
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("database.max_conns", dbDefaults.MaxConns)
	v.SetDefault("database.min_conns", dbDefaults.MinConns)

	v.SetDefault("import.max_rows", 5000)
	v.SetDefault("import.error_cap", 50)
	v.SetDefault("import.max_upload_bytes", 10<<20)
	v.SetDefault("import.upload_dir", "")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case db.DriverPostgres, db.DriverMySQL:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", db.DriverPostgres, db.DriverMySQL, c.Database.Driver)
	}
	if c.Import.MaxRows <= 0 {
		return fmt.Errorf("import.max_rows must be positive, got %d", c.Import.MaxRows)
	}
	if c.Import.ErrorCap <= 0 {
		return fmt.Errorf("import.error_cap must be positive, got %d", c.Import.ErrorCap)
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("import.max_upload_bytes must be positive, got %d", c.Import.MaxUploadBytes)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// IsDevAuth reports whether identity is taken from plain request headers.
func (c *Config) IsDevAuth() bool {
	return c.Auth.JWTSecret == ""
}
