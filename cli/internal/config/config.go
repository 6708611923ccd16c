package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

// Config holds the application configuration
type Config struct {
	SnapshotPath  string
	MigrationsDir string
	Provider      string
	DatabaseURL   string
}

// LoadConfig loads configuration from various sources
func LoadConfig() (*Config, error) {
	// Find home directory
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	// Set config file paths
	viper.SetConfigName(".migrago")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "migrago"))

	// Set environment variable prefix
	viper.SetEnvPrefix("MIGRAGO")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("snapshot_path", "snapshot.json")
	viper.SetDefault("migrations_dir", "migrations")
	viper.SetDefault("provider", "postgres")

	// Try to read config file (ignore if not found)
	_ = viper.ReadInConfig()

	// Load .env file if it exists
	if _, err := AppFs.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			// Don't fail if .env can't be loaded
		}
	}

	// Load .env.local if it exists (higher priority)
	if _, err := AppFs.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			// Don't fail if .env.local can't be loaded
		}
	}

	cfg := &Config{
		SnapshotPath:  viper.GetString("snapshot_path"),
		MigrationsDir: viper.GetString("migrations_dir"),
		Provider:      viper.GetString("provider"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = viper.GetString("database_url")
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config) error {
	viper.Set("snapshot_path", cfg.SnapshotPath)
	viper.Set("migrations_dir", cfg.MigrationsDir)
	viper.Set("provider", cfg.Provider)
	viper.Set("database_url", cfg.DatabaseURL)

	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".config", "migrago")
	if err := AppFs.MkdirAll(configPath, 0755); err != nil {
		return err
	}

	configFile := filepath.Join(configPath, ".migrago.yaml")
	return viper.WriteConfigAs(configFile)
}
