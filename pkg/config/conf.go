package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	dirMode        = 0700
	fileMode       = 0600

	envPrefix = "PROPENSITY_"

	EnvLogLevel = envPrefix + "LOG_LEVEL"
	EnvFormat   = envPrefix + "FORMAT"
	EnvPort     = envPrefix + "PORT"
	EnvWorkers  = envPrefix + "WORKERS"
	EnvDriver   = envPrefix + "DB_DRIVER"
	EnvDSN      = envPrefix + "DB_DSN"
	EnvTable    = envPrefix + "DB_TABLE"

	PortDefault    = 8080
	WorkersDefault = 4
)

// Config represents app config object.
type Config struct {
	LogLevel string   `yaml:"log_level"`
	Format   string   `yaml:"format"`
	Port     int      `yaml:"port"`
	Workers  int      `yaml:"workers"`
	Source   DBSource `yaml:"source"`
}

// DBSource is the default database customers are read from.
type DBSource struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Format:   "json",
		Port:     PortDefault,
		Workers:  WorkersDefault,
		Source: DBSource{
			Driver: "sqlite",
			Table:  "customer",
		},
	}
}

// Save writes c to the config file in dirPath.
func Save(dirPath string, c *Config) error {
	if dirPath == "" {
		return errors.New("config directory required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dirPath, configFileName)
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads app config from directory or creates a new one.
func ReadOrCreate(dirPath string) (*Config, error) {
	if dirPath == "" {
		return nil, errors.New("config directory required")
	}

	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dirPath, dirMode); err != nil {
			return nil, fmt.Errorf("failed to create dir %s: %w", dirPath, err)
		}
	}

	path := filepath.Join(dirPath, configFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating default config", "path", path)
		if err := Save(dirPath, Default()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	return Read(path)
}

// Read parses the config file at path. Missing fields keep their defaults.
func Read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}
	return c, nil
}

// LoadEnv loads variables from the given .env files into the process
// environment without overriding existing values. Missing files are ignored.
func LoadEnv(files ...string) error {
	found := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			found = append(found, f)
		}
	}
	if len(found) == 0 {
		return nil
	}
	if err := godotenv.Load(found...); err != nil {
		return fmt.Errorf("error loading env files %v: %w", found, err)
	}
	return nil
}

// ApplyEnv overlays PROPENSITY_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvFormat); ok {
		c.Format = v
	}
	if v, ok := lookup(EnvDriver); ok {
		c.Source.Driver = v
	}
	if v, ok := lookup(EnvDSN); ok {
		c.Source.DSN = v
	}
	if v, ok := lookup(EnvTable); ok {
		c.Source.Table = v
	}

	var err error
	if c.Port, err = lookupInt(EnvPort, c.Port); err != nil {
		return err
	}
	if c.Workers, err = lookupInt(EnvWorkers, c.Workers); err != nil {
		return err
	}
	return nil
}

// Load reads the config from dirPath, then applies the .env file in the
// working directory and the environment.
func Load(dirPath string) (*Config, error) {
	c, err := ReadOrCreate(dirPath)
	if err != nil {
		return nil, err
	}
	if err := LoadEnv(".env"); err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetOrCreateHomeDir returns the app directory in the current user's home.
// The created flag is set to true if the directory was created.
func GetOrCreateHomeDir(name string) (path string, created bool, err error) {
	if name == "" {
		return "", false, errors.New("name cannot be empty")
	}

	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to get user home dir: %w", err)
	}
	slog.Debug("home dir", "path", home)

	dir := filepath.Join(home, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dir)
		if err := os.Mkdir(dir, dirMode); err != nil {
			return "", false, fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
		created = true
	}
	return dir, created, nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func lookupInt(key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}
