// Package config resolves where rmaboard keeps its data and reads the
// optional config.yaml that sits beside the database.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

const (
	dbFileName     = "rmaboard.db"
	configFileName = "config.yaml"
	envPrefix      = "RMABOARD"
)

// Config holds resolved configuration for the rmaboard directory, database
// and user settings.
type Config struct {
	Dir        string // resolved .rmaboard directory path
	DBPath     string // full path to rmaboard.db
	ConfigPath string // full path to config.yaml, which may not exist
	EnvVarSet  bool   // whether RMABOARD_PATH was used

	RMAPrefix string
	Author    string
	LogLevel  string
	LogFormat string
}

// Settings is the on-disk shape of config.yaml.
type Settings struct {
	RMAPrefix string      `yaml:"rma_prefix" mapstructure:"rma_prefix"`
	Author    string      `yaml:"author,omitempty" mapstructure:"author"`
	Log       LogSettings `yaml:"log" mapstructure:"log"`
}

// LogSettings configures diagnostic logging.
type LogSettings struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		RMAPrefix: model.DefaultRMAPrefix,
		Log:       LogSettings{Level: "warn", Format: "text"},
	}
}

// Resolve returns the current configuration by checking RMABOARD_PATH first,
// then falling back to $PWD/.rmaboard. Settings come from config.yaml in that
// directory, overridden by RMABOARD_* environment variables.
func Resolve() (*Config, error) {
	var dir string
	var envVarSet bool

	if envPath := os.Getenv("RMABOARD_PATH"); envPath != "" {
		dir = envPath
		envVarSet = true
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(cwd, ".rmaboard")
	}

	cfg := &Config{
		Dir:        dir,
		DBPath:     filepath.Join(dir, dbFileName),
		ConfigPath: filepath.Join(dir, configFileName),
		EnvVarSet:  envVarSet,
	}

	s, err := load(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.RMAPrefix = s.RMAPrefix
	cfg.Author = s.Author
	cfg.LogLevel = s.Log.Level
	cfg.LogFormat = s.Log.Format
	if cfg.Author == "" {
		cfg.Author = DefaultAuthor()
	}

	return cfg, nil
}

func load(path string) (Settings, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("rma_prefix", d.RMAPrefix)
	v.SetDefault("author", d.Author)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	s.RMAPrefix = strings.TrimSpace(s.RMAPrefix)
	if s.RMAPrefix == "" {
		s.RMAPrefix = d.RMAPrefix
	}
	return s, nil
}

// Settings returns the effective settings for display or persistence.
func (c *Config) Settings() Settings {
	return Settings{
		RMAPrefix: c.RMAPrefix,
		Author:    c.Author,
		Log:       LogSettings{Level: c.LogLevel, Format: c.LogFormat},
	}
}

// WriteSettings writes s to the config file, creating the directory if
// needed. An existing file is kept unless overwrite is set.
func (c *Config) WriteSettings(s Settings, overwrite bool) (bool, error) {
	if !overwrite {
		if _, err := os.Stat(c.ConfigPath); err == nil {
			return false, nil
		} else if !os.IsNotExist(err) {
			return false, err
		}
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return false, fmt.Errorf("creating directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# rmaboard configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return false, fmt.Errorf("encoding settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return false, err
	}
	if err := os.WriteFile(c.ConfigPath, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", c.ConfigPath, err)
	}
	return true, nil
}

// Exists checks if the rmaboard directory and DB file both exist.
// It returns an error for non-existence failures (e.g. permission errors).
func (c *Config) Exists() (bool, error) {
	if _, err := os.Stat(c.Dir); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := os.Stat(c.DBPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var (
	defaultAuthor     string
	defaultAuthorOnce sync.Once
)

// DefaultAuthor returns the default author for activity entries.
// It tries git config user.name first and falls back to the OS username.
// The result is cached for the lifetime of the process.
func DefaultAuthor() string {
	defaultAuthorOnce.Do(func() {
		defaultAuthor = resolveAuthor()
	})
	return defaultAuthor
}

func resolveAuthor() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, "git", "config", "user.name").Output()
	if err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			return name
		}
	}

	u, err := user.Current()
	if err == nil && u.Username != "" {
		return u.Username
	}

	return "unknown"
}
