package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the CLI needs to wire its services.
type Config struct {
	// Home is the pyworks state directory, e.g. $HOME/.pyworks.
	Home      string
	Logger    LoggerConfig
	Cache     CacheConfig
	Python    PythonConfig
	Installer InstallerConfig
	Index     IndexConfig
	Jupyter   JupyterConfig
}

type LoggerConfig struct {
	Level  string
	Format string
}

type CacheConfig struct {
	EnvTTL   time.Duration
	ProbeTTL time.Duration
}

type PythonConfig struct {
	// Timeout bounds interpreter probes (version checks, import probes).
	Timeout time.Duration
}

type InstallerConfig struct {
	// AllowUV lets the installer prefer uv over pip when both exist.
	AllowUV bool
	// Command overrides installer selection entirely, e.g. "pip install --user".
	Command string
}

type IndexConfig struct {
	URL     string
	Enabled bool
}

type JupyterConfig struct {
	// DataDirs are extra kernelspec search roots, highest priority first.
	DataDirs []string
}

// Load builds the configuration from defaults, an optional config file and
// PYWORKS_* environment variables. Environment beats file beats default.
func Load(file string) (*Config, error) {
	v := viper.New()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	// Defaults
	v.SetDefault("HOME", filepath.Join(home, ".pyworks"))
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")
	v.SetDefault("CACHE_ENV_TTL", "1h")
	v.SetDefault("CACHE_PROBE_TTL", "15m")
	v.SetDefault("PYTHON_TIMEOUT", "10s")
	v.SetDefault("INSTALLER_ALLOW_UV", true)
	v.SetDefault("INSTALLER_COMMAND", "")
	v.SetDefault("INDEX_URL", "https://pypi.org")
	v.SetDefault("INDEX_ENABLED", true)
	v.SetDefault("JUPYTER_DIRS", "")

	// Env
	v.SetEnvPrefix("PYWORKS")
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Home: v.GetString("HOME"),
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Cache: CacheConfig{
			EnvTTL:   duration(v, "CACHE_ENV_TTL", time.Hour),
			ProbeTTL: duration(v, "CACHE_PROBE_TTL", 15*time.Minute),
		},
		Python: PythonConfig{
			Timeout: duration(v, "PYTHON_TIMEOUT", 10*time.Second),
		},
		Installer: InstallerConfig{
			AllowUV: v.GetBool("INSTALLER_ALLOW_UV"),
			Command: v.GetString("INSTALLER_COMMAND"),
		},
		Index: IndexConfig{
			URL:     v.GetString("INDEX_URL"),
			Enabled: v.GetBool("INDEX_ENABLED"),
		},
		Jupyter: JupyterConfig{
			DataDirs: splitList(v.GetString("JUPYTER_DIRS")),
		},
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var dirs []string
	for _, dir := range filepath.SplitList(s) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
