package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the central typed configuration struct. Values come from
// three layers, later layers winning: built-in defaults, an optional
// YAML file, then environment variables.
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Log       LogConfig
	Container ContainerConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

type ServerConfig struct {
	Host            string
	Port            string
	ShutdownTimeout time.Duration
}

// Addr returns the host:port the HTTP server binds.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

type ContainerConfig struct {
	DeferredResolution bool
	RetryDelay         time.Duration
	SweepInterval      time.Duration // transient cleanup cadence; 0 disables the sweeper
}

// Load reads .env (if present), applies the YAML config file named by
// CONFIG_FILE (default armature.yaml, skipped when absent), then lets
// environment variables override everything.
// Call once at bootstrap: cfg, err := config.Load()
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	cfg := defaults()
	if err := cfg.applyFile(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:  "armature",
			Env:   "local",
			Debug: true,
		},
		Server: ServerConfig{
			Port:            "8000",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Container: ContainerConfig{
			DeferredResolution: true,
			RetryDelay:         100 * time.Millisecond,
			SweepInterval:      30 * time.Second,
		},
	}
}

// fileConfig mirrors Config for YAML decoding. Durations are strings in
// the file ("5s", "250ms") and parsed on merge; pointer booleans
// distinguish "absent" from "false".
type fileConfig struct {
	App struct {
		Name  string `yaml:"name"`
		Env   string `yaml:"env"`
		Debug *bool  `yaml:"debug"`
	} `yaml:"app"`
	Server struct {
		Host            string `yaml:"host"`
		Port            string `yaml:"port"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Container struct {
		DeferredResolution *bool  `yaml:"deferred_resolution"`
		RetryDelay         string `yaml:"retry_delay"`
		SweepInterval      string `yaml:"sweep_interval"`
	} `yaml:"container"`
}

func (c *Config) applyFile() error {
	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = "armature.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		// The default file is optional; an explicitly named one is not.
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if f.App.Name != "" {
		c.App.Name = f.App.Name
	}
	if f.App.Env != "" {
		c.App.Env = f.App.Env
	}
	if f.App.Debug != nil {
		c.App.Debug = *f.App.Debug
	}
	if f.Server.Host != "" {
		c.Server.Host = f.Server.Host
	}
	if f.Server.Port != "" {
		c.Server.Port = f.Server.Port
	}
	if err := setDuration(&c.Server.ShutdownTimeout, f.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
		return err
	}
	if f.Log.Level != "" {
		c.Log.Level = f.Log.Level
	}
	if f.Log.Format != "" {
		c.Log.Format = f.Log.Format
	}
	if f.Container.DeferredResolution != nil {
		c.Container.DeferredResolution = *f.Container.DeferredResolution
	}
	if err := setDuration(&c.Container.RetryDelay, f.Container.RetryDelay, "container.retry_delay"); err != nil {
		return err
	}
	return setDuration(&c.Container.SweepInterval, f.Container.SweepInterval, "container.sweep_interval")
}

func (c *Config) applyEnv() {
	c.App.Name = env("APP_NAME", c.App.Name)
	c.App.Env = env("APP_ENV", c.App.Env)
	c.App.Debug = envBool("APP_DEBUG", c.App.Debug)
	c.Server.Host = env("SERVER_HOST", c.Server.Host)
	c.Server.Port = env("SERVER_PORT", c.Server.Port)
	c.Server.ShutdownTimeout = envDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Log.Level = env("LOG_LEVEL", c.Log.Level)
	c.Log.Format = env("LOG_FORMAT", c.Log.Format)
	c.Container.DeferredResolution = envBool("CONTAINER_DEFERRED_RESOLUTION", c.Container.DeferredResolution)
	c.Container.RetryDelay = envDuration("CONTAINER_RETRY_DELAY", c.Container.RetryDelay)
	c.Container.SweepInterval = envDuration("CONTAINER_SWEEP_INTERVAL", c.Container.SweepInterval)
}

func setDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: %s: %w", field, err)
	}
	*dst = d
	return nil
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
