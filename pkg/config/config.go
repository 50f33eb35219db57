package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"presencegate/pkg/ratelimit"
	"presencegate/pkg/utils"
	"presencegate/pkg/validation"
)

type Config struct {
	Application struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"application"`

	Peer struct {
		Backend string `yaml:"backend"` // loopback or gateway
		Gateway struct {
			Token  string `yaml:"token"`
			Status string `yaml:"status"`
		} `yaml:"gateway"`
	} `yaml:"peer"`

	Presence struct {
		MinUpdateInterval time.Duration   `yaml:"min_update_interval"`
		TickInterval      time.Duration   `yaml:"tick_interval"`
		RotationInterval  time.Duration   `yaml:"rotation_interval"`
		Entries           []PresenceEntry `yaml:"entries"`
	} `yaml:"presence"`

	Server struct {
		Enabled         bool          `yaml:"enabled"`
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
		MaxConcurrent     int     `yaml:"max_concurrent"`
	} `yaml:"rate_limiting"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		ServiceName string  `yaml:"service_name"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`
}

// PresenceEntry is one rotation slot for the daemon. Kind and timestamps use
// the same semantics as the library: elapsed wins over ends_at, categories
// are limited to the four supported names.
type PresenceEntry struct {
	Details       string        `yaml:"details"`
	State         string        `yaml:"state"`
	Kind          string        `yaml:"kind"`
	ShowElapsed   bool          `yaml:"show_elapsed"`
	EndsAt        string        `yaml:"ends_at"`
	LargeImageKey string        `yaml:"large_image_key"`
	LargeText     string        `yaml:"large_text"`
	SmallImageKey string        `yaml:"small_image_key"`
	SmallText     string        `yaml:"small_text"`
	Buttons       []ButtonEntry `yaml:"buttons"`
}

type ButtonEntry struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Application
	if err := validation.ValidateApplicationID(c.Application.ID); err != nil {
		return fmt.Errorf("application.id: %w", err)
	}

	// Peer
	if c.Peer.Backend != "loopback" && c.Peer.Backend != "gateway" {
		return fmt.Errorf("peer.backend must be loopback or gateway")
	}
	if c.Peer.Backend == "gateway" && c.Peer.Gateway.Token == "" {
		return fmt.Errorf("peer.gateway.token must not be empty when peer.backend=gateway")
	}
	if err := validation.ValidateGatewayStatus(c.Peer.Gateway.Status); err != nil {
		return fmt.Errorf("peer.gateway.status: %w", err)
	}

	// Presence
	if c.Presence.MinUpdateInterval <= 0 {
		return fmt.Errorf("presence.min_update_interval must be > 0")
	}
	if c.Presence.TickInterval <= 0 {
		return fmt.Errorf("presence.tick_interval must be > 0")
	}
	if c.Presence.RotationInterval <= 0 {
		return fmt.Errorf("presence.rotation_interval must be > 0")
	}
	if c.Presence.RotationInterval < c.Presence.MinUpdateInterval {
		return fmt.Errorf("presence.rotation_interval must be >= presence.min_update_interval")
	}
	for i, entry := range c.Presence.Entries {
		if err := entry.validate(); err != nil {
			return fmt.Errorf("presence.entries[%d]: %w", i, err)
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Address == "" {
			return fmt.Errorf("server.address must not be empty when server.enabled=true")
		}
		if c.Server.ReadTimeout <= 0 {
			return fmt.Errorf("server.read_timeout must be > 0")
		}
		if c.Server.WriteTimeout <= 0 {
			return fmt.Errorf("server.write_timeout must be > 0")
		}
		if c.Server.ShutdownTimeout <= 0 {
			return fmt.Errorf("server.shutdown_timeout must be > 0")
		}
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Tracing
	if c.Tracing.Enabled {
		if c.Tracing.ServiceName == "" {
			return fmt.Errorf("tracing.service_name must not be empty when tracing.enabled=true")
		}
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be between 0 and 1")
		}
	}

	return nil
}

func (e PresenceEntry) validate() error {
	if err := validation.ValidateActivityKind(e.Kind); err != nil {
		return err
	}
	if e.EndsAt != "" {
		if _, err := time.Parse(time.RFC3339, e.EndsAt); err != nil {
			return fmt.Errorf("ends_at must be RFC3339: %w", err)
		}
	}
	for i, b := range e.Buttons {
		if err := validation.ValidateButtonLabel(b.Label); err != nil {
			return fmt.Errorf("buttons[%d]: %w", i, err)
		}
		if err := validation.ValidateButtonURL(b.URL); err != nil {
			return fmt.Errorf("buttons[%d]: %w", i, err)
		}
	}
	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults. The application id
// has no default; it must come from the file or the environment.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Application.Name = "presencegate"

	cfg.Peer.Backend = "loopback"

	cfg.Presence.MinUpdateInterval = ratelimit.DefaultMinInterval
	cfg.Presence.TickInterval = 2 * time.Second
	cfg.Presence.RotationInterval = 60 * time.Second

	cfg.Server.Enabled = true
	cfg.Server.Address = "127.0.0.1:8090"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 10 * time.Second
	cfg.Server.ShutdownTimeout = 15 * time.Second

	// Rate limiting defaults (disabled by default)
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100

	cfg.Monitoring.PrometheusEnabled = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "presencegate"
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	// Apply environment variable overrides
	if id := os.Getenv("PRESENCEGATE_APPLICATION_ID"); id != "" {
		c.Application.ID = id
	}
	if token := os.Getenv("PRESENCEGATE_GATEWAY_TOKEN"); token != "" {
		c.Peer.Gateway.Token = token
	}
	if addr := os.Getenv("PRESENCEGATE_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("PRESENCEGATE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if interval := os.Getenv("PRESENCEGATE_MIN_UPDATE_INTERVAL"); interval != "" {
		c.Presence.MinUpdateInterval = utils.ParseDurationSafe(interval, c.Presence.MinUpdateInterval)
	}
}
