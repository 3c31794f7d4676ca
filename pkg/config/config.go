package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production"`

	Server struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
		// Aggregated warn/error entries are shipped to Kafka when kafka.brokers is set.
		CollectInterval time.Duration `yaml:"collect_interval" default:"30s"`
		CollectTopic    string        `yaml:"collect_topic" default:"filinglens.logs"`
	} `yaml:"log"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	// Engine is the remote analytics service that computes every aggregate.
	Engine struct {
		BaseURL       string        `yaml:"base_url" default:"http://localhost:8000" validate:"required,url"`
		Timeout       time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
		QueryTimeout  time.Duration `yaml:"query_timeout" default:"45s" validate:"gt=0"`
		HistogramBins int           `yaml:"histogram_bins" default:"50" validate:"gte=1,lte=500"`
		VolCutoff     float64       `yaml:"vol_cutoff" default:"100" validate:"gt=0"`
		RateLimit     struct {
			RPS   float64 `yaml:"rps" default:"20" validate:"gt=0"`
			Burst int     `yaml:"burst" default:"8" validate:"gte=1"`
		} `yaml:"rate_limit"`
		Breaker struct {
			Enabled             bool          `yaml:"enabled" default:"true"`
			ConsecutiveFailures uint32        `yaml:"consecutive_failures" default:"5" validate:"gte=1"`
			OpenTimeout         time.Duration `yaml:"open_timeout" default:"30s"`
		} `yaml:"breaker"`
	} `yaml:"engine"`

	// Cache holds read-only engine responses keyed by the exact request.
	Cache struct {
		Enabled       bool          `yaml:"enabled" default:"true"`
		Backend       string        `yaml:"backend" default:"memory" validate:"oneof=memory layered"`
		TTL           time.Duration `yaml:"ttl" default:"2m"`
		BoundsTTL     time.Duration `yaml:"bounds_ttl" default:"10m"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"512" validate:"gte=1"`
		Redis         struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"filinglens"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	// Kafka receives dashboard events. Disabled when brokers is empty.
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"filinglens.dashboard.events"`
		RequiredAcks int           `yaml:"required_acks" default:"1" validate:"oneof=-1 0 1"`
		Compression  string        `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
		Async        bool          `yaml:"async" default:"true"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
	} `yaml:"kafka"`
}

var validate = validator.New()

// Default returns a config populated purely from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML file over the struct defaults and validates the result.
// A missing file is not an error: the defaults describe a local setup.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ENGINE_URL"); v != "" {
		c.Engine.BaseURL = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, err := splitHostPort(v)
		if err != nil {
			return nil, fmt.Errorf("REDIS_ADDR: %w", err)
		}
		c.Cache.Redis.Host, c.Cache.Redis.Port = host, port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks struct tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// KafkaEnabled reports whether any broker is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func splitHostPort(addr string) (string, int, error) {
	i := strings.LastIndex(addr, ":")
	if i <= 0 || i == len(addr)-1 {
		return "", 0, fmt.Errorf("want host:port, got %q", addr)
	}
	port, err := strconv.Atoi(addr[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("port: %w", err)
	}
	return addr[:i], port, nil
}
