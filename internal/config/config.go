package config

import (
	"errors"
	"fmt"
	"os"

	"miles/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App         AppConfig        `yaml:"app"`
	API         APIConfig        `yaml:"api"`
	Redis       RedisConfig      `yaml:"redis"`
	Resend      ResendConfig     `yaml:"resend"`
	Supabase    SupabaseConfig   `yaml:"supabase"`
	Booking     BookingConfig    `yaml:"booking"`
	Monitoring  MonitoringConfig `yaml:"monitoring"`
	Logging     LoggingConfig    `yaml:"logging"`
	Exports     ExportConfig     `yaml:"exports"`
	Experiences []models.Experience `yaml:"experiences"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// ResendConfig configures the transactional-email provider. None of the
// required fields have workable production defaults.
type ResendConfig struct {
	APIKey         string   `yaml:"api_key"`
	From           string   `yaml:"from"`
	To             string   `yaml:"to"`
	SandboxDomains []string `yaml:"sandbox_domains"`
}

type SupabaseConfig struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
}

type BookingConfig struct {
	// NotifyEndpoint is where the submission flow POSTs the payload.
	// Usually this service's own notification route.
	NotifyEndpoint    string `yaml:"notify_endpoint"`
	SessionTTLSeconds int    `yaml:"session_ttl_seconds"`
	MaxGuests         int    `yaml:"max_guests"`
	RateLimitRequests int    `yaml:"rate_limit_requests"`
	RateLimitWindow   int    `yaml:"rate_limit_window"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path            string `yaml:"path"`
	IntervalMinutes int    `yaml:"interval_minutes"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment may already be populated.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Resend.APIKey == "" {
		return errors.New("resend api key is required")
	}
	if c.Resend.From == "" || c.Resend.To == "" {
		return errors.New("resend from and to addresses are required")
	}
	if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
		return errors.New("supabase url and anon key are required")
	}
	return ValidateExperiences(c.Experiences)
}

func ValidateExperiences(experiences []models.Experience) error {
	seen := make(map[int64]bool)
	for _, exp := range experiences {
		if exp.ID == 0 {
			return fmt.Errorf("experience '%s' has invalid ID 0", exp.Title)
		}
		if seen[exp.ID] {
			return fmt.Errorf("duplicate experience ID found: %d", exp.ID)
		}
		seen[exp.ID] = true
		if exp.Price == "" {
			return fmt.Errorf("experience '%s' has no price", exp.Title)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Booking.NotifyEndpoint == "" {
		c.Booking.NotifyEndpoint = fmt.Sprintf("http://localhost:%d/api/v1/notifications/booking", c.API.HTTP.Port)
	}
	if c.Booking.SessionTTLSeconds == 0 {
		c.Booking.SessionTTLSeconds = models.DefaultSessionTTL
	}
	if c.Booking.MaxGuests == 0 {
		c.Booking.MaxGuests = models.MaxGuests
	}
	if c.Booking.RateLimitRequests == 0 {
		c.Booking.RateLimitRequests = 30
	}
	if c.Booking.RateLimitWindow == 0 {
		c.Booking.RateLimitWindow = 60
	}

	if len(c.Resend.SandboxDomains) == 0 {
		c.Resend.SandboxDomains = []string{"resend.dev"}
	}

	if c.Exports.IntervalMinutes == 0 {
		c.Exports.IntervalMinutes = 60
	}
}
