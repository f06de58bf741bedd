package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration
type Config struct {
	Port           string
	MetricsPort    string
	EnableTLS      bool
	CertFile       string
	KeyFile        string
	EnableCORS     bool
	LogRequests    bool
	LogFile        string
	LogFormat      string
	LogLevel       string
	LoopInterval   time.Duration
	HaiStep        uint64
	ErrorRate      float64
	SimulatedAPIs  []string
	SSEInterval    time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	ConfigFile     string
	Hostname       string
}

// LoopFile is the optional YAML overlay for the telemetry loop settings.
type LoopFile struct {
	Interval  string   `yaml:"interval" json:"interval"`
	HaiStep   *uint64  `yaml:"hai_step" json:"hai_step"`
	ErrorRate *float64 `yaml:"error_rate" json:"error_rate"`
	APIs      []string `yaml:"apis" json:"apis"`
}

// loadConfigFromEnv builds a Config from environment variables. Malformed
// loop settings are reported rather than replaced by zero values.
func loadConfigFromEnv() (Config, error) {
	var errs []error
	haiStep, err := strconv.ParseUint(getEnv("HAI_STEP", "20"), 10, 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("HAI_STEP: %w", err))
	}
	errorRate, err := strconv.ParseFloat(getEnv("ERROR_RATE", "0.3"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("ERROR_RATE: %w", err))
	}

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		MetricsPort:    getEnv("METRICS_PORT", "8000"),
		EnableTLS:      getEnv("ENABLE_TLS", "false") == "true",
		CertFile:       getEnv("CERT_FILE", "server.crt"),
		KeyFile:        getEnv("KEY_FILE", "server.key"),
		EnableCORS:     getEnv("ENABLE_CORS", "true") == "true",
		LogRequests:    getEnv("LOG_REQUESTS", "true") == "true",
		LogFile:        getEnv("LOG_FILE", "/var/log/telemetry-demo.log"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LoopInterval:   parseDuration(getEnv("LOOP_INTERVAL", "20s")),
		HaiStep:        haiStep,
		ErrorRate:      errorRate,
		SimulatedAPIs:  splitList(getEnv("SIMULATED_APIS", "API_A,API_B,API_C")),
		SSEInterval:    parseDuration(getEnv("SSE_INTERVAL", "5s")),
		RateLimitRPS:   parseFloat64(getEnv("RATE_LIMIT_RPS", "0")),
		RateLimitBurst: int(parseInt64(getEnv("RATE_LIMIT_BURST", "0"))),
		ConfigFile:     getEnv("CONFIG_FILE", ""),
	}
	return cfg, errors.Join(errs...)
}

// applyLoopFile overlays the loop settings found in a YAML file. Fields
// absent from the file keep their current values.
func (c *Config) applyLoopFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var lf LoopFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if lf.Interval != "" {
		d, err := time.ParseDuration(lf.Interval)
		if err != nil {
			return fmt.Errorf("parse interval %q: %w", lf.Interval, err)
		}
		c.LoopInterval = d
	}
	if lf.HaiStep != nil {
		c.HaiStep = *lf.HaiStep
	}
	if lf.ErrorRate != nil {
		c.ErrorRate = *lf.ErrorRate
	}
	if len(lf.APIs) > 0 {
		c.SimulatedAPIs = lf.APIs
	}
	return nil
}

// Validate reports the first setting that would make the service misbehave.
func (c Config) Validate() error {
	switch {
	case c.LoopInterval <= 0:
		return errors.New("loop interval must be positive")
	case c.HaiStep == 0:
		return errors.New("hai step must be positive")
	case !(c.ErrorRate >= 0 && c.ErrorRate <= 1):
		return fmt.Errorf("error rate %v outside [0,1]", c.ErrorRate)
	case len(c.SimulatedAPIs) == 0:
		return errors.New("at least one simulated API is required")
	case c.Port == c.MetricsPort:
		return fmt.Errorf("application and metrics listeners share port %s", c.Port)
	case c.SSEInterval <= 0:
		return errors.New("stream interval must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64(s string) int64 {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return 0
}

func parseFloat64(s string) float64 {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}

func parseDuration(s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
