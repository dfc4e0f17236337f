package observability

import (
	"time"

	"github.com/kbukum/depdep/validation"
)

// Config enables and configures OTLP export.
type Config struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"` // host:port of the OTLP HTTP receiver
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"` // metric export interval
}

// Service describes the service in exported resources.
type Service struct {
	Name        string
	Version     string
	Environment string
}

// ApplyDefaults fills unset fields. A SampleRate of 0 counts as unset.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Validate checks the configuration when export is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.New().
		Required("observability.endpoint", c.Endpoint).
		Custom(c.SampleRate >= 0 && c.SampleRate <= 1, "observability.sample_rate", "must be between 0 and 1").
		Custom(c.Interval >= 0, "observability.interval", "must be non-negative").
		Validate()
}

// TracerConfig returns the tracer settings for svc.
func (c *Config) TracerConfig(svc Service) TracerConfig {
	return TracerConfig{
		ServiceName:    svc.Name,
		ServiceVersion: svc.Version,
		Environment:    svc.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.SampleRate,
	}
}

// MeterConfig returns the meter settings for svc.
func (c *Config) MeterConfig(svc Service) MeterConfig {
	return MeterConfig{
		ServiceName:    svc.Name,
		ServiceVersion: svc.Version,
		Environment:    svc.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		Interval:       c.Interval,
	}
}
