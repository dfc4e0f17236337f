package server

import (
	"time"

	"github.com/kbukum/depdep/validation"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	H2C          bool   `yaml:"h2c" mapstructure:"h2c"`                     // serve HTTP/2 cleartext too
}

// ApplyDefaults sets sensible default values for unset fields.
// Port 0 is kept: it asks the kernel for a free port.
func (c *Config) ApplyDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.New().
		Range("server.port", c.Port, 0, 65535).
		Custom(c.ReadTimeout >= 0, "server.read_timeout", "must be non-negative").
		Custom(c.WriteTimeout >= 0, "server.write_timeout", "must be non-negative").
		Custom(c.IdleTimeout >= 0, "server.idle_timeout", "must be non-negative").
		Validate()
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
