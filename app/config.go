package app

import (
	"github.com/kbukum/depdep/config"
	"github.com/kbukum/depdep/observability"
	"github.com/kbukum/depdep/server"
	"github.com/kbukum/depdep/validation"
)

// ServiceName names the service for config discovery and logging.
const ServiceName = "static-server"

// StaticConfig locates the files being served.
type StaticConfig struct {
	Root string `yaml:"root" mapstructure:"root" validate:"required"`
}

// Config is the static server configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Server               server.Config        `yaml:"server" mapstructure:"server"`
	Static               StaticConfig         `yaml:"static" mapstructure:"static"`
	Observability        observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Static.Root == "" {
		c.Static.Root = "."
	}
}

// Validate validates every section and reports all failures together.
func (c *Config) Validate() error {
	v := validation.New().
		Merge("", validation.ValidateStruct(c)).
		Merge("server", c.Server.Validate()).
		Merge("observability", c.Observability.Validate())
	if err := c.Logging.Validate(); err != nil {
		v.AddError("logging", err.Error())
	}
	return v.Validate()
}

// LoadConfig loads, defaults and validates the configuration.
func LoadConfig(opts ...config.LoaderOption) (*Config, error) {
	var cfg Config
	if err := config.Load(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
