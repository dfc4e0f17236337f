// Package config loads service configuration.
//
// It uses Viper to read a YAML config file, overlays values from a .env
// file (parsed with godotenv) and from the process environment, and
// unmarshals the result into a struct using mapstructure tags. All file
// access goes through an afero.Fs, so tests can load from memory.
//
// # Usage
//
//	var cfg MyConfig
//	err := config.Load("static-server", &cfg, config.WithConfigFile("config.yml"))
//
// Every leaf key of cfg can be overridden by an environment variable named
// after its dotted path, upper-cased with underscores: server.port is read
// from SERVER_PORT (or PREFIX_SERVER_PORT with WithEnvPrefix). Process
// environment wins over .env, which wins over the config file.
package config
