// Package validation validates configuration and input structs.
//
// Struct tag validation uses go-playground/validator. Field names in
// messages follow the mapstructure (or yaml) tag path, so they match the
// keys written in config files:
//
//	type StaticConfig struct {
//	    Root  string `mapstructure:"root" validate:"required"`
//	    Index string `mapstructure:"index" validate:"required"`
//	}
//	err := validation.ValidateStruct(cfg) // "static.root: is required"
//
// Programmatic checks collect errors the same way:
//
//	v := validation.New()
//	v.Range("server.port", port, 0, 65535)
//	err := v.Validate()
package validation
