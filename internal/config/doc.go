// Package config provides configuration management for catpost.
//
// # Configuration Sources
//
// Configuration is assembled in layers, later layers winning:
//
//	1. Default values (Default)
//	2. A YAML file (catpost.yaml, config.yaml or configs/catpost.yaml, or an explicit path)
//	3. Environment variables (highest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CATPOST_<SECTION>_<FIELD>:
//
//	CATPOST_LOGGING_LEVEL=debug
//	CATPOST_TRANSFORM_RIN=fin
//	CATPOST_FORMULA_ALIASES=aliases.yaml
//	CATPOST_TELEMETRY_METRICS=true
//	CATPOST_WORKERS=8
//
// # Validation
//
// The assembled configuration is validated with go-playground/validator;
// every violated constraint is reported in a single ConfigError.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
