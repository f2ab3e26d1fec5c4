// Package config loads typed configuration structs from environment
// variables, with optional .env support for local development.
//
// Configuration structs declare their variables via struct tags understood
// by github.com/caarlos0/env:
//
//	type DatabaseConfig struct {
//		ConnString string `env:"DATABASE_URL,required"`
//		MaxConns   int32  `env:"DB_MAX_CONNS" envDefault:"10"`
//	}
//
// Values are parsed once per config type and cached for the lifetime of the
// process, so independent components can load the same config cheaply.
package config
