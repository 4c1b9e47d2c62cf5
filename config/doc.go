// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment, in that order of precedence from
// lowest to highest.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("routedemo", &cfg, config.WithConfigFile(path))
//
// When no file is given, config.yml is searched under ./cmd/<service>/,
// ./config/ and the working directory. Environment variables override file
// values using the ROUTEKIT_ prefix with underscore-separated paths
// (e.g., ROUTEKIT_DRIVER_MODE=poll sets driver.mode).
package config
