package config

import "errors"

const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
	EnvironmentTest        = "test"
)

const (
	DefaultProductionURL = "https://64.225.85.94.nip.io"
	DefaultConcurrency   = 4
	DefaultProxyHost     = "localhost"
	DefaultProxyPort     = 5173
	DefaultProxyPrefix   = "/api"
)

var (
	ErrInvalidEnvironment = errors.New("invalid environment")
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrInvalidProxyPrefix = errors.New("proxy prefix must start with '/'")
)
