package satchel

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the connection settings for a store. Host is a
// connection URI whose scheme selects the driver; User and Password
// are optional credentials.
type Config struct {
	Host     string
	User     string
	Password string
}

// ConfigFromEnv builds a Config from the SATCHEL_HOST, SATCHEL_USER and
// SATCHEL_PASSWORD environment variables. A .env file in the working
// directory is loaded first, if present.
func ConfigFromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Host:     os.Getenv("SATCHEL_HOST"),
		User:     os.Getenv("SATCHEL_USER"),
		Password: os.Getenv("SATCHEL_PASSWORD"),
	}
}

func (c Config) validate() error {
	if c.Host == "" {
		return &ConfigError{Reason: "missing host"}
	}
	if c.scheme() == "" {
		return &ConfigError{Reason: fmt.Sprintf("host %q carries no uri scheme", c.Host)}
	}
	return nil
}

func (c Config) scheme() string {
	idx := strings.Index(c.Host, "://")
	if idx <= 0 {
		return ""
	}
	return c.Host[:idx]
}
