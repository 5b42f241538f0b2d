// Package config reads configuration from the environment with
// fallbacks; .env loading happens in the binaries.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Get returns the environment value for key, or fallback when unset
// or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetInt parses an integer environment value, or returns fallback.
func GetInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GetDuration parses a duration environment value, or returns fallback.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
