package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the environment variable value or a fallback if unset.
func GetEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// EnvInt reads an int environment variable, falling back when unset or malformed.
func EnvInt(key string, fallback int) int {
	return ParseInt(os.Getenv(key), fallback)
}

// EnvDuration reads a duration environment variable (e.g. "1500ms").
func EnvDuration(key string, fallback time.Duration) time.Duration {
	return ParseDuration(os.Getenv(key), fallback)
}

// EnvBool reads a boolean environment variable. "1", "true", "yes" and "on" are true.
func EnvBool(key string, fallback bool) bool {
	return ParseBool(os.Getenv(key), fallback)
}

// ParseDuration parses a duration string with a fallback.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// ParseInt parses an int string with a fallback.
func ParseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// ParseBool parses a loose boolean string with a fallback.
func ParseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// SplitList splits a comma-separated list, dropping blank entries.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
