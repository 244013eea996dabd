// Package config loads runtime configuration for the aggregation
// pipeline from the environment, following the same getEnv-with-default
// shape the rest of this codebase has always used.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paper-app/research30/internal/domain"
)

// Load builds a domain.Config from the environment. It first loads
// ~/.config/research30/.env if present (without overriding variables
// already set in the process environment), then applies getEnv overrides
// on top of domain.DefaultConfig's built-in constants.
func Load() domain.Config {
	loadDotEnv(dotEnvPath())

	cfg := domain.DefaultConfig()
	cfg.NCBIAPIKey = getEnv("NCBI_API_KEY", "")
	cfg.S2APIKey = getEnv("S2_API_KEY", "")
	cfg.Debug = getEnvBool("RESEARCH30_DEBUG", false)
	cfg.ContactEmail = getEnv("RESEARCH30_CONTACT_EMAIL", "")

	if n := getEnvInt("RESEARCH30_MAX_RETRIES", 0); n > 0 {
		cfg.MaxRetries = n
	}
	if n := getEnvInt("RESEARCH30_OUTER_POOL_SIZE", 0); n > 0 {
		cfg.OuterPoolSize = n
	}
	return cfg
}

func dotEnvPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "research30", ".env")
}

// loadDotEnv parses simple KEY=VALUE lines, skipping blanks and
// "#"-comments, and trimming every leading and trailing quote character
// (single or double) from the value.
// Existing environment variables are never overwritten.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		if _, present := os.LookupEnv(key); !present {
			os.Setenv(key, value)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
