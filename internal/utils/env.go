package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envParsed returns parse(value) for a set variable, or fallback when the
// variable is blank or does not parse.
func envParsed[T any](key string, fallback T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	out, err := parse(v)
	if err != nil {
		return fallback
	}
	return out
}

func GetEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	return envParsed(key, fallback, strconv.Atoi)
}

func GetEnvInt64(key string, fallback int64) int64 {
	return envParsed(key, fallback, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func GetEnvBool(key string, fallback bool) bool {
	return envParsed(key, fallback, strconv.ParseBool)
}

// GetEnvSeconds reads a whole number of seconds.
func GetEnvSeconds(key string, fallback time.Duration) time.Duration {
	return envParsed(key, fallback, func(s string) (time.Duration, error) {
		n, err := strconv.Atoi(s)
		return time.Duration(n) * time.Second, err
	})
}
