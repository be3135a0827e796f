// Package config loads application settings from defaults, a YAML file, the
// environment and an optional .env file.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	once      sync.Once
	loadedEnv string
)

// LoadEnv loads environment variables from the first .env file found in the
// working directory or its parent. Variables already set are not replaced.
// It returns the file loaded, or an empty string when there was none.
func LoadEnv() string {
	once.Do(func() {
		for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
			if _, err := os.Stat(envFile); err != nil {
				continue
			}
			if err := godotenv.Load(envFile); err == nil {
				loadedEnv = envFile
			}
			return
		}
	})
	return loadedEnv
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
