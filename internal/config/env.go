package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads optional .env files from the working directory.
// Order: .env, then .env.<env>, then .env.local; later files override earlier ones.
// Variables already present in the process environment win over .env.
func LoadEnvFiles(env string) error {
	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if env != "" {
		envFile := fmt.Sprintf(".env.%s", env)
		if fileExists(envFile) {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if fileExists(".env.local") {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}
	return nil
}

// Credentials returns the CHAOS login, preferring the config file over AAISP_USERNAME / AAISP_PASSWORD.
func (c ChaosConfig) Credentials() (username, password string) {
	username, password = c.Username, c.Password
	if username == "" {
		username = os.Getenv("AAISP_USERNAME")
	}
	if password == "" {
		password = os.Getenv("AAISP_PASSWORD")
	}
	return username, password
}
