// Package config loads server settings from the environment.
package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Config is the server's environment-driven configuration. Command-line
// flags in cmd/server override Port and DatabasePath.
type Config struct {
	Port            string
	DatabasePath    string
	Timezone        string
	LateAfternoon   string
	StaffConfigPath string
	LogLevel        string
}

// Load reads configuration from the environment with clinic defaults.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		DatabasePath:    getEnv("DATABASE_PATH", "./rme_system.db"),
		Timezone:        getEnv("CLINIC_TIMEZONE", "Asia/Jakarta"),
		LateAfternoon:   getEnv("LATE_AFTERNOON_STAFF", ""),
		StaffConfigPath: getEnv("STAFF_CONFIG_PATH", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// SetupLogging configures logrus with a JSON formatter and the level
// from LOG_LEVEL.
func (c *Config) SetupLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	switch c.LogLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
