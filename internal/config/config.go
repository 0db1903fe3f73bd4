package config

import (
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Corpus files consumed at startup to build the similarity index.
	IntentsPath        string
	QADatasetPath      string
	HealthcareInfoPath string

	// Similarity thresholds. Intents are short scripted phrases and need a
	// stricter bar than the longer QA pairs.
	IntentThreshold float64
	QAThreshold     float64

	DatabasePath string

	RedisAddr     string
	RedisPassword string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		IntentsPath:        getEnv("INTENTS_PATH", "data/intents.json"),
		QADatasetPath:      getEnv("QA_DATASET_PATH", "data/qa_dataset.csv"),
		HealthcareInfoPath: getEnv("HEALTHCARE_INFO_PATH", "data/healthcare_info.csv"),

		IntentThreshold: getEnvAsFloat("INTENT_SIMILARITY_THRESHOLD", 0.25),
		QAThreshold:     getEnvAsFloat("QA_SIMILARITY_THRESHOLD", 0.2),

		DatabasePath: getEnv("DATABASE_PATH", "healthcare_bookings.db"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
