package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

var AppEnv Config

type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	Store       string
	GinMode     string
	CORSOrigins []string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	store := strings.ToLower(getEnvOrDefault("STORE", StoreMongo))
	if store != StoreMemory {
		store = StoreMongo
	}

	return Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		MongoURI:    getEnvOrDefault("MONGO_URI", ""),
		DBName:      getEnvOrDefault("DB_NAME", "favorites"),
		Store:       store,
		GinMode:     getEnvOrDefault("GIN_MODE", ""),
		CORSOrigins: getListEnv("CORS_ORIGINS"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getListEnv(key string) []string {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
