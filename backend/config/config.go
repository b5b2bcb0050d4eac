package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Shared secret for the identity provider's bearer tokens (HS256).
	JWTSecret string

	// Identity provider management API (role lookup and role grant).
	IdentityAPIURL string
	IdentityAPIKey string

	// Shared secret for identity lifecycle webhooks.
	WebhookSecret string

	// Object storage for course thumbnails.
	OSSEndpoint  string
	OSSBucket    string
	OSSAccessKey string
	OSSSecretKey string

	ServerPort string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "course_marketplace"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		IdentityAPIURL: getEnv("IDENTITY_API_URL", "https://api.identity.example.com/v1"),
		IdentityAPIKey: getEnv("IDENTITY_API_KEY", ""),
		WebhookSecret:  getEnv("WEBHOOK_SECRET", ""),
		OSSEndpoint:    getEnv("OSS_ENDPOINT", "oss-us-east-1.aliyuncs.com"),
		OSSBucket:      getEnv("OSS_BUCKET", "course-thumbnails"),
		OSSAccessKey:   getEnv("OSS_ACCESS_KEY", ""),
		OSSSecretKey:   getEnv("OSS_SECRET_KEY", ""),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
