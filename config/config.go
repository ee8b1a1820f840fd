package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	Dev         bool

	// External identity (login) service
	LoginURL    string
	LoginSecret string

	// Flickr photo search proxy
	FlickrAPIKey string

	// Optional redis cache for tag suggestions
	RedisAddr string

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

func Load() *Config {
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "2525"))
	dev, _ := strconv.ParseBool(getEnv("DEV", "false"))

	return &Config{
		Port:        getEnv("PORT", "1989"),
		DatabaseURL: getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/webmaker_events?charset=utf8mb4&parseTime=True&loc=Local"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),
		Dev:         dev,

		LoginURL:    getEnv("LOGIN_URL", "http://localhost:3000"),
		LoginSecret: getEnv("LOGIN_SECRET", ""),

		FlickrAPIKey: getEnv("FLICKR_API_KEY", ""),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		// Email settings
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     smtpPort,
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "events@webmaker.org"),
		FromName:     getEnv("FROM_NAME", "Webmaker Events"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
