package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"webmaker-events-api/config"
	"webmaker-events-api/database"
	"webmaker-events-api/jobs"
	"webmaker-events-api/routes"
	"webmaker-events-api/services"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if cfg.Dev {
		gin.SetMode(gin.DebugMode)
		if err := database.SeedData(db); err != nil {
			log.Warn().Err(err).Msg("failed to seed database")
		}
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	users := services.NewLoginClient(cfg.LoginURL, cfg.LoginSecret)
	emails := services.NewEmailService(cfg)

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	routes.SetupRoutes(router, db, cfg, users, emails, cache)

	reminderJob := jobs.NewReminderJob(db, users, emails, time.Hour)
	reminderJob.Start()
	defer reminderJob.Stop()

	log.Info().Str("port", cfg.Port).Msg("starting Webmaker Events service")

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
