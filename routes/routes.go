package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"webmaker-events-api/config"
	"webmaker-events-api/controllers"
	"webmaker-events-api/middleware"
	"webmaker-events-api/services"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config,
	users services.IdentityClient, notifier services.Notifier, cache *redis.Client) {

	eventController := controllers.NewEventController(db, users, notifier)
	tagController := controllers.NewTagController(db, cache)
	attendeeController := controllers.NewAttendeeController(db, users)
	confirmationController := controllers.NewConfirmationController(db, users)
	flickrController := controllers.NewFlickrController(db, cfg.FlickrAPIKey)

	r.Use(SetupCORS())
	r.Use(middleware.DevAdmin(cfg.Dev))

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Webmaker Events Service is up and running")
	})
	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(200, gin.H{"http": "okay"})
	})

	optional := middleware.OptionalAuth(cfg.JWTSecret)
	required := middleware.AuthMiddleware(cfg.JWTSecret)
	listLimit := middleware.RateLimit(120, 30)

	// Read endpoints: anonymous callers get the public view, privileged
	// sessions get the full one.
	r.GET("/events", optional, listLimit, eventController.GetEvents)
	r.GET("/events/:id", optional, eventController.GetEvent)
	r.GET("/events/:id/related", optional, eventController.GetRelatedEvents)
	r.GET("/events/:id/flickr", flickrController.GetEventPhotos)
	r.GET("/events/:id/attendees", optional, attendeeController.GetEventAttendees)
	r.GET("/tags", listLimit, tagController.GetTags)
	r.GET("/verify/token/:token", confirmationController.VerifyToken)

	// Protected routes
	r.POST("/events", required, eventController.CreateEvent)
	r.PUT("/events/:id", required, eventController.UpdateEvent)
	r.DELETE("/events/:id", required, eventController.DeleteEvent)
	r.POST("/confirm/mentor/:token", required, confirmationController.ConfirmMentor)
	r.POST("/attendees", required, attendeeController.UpsertAttendee)
	r.GET("/attendees/user/:id", required, attendeeController.GetUserAttendance)
}
