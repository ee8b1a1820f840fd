package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"webmaker-events-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Event{},
		&models.Tag{},
		&models.Coorganizer{},
		&models.Mentor{},
		&models.MentorRequest{},
		&models.CoorganizerRequest{},
		&models.Attendee{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addDatabaseConstraints(db)

	return nil
}

// addDatabaseConstraints enforces the per-event uniqueness invariants the
// application logic assumes. Failures are warnings because the constraints
// may already exist.
func addDatabaseConstraints(db *gorm.DB) {
	constraints := []string{
		// One co-organizer/mentor row per user per event
		"ALTER TABLE coorganizers ADD CONSTRAINT uk_coorganizers_event_user UNIQUE (event_id, user_id)",
		"ALTER TABLE mentors ADD CONSTRAINT uk_mentors_event_user UNIQUE (event_id, user_id)",
		// One attendance record per identity key per event
		"ALTER TABLE attendees ADD CONSTRAINT uk_attendees_event_user UNIQUE (event_id, user_id)",
		"ALTER TABLE attendees ADD CONSTRAINT uk_attendees_event_email UNIQUE (event_id, email)",
	}

	for _, constraint := range constraints {
		if err := db.Exec(constraint).Error; err != nil {
			log.Warn().Err(err).Msg("could not add constraint")
		}
	}
}

// SeedData populates a development database with sample events. Gated on
// the DEV flag by the caller; never run against production data.
func SeedData(db *gorm.DB) error {
	var eventCount int64
	db.Model(&models.Event{}).Count(&eventCount)

	if eventCount > 0 {
		log.Info().Msg("database already has data, skipping seed")
		return nil
	}

	cities := []struct {
		city    string
		country string
		lat     float64
		lng     float64
	}{
		{"Toronto", "Canada", 43.65, -79.38},
		{"London", "United Kingdom", 51.5, -0.12},
		{"Nairobi", "Kenya", -1.28, 36.82},
		{"Pune", "India", 18.52, 73.85},
		{"Portland", "United States", 45.52, -122.68},
	}
	sampleTags := [][]string{
		{"webmaker", "html"},
		{"javascript", "teaching"},
		{"css", "beginner"},
		{"maker-party"},
		{"appmaker", "mobile"},
	}

	for i, c := range cities {
		begin := time.Now().AddDate(0, 0, 7*(i+1))
		end := begin.Add(3 * time.Hour)
		lat, lng := c.lat, c.lng

		event := models.Event{
			Title:              fmt.Sprintf("Maker Party %s", c.city),
			Description:        "A hands-on webmaking event for the local community.",
			Address:            fmt.Sprintf("123 Example Street, %s", c.city),
			City:               c.city,
			Country:            c.country,
			Latitude:           &lat,
			Longitude:          &lng,
			EstimatedAttendees: 20 + 10*i,
			AgeGroup:           models.AgeGroups[i%len(models.AgeGroups)],
			SkillLevel:         models.SkillLevels[i%len(models.SkillLevels)],
			BeginDate:          &begin,
			EndDate:            &end,
			Organizer:          fmt.Sprintf("organizer%d@example.com", i+1),
			OrganizerID:        fmt.Sprintf("organizer%d", i+1),
			IsEventPublic:      true,
			AreAttendeesPublic: i%2 == 0,
		}
		if err := db.Create(&event).Error; err != nil {
			log.Warn().Err(err).Str("title", event.Title).Msg("could not create seed event")
			continue
		}

		for _, name := range sampleTags[i%len(sampleTags)] {
			tag := models.Tag{Name: name}
			db.Where(models.Tag{Name: name}).FirstOrCreate(&tag)
			db.Model(&event).Association("Tags").Append(&tag)
		}
	}

	log.Info().Msg("database seeded with sample events")
	return nil
}
