package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"webmaker-events-api/config"
	"webmaker-events-api/models"
	"webmaker-events-api/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see a different in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Event{},
		&models.Tag{},
		&models.Coorganizer{},
		&models.Mentor{},
		&models.MentorRequest{},
		&models.CoorganizerRequest{},
		&models.Attendee{},
	))

	return db
}

// emptyIdentity resolves nobody, standing in for accounts that were deleted
// after RSVPing.
type emptyIdentity struct{}

func (emptyIdentity) ByIDs(context.Context, []int64) (map[int64]services.UserAccount, error) {
	return map[int64]services.UserAccount{}, nil
}

func (emptyIdentity) ByEmail(context.Context, string) (*services.UserAccount, error) {
	return nil, nil
}

func (emptyIdentity) ByUsername(context.Context, string) (*services.UserAccount, error) {
	return nil, nil
}

func newTestJob(db *gorm.DB) *ReminderJob {
	return NewReminderJob(db, emptyIdentity{}, services.NewEmailService(&config.Config{}), time.Hour)
}

func TestRemindAttendeesMarksDeletedAccounts(t *testing.T) {
	db := newTestDB(t)

	soon := time.Now().Add(12 * time.Hour)
	event := models.Event{Title: "Soon", Description: "x", BeginDate: &soon}
	require.NoError(t, db.Create(&event).Error)

	userID := int64(7)
	attendee := models.Attendee{EventID: event.ID, UserID: &userID, DidRSVP: true}
	require.NoError(t, db.Create(&attendee).Error)

	job := newTestJob(db)
	job.remindAttendees(context.Background())

	var reloaded models.Attendee
	require.NoError(t, db.First(&reloaded, attendee.ID).Error)
	assert.True(t, reloaded.SentEventReminder,
		"a reminder for a deleted account is marked sent so the job stops retrying")
}

func TestRemindAttendeesSkipsDistantEvents(t *testing.T) {
	db := newTestDB(t)

	later := time.Now().AddDate(0, 0, 14)
	event := models.Event{Title: "Later", Description: "x", BeginDate: &later}
	require.NoError(t, db.Create(&event).Error)

	userID := int64(7)
	attendee := models.Attendee{EventID: event.ID, UserID: &userID, DidRSVP: true}
	require.NoError(t, db.Create(&attendee).Error)

	job := newTestJob(db)
	job.remindAttendees(context.Background())

	var reloaded models.Attendee
	require.NoError(t, db.First(&reloaded, attendee.ID).Error)
	assert.False(t, reloaded.SentEventReminder)
}

func TestRemindAttendeesSkipsNonRSVPs(t *testing.T) {
	db := newTestDB(t)

	soon := time.Now().Add(12 * time.Hour)
	event := models.Event{Title: "Soon", Description: "x", BeginDate: &soon}
	require.NoError(t, db.Create(&event).Error)

	userID := int64(7)
	attendee := models.Attendee{EventID: event.ID, UserID: &userID, DidRSVP: false}
	require.NoError(t, db.Create(&attendee).Error)

	job := newTestJob(db)
	job.remindAttendees(context.Background())

	var reloaded models.Attendee
	require.NoError(t, db.First(&reloaded, attendee.ID).Error)
	assert.False(t, reloaded.SentEventReminder)
}

func TestEmailHostsMarksFinishedEvents(t *testing.T) {
	db := newTestDB(t)

	past := time.Now().AddDate(0, 0, -2)
	future := time.Now().AddDate(0, 0, 5)
	finished := models.Event{Title: "Finished", Description: "x", BeginDate: &past,
		Organizer: "gone@example.com"}
	upcoming := models.Event{Title: "Upcoming", Description: "x", BeginDate: &future,
		Organizer: "host@example.com"}
	require.NoError(t, db.Create(&finished).Error)
	require.NoError(t, db.Create(&upcoming).Error)

	job := newTestJob(db)
	job.emailHosts(context.Background())

	// Fresh destination structs: a stale primary key left in the struct
	// would become an extra query condition.
	var reloadedFinished, reloadedUpcoming models.Event
	require.NoError(t, db.First(&reloadedFinished, finished.ID).Error)
	assert.True(t, reloadedFinished.SentPostEventEmailToHost)

	require.NoError(t, db.First(&reloadedUpcoming, upcoming.ID).Error)
	assert.False(t, reloadedUpcoming.SentPostEventEmailToHost)
}
