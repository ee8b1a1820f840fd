package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"webmaker-events-api/models"
	"webmaker-events-api/services"
)

// ReminderJob periodically sends attendee reminders for events starting
// within 24 hours and follow-up emails to hosts the day after their event.
type ReminderJob struct {
	db     *gorm.DB
	users  services.IdentityClient
	emails *services.EmailService
	ticker *time.Ticker
	done   chan bool
}

func NewReminderJob(db *gorm.DB, users services.IdentityClient, emails *services.EmailService, interval time.Duration) *ReminderJob {
	return &ReminderJob{
		db:     db,
		users:  users,
		emails: emails,
		ticker: time.NewTicker(interval),
		done:   make(chan bool),
	}
}

func (j *ReminderJob) Start() {
	log.Info().Msg("event reminder job started")

	go func() {
		j.run()

		for {
			select {
			case <-j.ticker.C:
				j.run()
			case <-j.done:
				return
			}
		}
	}()
}

func (j *ReminderJob) Stop() {
	j.ticker.Stop()
	j.done <- true
	log.Info().Msg("event reminder job stopped")
}

func (j *ReminderJob) run() {
	ctx := context.Background()
	j.remindAttendees(ctx)
	j.emailHosts(ctx)
}

// remindAttendees mails every registered RSVP for events beginning within
// the next day. Reminders for deleted accounts are marked sent so the job
// does not retry them forever.
func (j *ReminderJob) remindAttendees(ctx context.Context) {
	tomorrow := time.Now().AddDate(0, 0, 1)

	var attendees []models.Attendee
	err := j.db.
		Joins("JOIN events ON events.id = attendees.event_id").
		Where("events.begin_date IS NOT NULL AND events.begin_date <= ?", tomorrow).
		Where("attendees.did_rsvp = ?", true).
		Where("attendees.sent_event_reminder = ?", false).
		Where("attendees.user_id IS NOT NULL").
		Find(&attendees).Error
	if err != nil {
		log.Error().Str("origin", "datastore").Err(err).Msg("reminder query failed")
		return
	}
	if len(attendees) == 0 {
		return
	}

	ids := make([]int64, 0, len(attendees))
	for _, a := range attendees {
		ids = append(ids, *a.UserID)
	}
	accounts, err := j.users.ByIDs(ctx, ids)
	if err != nil {
		log.Error().Str("origin", "identity-service").Err(err).Msg("reminder lookup failed")
		return
	}

	for _, attendee := range attendees {
		var event models.Event
		if err := j.db.First(&event, attendee.EventID).Error; err != nil {
			log.Error().Str("origin", "datastore").Err(err).Uint("event", attendee.EventID).
				Msg("reminder event load failed")
			continue
		}

		if account, ok := accounts[*attendee.UserID]; ok {
			if err := j.emails.AttendeeReminder(account, &event); err != nil {
				log.Error().Str("origin", "notification-dispatcher").Err(err).
					Int64("user", account.ID).Msg("reminder send failed")
				continue
			}
		}

		err := j.db.Model(&models.Attendee{}).Where("id = ?", attendee.ID).
			Update("sent_event_reminder", true).Error
		if err != nil {
			log.Error().Str("origin", "datastore").Err(err).Msg("reminder flag update failed")
		}
	}
}

// emailHosts sends the day-after follow-up to organizers of finished
// events.
func (j *ReminderJob) emailHosts(ctx context.Context) {
	yesterday := time.Now().AddDate(0, 0, -1)

	var events []models.Event
	err := j.db.
		Where("begin_date IS NOT NULL AND begin_date <= ?", yesterday).
		Where("sent_post_event_email_to_host = ?", false).
		Find(&events).Error
	if err != nil {
		log.Error().Str("origin", "datastore").Err(err).Msg("post-event query failed")
		return
	}

	for i := range events {
		event := &events[i]

		account, err := j.users.ByEmail(ctx, event.Organizer)
		if err != nil {
			log.Error().Str("origin", "identity-service").Err(err).
				Str("organizer", event.Organizer).Msg("post-event lookup failed")
			continue
		}

		// account == nil means the host deleted their account; mark the
		// email sent and move on.
		if account != nil {
			if err := j.emails.PostEventHost(*account, event); err != nil {
				log.Error().Str("origin", "notification-dispatcher").Err(err).
					Str("organizer", event.Organizer).Msg("post-event send failed")
				continue
			}
		}

		err = j.db.Model(event).Update("sent_post_event_email_to_host", true).Error
		if err != nil {
			log.Error().Str("origin", "datastore").Err(err).Msg("post-event flag update failed")
		}
	}
}
