package services

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"webmaker-events-api/config"
	"webmaker-events-api/models"
)

// Notifier dispatches event lifecycle notifications. Delivery mechanics
// live behind this interface so controllers only decide when to notify.
type Notifier interface {
	EventCreated(user UserAccount, event *models.Event)
	EventDeleted(user UserAccount, event *models.Event)
}

// EmailService sends lifecycle and reminder emails over SMTP.
type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// EventCreated emails the organizer a confirmation. Lifecycle mails are
// fire-and-forget: a dispatcher failure is logged, never surfaced to the
// request that triggered it.
func (es *EmailService) EventCreated(user UserAccount, event *models.Event) {
	if !user.SendEventCreationEmails {
		return
	}

	body := fmt.Sprintf(`%s
        <h2>Hi %s,</h2>
        <p>Your event <strong>%s</strong> has been created.</p>
        <p>Manage it any time at <a href="%s">%s</a>.</p>
%s`, emailHeader, user.Username, event.Title, event.EventURL(), event.EventURL(), emailFooter)

	es.sendAsync(user.Email, "Your Webmaker event was created", body)
}

// EventDeleted emails the organizer an audit notice carrying their
// identity.
func (es *EmailService) EventDeleted(user UserAccount, event *models.Event) {
	body := fmt.Sprintf(`%s
        <h2>Hi %s,</h2>
        <p>Your event <strong>%s</strong> has been deleted.</p>
        <p>If you didn't do this, contact the Webmaker team.</p>
%s`, emailHeader, user.Username, event.Title, emailFooter)

	es.sendAsync(user.Email, "Your Webmaker event was deleted", body)
}

// AttendeeReminder tells an RSVP'd attendee their event starts within a
// day. Called from the reminder job, which wants the error back.
func (es *EmailService) AttendeeReminder(user UserAccount, event *models.Event) error {
	body := fmt.Sprintf(`%s
        <h2>Hi %s,</h2>
        <p><strong>%s</strong> is happening in the next 24 hours.</p>
        <p>Details: <a href="%s">%s</a></p>
%s`, emailHeader, user.Username, event.Title, event.EventURL(), event.EventURL(), emailFooter)

	return es.send(user.Email, "Reminder: your event starts soon", body)
}

// PostEventHost is the day-after follow-up to the event host.
func (es *EmailService) PostEventHost(user UserAccount, event *models.Event) error {
	body := fmt.Sprintf(`%s
        <h2>Hi %s,</h2>
        <p>Thanks for hosting <strong>%s</strong>!</p>
        <p>Tell us how it went, and don't forget to check in your attendees.</p>
%s`, emailHeader, user.Username, event.Title, emailFooter)

	return es.send(user.Email, "How did your event go?", body)
}

func (es *EmailService) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	return es.dialer.DialAndSend(m)
}

func (es *EmailService) sendAsync(to, subject, htmlBody string) {
	go func() {
		if err := es.send(to, subject, htmlBody); err != nil {
			log.Error().Str("origin", "notification-dispatcher").Err(err).
				Str("to", to).Msg("failed to send lifecycle email")
		}
	}()
}

const emailHeader = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 8px; }
        a { color: #0095dd; }
    </style>
</head>
<body>
    <div class="container">
      <div class="content">`

const emailFooter = `
      </div>
      <p style="text-align:center;color:#666;font-size:13px;">Webmaker Events</p>
    </div>
</body>
</html>`
