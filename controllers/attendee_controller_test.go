package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webmaker-events-api/models"
	"webmaker-events-api/services"
)

func TestGetEventAttendeesHiddenByDefault(t *testing.T) {
	db, _, _, router := setupServer(t)

	event := seedEvent(t, db, models.Event{
		Title: "Closed", IsEventPublic: true, AreAttendeesPublic: false,
	})

	w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/events/%d/attendees", event.ID), "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetEventAttendeesPublicList(t *testing.T) {
	db, identity, _, router := setupServer(t)

	identity.accounts[7] = services.UserAccount{ID: 7, Username: "visitor"}

	event := seedEvent(t, db, models.Event{
		Title: "Open", IsEventPublic: true, AreAttendeesPublic: true,
	})
	userID := int64(7)
	email := "visitor@example.com"
	require.NoError(t, db.Create(&models.Attendee{
		EventID: event.ID, UserID: &userID, Email: &email, DidRSVP: true,
	}).Error)

	w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/events/%d/attendees", event.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeList(t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "visitor", list[0]["username"])
	assert.Equal(t, true, list[0]["didRSVP"])
	assert.NotContains(t, list[0], "email", "emails are stripped for anonymous callers")
}

func TestGetEventAttendeesOrganizerSeesEmails(t *testing.T) {
	db, _, _, router := setupServer(t)

	event := seedEvent(t, db, models.Event{
		Title: "Closed", IsEventPublic: true, AreAttendeesPublic: false,
		Organizer: "host@example.com", OrganizerID: "host",
	})
	email := "visitor@example.com"
	require.NoError(t, db.Create(&models.Attendee{EventID: event.ID, Email: &email}).Error)

	token := sessionToken(t, 1, "host", "host@example.com", false)
	w := doRequest(t, router, http.MethodGet, fmt.Sprintf("/events/%d/attendees", event.ID), token, "")
	require.Equal(t, http.StatusOK, w.Code)

	list := decodeList(t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "visitor@example.com", list[0]["email"])
}

func TestGetUserAttendanceSelfOnly(t *testing.T) {
	db, _, _, router := setupServer(t)

	event := seedEvent(t, db, models.Event{Title: "Any", IsEventPublic: true})
	userID := int64(7)
	require.NoError(t, db.Create(&models.Attendee{
		EventID: event.ID, UserID: &userID, DidRSVP: true,
	}).Error)

	own := sessionToken(t, 7, "visitor", "visitor@example.com", false)
	w := doRequest(t, router, http.MethodGet, "/attendees/user/7", own, "")
	require.Equal(t, http.StatusOK, w.Code)

	var records []models.Attendee
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, event.ID, records[0].EventID)

	other := sessionToken(t, 8, "snoop", "snoop@example.com", false)
	w = doRequest(t, router, http.MethodGet, "/attendees/user/7", other, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpsertAttendeeCreatesThenUpdates(t *testing.T) {
	db, _, _, router := setupServer(t)

	event := seedEvent(t, db, models.Event{Title: "Party", IsEventPublic: true})

	token := sessionToken(t, 7, "visitor", "visitor@example.com", false)
	path := fmt.Sprintf("/attendees?eventid=%d&userid=7&rsvp=true", event.ID)

	w := doRequest(t, router, http.MethodPost, path, token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var attendee models.Attendee
	require.NoError(t, db.Where("event_id = ?", event.ID).First(&attendee).Error)
	assert.True(t, attendee.DidRSVP)
	assert.Nil(t, attendee.DidAttend, "check-in stays unknown until recorded")

	// The same identity key updates in place instead of duplicating.
	path = fmt.Sprintf("/attendees?eventid=%d&userid=7&checkin=true", event.ID)
	w = doRequest(t, router, http.MethodPost, path, token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Attendee{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, db.Where("event_id = ?", event.ID).First(&attendee).Error)
	require.NotNil(t, attendee.DidAttend)
	assert.True(t, *attendee.DidAttend)
	assert.True(t, attendee.DidRSVP, "an update does not erase earlier state")
}

func TestUpsertAttendeeByEmailRequiresOrganizer(t *testing.T) {
	db, _, _, router := setupServer(t)

	event := seedEvent(t, db, models.Event{
		Title: "Party", IsEventPublic: true, OrganizerID: "host",
	})
	path := fmt.Sprintf("/attendees?eventid=%d&email=walkin@example.com&checkin=true", event.ID)

	// A random session cannot check in someone else's walk-in.
	stranger := sessionToken(t, 8, "snoop", "snoop@example.com", false)
	w := doRequest(t, router, http.MethodPost, path, stranger, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	host := sessionToken(t, 1, "host", "host@example.com", false)
	w = doRequest(t, router, http.MethodPost, path, host, "")
	require.Equal(t, http.StatusOK, w.Code)

	var attendee models.Attendee
	require.NoError(t, db.Where("event_id = ?", event.ID).First(&attendee).Error)
	require.NotNil(t, attendee.Email)
	assert.Equal(t, "walkin@example.com", *attendee.Email)
}

func TestUpsertAttendeeMissingEvent(t *testing.T) {
	_, _, _, router := setupServer(t)

	token := sessionToken(t, 7, "visitor", "visitor@example.com", false)
	w := doRequest(t, router, http.MethodPost, "/attendees?eventid=9999&userid=7&rsvp=true", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsertAttendeeRejectsBadEmail(t *testing.T) {
	db, _, _, router := setupServer(t)

	event := seedEvent(t, db, models.Event{
		Title: "Party", IsEventPublic: true, OrganizerID: "host",
	})

	host := sessionToken(t, 1, "host", "host@example.com", false)
	path := fmt.Sprintf("/attendees?eventid=%d&email=not-an-email", event.ID)
	w := doRequest(t, router, http.MethodPost, path, host, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeObject(t, w), "email")

	var count int64
	require.NoError(t, db.Model(&models.Attendee{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpsertAttendeeRequiresIdentityKey(t *testing.T) {
	db, _, _, router := setupServer(t)

	event := seedEvent(t, db, models.Event{Title: "Party", IsEventPublic: true})

	token := sessionToken(t, 7, "visitor", "visitor@example.com", false)
	w := doRequest(t, router, http.MethodPost,
		fmt.Sprintf("/attendees?eventid=%d", event.ID), token, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
