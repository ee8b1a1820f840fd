package models

import (
	"crypto/md5"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizerAvatarNormalizesEmail(t *testing.T) {
	event := Event{Organizer: "  Host@Example.COM  "}

	wantHash := md5.Sum([]byte("host@example.com"))
	assert.Contains(t, event.OrganizerAvatar(),
		fmt.Sprintf("https://secure.gravatar.com/avatar/%x", wantHash))
	assert.Contains(t, event.OrganizerAvatar(), "?d=")
}

func TestEventURLFallback(t *testing.T) {
	event := Event{ID: 42}
	assert.Equal(t, "/events/42", event.EventURL())

	imported := "https://partner.example.com/event/9"
	event.URL = &imported
	assert.Equal(t, imported, event.EventURL())
}

func TestIsCoorganizer(t *testing.T) {
	event := Event{Coorganizers: []Coorganizer{{UserID: 10}, {UserID: 11}}}

	assert.True(t, event.IsCoorganizer(10))
	assert.False(t, event.IsCoorganizer(12))
}

func TestTagNamesDeduplicates(t *testing.T) {
	event := Event{Tags: []Tag{
		{Name: "JavaScript"},
		{Name: "javascript"},
		{Name: "css"},
	}}

	assert.Equal(t, []string{"javascript", "css"}, event.TagNames())
}

func TestValidateAcceptsMinimalEvent(t *testing.T) {
	event := Event{Title: "Maker Party", Description: "testing"}
	assert.Empty(t, event.Validate())
}

func TestValidateRejectsBadFields(t *testing.T) {
	lat := 91.0
	lng := -181.0
	link := "not a url"
	locale := "xx-XX"

	event := Event{
		Latitude:     &lat,
		Longitude:    &lng,
		AgeGroup:     "toddlers",
		SkillLevel:   "wizard",
		Organizer:    "not-an-email",
		RegisterLink: &link,
		Locale:       &locale,
	}

	fieldErrors := event.Validate()

	assert.Contains(t, fieldErrors, "latitude")
	assert.Contains(t, fieldErrors, "longitude")
	assert.Contains(t, fieldErrors, "ageGroup")
	assert.Contains(t, fieldErrors, "skillLevel")
	assert.Contains(t, fieldErrors, "organizer")
	assert.Contains(t, fieldErrors, "registerLink")
	assert.Contains(t, fieldErrors, "locale")
}

func TestValidateAcceptsKnownValues(t *testing.T) {
	lat := 43.65
	lng := -79.38
	link := "https://example.com/register"
	locale := "en-US"

	event := Event{
		Title:        "Maker Party",
		Description:  "testing",
		Latitude:     &lat,
		Longitude:    &lng,
		AgeGroup:     "youth",
		SkillLevel:   "beginner",
		Organizer:    "host@example.com",
		RegisterLink: &link,
		Locale:       &locale,
	}

	assert.Empty(t, event.Validate())
}

func TestFilteredJSONPublicView(t *testing.T) {
	event := Event{
		ID:          5,
		Title:       "Maker Party",
		Organizer:   "host@example.com",
		OrganizerID: "host",
		Tags:        []Tag{{Name: "html"}},
	}

	view := event.FilteredJSON(false)

	assert.Equal(t, uint(5), view["id"])
	assert.Equal(t, "host", view["organizerId"])
	assert.Equal(t, []string{"html"}, view["tags"])
	require.Contains(t, view, "organizerAvatar")

	// Private fields must not leak to anonymous callers.
	assert.NotContains(t, view, "organizer")
	assert.NotContains(t, view, "isEmailPublic")
	assert.NotContains(t, view, "mentorRequests")
	assert.NotContains(t, view, "externalSource")
	assert.NotContains(t, view, "url")
	assert.NotContains(t, view, "sentPostEventEmailToHost")
}

func TestFilteredJSONPrivateView(t *testing.T) {
	event := Event{
		ID:             5,
		Organizer:      "host@example.com",
		MentorRequests: []MentorRequest{{ID: 1, Email: "mentor@example.com"}},
	}

	view := event.FilteredJSON(true)

	assert.Equal(t, "host@example.com", view["organizer"])
	assert.Equal(t, "/events/5", view["url"])
	require.Contains(t, view, "mentorRequests")
	assert.Len(t, view["mentorRequests"], 1)
}
