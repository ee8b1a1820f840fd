package models

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const defaultGravatar = "https://stuff.webmaker.org/avatars/webmaker-avatar-200x200.png"

var AgeGroups = []string{"", "kids", "youth", "adults"}
var SkillLevels = []string{"", "beginner", "intermediate", "advanced"}

type Event struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	Title              string     `json:"title" gorm:"size:255"`
	Description        string     `json:"description" gorm:"not null;type:text"`
	Address            string     `json:"address" gorm:"size:255"`
	Latitude           *float64   `json:"latitude"`
	Longitude          *float64   `json:"longitude"`
	City               string     `json:"city" gorm:"size:255"`
	Country            string     `json:"country" gorm:"size:255"`
	EstimatedAttendees int        `json:"estimatedAttendees"`
	AgeGroup           string     `json:"ageGroup" gorm:"size:50"`
	SkillLevel         string     `json:"skillLevel" gorm:"size:50"`
	BeginDate          *time.Time `json:"beginDate"`
	EndDate            *time.Time `json:"endDate"`
	BeginTime          *time.Time `json:"beginTime"`
	EndTime            *time.Time `json:"endTime"`
	RegisterLink       *string    `json:"registerLink" gorm:"size:500"`
	Picture            *string    `json:"picture" gorm:"size:500"`
	Organizer          string     `json:"organizer" gorm:"size:255;index"`
	OrganizerID        string     `json:"organizerId" gorm:"size:191;index"`
	Featured           bool       `json:"featured" gorm:"not null;default:false"`
	AreAttendeesPublic bool       `json:"areAttendeesPublic" gorm:"not null;default:false"`
	IsEmailPublic      bool       `json:"isEmailPublic" gorm:"not null;default:false"`
	// No column default: gorm would swallow an explicit false on create.
	// The controller applies the public-by-default rule instead.
	IsEventPublic bool `json:"isEventPublic" gorm:"not null"`
	ExternalSource     *string    `json:"externalSource" gorm:"size:255"`
	URL                *string    `json:"url" gorm:"size:500"`
	FlickrTag          *string    `json:"flickrTag" gorm:"size:255"`
	MakeAPITag         *string    `json:"makeApiTag" gorm:"column:make_api_tag;size:255"`
	Locale             *string    `json:"locale" gorm:"size:50"`

	SentPostEventEmailToHost bool `json:"sentPostEventEmailToHost" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Tags                []Tag                `json:"tags" gorm:"many2many:event_tags"`
	Coorganizers        []Coorganizer        `json:"coorganizers" gorm:"foreignKey:EventID"`
	Mentors             []Mentor             `json:"mentors" gorm:"foreignKey:EventID"`
	MentorRequests      []MentorRequest      `json:"mentorRequests" gorm:"foreignKey:EventID"`
	CoorganizerRequests []CoorganizerRequest `json:"coorganizerRequests" gorm:"foreignKey:EventID"`
	Attendees           []Attendee           `json:"attendees" gorm:"foreignKey:EventID"`
}

// OrganizerAvatar derives the gravatar URL from the organizer email at
// serialization time; it is never stored.
func (e *Event) OrganizerAvatar() string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(e.Organizer))))
	return fmt.Sprintf("https://secure.gravatar.com/avatar/%x?d=%s",
		hash, url.QueryEscape(defaultGravatar))
}

// EventURL falls back to the canonical frontend path when no explicit URL
// was imported with the event.
func (e *Event) EventURL() string {
	if e.URL != nil && *e.URL != "" {
		return *e.URL
	}
	return fmt.Sprintf("/events/%d", e.ID)
}

// IsCoorganizer reports whether the given identity-service user id is a
// registered co-organizer. Coorganizers must be loaded.
func (e *Event) IsCoorganizer(userID int64) bool {
	for _, c := range e.Coorganizers {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// TagNames flattens the tag association to unique lowercase names. Mixed
// case duplicates can exist from before names were normalized on write.
func (e *Event) TagNames() []string {
	seen := make(map[string]bool, len(e.Tags))
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		name := strings.ToLower(t.Name)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Validate checks field constraints and returns a per-field error map,
// empty when the event is valid.
func (e *Event) Validate() map[string]string {
	fieldErrors := make(map[string]string)

	if e.Latitude != nil && (*e.Latitude < -90 || *e.Latitude > 90) {
		fieldErrors["latitude"] = "latitude must be between -90 and 90"
	}
	if e.Longitude != nil && (*e.Longitude < -180 || *e.Longitude > 180) {
		fieldErrors["longitude"] = "longitude must be between -180 and 180"
	}
	if !contains(AgeGroups, e.AgeGroup) {
		fieldErrors["ageGroup"] = fmt.Sprintf("ageGroup must be one of %v", AgeGroups[1:])
	}
	if !contains(SkillLevels, e.SkillLevel) {
		fieldErrors["skillLevel"] = fmt.Sprintf("skillLevel must be one of %v", SkillLevels[1:])
	}
	if e.Organizer != "" && !strings.Contains(e.Organizer, "@") {
		fieldErrors["organizer"] = "organizer must be an email address"
	}
	if e.RegisterLink != nil && *e.RegisterLink != "" && !isURL(*e.RegisterLink) {
		fieldErrors["registerLink"] = "registerLink must be a valid URL"
	}
	if e.Picture != nil && *e.Picture != "" && !isURL(*e.Picture) {
		fieldErrors["picture"] = "picture must be a valid URL"
	}
	if e.Locale != nil && *e.Locale != "" && !IsKnownLocale(*e.Locale) {
		fieldErrors["locale"] = "unknown locale"
	}

	return fieldErrors
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func isURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
