package models

import "time"

// Attendee tracks RSVP and attendance for either a registered identity
// (UserID) or a bare email. DidAttend is tri-state; nil means "not checked
// in yet" and prevents false negatives.
type Attendee struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	EventID uint    `json:"eventId" gorm:"not null;index"`
	UserID  *int64  `json:"userId"`
	Email   *string `json:"email" gorm:"size:255"`

	DidRSVP           bool  `json:"didRSVP" gorm:"not null;default:false"`
	DidAttend         *bool `json:"didAttend"`
	SentEventReminder bool  `json:"sentEventReminder" gorm:"not null;default:false"`

	Username string `json:"username,omitempty" gorm:"-"`
	Avatar   string `json:"avatar,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
