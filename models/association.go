package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coorganizer grants a second identity edit rights on one event. Username
// and Avatar are view-model decorations resolved against the identity
// service at read time, never persisted.
type Coorganizer struct {
	ID      uint  `json:"id" gorm:"primaryKey"`
	EventID uint  `json:"eventId" gorm:"not null;index"`
	UserID  int64 `json:"userId" gorm:"not null"`

	Username string `json:"username" gorm:"-"`
	Avatar   string `json:"avatar" gorm:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Coorganizer) GetID() uint { return c.ID }

// Mentor is an identity who confirmed a mentoring role at an event. Bio is
// the only field editable after creation.
type Mentor struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	EventID uint   `json:"eventId" gorm:"not null;index"`
	UserID  int64  `json:"userId" gorm:"not null"`
	Bio     string `json:"bio" gorm:"size:255"`

	Username string `json:"username" gorm:"-"`
	Avatar   string `json:"avatar" gorm:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m Mentor) GetID() uint { return m.ID }

// MentorRequest is a pending, token-authenticated mentor invitation. The
// token is single-use: confirmation converts the request into a Mentor and
// deletes it; denial flags it terminally.
type MentorRequest struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	EventID uint   `json:"eventId" gorm:"not null;index"`
	Email   string `json:"email" gorm:"size:255;not null"`
	Token   string `json:"-" gorm:"size:36;uniqueIndex;not null"`
	Denied  bool   `json:"denied" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r MentorRequest) GetID() uint { return r.ID }

func (r *MentorRequest) BeforeCreate(tx *gorm.DB) error {
	if r.Token == "" {
		r.Token = uuid.NewString()
	}
	return nil
}

// CoorganizerRequest mirrors MentorRequest for co-organizer invitations.
type CoorganizerRequest struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	EventID uint   `json:"eventId" gorm:"not null;index"`
	Email   string `json:"email" gorm:"size:255;not null"`
	Token   string `json:"-" gorm:"size:36;uniqueIndex;not null"`
	Denied  bool   `json:"denied" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r CoorganizerRequest) GetID() uint { return r.ID }

func (r *CoorganizerRequest) BeforeCreate(tx *gorm.DB) error {
	if r.Token == "" {
		r.Token = uuid.NewString()
	}
	return nil
}
