package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"webmaker-events-api/middleware"
	"webmaker-events-api/models"
	"webmaker-events-api/services"
	"webmaker-events-api/utils"
)

type AttendeeController struct {
	db    *gorm.DB
	users services.IdentityClient
}

func NewAttendeeController(db *gorm.DB, users services.IdentityClient) *AttendeeController {
	return &AttendeeController{db: db, users: users}
}

// attendeeView strips the email for unauthorized viewers.
type attendeeView struct {
	ID        uint    `json:"id"`
	EventID   uint    `json:"eventId"`
	UserID    *int64  `json:"userId"`
	Email     *string `json:"email,omitempty"`
	DidRSVP   bool    `json:"didRSVP"`
	DidAttend *bool   `json:"didAttend"`
	Username  string  `json:"username,omitempty"`
	Avatar    string  `json:"avatar,omitempty"`
}

// GetEventAttendees lists who RSVP'd or attended an event. Visible when the
// event publishes its attendee list or the caller organizes the event;
// emails only survive for authorized callers.
func (ac *AttendeeController) GetEventAttendees(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "No event found")
		return
	}

	var event models.Event
	err = ac.db.Preload("Coorganizers").Preload("Attendees").First(&event, uint(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.SendError(c, http.StatusNotFound, "No event found")
		return
	}
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	user := middleware.SessionFromContext(c)
	authorized := user != nil &&
		(user.IsAdmin || user.Username == event.OrganizerID || event.IsCoorganizer(user.ID))

	if !event.AreAttendeesPublic && !authorized {
		utils.SendError(c, http.StatusUnauthorized, "Attendee list is not public")
		return
	}

	// One batched lookup resolves every registered attendee.
	var ids []int64
	for _, a := range event.Attendees {
		if a.UserID != nil {
			ids = append(ids, *a.UserID)
		}
	}
	accounts, err := ac.users.ByIDs(c.Request.Context(), ids)
	if err != nil {
		utils.SendUpstreamError(c, "identity-service", err)
		return
	}

	views := make([]attendeeView, 0, len(event.Attendees))
	for _, a := range event.Attendees {
		view := attendeeView{
			ID:        a.ID,
			EventID:   a.EventID,
			UserID:    a.UserID,
			DidRSVP:   a.DidRSVP,
			DidAttend: a.DidAttend,
		}
		if authorized {
			view.Email = a.Email
		}
		if a.UserID != nil {
			if account, ok := accounts[*a.UserID]; ok {
				view.Username = account.Username
				view.Avatar = account.Avatar
			}
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, views)
}

// GetUserAttendance lists one user's attendance records; self or admin only.
func (ac *AttendeeController) GetUserAttendance(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "No user found")
		return
	}

	user := middleware.SessionFromContext(c)
	if user == nil || (!user.IsAdmin && user.ID != userID) {
		utils.SendError(c, http.StatusUnauthorized, "Not authorized.")
		return
	}

	var attendees []models.Attendee
	if err := ac.db.Where("user_id = ?", userID).Find(&attendees).Error; err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, attendees)
}

// UpsertAttendee records or updates RSVP/check-in state for a registered
// user or a bare email. The identity key (userID or email) is unique per
// event, so a second call updates the existing row.
func (ac *AttendeeController) UpsertAttendee(c *gin.Context) {
	userID, _ := strconv.ParseInt(c.Query("userid"), 10, 64)
	eventID, err := strconv.ParseUint(c.Query("eventid"), 10, 32)
	email := c.Query("email")

	if err != nil || eventID == 0 || (userID == 0 && email == "") {
		utils.SendError(c, http.StatusInternalServerError,
			"eventid must be specified and accompanied by a userid or email.")
		return
	}
	if userID == 0 && !utils.IsValidEmail(email) {
		utils.SendValidationError(c, map[string]string{"email": "email must be a valid address"})
		return
	}

	var event models.Event
	findErr := ac.db.First(&event, uint(eventID)).Error
	if errors.Is(findErr, gorm.ErrRecordNotFound) {
		utils.SendError(c, http.StatusNotFound, "Event not found")
		return
	}
	if findErr != nil {
		utils.SendDatastoreError(c, findErr)
		return
	}

	user := middleware.SessionFromContext(c)
	authorized := user != nil &&
		(user.IsAdmin || user.ID == userID || user.Username == event.OrganizerID)
	if !authorized {
		utils.SendError(c, http.StatusUnauthorized, "Not authorized.")
		return
	}

	identity := ac.db.Where("event_id = ?", uint(eventID))
	if userID != 0 {
		identity = identity.Where("user_id = ?", userID)
	} else {
		identity = identity.Where("email = ?", email)
	}

	updates := map[string]interface{}{}
	if checkin := c.Query("checkin"); checkin != "" {
		updates["did_attend"] = parseBool(checkin)
	}
	if rsvp := c.Query("rsvp"); rsvp != "" {
		updates["did_rsvp"] = parseBool(rsvp)
	}

	var existing models.Attendee
	err = identity.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		attendee := models.Attendee{EventID: uint(eventID)}
		if userID != 0 {
			attendee.UserID = &userID
		} else {
			attendee.Email = &email
		}
		if v, ok := updates["did_attend"]; ok {
			b := v.(bool)
			attendee.DidAttend = &b
		}
		if v, ok := updates["did_rsvp"]; ok {
			attendee.DidRSVP = v.(bool)
		}
		if err := ac.db.Create(&attendee).Error; err != nil {
			utils.SendDatastoreError(c, err)
			return
		}
		utils.SendSuccess(c, "Record created.", nil)
		return
	}
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	if len(updates) > 0 {
		if err := ac.db.Model(&existing).Updates(updates).Error; err != nil {
			utils.SendDatastoreError(c, err)
			return
		}
	}
	utils.SendSuccess(c, "Record already exists. Updating.", nil)
}

func parseBool(value string) bool {
	return value == "true" || value == "1"
}
