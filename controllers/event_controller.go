package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"webmaker-events-api/middleware"
	"webmaker-events-api/models"
	"webmaker-events-api/repositories"
	"webmaker-events-api/services"
	"webmaker-events-api/utils"
)

type EventController struct {
	db       *gorm.DB
	events   *repositories.EventRepository
	tags     *services.TagService
	users    services.IdentityClient
	notifier services.Notifier
}

func NewEventController(db *gorm.DB, users services.IdentityClient, notifier services.Notifier) *EventController {
	return &EventController{
		db:       db,
		events:   repositories.NewEventRepository(db),
		tags:     services.NewTagService(db),
		users:    users,
		notifier: notifier,
	}
}

// eventPayload is the nested object graph clients send on POST/PUT. Tags
// arrive as bare strings and shadow the model's association slice.
// IsEventPublic is shadowed as a pointer so "omitted" and "false" can be
// told apart: new events default to public, updates keep the stored value.
type eventPayload struct {
	models.Event
	Tags          []string `json:"tags"`
	IsEventPublic *bool    `json:"isEventPublic"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDateParam(value string) (*time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", value)
}

// isAuthorized is the single write-access predicate: trusted internal mode,
// admin flag, organizer email match, or (when allowed) a registered
// co-organizer. Event associations must be loaded for the co-organizer leg.
func (ec *EventController) isAuthorized(c *gin.Context, event *models.Event, allowCoorganizer bool) bool {
	user := middleware.SessionFromContext(c)
	if user == nil {
		return false
	}
	if middleware.IsTrusted(c) || user.IsAdmin || (event.Organizer != "" && user.Email == event.Organizer) {
		return true
	}
	return allowCoorganizer && event.IsCoorganizer(user.ID)
}

func (ec *EventController) isPrivilegedViewer(c *gin.Context) bool {
	user := middleware.SessionFromContext(c)
	if user == nil {
		return false
	}
	return middleware.IsTrusted(c) || user.IsAdmin
}

// GetEvents lists events with the composable filter set. Pagination uses a
// byte-range-style "Range: items=start-end" header; the served window and
// the total DISTINCT match count come back in response headers regardless
// of the body format (?csv=true switches the body to CSV).
func (ec *EventController) GetEvents(c *gin.Context) {
	filters := repositories.EventFilters{
		Organizer: c.Query("organizerId"),
		Search:    c.Query("search"),
		Tag:       c.Query("tag"),
		Dedupe:    c.Query("dedupe") == "true",
	}

	if after := c.Query("after"); after != "" {
		t, err := parseDateParam(after)
		if err != nil {
			utils.SendValidationError(c, map[string]string{"after": "Malformed after date"})
			return
		}
		filters.After = t
	}
	if before := c.Query("before"); before != "" {
		t, err := parseDateParam(before)
		if err != nil {
			utils.SendValidationError(c, map[string]string{"before": "Malformed before date"})
			return
		}
		filters.Before = t
	}

	if userID := c.Query("userId"); userID != "" {
		id, err := strconv.ParseInt(userID, 10, 64)
		if err != nil {
			utils.SendValidationError(c, map[string]string{"userId": "userId must be numeric"})
			return
		}
		filters.UserID = id
	}

	// A username is resolved against the identity service once, yielding
	// both the organizer reference and the participant id.
	if username := c.Query("username"); username != "" {
		account, err := ec.users.ByUsername(c.Request.Context(), username)
		if err != nil {
			utils.SendUpstreamError(c, "identity-service", err)
			return
		}
		if account == nil {
			c.JSON(http.StatusOK, []interface{}{})
			return
		}
		filters.Organizer = account.Username
		filters.UserID = account.ID
	}

	if lat, lng := c.Query("lat"), c.Query("lng"); lat != "" && lng != "" {
		latF, errLat := strconv.ParseFloat(lat, 64)
		lngF, errLng := strconv.ParseFloat(lng, 64)
		if errLat != nil || !utils.IsValidLatitude(latF) {
			utils.SendValidationError(c, map[string]string{"lat": "lat must be between -90 and 90"})
			return
		}
		if errLng != nil || !utils.IsValidLongitude(lngF) {
			utils.SendValidationError(c, map[string]string{"lng": "lng must be between -180 and 180"})
			return
		}
		filters.Lat = &latF
		filters.Lng = &lngF
		filters.RadiusKm, _ = strconv.ParseFloat(c.Query("radius"), 64)
	}

	privileged := ec.isPrivilegedViewer(c)
	filters.IncludePrivate = privileged

	window, err := repositories.ParseRange(c.GetHeader("Range"))
	if err != nil {
		utils.SendValidationError(c, map[string]string{"range": err.Error()})
		return
	}

	events, total, err := ec.events.Query(filters, window)
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	// Pagination headers are independent of the body format.
	c.Header("Accept-Ranges", "items")
	c.Header("Range-Unit", "items")
	if len(events) > 0 {
		c.Header("Content-Range", fmt.Sprintf("%d-%d/%d", window.Start, window.Start+len(events)-1, total))
	} else {
		c.Header("Content-Range", fmt.Sprintf("*/%d", total))
	}

	if c.Query("csv") != "" && c.Query("csv") != "false" {
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := utils.WriteEventsCSV(c.Writer, events, privileged); err != nil {
			utils.SendDatastoreError(c, err)
		}
		return
	}

	views := make([]map[string]interface{}, 0, len(events))
	for i := range events {
		views = append(views, events[i].FilteredJSON(privileged))
	}
	c.JSON(http.StatusOK, views)
}

// GetEvent returns one event with its associations decorated against the
// identity service. Externally imported events are hidden from the detail
// view so they cannot be edited.
func (ec *EventController) GetEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "No event found")
		return
	}

	event, err := ec.events.FindByID(uint(id))
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}
	if event == nil || (event.ExternalSource != nil && *event.ExternalSource != "") {
		utils.SendError(c, http.StatusNotFound, fmt.Sprintf("No event found for id %d", id))
		return
	}

	user := middleware.SessionFromContext(c)
	showPrivate := ec.isAuthorized(c, event, false) ||
		(user != nil && event.IsCoorganizer(user.ID))

	if err := ec.decorateParticipants(c, event); err != nil {
		utils.SendUpstreamError(c, "identity-service", err)
		return
	}

	c.JSON(http.StatusOK, event.FilteredJSON(showPrivate))
}

// decorateParticipants resolves co-organizer and mentor display fields with
// a single batched identity lookup per request.
func (ec *EventController) decorateParticipants(c *gin.Context, event *models.Event) error {
	seen := make(map[int64]bool)
	var ids []int64
	for _, co := range event.Coorganizers {
		if !seen[co.UserID] {
			seen[co.UserID] = true
			ids = append(ids, co.UserID)
		}
	}
	for _, m := range event.Mentors {
		if !seen[m.UserID] {
			seen[m.UserID] = true
			ids = append(ids, m.UserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	accounts, err := ec.users.ByIDs(c.Request.Context(), ids)
	if err != nil {
		return err
	}

	for i := range event.Coorganizers {
		if account, ok := accounts[event.Coorganizers[i].UserID]; ok {
			event.Coorganizers[i].Username = account.Username
			event.Coorganizers[i].Avatar = account.Avatar
		}
	}
	for i := range event.Mentors {
		if account, ok := accounts[event.Mentors[i].UserID]; ok {
			event.Mentors[i].Username = account.Username
			event.Mentors[i].Avatar = account.Avatar
		}
	}

	return nil
}

// GetRelatedEvents lists public events sharing the organizer, lying within
// 500km, or sharing a tag.
func (ec *EventController) GetRelatedEvents(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "No event found")
		return
	}

	event, err := ec.events.FindByID(uint(id))
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}
	if event == nil {
		utils.SendError(c, http.StatusNotFound, fmt.Sprintf("No event found for id %d", id))
		return
	}

	related, err := ec.events.Related(event, 10)
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	views := make([]map[string]interface{}, 0, len(related))
	for i := range related {
		views = append(views, related[i].FilteredJSON(false))
	}
	c.JSON(http.StatusOK, views)
}

// CreateEvent stores a new event with its nested mentor requests,
// co-organizers and tags, then notifies the organizer.
func (ec *EventController) CreateEvent(c *gin.Context) {
	user := middleware.SessionFromContext(c)
	if user == nil || user.Email == "" {
		utils.SendError(c, http.StatusForbidden, "You must sign in with Webmaker to create an event")
		return
	}

	var payload eventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.SendValidationError(c, map[string]string{"body": err.Error()})
		return
	}

	event := payload.Event
	event.ID = 0
	event.Organizer = user.Email
	if event.OrganizerID == "" {
		event.OrganizerID = user.Username
	}
	event.IsEventPublic = payload.IsEventPublic == nil || *payload.IsEventPublic

	if fieldErrors := event.Validate(); len(fieldErrors) > 0 {
		utils.SendValidationError(c, fieldErrors)
		return
	}

	// Children are created explicitly below, not by gorm's cascade.
	coorganizers := event.Coorganizers
	mentorRequests := event.MentorRequests
	event.Coorganizers = nil
	event.Mentors = nil
	event.MentorRequests = nil
	event.CoorganizerRequests = nil
	event.Attendees = nil

	if err := ec.db.Create(&event).Error; err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	ec.notifier.EventCreated(sessionAccount(user), &event)

	for i := range mentorRequests {
		mentorRequests[i].ID = 0
		mentorRequests[i].EventID = event.ID
	}
	if len(mentorRequests) > 0 {
		if err := ec.db.Create(&mentorRequests).Error; err != nil {
			utils.SendDatastoreError(c, err)
			return
		}
	}

	for i := range coorganizers {
		coorganizers[i].ID = 0
		coorganizers[i].EventID = event.ID
	}
	if len(coorganizers) > 0 {
		if err := ec.db.Create(&coorganizers).Error; err != nil {
			utils.SendDatastoreError(c, err)
			return
		}
	}

	tags, err := ec.tags.Reconcile(payload.Tags)
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}
	if err := ec.tags.SetEventTags(&event, tags); err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event created.",
		"id":      event.ID,
	})
}

// UpdateEvent rewrites an event and reconciles its association sets against
// the submitted object graph. Steps run in a fixed order with
// short-circuit on the first failure; tag association comes last because it
// assumes the event row already carries the new attributes.
func (ec *EventController) UpdateEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "No event found")
		return
	}

	event, err := ec.events.FindByID(uint(id))
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}
	if event == nil {
		utils.SendError(c, http.StatusNotFound, fmt.Sprintf("No event found for id %d", id))
		return
	}

	if !ec.isAuthorized(c, event, true) {
		utils.SendError(c, http.StatusForbidden, "You are not authorized to edit this event")
		return
	}

	var payload eventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.SendValidationError(c, map[string]string{"body": err.Error()})
		return
	}

	updated := payload.Event
	updated.IsEventPublic = event.IsEventPublic
	if payload.IsEventPublic != nil {
		updated.IsEventPublic = *payload.IsEventPublic
	}
	if fieldErrors := updated.Validate(); len(fieldErrors) > 0 {
		utils.SendValidationError(c, fieldErrors)
		return
	}

	coorgDiff := services.DiffAssociations(event.Coorganizers, updated.Coorganizers,
		func(co *models.Coorganizer) { co.EventID = event.ID })
	mentorDiff := services.DiffAssociations(event.Mentors, updated.Mentors,
		func(m *models.Mentor) { m.EventID = event.ID })
	requestDiff := services.DiffAssociations(event.MentorRequests, updated.MentorRequests,
		func(r *models.MentorRequest) { r.EventID = event.ID })

	steps := []struct {
		name string
		run  func() error
	}{
		{"update attributes", func() error {
			return ec.db.Model(event).
				Select("Title", "Description", "Address", "Latitude", "Longitude",
					"City", "Country", "EstimatedAttendees", "AgeGroup", "SkillLevel",
					"BeginDate", "EndDate", "BeginTime", "EndTime", "RegisterLink",
					"Picture", "Featured", "AreAttendeesPublic", "IsEmailPublic",
					"IsEventPublic", "FlickrTag", "MakeAPITag", "Locale").
				Updates(&updated).Error
		}},
		{"create coorganizers", func() error {
			if len(coorgDiff.ToCreate) == 0 {
				return nil
			}
			return ec.db.Create(&coorgDiff.ToCreate).Error
		}},
		{"delete coorganizers", func() error {
			if len(coorgDiff.ToDelete) == 0 {
				return nil
			}
			return ec.db.Where("id IN ? AND event_id = ?", coorgDiff.ToDelete, event.ID).
				Delete(&models.Coorganizer{}).Error
		}},
		{"update mentors", func() error {
			// Bio is the only mentor field an organizer can edit.
			for _, mentor := range mentorDiff.ToUpdate {
				err := ec.db.Model(&models.Mentor{}).
					Where("id = ? AND event_id = ?", mentor.ID, event.ID).
					Update("bio", mentor.Bio).Error
				if err != nil {
					return err
				}
			}
			return nil
		}},
		{"delete mentors", func() error {
			if len(mentorDiff.ToDelete) == 0 {
				return nil
			}
			return ec.db.Where("id IN ? AND event_id = ?", mentorDiff.ToDelete, event.ID).
				Delete(&models.Mentor{}).Error
		}},
		{"create mentor requests", func() error {
			if len(requestDiff.ToCreate) == 0 {
				return nil
			}
			return ec.db.Create(&requestDiff.ToCreate).Error
		}},
		{"delete mentor requests", func() error {
			if len(requestDiff.ToDelete) == 0 {
				return nil
			}
			return ec.db.Where("id IN ? AND event_id = ?", requestDiff.ToDelete, event.ID).
				Delete(&models.MentorRequest{}).Error
		}},
		{"reconcile tags", func() error {
			tags, err := ec.tags.Reconcile(payload.Tags)
			if err != nil {
				return err
			}
			return ec.tags.SetEventTags(event, tags)
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			utils.SendDatastoreError(c, fmt.Errorf("%s: %w", step.name, err))
			return
		}
	}

	utils.SendSuccess(c, "Event record updated", nil)
}

// DeleteEvent removes an event and its owned children. Tag associations are
// cleared before the row goes away so no dangling join rows survive; the
// tags themselves are permanent.
func (ec *EventController) DeleteEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendError(c, http.StatusNotFound, "No event found")
		return
	}

	event, err := ec.events.FindByID(uint(id))
	if err != nil {
		utils.SendDatastoreError(c, err)
		return
	}
	if event == nil {
		utils.SendError(c, http.StatusNotFound, fmt.Sprintf("No event found for id %d", id))
		return
	}

	if !ec.isAuthorized(c, event, false) {
		utils.SendError(c, http.StatusForbidden, "You are not authorized to edit this event")
		return
	}

	if err := ec.tags.ClearEventTags(event); err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	for _, child := range []interface{}{
		&models.Coorganizer{}, &models.Mentor{}, &models.MentorRequest{},
		&models.CoorganizerRequest{}, &models.Attendee{},
	} {
		if err := ec.db.Where("event_id = ?", event.ID).Delete(child).Error; err != nil {
			utils.SendDatastoreError(c, err)
			return
		}
	}

	if err := ec.db.Delete(event).Error; err != nil {
		utils.SendDatastoreError(c, err)
		return
	}

	user := middleware.SessionFromContext(c)
	ec.notifier.EventDeleted(sessionAccount(user), event)

	utils.SendSuccess(c, "Event deleted", nil)
}

func sessionAccount(user *middleware.SessionUser) services.UserAccount {
	if user == nil {
		return services.UserAccount{}
	}
	return services.UserAccount{
		ID:                      user.ID,
		Username:                user.Username,
		Email:                   user.Email,
		IsAdmin:                 user.IsAdmin,
		PrefLocale:              user.PrefLocale,
		SendEventCreationEmails: user.SendEventCreationEmails,
	}
}
