package models

// FilteredJSON builds the wire representation of an event. The public view
// carries only the fields safe for any caller; showPrivate adds the
// organizer email, mentor requests and import bookkeeping for organizers,
// co-organizers and admins. Avatar and tag flattening are derived here, at
// serialization time.
func (e *Event) FilteredJSON(showPrivate bool) map[string]interface{} {
	view := map[string]interface{}{
		"organizerAvatar":    e.OrganizerAvatar(),
		"id":                 e.ID,
		"title":              e.Title,
		"description":        e.Description,
		"address":            e.Address,
		"latitude":           e.Latitude,
		"longitude":          e.Longitude,
		"city":               e.City,
		"country":            e.Country,
		"estimatedAttendees": e.EstimatedAttendees,
		"ageGroup":           e.AgeGroup,
		"skillLevel":         e.SkillLevel,
		"beginDate":          e.BeginDate,
		"endDate":            e.EndDate,
		"registerLink":       e.RegisterLink,
		"picture":            e.Picture,
		"organizerId":        e.OrganizerID,
		"featured":           e.Featured,
		"areAttendeesPublic": e.AreAttendeesPublic,
		"isEventPublic":      e.IsEventPublic,
		"locale":             e.Locale,
		"flickrTag":          e.FlickrTag,
		"makeApiTag":         e.MakeAPITag,
		"createdAt":          e.CreatedAt,
		"updatedAt":          e.UpdatedAt,
		"coorganizers":       e.Coorganizers,
		"mentors":            e.Mentors,
		"tags":               e.TagNames(),
	}

	if showPrivate {
		view["organizer"] = e.Organizer
		view["isEmailPublic"] = e.IsEmailPublic
		view["externalSource"] = e.ExternalSource
		view["url"] = e.EventURL()
		view["mentorRequests"] = e.MentorRequests
		view["sentPostEventEmailToHost"] = e.SentPostEventEmailToHost
	}

	return view
}
