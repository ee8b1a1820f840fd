package utils

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"webmaker-events-api/models"
)

// eventCSVColumns is the fixed export column order. The exporter is
// deliberately explicit rather than reflective; consumers of the CSV feed
// depend on this exact ordering.
var eventCSVColumns = []string{
	"id", "title", "description", "address", "latitude", "longitude",
	"city", "country", "estimatedAttendees", "beginDate", "endDate",
	"registerLink", "organizer", "organizerId", "createdAt", "updatedAt",
	"areAttendeesPublic", "ageGroup", "skillLevel", "isEmailPublic",
	"externalSource", "coorganizers", "mentors", "tags",
}

// WriteEventsCSV renders events as CSV with nested associations flattened
// to comma-joined strings. The organizer column is blanked unless the
// caller is privileged.
func WriteEventsCSV(w io.Writer, events []models.Event, showPrivate bool) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(eventCSVColumns); err != nil {
		return err
	}

	for i := range events {
		e := &events[i]

		organizer := ""
		if showPrivate {
			organizer = e.Organizer
		}

		coorganizers := make([]string, 0, len(e.Coorganizers))
		for _, c := range e.Coorganizers {
			coorganizers = append(coorganizers, strconv.FormatInt(c.UserID, 10))
		}
		mentors := make([]string, 0, len(e.Mentors))
		for _, m := range e.Mentors {
			mentors = append(mentors, strconv.FormatInt(m.UserID, 10))
		}

		row := []string{
			strconv.FormatUint(uint64(e.ID), 10),
			flattenLineBreaks(e.Title),
			flattenLineBreaks(e.Description),
			flattenLineBreaks(e.Address),
			csvFloat(e.Latitude),
			csvFloat(e.Longitude),
			e.City,
			e.Country,
			strconv.Itoa(e.EstimatedAttendees),
			csvTime(e.BeginDate),
			csvTime(e.EndDate),
			csvString(e.RegisterLink),
			organizer,
			e.OrganizerID,
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.UpdatedAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(e.AreAttendeesPublic),
			e.AgeGroup,
			e.SkillLevel,
			strconv.FormatBool(e.IsEmailPublic),
			csvString(e.ExternalSource),
			strings.Join(coorganizers, ","),
			strings.Join(mentors, ","),
			strings.Join(e.TagNames(), ","),
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func flattenLineBreaks(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func csvFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func csvTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func csvString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
