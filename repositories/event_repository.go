package repositories

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"webmaker-events-api/models"
	"webmaker-events-api/utils"
)

// MaxPageSize caps the listing window so a missing or greedy Range header
// cannot produce an unbounded result set.
const MaxPageSize = 100

// RelatedRadiusKm bounds the geographic leg of the related-events query.
const RelatedRadiusKm = 500.0

// EventFilters is the composable filter set for event listings. All filters
// combine with AND; the search term ORs across title, description and
// address internally.
type EventFilters struct {
	After    *time.Time
	Before   *time.Time
	Organizer string // organizer identity reference
	UserID    int64  // participant identity: matches co-organizers/mentors
	Search    string
	Tag       string

	Lat      *float64
	Lng      *float64
	RadiusKm float64

	Dedupe bool

	// IncludePrivate lifts the isEventPublic restriction for privileged
	// callers.
	IncludePrivate bool
}

// RangeWindow is a byte-range-style record window, inclusive on both ends.
type RangeWindow struct {
	Start int
	End   int
}

func (w RangeWindow) Limit() int { return w.End - w.Start + 1 }

// ParseRange parses a "Range: items=start-end" header (the "items=" unit
// prefix is optional). An absent header yields the default window; a
// malformed one is an error. Windows wider than MaxPageSize are trimmed.
func ParseRange(header string) (RangeWindow, error) {
	window := RangeWindow{Start: 0, End: MaxPageSize - 1}
	if header == "" {
		return window, nil
	}

	header = strings.TrimPrefix(header, "items=")
	parts := strings.SplitN(header, "-", 2)
	if len(parts) != 2 {
		return window, fmt.Errorf("malformed range %q", header)
	}

	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || start < 0 {
		return window, fmt.Errorf("malformed range start %q", parts[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || end < start {
		return window, fmt.Errorf("malformed range end %q", parts[1])
	}

	if end-start+1 > MaxPageSize {
		end = start + MaxPageSize - 1
	}

	return RangeWindow{Start: start, End: end}, nil
}

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// filtered assembles the WHERE/JOIN clauses shared by the count and data
// queries. Everything goes through gorm's parameterized builder; no SQL is
// concatenated from user input.
func (r *EventRepository) filtered(f EventFilters) *gorm.DB {
	q := r.db.Model(&models.Event{})

	if !f.IncludePrivate {
		q = q.Where("events.is_event_public = ?", true)
	}

	if f.After != nil {
		q = q.Where("events.begin_date >= ?", *f.After)
	}
	if f.Before != nil {
		q = q.Where("events.begin_date <= ?", *f.Before)
	}

	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(events.title LIKE ? OR events.description LIKE ? OR events.address LIKE ?)",
			like, like, like)
	}

	// Participant filter: organized by the identity OR listed as a
	// co-organizer or mentor. The joins multiply rows, which is why the
	// count query below must be DISTINCT over events.id.
	if f.Organizer != "" && f.UserID != 0 {
		q = q.
			Joins("LEFT JOIN coorganizers ON coorganizers.event_id = events.id").
			Joins("LEFT JOIN mentors ON mentors.event_id = events.id").
			Where("(events.organizer_id = ? OR coorganizers.user_id = ? OR mentors.user_id = ?)",
				f.Organizer, f.UserID, f.UserID)
	} else if f.Organizer != "" {
		q = q.Where("events.organizer_id = ?", f.Organizer)
	}

	if f.Tag != "" {
		q = q.
			Joins("JOIN event_tags ON event_tags.event_id = events.id").
			Joins("JOIN tags ON tags.id = event_tags.tag_id").
			Where("tags.name = ?", f.Tag)
	}

	if f.Lat != nil && f.Lng != nil {
		box := utils.NewBoundingBox(*f.Lat, *f.Lng, f.RadiusKm)
		q = q.Where("events.latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
			Where("events.longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}

	return q
}

// Query runs the filtered, paginated listing plus its companion count
// query. The count uses DISTINCT over the primary key because tag and
// participant joins can yield several rows per event; a naive COUNT(*)
// would double-count. Results are sorted ascending by start date, ties
// broken by id for a stable order.
func (r *EventRepository) Query(f EventFilters, window RangeWindow) ([]models.Event, int64, error) {
	var total int64
	if err := r.filtered(f).Distinct("events.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Select the window of ids first so DISTINCT and the association
	// preloads don't fight each other. begin_date rides along because the
	// ORDER BY column must appear in a DISTINCT select.
	var windowRows []struct {
		ID        uint
		BeginDate *time.Time
	}
	err := r.filtered(f).
		Distinct("events.id", "events.begin_date").
		Order("events.begin_date ASC").
		Order("events.id ASC").
		Offset(window.Start).
		Limit(window.Limit()).
		Scan(&windowRows).Error
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(windowRows))
	for _, row := range windowRows {
		ids = append(ids, row.ID)
	}

	if len(ids) == 0 {
		return []models.Event{}, total, nil
	}

	var events []models.Event
	err = r.db.
		Preload("Coorganizers").
		Preload("Mentors").
		Preload("Tags").
		Where("events.id IN ?", ids).
		Order("events.begin_date ASC").
		Order("events.id ASC").
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	if f.Dedupe {
		events = dedupeByTitle(events)
	}

	return events, total, nil
}

// dedupeByTitle collapses events sharing an identical title, keeping the
// first occurrence. Runs after pagination, so the reported total stays the
// pre-dedupe count.
func dedupeByTitle(events []models.Event) []models.Event {
	seen := make(map[string]bool, len(events))
	out := events[:0]
	for _, e := range events {
		if seen[e.Title] {
			continue
		}
		seen[e.Title] = true
		out = append(out, e)
	}
	return out
}

// FindByID loads one event with the associations the detail view renders.
func (r *EventRepository) FindByID(id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.
		Preload("Coorganizers").
		Preload("Mentors").
		Preload("MentorRequests").
		Preload("Tags").
		First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Related finds public events sharing the organizer, lying within
// RelatedRadiusKm, or sharing at least one tag with the given event.
func (r *EventRepository) Related(event *models.Event, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = 10
	}

	conditions := r.db.Where("events.organizer_id = ?", event.OrganizerID)

	if event.Latitude != nil && event.Longitude != nil {
		box := utils.NewBoundingBox(*event.Latitude, *event.Longitude, RelatedRadiusKm)
		conditions = conditions.Or(
			"(events.latitude BETWEEN ? AND ? AND events.longitude BETWEEN ? AND ?)",
			box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	}

	if len(event.Tags) > 0 {
		tagIDs := make([]uint, 0, len(event.Tags))
		for _, t := range event.Tags {
			tagIDs = append(tagIDs, t.ID)
		}
		conditions = conditions.Or("events.id IN (?)",
			r.db.Model(&models.Tag{}).
				Select("event_tags.event_id").
				Joins("JOIN event_tags ON event_tags.tag_id = tags.id").
				Where("tags.id IN ?", tagIDs))
	}

	var events []models.Event
	err := r.db.
		Preload("Tags").
		Where("events.id != ?", event.ID).
		Where("events.is_event_public = ?", true).
		Where(conditions).
		Order("events.begin_date ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}
