package services

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"webmaker-events-api/models"
)

type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

// SanitizeTags lowercases a raw tag list and drops duplicates, preserving
// first-occurrence order.
func SanitizeTags(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	clean := make([]string, 0, len(raw))

	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		clean = append(clean, tag)
	}

	return clean
}

// Reconcile turns a raw tag list into canonical tag rows, creating any
// names not recorded yet. Lookup and insert are not atomic against a
// concurrent request storing the same names; the unique constraint on
// tags.name is the backstop and a conflicting insert is treated as "tag
// already exists".
func (s *TagService) Reconcile(raw []string) ([]models.Tag, error) {
	names := SanitizeTags(raw)
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	var existing []models.Tag
	if err := s.db.Where("name IN ?", names).Find(&existing).Error; err != nil {
		return nil, err
	}

	recorded := make(map[string]bool, len(existing))
	for _, tag := range existing {
		recorded[tag.Name] = true
	}

	var missing []models.Tag
	for _, name := range names {
		if !recorded[name] {
			missing = append(missing, models.Tag{Name: name})
		}
	}

	if len(missing) > 0 {
		err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&missing).Error
		if err != nil {
			return nil, err
		}
	}

	// Re-fetch the full set so pre-existing rows come back with their ids.
	var tags []models.Tag
	if err := s.db.Where("name IN ?", names).Find(&tags).Error; err != nil {
		return nil, err
	}

	return tags, nil
}

// SetEventTags replaces an event's tag associations with the given set.
func (s *TagService) SetEventTags(event *models.Event, tags []models.Tag) error {
	return s.db.Model(event).Association("Tags").Replace(tags)
}

// ClearEventTags removes all tag associations so an event can be deleted
// without leaving dangling join rows. The tag rows themselves are kept;
// tags are a shared, permanent resource.
func (s *TagService) ClearEventTags(event *models.Event) error {
	return s.db.Model(event).Association("Tags").Clear()
}
