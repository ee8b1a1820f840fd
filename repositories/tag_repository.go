package repositories

import (
	"gorm.io/gorm"

	"webmaker-events-api/models"
)

const suggestionLimit = 20

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Suggest returns up to 20 tag names matching the fragment, most-used
// first, for typeahead suggestions.
func (r *TagRepository) Suggest(fragment string) ([]string, error) {
	var names []string
	err := r.db.Model(&models.Tag{}).
		Select("tags.name").
		Joins("LEFT JOIN event_tags ON event_tags.tag_id = tags.id").
		Where("tags.name LIKE ?", "%"+fragment+"%").
		Group("tags.id, tags.name").
		Order("COUNT(event_tags.event_id) DESC").
		Limit(suggestionLimit).
		Pluck("tags.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
