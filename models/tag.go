package models

import (
	"strings"

	"gorm.io/gorm"
)

// Tag is a shared label attachable to many events. Names are stored
// lowercase and must be 191 characters or less to fit within the max
// index size. Tags are never deleted.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:191;uniqueIndex;not null"`
}

func (t *Tag) BeforeSave(tx *gorm.DB) error {
	t.Name = strings.ToLower(t.Name)
	return nil
}
