package models

import (
	"time"

	"gorm.io/gorm"
)

// CachedFood is a shared (cross-user) cache of AI-generated recipes. The row
// is keyed by the canonical search key built from the food name and the
// ingredient list, never from per-user ingredient IDs, so equivalent requests
// from different users share one entry.
type CachedFood struct {
	gorm.Model
	SearchKey string `gorm:"size:500;uniqueIndex;not null"`

	Name            string     `gorm:"size:255"`
	Calories        float64
	Protein         float64
	Carbohydrates   float64
	Fat             float64
	Fiber           float64
	Instructions    StringList `gorm:"type:text"`
	Tips            StringList `gorm:"type:text"`
	IngredientsJSON string     `gorm:"type:text"` // recipe ingredient lines as JSON
	DifficultyLevel int

	HitCount       int64     `gorm:"not null;default:0"`
	LastAccessedAt time.Time `gorm:"index"`
}
