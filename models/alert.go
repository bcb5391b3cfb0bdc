package models

import "time"

const (
	AlertLowStock   = "low_stock"
	AlertExpired    = "expired"
	AlertExpirySoon = "expiry_soon"
)

type Alert struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       uint      `gorm:"index"`
	Type         string    `gorm:"size:20"`
	Message      string    `gorm:"type:text"`
	IngredientID uint      `gorm:"index"` // subject ingredient, 0 if none
	CreatedAt    time.Time
}
