package models

import (
	"time"

	"gorm.io/gorm"
)

// Food is a dish the user composed from inventory ingredients. Creating one
// deducts the linked ingredient quantities from stock; deleting it restores
// them.
type Food struct {
	gorm.Model
	UserID          uint       `gorm:"index;not null"`
	Name            string     `gorm:"size:255;not null"`
	Calories        float64    `gorm:"not null;default:0"`
	Protein         float64    `gorm:"not null;default:0"`
	Carbohydrates   float64    `gorm:"not null;default:0"`
	Fat             float64    `gorm:"not null;default:0"`
	Fiber           float64    `gorm:"not null;default:0"`
	Instructions    StringList `gorm:"type:text"`
	Tips            StringList `gorm:"type:text"`
	DifficultyLevel int        `gorm:"default:1"` // 1..5
	ImageURL        string     `gorm:"size:512"`
	ConsumedAt      *time.Time // always stored in UTC

	Ingredients []FoodIngredient `gorm:"foreignKey:FoodID"`
}

// FoodIngredient links a food to an inventory ingredient. Quantity is the
// amount the food consumed, not the remaining stock.
type FoodIngredient struct {
	ID           uint            `gorm:"primaryKey"`
	FoodID       uint            `gorm:"index;not null"`
	IngredientID uint            `gorm:"index;not null"`
	Quantity     float64         `gorm:"not null;default:0"`
	Unit         MeasurementUnit `gorm:"size:16"`
}
