package models

import (
	"time"

	"gorm.io/gorm"
)

type MeasurementUnit string

const (
	UnitGram       MeasurementUnit = "g"
	UnitKilogram   MeasurementUnit = "kg"
	UnitMilliliter MeasurementUnit = "ml"
	UnitLiter      MeasurementUnit = "l"
	UnitPiece      MeasurementUnit = "piece"
	UnitTablespoon MeasurementUnit = "tbsp"
	UnitTeaspoon   MeasurementUnit = "tsp"
	UnitCup        MeasurementUnit = "cup"
)

type IngredientCategory string

const (
	CategoryVegetable IngredientCategory = "vegetable"
	CategoryFruit     IngredientCategory = "fruit"
	CategoryMeat      IngredientCategory = "meat"
	CategorySeafood   IngredientCategory = "seafood"
	CategoryDairy     IngredientCategory = "dairy"
	CategoryGrain     IngredientCategory = "grain"
	CategorySpice     IngredientCategory = "spice"
	CategoryOther     IngredientCategory = "other"
)

// Ingredient is a stock row in a user's inventory. Quantity is the amount
// still available; it is mutated only through the inventory ledger and is
// never negative.
type Ingredient struct {
	gorm.Model
	UserID       uint               `gorm:"index;not null"`
	Name         string             `gorm:"size:255;not null"`
	Quantity     float64            `gorm:"not null;default:0"`
	Unit         MeasurementUnit    `gorm:"size:16;not null"`
	Category     IngredientCategory `gorm:"size:32"`
	ExpiryDate   *time.Time
	MinThreshold float64 // low-stock alert level; 0 disables
}
