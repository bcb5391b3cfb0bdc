package models

import (
	"time"

	"gorm.io/gorm"
)

type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
	MealOther     MealType = "Other"
)

// AllMealTypes lists the meal buckets in their fixed display/sort order.
func AllMealTypes() []MealType {
	return []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack, MealOther}
}

// Meal groups the foods a user ate in one meal slot. There is at most one
// meal per (user, date, type); writers find-or-create it. The Total* columns
// are a convenience snapshot; summaries always recompute totals from the
// linked foods.
type Meal struct {
	gorm.Model
	UserID     uint      `gorm:"index;not null"`
	MealType   MealType  `gorm:"size:16;not null"`
	MealDate   time.Time `gorm:"index;not null"` // midnight UTC of the day
	ConsumedAt *time.Time

	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFat      float64
	TotalFiber    float64

	Foods []MealFood `gorm:"foreignKey:MealID"`
}

type MealFood struct {
	ID     uint `gorm:"primaryKey"`
	MealID uint `gorm:"index;not null"`
	FoodID uint `gorm:"index;not null"`
}
