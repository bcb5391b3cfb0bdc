package models

import "gorm.io/gorm"

// UserNutritionTargets holds the AI-derived daily goals for one user.
// Computed once and then served from this row until explicitly refreshed.
type UserNutritionTargets struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`

	TargetDailyCalories      float64
	TargetDailyProtein       float64
	TargetDailyCarbohydrates float64
	TargetDailyFat           float64
	TargetDailyFiber         float64
}
