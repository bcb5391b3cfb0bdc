package services

import (
	"testing"

	"backend/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema. The
// connection pool is capped at one so concurrent test writers serialize the
// same way the conditional updates expect.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Ingredient{},
		&models.Food{},
		&models.FoodIngredient{},
		&models.Meal{},
		&models.MealFood{},
		&models.UserNutritionTargets{},
		&models.CachedFood{},
		&models.Alert{},
		&models.UserDevice{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedIngredient(t *testing.T, db *gorm.DB, userID uint, name string, qty float64, unit models.MeasurementUnit) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{UserID: userID, Name: name, Quantity: qty, Unit: unit}
	if err := db.Create(ing).Error; err != nil {
		t.Fatalf("seed ingredient %s: %v", name, err)
	}
	return ing
}

func ingredientQty(t *testing.T, db *gorm.DB, id uint) float64 {
	t.Helper()
	var ing models.Ingredient
	if err := db.First(&ing, id).Error; err != nil {
		t.Fatalf("reload ingredient %d: %v", id, err)
	}
	return ing.Quantity
}
