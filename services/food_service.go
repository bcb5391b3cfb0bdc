package services

import (
	"errors"
	"fmt"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// FoodService coordinates the Food + Meal + FoodIngredient lifecycle. Every
// write runs as one transaction: either all rows land (meal, food, links,
// stock deductions) or none do.
type FoodService struct {
	db     *gorm.DB
	ledger *InventoryLedger
}

func NewFoodService(db *gorm.DB, ledger *InventoryLedger) *FoodService {
	return &FoodService{db: db, ledger: ledger}
}

type FoodIngredientLine struct {
	IngredientID uint    `json:"ingredient_id" validate:"required,gt=0"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	Unit         string  `json:"unit" validate:"max=16"`
}

type FoodSpec struct {
	Name            string  `json:"name" validate:"required,max=255"`
	Calories        float64 `json:"calories" validate:"gte=0"`
	Protein         float64 `json:"protein" validate:"gte=0"`
	Carbohydrates   float64 `json:"carbohydrates" validate:"gte=0"`
	Fat             float64 `json:"fat" validate:"gte=0"`
	Fiber           float64 `json:"fiber" validate:"gte=0"`
	Instructions    []string   `json:"instructions"`
	Tips            []string   `json:"tips"`
	DifficultyLevel int        `json:"difficulty_level" validate:"gte=1,lte=5"`
	ConsumedAt      *time.Time `json:"consumed_at"`

	MealType models.MealType `json:"meal_type" validate:"required"`
	MealDate time.Time       `json:"meal_date" validate:"required"`

	Ingredients []FoodIngredientLine `json:"ingredients" validate:"dive"`
}

// dateOnly truncates to midnight UTC so one calendar day maps to exactly one
// meal row per type.
func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// resolveMeal finds the meal for (user, date, type) or creates it.
func resolveMeal(tx *gorm.DB, userID uint, date time.Time, mealType models.MealType) (*models.Meal, error) {
	meal := models.Meal{
		UserID:   userID,
		MealType: mealType,
		MealDate: dateOnly(date),
	}
	err := tx.Where("user_id = ? AND meal_type = ? AND meal_date = ?",
		userID, mealType, dateOnly(date)).
		FirstOrCreate(&meal).Error
	if err != nil {
		return nil, fmt.Errorf("resolve meal: %w", err)
	}
	return &meal, nil
}

func (s *FoodService) CreateFood(userID uint, spec FoodSpec) (*models.Food, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	var food *models.Food
	err := s.db.Transaction(func(tx *gorm.DB) error {
		meal, err := resolveMeal(tx, userID, spec.MealDate, spec.MealType)
		if err != nil {
			return err
		}

		food = &models.Food{
			UserID:          userID,
			Name:            spec.Name,
			Calories:        spec.Calories,
			Protein:         spec.Protein,
			Carbohydrates:   spec.Carbohydrates,
			Fat:             spec.Fat,
			Fiber:           spec.Fiber,
			Instructions:    models.StringList(spec.Instructions),
			Tips:            models.StringList(spec.Tips),
			DifficultyLevel: spec.DifficultyLevel,
			ConsumedAt:      utcPtr(spec.ConsumedAt),
		}
		if err := tx.Create(food).Error; err != nil {
			return fmt.Errorf("create food: %w", err)
		}
		if err := tx.Create(&models.MealFood{MealID: meal.ID, FoodID: food.ID}).Error; err != nil {
			return fmt.Errorf("link food to meal: %w", err)
		}
		if err := s.applyIngredients(tx, userID, food.ID, spec.Ingredients); err != nil {
			return err
		}
		return refreshMealTotals(tx, meal.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetFood(userID, food.ID)
}

// UpdateFood restores every old deduction, drops the old links, rewrites the
// food's fields, repoints its meal link, then reapplies the new ingredient
// lines. An identical ingredient list therefore nets to a zero stock delta.
func (s *FoodService) UpdateFood(userID, foodID uint, spec FoodSpec) (*models.Food, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var food models.Food
		err := tx.Where("id = ? AND user_id = ?", foodID, userID).First(&food).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := s.releaseIngredients(tx, userID, foodID); err != nil {
			return err
		}

		food.Name = spec.Name
		food.Calories = spec.Calories
		food.Protein = spec.Protein
		food.Carbohydrates = spec.Carbohydrates
		food.Fat = spec.Fat
		food.Fiber = spec.Fiber
		food.Instructions = models.StringList(spec.Instructions)
		food.Tips = models.StringList(spec.Tips)
		food.DifficultyLevel = spec.DifficultyLevel
		food.ConsumedAt = utcPtr(spec.ConsumedAt)
		if err := tx.Save(&food).Error; err != nil {
			return fmt.Errorf("update food %d: %w", foodID, err)
		}

		meal, err := resolveMeal(tx, userID, spec.MealDate, spec.MealType)
		if err != nil {
			return err
		}
		oldMealIDs, err := mealIDsForFood(tx, foodID)
		if err != nil {
			return err
		}
		if err := tx.Where("food_id = ?", foodID).Delete(&models.MealFood{}).Error; err != nil {
			return fmt.Errorf("unlink food %d: %w", foodID, err)
		}
		if err := tx.Create(&models.MealFood{MealID: meal.ID, FoodID: foodID}).Error; err != nil {
			return fmt.Errorf("relink food %d: %w", foodID, err)
		}

		if err := s.applyIngredients(tx, userID, foodID, spec.Ingredients); err != nil {
			return err
		}
		for _, id := range append(oldMealIDs, meal.ID) {
			if err := refreshMealTotals(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetFood(userID, foodID)
}

// DeleteFood restores every deducted ingredient, removes the links and the
// food row. Deleting an absent food reports false rather than an error, so
// the delete verb stays idempotent for callers.
func (s *FoodService) DeleteFood(userID, foodID uint) (bool, error) {
	found := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var food models.Food
		err := tx.Where("id = ? AND user_id = ?", foodID, userID).First(&food).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		if err := s.releaseIngredients(tx, userID, foodID); err != nil {
			return err
		}
		mealIDs, err := mealIDsForFood(tx, foodID)
		if err != nil {
			return err
		}
		if err := tx.Where("food_id = ?", foodID).Delete(&models.MealFood{}).Error; err != nil {
			return fmt.Errorf("unlink food %d: %w", foodID, err)
		}
		if err := tx.Unscoped().Delete(&food).Error; err != nil {
			return fmt.Errorf("delete food %d: %w", foodID, err)
		}
		for _, id := range mealIDs {
			if err := refreshMealTotals(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (s *FoodService) GetFood(userID, foodID uint) (*models.Food, error) {
	var food models.Food
	err := s.db.Preload("Ingredients").
		Where("id = ? AND user_id = ?", foodID, userID).
		First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (s *FoodService) ListFoods(userID uint) ([]models.Food, error) {
	var foods []models.Food
	err := s.db.Preload("Ingredients").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&foods).Error
	return foods, err
}

// SetImageURL records the uploaded photo location for a food.
func (s *FoodService) SetImageURL(userID, foodID uint, url string) error {
	res := s.db.Model(&models.Food{}).
		Where("id = ? AND user_id = ?", foodID, userID).
		UpdateColumn("image_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// applyIngredients deducts each line from stock and writes the link rows. A
// zero-quantity line skips the deduction but still records the link.
func (s *FoodService) applyIngredients(tx *gorm.DB, userID, foodID uint, lines []FoodIngredientLine) error {
	ledger := s.ledger.WithTx(tx)
	for _, line := range lines {
		if err := ledger.Deduct(userID, line.IngredientID, line.Quantity); err != nil {
			return err
		}
		link := models.FoodIngredient{
			FoodID:       foodID,
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
			Unit:         models.MeasurementUnit(line.Unit),
		}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("link ingredient %d: %w", line.IngredientID, err)
		}
	}
	return nil
}

func mealIDsForFood(tx *gorm.DB, foodID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&models.MealFood{}).
		Where("food_id = ?", foodID).
		Distinct("meal_id").
		Pluck("meal_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load meals for food %d: %w", foodID, err)
	}
	return ids, nil
}

// refreshMealTotals rewrites a meal's snapshot columns from its current
// foods. The snapshot is a convenience for listings; summaries recompute
// totals themselves.
func refreshMealTotals(tx *gorm.DB, mealID uint) error {
	var links []models.MealFood
	if err := tx.Where("meal_id = ?", mealID).Find(&links).Error; err != nil {
		return err
	}
	var totals struct{ calories, protein, carbs, fat, fiber float64 }
	if len(links) > 0 {
		ids := make([]uint, 0, len(links))
		for _, l := range links {
			ids = append(ids, l.FoodID)
		}
		var foods []models.Food
		if err := tx.Where("id IN ?", ids).Find(&foods).Error; err != nil {
			return err
		}
		for _, f := range foods {
			totals.calories += f.Calories
			totals.protein += f.Protein
			totals.carbs += f.Carbohydrates
			totals.fat += f.Fat
			totals.fiber += f.Fiber
		}
	}
	return tx.Model(&models.Meal{}).
		Where("id = ?", mealID).
		UpdateColumns(map[string]any{
			"total_calories": totals.calories,
			"total_protein":  totals.protein,
			"total_carbs":    totals.carbs,
			"total_fat":      totals.fat,
			"total_fiber":    totals.fiber,
		}).Error
}

// releaseIngredients restores the stock every existing link consumed, then
// removes the links.
func (s *FoodService) releaseIngredients(tx *gorm.DB, userID, foodID uint) error {
	var links []models.FoodIngredient
	if err := tx.Where("food_id = ?", foodID).Find(&links).Error; err != nil {
		return fmt.Errorf("load ingredient links for food %d: %w", foodID, err)
	}
	ledger := s.ledger.WithTx(tx)
	for _, link := range links {
		if err := ledger.Restore(userID, link.IngredientID, link.Quantity); err != nil {
			return err
		}
	}
	if err := tx.Where("food_id = ?", foodID).Delete(&models.FoodIngredient{}).Error; err != nil {
		return fmt.Errorf("clear ingredient links for food %d: %w", foodID, err)
	}
	return nil
}
