package services

import (
	"context"
	"errors"
	"fmt"

	"backend/models"

	"gorm.io/gorm"
)

// TargetsService is a read-through cache over AI-derived daily nutrition
// targets: computed once per user, then served from the database until an
// explicit refresh.
type TargetsService struct {
	db *gorm.DB
	ai *AIService
}

func NewTargetsService(db *gorm.DB, ai *AIService) *TargetsService {
	return &TargetsService{db: db, ai: ai}
}

type aiTargetsPayload struct {
	TargetDailyCalories      float64 `json:"target_daily_calories"`
	TargetDailyProtein       float64 `json:"target_daily_protein"`
	TargetDailyCarbohydrates float64 `json:"target_daily_carbohydrates"`
	TargetDailyFat           float64 `json:"target_daily_fat"`
	TargetDailyFiber         float64 `json:"target_daily_fiber"`
}

func (s *TargetsService) GetOrCreate(ctx context.Context, userID uint) (*models.UserNutritionTargets, error) {
	var t models.UserNutritionTargets
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&t).Error
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.Refresh(ctx, userID)
}

// Refresh recomputes the targets from the user's profile and overwrites the
// stored row.
func (s *TargetsService) Refresh(ctx context.Context, userID uint) (*models.UserNutritionTargets, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	raw, err := s.ai.Complete(ctx,
		"You are a registered dietitian. Answer with a single JSON object and nothing else.",
		s.buildPrompt(&user))
	if err != nil {
		return nil, err
	}

	var payload aiTargetsPayload
	if !decodeLenient(raw, &payload) || payload.TargetDailyCalories <= 0 {
		// Unusable model output degrades to sensible general-population
		// defaults rather than failing the request.
		payload = aiTargetsPayload{
			TargetDailyCalories:      2000,
			TargetDailyProtein:       75,
			TargetDailyCarbohydrates: 250,
			TargetDailyFat:           65,
			TargetDailyFiber:         28,
		}
	}

	t := models.UserNutritionTargets{
		UserID:                   userID,
		TargetDailyCalories:      payload.TargetDailyCalories,
		TargetDailyProtein:       payload.TargetDailyProtein,
		TargetDailyCarbohydrates: payload.TargetDailyCarbohydrates,
		TargetDailyFat:           payload.TargetDailyFat,
		TargetDailyFiber:         payload.TargetDailyFiber,
	}
	err = s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Assign(map[string]any{
			"target_daily_calories":      t.TargetDailyCalories,
			"target_daily_protein":       t.TargetDailyProtein,
			"target_daily_carbohydrates": t.TargetDailyCarbohydrates,
			"target_daily_fat":           t.TargetDailyFat,
			"target_daily_fiber":         t.TargetDailyFiber,
		}).
		FirstOrCreate(&t).Error
	if err != nil {
		return nil, fmt.Errorf("store nutrition targets: %w", err)
	}
	return &t, nil
}

func (s *TargetsService) buildPrompt(u *models.User) string {
	prompt := "Compute daily nutrition targets for this person.\n"
	if u.HeightCm > 0 {
		prompt += fmt.Sprintf("- Height: %.0f cm\n", u.HeightCm)
	}
	if u.WeightKg > 0 {
		prompt += fmt.Sprintf("- Weight: %.0f kg\n", u.WeightKg)
	}
	if u.ActivityLevel != "" {
		prompt += fmt.Sprintf("- Activity level: %s\n", u.ActivityLevel)
	}
	if u.FitnessGoal != "" {
		prompt += fmt.Sprintf("- Goal: %s\n", u.FitnessGoal)
	}
	if u.DietaryPreferences != "" {
		prompt += fmt.Sprintf("- Dietary preferences: %s\n", u.DietaryPreferences)
	}
	prompt += "\nRespond with exactly this JSON shape:\n"
	prompt += `{"target_daily_calories": 0, "target_daily_protein": 0, "target_daily_carbohydrates": 0, "target_daily_fat": 0, "target_daily_fiber": 0}`
	return prompt
}
