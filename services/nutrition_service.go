package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// NutritionService assembles the read-side nutrition summaries. Totals are
// always recomputed from the Meal → MealFood → Food graph, never trusted from
// the snapshot columns, so repeated calls over fixed data return identical
// numbers.
type NutritionService struct {
	db      *gorm.DB
	targets *TargetsService
}

func NewNutritionService(db *gorm.DB, targets *TargetsService) *NutritionService {
	return &NutritionService{db: db, targets: targets}
}

type NutritionTotals struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fat           float64 `json:"fat"`
	Fiber         float64 `json:"fiber"`
}

func (t *NutritionTotals) add(o NutritionTotals) {
	t.Calories += o.Calories
	t.Protein += o.Protein
	t.Carbohydrates += o.Carbohydrates
	t.Fat += o.Fat
	t.Fiber += o.Fiber
}

func (t NutritionTotals) rounded() NutritionTotals {
	return NutritionTotals{
		Calories:      round2(t.Calories),
		Protein:       round2(t.Protein),
		Carbohydrates: round2(t.Carbohydrates),
		Fat:           round2(t.Fat),
		Fiber:         round2(t.Fiber),
	}
}

func (t NutritionTotals) dividedBy(n int) NutritionTotals {
	if n <= 0 {
		return NutritionTotals{}
	}
	d := float64(n)
	return NutritionTotals{
		Calories:      round2(t.Calories / d),
		Protein:       round2(t.Protein / d),
		Carbohydrates: round2(t.Carbohydrates / d),
		Fat:           round2(t.Fat / d),
		Fiber:         round2(t.Fiber / d),
	}
}

type MealBreakdown struct {
	MealType  models.MealType `json:"meal_type"`
	MealID    uint            `json:"meal_id,omitempty"` // 0 for a synthesized placeholder
	FoodCount int             `json:"food_count"`
	NutritionTotals
}

type TargetTotals struct {
	TargetCalories      float64 `json:"target_calories"`
	TargetProtein       float64 `json:"target_protein"`
	TargetCarbohydrates float64 `json:"target_carbohydrates"`
	TargetFat           float64 `json:"target_fat"`
	TargetFiber         float64 `json:"target_fiber"`
}

func targetsFor(t *models.UserNutritionTargets, scale float64) *TargetTotals {
	if t == nil {
		return nil
	}
	return &TargetTotals{
		TargetCalories:      round2(t.TargetDailyCalories * scale),
		TargetProtein:       round2(t.TargetDailyProtein * scale),
		TargetCarbohydrates: round2(t.TargetDailyCarbohydrates * scale),
		TargetFat:           round2(t.TargetDailyFat * scale),
		TargetFiber:         round2(t.TargetDailyFiber * scale),
	}
}

type DailySummary struct {
	Date  string          `json:"date"`
	Meals []MealBreakdown `json:"meals"` // always exactly one entry per meal type
	NutritionTotals
	Targets *TargetTotals `json:"targets,omitempty"`
}

// WeeklySummary accumulates the day totals of [start, end]. The Average*
// fields hold the plain sum, not a per-day mean; that is the shape existing
// clients already consume, see DESIGN.md before changing it. Targets are the
// daily targets scaled by 7.
type WeeklySummary struct {
	Start string         `json:"start"`
	End   string         `json:"end"`
	Days  []DailySummary `json:"days"`

	AverageCalories      float64 `json:"average_calories"`
	AverageProtein       float64 `json:"average_protein"`
	AverageCarbohydrates float64 `json:"average_carbohydrates"`
	AverageFat           float64 `json:"average_fat"`
	AverageFiber         float64 `json:"average_fiber"`

	Targets *TargetTotals `json:"targets,omitempty"`
}

// OverviewSummary averages over the days the user actually logged meals on.
type OverviewSummary struct {
	DaysCounted int             `json:"days_counted"`
	Average     NutritionTotals `json:"average"`
	Total       NutritionTotals `json:"total"`
	Targets     *TargetTotals   `json:"targets,omitempty"`
}

// GetDailySummary returns one breakdown entry per meal type, ordered by the
// fixed meal-type ranking, synthesizing zero-valued placeholders for types
// with no meal on that date. Placeholders are never persisted.
func (s *NutritionService) GetDailySummary(ctx context.Context, userID uint, date time.Time, withTargets bool) (*DailySummary, error) {
	day := dateOnly(date)
	out := &DailySummary{Date: day.Format("2006-01-02")}

	for _, mt := range models.AllMealTypes() {
		meal, err := s.findMeal(ctx, userID, day, mt)
		if err != nil {
			return nil, err
		}
		if meal == nil {
			out.Meals = append(out.Meals, MealBreakdown{MealType: mt})
			continue
		}
		bd, err := s.mealBreakdown(ctx, meal)
		if err != nil {
			return nil, err
		}
		out.Meals = append(out.Meals, bd)
		out.NutritionTotals.add(bd.NutritionTotals)
	}
	out.NutritionTotals = out.NutritionTotals.rounded()

	if withTargets {
		t, err := s.targets.GetOrCreate(ctx, userID)
		if err != nil {
			// Summaries degrade gracefully: missing targets are not an error.
			log.Printf("daily summary: targets unavailable for user %d: %v", userID, err)
		} else {
			out.Targets = targetsFor(t, 1)
		}
	}
	return out, nil
}

// GetWeeklySummary runs one daily summary per calendar day in [start, end]
// inclusive and sums the day totals.
func (s *NutritionService) GetWeeklySummary(ctx context.Context, userID uint, start, end time.Time, withTargets bool) (*WeeklySummary, error) {
	from, to := dateOnly(start), dateOnly(end)
	if to.Before(from) {
		return nil, validationErrorf("end date precedes start date")
	}

	out := &WeeklySummary{
		Start: from.Format("2006-01-02"),
		End:   to.Format("2006-01-02"),
	}
	var sum NutritionTotals
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		daily, err := s.GetDailySummary(ctx, userID, d, false)
		if err != nil {
			return nil, err
		}
		out.Days = append(out.Days, *daily)
		sum.add(daily.NutritionTotals)
	}
	sum = sum.rounded()
	out.AverageCalories = sum.Calories
	out.AverageProtein = sum.Protein
	out.AverageCarbohydrates = sum.Carbohydrates
	out.AverageFat = sum.Fat
	out.AverageFiber = sum.Fiber

	if withTargets {
		t, err := s.targets.GetOrCreate(ctx, userID)
		if err != nil {
			log.Printf("weekly summary: targets unavailable for user %d: %v", userID, err)
		} else {
			out.Targets = targetsFor(t, 7)
		}
	}
	return out, nil
}

// GetOverviewSummary discovers every date the user logged a meal on, sums the
// daily totals and divides by the distinct-day count. targetDays scales the
// attached targets (e.g. 30 for a month view).
func (s *NutritionService) GetOverviewSummary(ctx context.Context, userID uint, targetDays int, withTargets bool) (*OverviewSummary, error) {
	var dates []time.Time
	err := s.db.WithContext(ctx).
		Model(&models.Meal{}).
		Where("user_id = ?", userID).
		Distinct("meal_date").
		Order("meal_date ASC").
		Pluck("meal_date", &dates).Error
	if err != nil {
		return nil, err
	}

	out := &OverviewSummary{DaysCounted: len(dates)}
	var sum NutritionTotals
	for _, d := range dates {
		daily, err := s.GetDailySummary(ctx, userID, d, false)
		if err != nil {
			return nil, err
		}
		sum.add(daily.NutritionTotals)
	}
	out.Total = sum.rounded()
	out.Average = sum.dividedBy(len(dates))

	if withTargets {
		if targetDays <= 0 {
			targetDays = 1
		}
		t, err := s.targets.GetOrCreate(ctx, userID)
		if err != nil {
			log.Printf("overview summary: targets unavailable for user %d: %v", userID, err)
		} else {
			out.Targets = targetsFor(t, float64(targetDays))
		}
	}
	return out, nil
}

// findMeal resolves "the most recent meal of this type on this date". Among
// matches the highest meal_date wins; ties break on the highest id, so the
// choice is stable across calls.
func (s *NutritionService) findMeal(ctx context.Context, userID uint, day time.Time, mt models.MealType) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).
		Preload("Foods").
		Where("user_id = ? AND meal_type = ? AND meal_date = ?", userID, mt, day).
		Order("meal_date DESC, id DESC").
		First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meal, nil
}

// mealBreakdown recomputes a meal's totals from its food links. Links whose
// food row no longer resolves are skipped, not failed on.
func (s *NutritionService) mealBreakdown(ctx context.Context, meal *models.Meal) (MealBreakdown, error) {
	bd := MealBreakdown{MealType: meal.MealType, MealID: meal.ID}
	if len(meal.Foods) == 0 {
		return bd, nil
	}

	ids := make([]uint, 0, len(meal.Foods))
	for _, link := range meal.Foods {
		ids = append(ids, link.FoodID)
	}
	var foods []models.Food
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&foods).Error; err != nil {
		return bd, err
	}
	byID := make(map[uint]models.Food, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	for _, link := range meal.Foods {
		f, ok := byID[link.FoodID]
		if !ok {
			continue
		}
		bd.FoodCount++
		bd.NutritionTotals.add(NutritionTotals{
			Calories:      f.Calories,
			Protein:       f.Protein,
			Carbohydrates: f.Carbohydrates,
			Fat:           f.Fat,
			Fiber:         f.Fiber,
		})
	}
	bd.NutritionTotals = bd.NutritionTotals.rounded()
	return bd, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
