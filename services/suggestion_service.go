package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"backend/models"

	"gorm.io/gorm"
)

// SuggestionService drives the AI-backed recipe and food-suggestion flows,
// going through the shared recipe cache before and after every provider call.
type SuggestionService struct {
	db    *gorm.DB
	ai    *AIService
	cache *RecipeCacheService
}

func NewSuggestionService(db *gorm.DB, ai *AIService, cache *RecipeCacheService) *SuggestionService {
	return &SuggestionService{db: db, ai: ai, cache: cache}
}

type RecipeSuggestion struct {
	Name            string             `json:"name"`
	Calories        float64            `json:"calories"`
	Protein         float64            `json:"protein"`
	Carbohydrates   float64            `json:"carbohydrates"`
	Fat             float64            `json:"fat"`
	Fiber           float64            `json:"fiber"`
	Instructions    []string           `json:"instructions"`
	Tips            []string           `json:"tips"`
	DifficultyLevel int                `json:"difficulty_level"`
	Ingredients     []RecipeIngredient `json:"ingredients"`
	FromCache       bool               `json:"from_cache"`
}

// GenerateRecipe returns a recipe for the named dish and ingredient lines,
// serving from the shared cache when an equivalent request was answered
// before. A malformed AI payload degrades to a minimal recipe (name echoed
// back, empty steps) and is never cached.
func (s *SuggestionService) GenerateRecipe(ctx context.Context, foodName string, ingredients []RecipeIngredient) (*RecipeSuggestion, error) {
	if strings.TrimSpace(foodName) == "" {
		return nil, validationErrorf("food name is required")
	}

	key := BuildSearchKey(foodName, ingredients)
	if cached, err := s.cache.Lookup(key); err == nil {
		return cachedToSuggestion(cached), nil
	}

	raw, err := s.ai.Complete(ctx,
		"You are a professional chef and nutritionist. Answer with a single JSON object and nothing else.",
		s.buildRecipePrompt(foodName, ingredients))
	if err != nil {
		return nil, err
	}

	var out RecipeSuggestion
	if !decodeLenient(raw, &out) || out.Name == "" {
		log.Printf("recipe generation: unusable AI payload for %q, returning default", foodName)
		return &RecipeSuggestion{Name: foodName, Ingredients: ingredients, DifficultyLevel: 1}, nil
	}
	if out.DifficultyLevel < 1 || out.DifficultyLevel > 5 {
		out.DifficultyLevel = 1
	}
	if len(out.Ingredients) == 0 {
		out.Ingredients = ingredients
	}

	if err := s.storeInCache(key, &out); err != nil {
		log.Printf("recipe generation: cache store failed: %v", err)
	}
	return &out, nil
}

// SuggestFoods asks the provider for dishes the user can cook from what is
// currently in stock. Malformed output degrades to an empty list.
func (s *SuggestionService) SuggestFoods(ctx context.Context, userID uint, limit int) ([]RecipeSuggestion, error) {
	if limit <= 0 {
		limit = 5
	}
	var stock []models.Ingredient
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND quantity > 0", userID).
		Order("name ASC").
		Find(&stock).Error
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("Available ingredients:\n")
	if len(stock) == 0 {
		sb.WriteString("- (inventory is empty)\n")
	}
	for _, ing := range stock {
		fmt.Fprintf(&sb, "- %s: %.2f %s\n", ing.Name, ing.Quantity, ing.Unit)
	}
	fmt.Fprintf(&sb, "\nSuggest up to %d dishes that can be cooked mostly from these ingredients.\n", limit)
	sb.WriteString("Respond with a JSON array where each element has this shape:\n")
	sb.WriteString(`{"name": "", "calories": 0, "protein": 0, "carbohydrates": 0, "fat": 0, "fiber": 0, "difficulty_level": 1, "instructions": [], "tips": [], "ingredients": [{"name": "", "quantity": 0, "unit": ""}]}`)

	raw, err := s.ai.Complete(ctx,
		"You are a professional chef. Answer with a single JSON array and nothing else.",
		sb.String())
	if err != nil {
		return nil, err
	}

	var out []RecipeSuggestion
	if !decodeLenient(raw, &out) {
		log.Printf("food suggestions: unusable AI payload for user %d, returning empty list", userID)
		return []RecipeSuggestion{}, nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SuggestionService) buildRecipePrompt(foodName string, ingredients []RecipeIngredient) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a recipe for %q", foodName)
	if len(ingredients) > 0 {
		sb.WriteString(" using these ingredients:\n")
		for _, ing := range ingredients {
			fmt.Fprintf(&sb, "- %s: %.2f %s\n", ing.Name, ing.Quantity, ing.Unit)
		}
	} else {
		sb.WriteString(".\n")
	}
	sb.WriteString("\nInclude total nutrition for the whole dish.\n")
	sb.WriteString("Respond with exactly this JSON shape:\n")
	sb.WriteString(`{"name": "", "calories": 0, "protein": 0, "carbohydrates": 0, "fat": 0, "fiber": 0, "difficulty_level": 1, "instructions": [], "tips": [], "ingredients": [{"name": "", "quantity": 0, "unit": ""}]}`)
	return sb.String()
}

func (s *SuggestionService) storeInCache(key string, r *RecipeSuggestion) error {
	ingJSON, err := json.Marshal(r.Ingredients)
	if err != nil {
		return err
	}
	return s.cache.Store(key, &models.CachedFood{
		Name:            r.Name,
		Calories:        r.Calories,
		Protein:         r.Protein,
		Carbohydrates:   r.Carbohydrates,
		Fat:             r.Fat,
		Fiber:           r.Fiber,
		Instructions:    models.StringList(r.Instructions),
		Tips:            models.StringList(r.Tips),
		IngredientsJSON: string(ingJSON),
		DifficultyLevel: r.DifficultyLevel,
	})
}

func cachedToSuggestion(cf *models.CachedFood) *RecipeSuggestion {
	out := &RecipeSuggestion{
		Name:            cf.Name,
		Calories:        cf.Calories,
		Protein:         cf.Protein,
		Carbohydrates:   cf.Carbohydrates,
		Fat:             cf.Fat,
		Fiber:           cf.Fiber,
		Instructions:    cf.Instructions,
		Tips:            cf.Tips,
		DifficultyLevel: cf.DifficultyLevel,
		FromCache:       true,
	}
	if cf.IngredientsJSON != "" {
		// Stored by us, but tolerate hand-edited rows.
		_ = json.Unmarshal([]byte(cf.IngredientsJSON), &out.Ingredients)
	}
	return out
}
