package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"backend/models"

	"gorm.io/gorm"
)

func suggestionServiceForTest(t *testing.T, srvURL string) (*SuggestionService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewSuggestionService(db, aiStub(srvURL), NewRecipeCacheService(db)), db
}

func recipeServer(t *testing.T, calls *int64, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		w.Write([]byte(chatReply(body)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateRecipeCachesResult(t *testing.T) {
	var calls int64
	srv := recipeServer(t, &calls, `{
		"name": "Pho Bo",
		"calories": 450,
		"protein": 35,
		"difficulty_level": 3,
		"instructions": ["simmer broth", "assemble bowl"],
		"ingredients": [{"name": "beef", "quantity": 2, "unit": "kg"}]
	}`)
	svc, _ := suggestionServiceForTest(t, srv.URL)
	ings := []RecipeIngredient{{Name: "Beef", Quantity: 2, Unit: "kg"}}

	first, err := svc.GenerateRecipe(context.Background(), "Pho Bo", ings)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.FromCache {
		t.Fatalf("first call served from cache")
	}
	if first.Name != "Pho Bo" || first.Calories != 450 || len(first.Instructions) != 2 {
		t.Fatalf("first recipe = %+v", first)
	}

	// An equivalent request (different casing and order) must hit the cache
	// without another provider call.
	second, err := svc.GenerateRecipe(context.Background(), "pho-bo",
		[]RecipeIngredient{{Name: " BEEF", Quantity: 2, Unit: "KG"}})
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second call missed the cache")
	}
	if second.Calories != 450 || len(second.Ingredients) != 1 || second.Ingredients[0].Name != "beef" {
		t.Fatalf("cached recipe = %+v", second)
	}
	if n := atomic.LoadInt64(&calls); n != 1 {
		t.Fatalf("provider calls = %d, want 1", n)
	}
}

func TestGenerateRecipeMalformedPayloadNotCached(t *testing.T) {
	var calls int64
	srv := recipeServer(t, &calls, "I'm sorry, I can't produce JSON today.")
	svc, db := suggestionServiceForTest(t, srv.URL)

	out, err := svc.GenerateRecipe(context.Background(), "Mystery Dish", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Name != "Mystery Dish" || out.DifficultyLevel != 1 || out.FromCache {
		t.Fatalf("fallback recipe = %+v", out)
	}

	var cached int64
	db.Model(&models.CachedFood{}).Count(&cached)
	if cached != 0 {
		t.Fatalf("cache entries = %d, want 0 (fallback must not be cached)", cached)
	}

	// The next identical request goes back to the provider.
	if _, err := svc.GenerateRecipe(context.Background(), "Mystery Dish", nil); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if n := atomic.LoadInt64(&calls); n != 2 {
		t.Fatalf("provider calls = %d, want 2", n)
	}
}

func TestGenerateRecipeClampsDifficulty(t *testing.T) {
	var calls int64
	srv := recipeServer(t, &calls, `{"name": "Lava Cake", "difficulty_level": 11}`)
	svc, _ := suggestionServiceForTest(t, srv.URL)

	out, err := svc.GenerateRecipe(context.Background(), "Lava Cake", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.DifficultyLevel != 1 {
		t.Fatalf("difficulty = %d, want clamped 1", out.DifficultyLevel)
	}
}

func TestGenerateRecipeRequiresName(t *testing.T) {
	svc, _ := suggestionServiceForTest(t, "http://unused")

	var ve *ValidationError
	if _, err := svc.GenerateRecipe(context.Background(), "  ", nil); !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestGenerateRecipeProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	svc, _ := suggestionServiceForTest(t, srv.URL)

	_, err := svc.GenerateRecipe(context.Background(), "Pho Bo", nil)
	if !errors.Is(err, ErrAIServiceUnavailable) {
		t.Fatalf("error = %v, want ErrAIServiceUnavailable", err)
	}
}

func TestSuggestFoodsFromInventory(t *testing.T) {
	var calls int64
	srv := recipeServer(t, &calls, `[
		{"name": "Grilled Chicken", "calories": 500, "difficulty_level": 2},
		{"name": "Chicken Soup", "calories": 300, "difficulty_level": 1},
		{"name": "Chicken Rice", "calories": 650, "difficulty_level": 2}
	]`)
	svc, db := suggestionServiceForTest(t, srv.URL)
	seedIngredient(t, db, 1, "Chicken", 5, models.UnitKilogram)

	out, err := svc.SuggestFoods(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("suggestions = %d, want limit-clamped 2", len(out))
	}
	if out[0].Name != "Grilled Chicken" {
		t.Fatalf("first suggestion = %+v", out[0])
	}
}

func TestSuggestFoodsMalformedPayload(t *testing.T) {
	var calls int64
	srv := recipeServer(t, &calls, "no dishes for you")
	svc, _ := suggestionServiceForTest(t, srv.URL)

	out, err := svc.SuggestFoods(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("suggestions = %#v, want empty non-nil slice", out)
	}
}
