package controllers

import (
	"net/http"
	"strconv"

	"backend/config"
	"backend/services"

	"github.com/gin-gonic/gin"
)

func newSuggestionService() *services.SuggestionService {
	ai := services.NewAIService()
	cache := services.NewRecipeCacheService(config.DB)
	return services.NewSuggestionService(config.DB, ai, cache)
}

func GenerateRecipe(c *gin.Context) {
	var body struct {
		Name        string                      `json:"name" binding:"required"`
		Ingredients []services.RecipeIngredient `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := newSuggestionService().GenerateRecipe(c.Request.Context(), body.Name, body.Ingredients)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func SuggestFoods(c *gin.Context) {
	uid := c.GetUint("userID")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	out, err := newSuggestionService().SuggestFoods(c.Request.Context(), uid, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
