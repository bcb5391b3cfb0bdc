package routes

import (
	"log"

	"backend/config"
	"backend/controllers"
	"backend/middlewares"
	"backend/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	hub := services.NewRealtimeHub()
	push, err := services.NewPushService(config.DB)
	if err != nil {
		log.Printf("push service disabled: %v", err)
		push = nil
	}
	services.InitAlertDeps(config.DB, hub, push)

	rtc := controllers.NewRealtimeController(hub)

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	{
		ing := api.Group("/ingredients")
		{
			ing.GET("", controllers.ListIngredients)
			ing.POST("", controllers.CreateIngredient)
			ing.GET("/expiring", controllers.ListExpiringIngredients)
			ing.GET("/:id", controllers.GetIngredient)
			ing.PUT("/:id", controllers.UpdateIngredient)
			ing.DELETE("/:id", controllers.DeleteIngredient)
		}

		foods := api.Group("/foods")
		{
			foods.GET("", controllers.ListFoods)
			foods.POST("", controllers.CreateFood)
			foods.GET("/:id", controllers.GetFood)
			foods.PUT("/:id", controllers.UpdateFood)
			foods.DELETE("/:id", controllers.DeleteFood)
			foods.POST("/:id/image", controllers.UploadFoodImage)
		}

		nutrition := api.Group("/nutrition")
		{
			nutrition.GET("/daily", controllers.DailySummary)
			nutrition.GET("/weekly", controllers.WeeklySummary)
			nutrition.GET("/overview", controllers.OverviewSummary)
			nutrition.GET("/targets", controllers.GetNutritionTargets)
			nutrition.POST("/targets/refresh", controllers.RefreshNutritionTargets)
		}

		suggestions := api.Group("/suggestions")
		{
			suggestions.POST("/recipe", controllers.GenerateRecipe)
			suggestions.GET("/foods", controllers.SuggestFoods)
		}

		if push != nil {
			dc := controllers.NewDeviceController(push)
			api.POST("/devices/register", dc.Register)
		}
		api.GET("/alerts", controllers.ListAlerts)
		api.GET("/ws", rtc.AlertsWS)
	}

	return r
}
