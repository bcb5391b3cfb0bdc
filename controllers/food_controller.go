package controllers

import (
	"fmt"
	"net/http"

	"backend/config"
	"backend/services"
	"backend/utils"

	"github.com/gin-gonic/gin"
)

func newFoodService() *services.FoodService {
	ledger := services.NewInventoryLedger(config.DB)
	return services.NewFoodService(config.DB, ledger)
}

func CreateFood(c *gin.Context) {
	uid := c.GetUint("userID")
	var spec services.FoodSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	food, err := newFoodService().CreateFood(uid, spec)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func UpdateFood(c *gin.Context) {
	uid := c.GetUint("userID")
	id, ok := pathID(c)
	if !ok {
		return
	}
	var spec services.FoodSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	food, err := newFoodService().UpdateFood(uid, id, spec)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

func DeleteFood(c *gin.Context) {
	uid := c.GetUint("userID")
	id, ok := pathID(c)
	if !ok {
		return
	}
	deleted, err := newFoodService().DeleteFood(uid, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func GetFood(c *gin.Context) {
	uid := c.GetUint("userID")
	id, ok := pathID(c)
	if !ok {
		return
	}
	food, err := newFoodService().GetFood(uid, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

func ListFoods(c *gin.Context) {
	uid := c.GetUint("userID")
	foods, err := newFoodService().ListFoods(uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

// UploadFoodImage accepts a base64 data-URL payload, stores it in S3 and
// records the resulting URL on the food.
func UploadFoodImage(c *gin.Context) {
	uid := c.GetUint("userID")
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := newFoodService()
	if _, err := svc.GetFood(uid, id); err != nil {
		writeServiceError(c, err)
		return
	}

	url, err := utils.UploadBase64ImageToS3(body.Image, fmt.Sprintf("food-%d", id))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := svc.SetImageURL(uid, id, url); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
