package controllers

import (
	"net/http"
	"strconv"

	"backend/config"
	"backend/services"

	"github.com/gin-gonic/gin"
)

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func CreateIngredient(c *gin.Context) {
	uid := c.GetUint("userID")
	var req services.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewIngredientService(config.DB)
	ing, err := svc.Create(uid, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

func ListIngredients(c *gin.Context) {
	uid := c.GetUint("userID")
	svc := services.NewIngredientService(config.DB)
	out, err := svc.List(uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetIngredient(c *gin.Context) {
	uid := c.GetUint("userID")
	id, ok := pathID(c)
	if !ok {
		return
	}
	svc := services.NewIngredientService(config.DB)
	ing, err := svc.Get(uid, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func UpdateIngredient(c *gin.Context) {
	uid := c.GetUint("userID")
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req services.IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	svc := services.NewIngredientService(config.DB)
	ing, err := svc.Update(uid, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ing)
}

func DeleteIngredient(c *gin.Context) {
	uid := c.GetUint("userID")
	id, ok := pathID(c)
	if !ok {
		return
	}
	svc := services.NewIngredientService(config.DB)
	deleted, err := svc.Delete(uid, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func ListExpiringIngredients(c *gin.Context) {
	uid := c.GetUint("userID")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	svc := services.NewIngredientService(config.DB)
	out, err := svc.ListExpiring(uid, days)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
