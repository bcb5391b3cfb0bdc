package controllers

import (
	"net/http"
	"strconv"
	"time"

	"backend/config"
	"backend/services"

	"github.com/gin-gonic/gin"
)

func newNutritionService() *services.NutritionService {
	ai := services.NewAIService()
	targets := services.NewTargetsService(config.DB, ai)
	return services.NewNutritionService(config.DB, targets)
}

func parseDate(c *gin.Context, param, fallback string) (time.Time, bool) {
	raw := c.DefaultQuery(param, fallback)
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param + " (want YYYY-MM-DD)"})
		return time.Time{}, false
	}
	return d, true
}

func wantTargets(c *gin.Context) bool {
	return c.DefaultQuery("targets", "true") != "false"
}

func DailySummary(c *gin.Context) {
	uid := c.GetUint("userID")
	date, ok := parseDate(c, "date", time.Now().UTC().Format("2006-01-02"))
	if !ok {
		return
	}

	out, err := newNutritionService().GetDailySummary(c.Request.Context(), uid, date, wantTargets(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func WeeklySummary(c *gin.Context) {
	uid := c.GetUint("userID")
	now := time.Now().UTC()
	start, ok := parseDate(c, "start", now.AddDate(0, 0, -6).Format("2006-01-02"))
	if !ok {
		return
	}
	end, ok := parseDate(c, "end", now.Format("2006-01-02"))
	if !ok {
		return
	}

	out, err := newNutritionService().GetWeeklySummary(c.Request.Context(), uid, start, end, wantTargets(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func OverviewSummary(c *gin.Context) {
	uid := c.GetUint("userID")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	out, err := newNutritionService().GetOverviewSummary(c.Request.Context(), uid, days, wantTargets(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetNutritionTargets(c *gin.Context) {
	uid := c.GetUint("userID")
	svc := services.NewTargetsService(config.DB, services.NewAIService())
	t, err := svc.GetOrCreate(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func RefreshNutritionTargets(c *gin.Context) {
	uid := c.GetUint("userID")
	svc := services.NewTargetsService(config.DB, services.NewAIService())
	t, err := svc.Refresh(c.Request.Context(), uid)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
