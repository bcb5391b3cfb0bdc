package services

import (
	"fmt"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

type alertDeps struct {
	db *gorm.DB
	rt *RealtimeHub
	ps *PushService
}

var _alert alertDeps

func InitAlertDeps(db *gorm.DB, rt *RealtimeHub, ps *PushService) {
	_alert = alertDeps{db: db, rt: rt, ps: ps}
}

// EmitAlert persists an inventory alert and fans it out over websocket and
// push. Safe to call from anywhere, including before InitAlertDeps (no-op
// then); every branch is best-effort.
func EmitAlert(userID uint, typ string, ingredientID uint, message string) {
	if _alert.db == nil {
		return
	}
	a := &models.Alert{
		UserID:       userID,
		Type:         typ,
		Message:      message,
		IngredientID: ingredientID,
		CreatedAt:    time.Now(),
	}
	_ = _alert.db.Create(a).Error

	if _alert.rt != nil {
		_alert.rt.BroadcastAlert(userID, map[string]any{
			"kind":  "alert.created",
			"alert": a,
		})
	}
	if _alert.ps != nil {
		_alert.ps.PushToUser(userID, "Inventory alert", message, map[string]string{
			"type":         typ,
			"alertId":      fmt.Sprintf("%d", a.ID),
			"ingredientId": fmt.Sprintf("%d", ingredientID),
		})
	}
}

// ListAlerts returns the user's most recent alerts, newest first.
func ListAlerts(db *gorm.DB, userID uint, limit int) ([]models.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	var alerts []models.Alert
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, err
}
