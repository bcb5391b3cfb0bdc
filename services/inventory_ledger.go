package services

import (
	"errors"
	"fmt"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// InventoryLedger owns every quantity mutation on ingredient stock. Stock
// moves between "available" and "consumed by a food" only through Deduct and
// Restore, so quantity can never go negative.
type InventoryLedger struct {
	db *gorm.DB
}

func NewInventoryLedger(db *gorm.DB) *InventoryLedger {
	return &InventoryLedger{db: db}
}

// WithTx returns a ledger bound to the given transaction so callers can make
// deductions part of a larger atomic write.
func (l *InventoryLedger) WithTx(tx *gorm.DB) *InventoryLedger {
	return &InventoryLedger{db: tx}
}

// Deduct removes amount from the ingredient's available stock. The guard and
// the subtraction run as one conditional UPDATE, so two concurrent deductions
// that would jointly exceed the stock can never both succeed.
func (l *InventoryLedger) Deduct(userID, ingredientID uint, amount float64) error {
	if amount < 0 {
		return validationErrorf("deduction amount must not be negative")
	}
	if amount == 0 {
		return nil
	}

	res := l.db.Model(&models.Ingredient{}).
		Where("id = ? AND user_id = ? AND quantity >= ?", ingredientID, userID, amount).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("deduct ingredient %d: %w", ingredientID, res.Error)
	}
	if res.RowsAffected > 0 {
		l.afterDeduct(userID, ingredientID)
		return nil
	}

	// The conditional update matched nothing: either the ingredient is gone
	// (or not ours) or the stock is short. Fetch once to tell which.
	var ing models.Ingredient
	err := l.db.Where("id = ? AND user_id = ?", ingredientID, userID).First(&ing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deduct ingredient %d: %w", ingredientID, err)
	}
	return &InsufficientIngredientError{Name: ing.Name}
}

// Restore puts amount back into available stock. A missing ingredient is a
// no-op: the user may have deleted it independently of the foods that
// consumed it, and that is accepted.
func (l *InventoryLedger) Restore(userID, ingredientID uint, amount float64) error {
	if amount < 0 {
		return validationErrorf("restore amount must not be negative")
	}
	if amount == 0 {
		return nil
	}

	res := l.db.Model(&models.Ingredient{}).
		Where("id = ? AND user_id = ?", ingredientID, userID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("restore ingredient %d: %w", ingredientID, res.Error)
	}
	return nil
}

// afterDeduct emits low-stock / expiry alerts. Best-effort: a failed alert
// never fails the deduction.
func (l *InventoryLedger) afterDeduct(userID, ingredientID uint) {
	var ing models.Ingredient
	if err := l.db.Where("id = ? AND user_id = ?", ingredientID, userID).First(&ing).Error; err != nil {
		return
	}
	if ing.MinThreshold > 0 && ing.Quantity <= ing.MinThreshold {
		EmitAlert(userID, models.AlertLowStock, ing.ID,
			fmt.Sprintf("%s is running low: %.2f %s left", ing.Name, ing.Quantity, ing.Unit))
	}
	if ing.ExpiryDate != nil {
		now := time.Now()
		switch {
		case ing.ExpiryDate.Before(now):
			EmitAlert(userID, models.AlertExpired, ing.ID,
				fmt.Sprintf("%s expired on %s", ing.Name, ing.ExpiryDate.Format("2006-01-02")))
		case ing.ExpiryDate.Before(now.AddDate(0, 0, 3)):
			EmitAlert(userID, models.AlertExpirySoon, ing.ID,
				fmt.Sprintf("%s expires on %s", ing.Name, ing.ExpiryDate.Format("2006-01-02")))
		}
	}
}
