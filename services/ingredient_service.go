package services

import (
	"errors"
	"fmt"
	"time"

	"backend/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var validate = validator.New()

type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

type IngredientRequest struct {
	Name         string     `json:"name" validate:"required,max=255"`
	Quantity     float64    `json:"quantity" validate:"gte=0"`
	Unit         string     `json:"unit" validate:"required,max=16"`
	Category     string     `json:"category" validate:"max=32"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	MinThreshold float64    `json:"min_threshold" validate:"gte=0"`
}

func (s *IngredientService) Create(userID uint, req IngredientRequest) (*models.Ingredient, error) {
	if err := validate.Struct(req); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	ing := &models.Ingredient{
		UserID:       userID,
		Name:         req.Name,
		Quantity:     req.Quantity,
		Unit:         models.MeasurementUnit(req.Unit),
		Category:     models.IngredientCategory(req.Category),
		ExpiryDate:   req.ExpiryDate,
		MinThreshold: req.MinThreshold,
	}
	if err := s.db.Create(ing).Error; err != nil {
		return nil, fmt.Errorf("create ingredient: %w", err)
	}
	return ing, nil
}

func (s *IngredientService) Get(userID, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&ing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

func (s *IngredientService) List(userID uint) ([]models.Ingredient, error) {
	var out []models.Ingredient
	err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&out).Error
	return out, err
}

// Update replaces the descriptive fields and, when the caller supplies a new
// quantity, sets the stock level directly. Direct quantity edits are the one
// stock mutation outside the ledger: the user restating what is on the shelf.
func (s *IngredientService) Update(userID, id uint, req IngredientRequest) (*models.Ingredient, error) {
	if err := validate.Struct(req); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	ing, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	ing.Name = req.Name
	ing.Quantity = req.Quantity
	ing.Unit = models.MeasurementUnit(req.Unit)
	ing.Category = models.IngredientCategory(req.Category)
	ing.ExpiryDate = req.ExpiryDate
	ing.MinThreshold = req.MinThreshold
	if err := s.db.Save(ing).Error; err != nil {
		return nil, fmt.Errorf("update ingredient %d: %w", id, err)
	}
	return ing, nil
}

// Delete is idempotent: deleting an absent ingredient reports false, not an
// error. Foods that consumed the ingredient keep their link rows; later
// restores for it become no-ops in the ledger.
func (s *IngredientService) Delete(userID, id uint) (bool, error) {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Ingredient{})
	if res.Error != nil {
		return false, fmt.Errorf("delete ingredient %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListExpiring returns ingredients whose expiry date falls within the next
// `days` days, soonest first.
func (s *IngredientService) ListExpiring(userID uint, days int) ([]models.Ingredient, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().AddDate(0, 0, days)
	var out []models.Ingredient
	err := s.db.
		Where("user_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", userID, cutoff).
		Order("expiry_date ASC").
		Find(&out).Error
	return out, err
}
