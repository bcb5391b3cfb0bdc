package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"backend/models"

	"gorm.io/gorm"
)

// maxSearchKeyLen matches the CachedFood.SearchKey column width.
const maxSearchKeyLen = 500

const defaultCacheMaxEntries = 10000

// RecipeCacheService owns the shared (cross-user) cache of AI-generated
// recipes. Keys are built from ingredient names, never ingredient IDs, so two
// users asking for the same dish share one entry.
type RecipeCacheService struct {
	db         *gorm.DB
	maxEntries int
}

func NewRecipeCacheService(db *gorm.DB) *RecipeCacheService {
	max := defaultCacheMaxEntries
	if v := os.Getenv("RECIPE_CACHE_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}
	return &RecipeCacheService{db: db, maxEntries: max}
}

// RecipeIngredient is one ingredient line of a recipe request, identified by
// name so the cache key stays user-independent.
type RecipeIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// BuildSearchKey canonicalizes a recipe request into its cache key:
// normalized food name, then `name|qty|unit` per ingredient sorted by
// normalized name, all joined with `|`. Keys that would overflow the column
// collapse to `{name}|hash_{sha256}` and never exceed maxSearchKeyLen.
func BuildSearchKey(foodName string, ingredients []RecipeIngredient) string {
	name := strings.ToLower(strings.TrimSpace(foodName))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	entries := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		entries = append(entries, fmt.Sprintf("%s|%s|%s",
			strings.ToLower(strings.TrimSpace(ing.Name)),
			strconv.FormatFloat(ing.Quantity, 'f', -1, 64),
			strings.ToLower(strings.TrimSpace(ing.Unit)),
		))
	}
	sort.Strings(entries)

	key := name
	if len(entries) > 0 {
		key += "|" + strings.Join(entries, "|")
	}
	if len(key) <= maxSearchKeyLen {
		return key
	}

	sum := sha256.Sum256([]byte(key))
	digest := hex.EncodeToString(sum[:])
	// "|hash_" + 64 hex digits = 70 chars of suffix.
	if len(name) > maxSearchKeyLen-70 {
		name = name[:maxSearchKeyLen-70]
	}
	return name + "|hash_" + digest
}

// Lookup fetches a cache entry by exact key. A hit bumps hitCount and
// lastAccessedAt; the bookkeeping write is best-effort and does not gate the
// read.
func (s *RecipeCacheService) Lookup(key string) (*models.CachedFood, error) {
	var cf models.CachedFood
	err := s.db.Where("search_key = ?", key).First(&cf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.CachedFood{}).
		Where("id = ?", cf.ID).
		UpdateColumns(map[string]any{
			"hit_count":        gorm.Expr("hit_count + 1"),
			"last_accessed_at": time.Now().UTC(),
		}).Error; err != nil {
		// Hit bookkeeping is analytics, not correctness.
		return &cf, nil
	}
	cf.HitCount++
	return &cf, nil
}

// Store writes (or overwrites) the entry for key, then trims the cache back
// under its entry limit.
func (s *RecipeCacheService) Store(key string, entry *models.CachedFood) error {
	entry.SearchKey = key
	entry.LastAccessedAt = time.Now().UTC()

	var existing models.CachedFood
	err := s.db.Where("search_key = ?", key).First(&existing).Error
	switch {
	case err == nil:
		entry.ID = existing.ID
		entry.HitCount = existing.HitCount
		if err := s.db.Save(entry).Error; err != nil {
			return fmt.Errorf("update cached recipe: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.Create(entry).Error; err != nil {
			return fmt.Errorf("store cached recipe: %w", err)
		}
	default:
		return err
	}
	return s.trim()
}

// trim evicts least-recently-accessed entries until the cache fits the
// configured limit.
func (s *RecipeCacheService) trim() error {
	var total int64
	if err := s.db.Model(&models.CachedFood{}).Count(&total).Error; err != nil {
		return err
	}
	excess := total - int64(s.maxEntries)
	if excess <= 0 {
		return nil
	}

	var victims []uint
	err := s.db.Model(&models.CachedFood{}).
		Order("last_accessed_at ASC, id ASC").
		Limit(int(excess)).
		Pluck("id", &victims).Error
	if err != nil {
		return err
	}
	return s.db.Unscoped().Delete(&models.CachedFood{}, victims).Error
}
