package models

import (
	"context"
	"time"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/utils"
	"github.com/shopspring/decimal"
)

// Ingredient is master data owned by the catalog. The ordering core only
// reads it, except that order delivery increments Stock.
type Ingredient struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id"`
	Name         string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Unit         string          `gorm:"size:50;not null" json:"unit" binding:"required"`
	BasePrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_price"`
	WastePercent decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"waste_percent"`
	Stock        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock"`
	StockMinimum decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_minimum"`
	IsAvailable  *bool           `gorm:"not null;default:true" json:"is_available"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i Ingredient) GetBusinessId() string { return i.BusinessId }

type NewIngredient struct {
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	BasePrice    decimal.Decimal `json:"base_price"`
	WastePercent decimal.Decimal `json:"waste_percent"`
	Stock        decimal.Decimal `json:"stock"`
	StockMinimum decimal.Decimal `json:"stock_minimum"`
	IsAvailable  *bool           `json:"is_available"`
}

func (input NewIngredient) validate() error {
	if input.BasePrice.IsNegative() {
		return utils.NewValidationError("base price cannot be negative")
	}
	if input.WastePercent.IsNegative() {
		return utils.NewValidationError("waste percent cannot be negative")
	}
	if input.Stock.IsNegative() || input.StockMinimum.IsNegative() {
		return utils.NewValidationError("stock quantities cannot be negative")
	}
	return nil
}

func CreateIngredient(ctx context.Context, input *NewIngredient) (*Ingredient, error) {
	db := config.GetDB()

	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	isAvailable := input.IsAvailable
	if isAvailable == nil {
		isAvailable = utils.NewTrue()
	}

	ingredient := Ingredient{
		BusinessId:   businessId,
		Name:         input.Name,
		Unit:         input.Unit,
		BasePrice:    input.BasePrice,
		WastePercent: input.WastePercent,
		Stock:        input.Stock,
		StockMinimum: input.StockMinimum,
		IsAvailable:  isAvailable,
	}
	if err := db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func UpdateIngredient(ctx context.Context, id int, input *NewIngredient) (*Ingredient, error) {
	db := config.GetDB()

	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	var ingredient Ingredient
	if err := db.WithContext(ctx).Where("business_id = ?", businessId).First(&ingredient, id).Error; err != nil {
		return nil, err
	}

	ingredient.Name = input.Name
	ingredient.Unit = input.Unit
	ingredient.BasePrice = input.BasePrice
	ingredient.WastePercent = input.WastePercent
	ingredient.Stock = input.Stock
	ingredient.StockMinimum = input.StockMinimum
	if input.IsAvailable != nil {
		ingredient.IsAvailable = input.IsAvailable
	}
	if err := db.WithContext(ctx).Save(&ingredient).Error; err != nil {
		return nil, err
	}

	utils.CleanRedis[Ingredient](ingredient.ID)
	return &ingredient, nil
}

// GetIngredient is the catalog reader contract for the ordering core.
func GetIngredient(ctx context.Context, id int) (*Ingredient, error) {
	return GetResource[Ingredient](ctx, id)
}

func ListIngredients(ctx context.Context) ([]Ingredient, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var ingredients []Ingredient
	err = db.WithContext(ctx).
		Where("business_id = ?", businessId).
		Order("name ASC").
		Find(&ingredients).Error
	return ingredients, err
}

// ListIngredientsByIds loads a batch of ingredients keyed by id, skipping ids
// that don't exist. Tenant-scoped.
func ListIngredientsByIds(ctx context.Context, ids []int) (map[int]*Ingredient, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var ingredients []Ingredient
	err = db.WithContext(ctx).
		Where("business_id = ? AND id IN ?", businessId, utils.UniqueSlice(ids)).
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}

	result := make(map[int]*Ingredient, len(ingredients))
	for i := range ingredients {
		result[ingredients[i].ID] = &ingredients[i]
	}
	return result, nil
}

// LowStockIngredients reports ingredients whose on-hand stock fell below the
// configured minimum.
func LowStockIngredients(ctx context.Context) ([]Ingredient, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var ingredients []Ingredient
	err = db.WithContext(ctx).
		Where("business_id = ? AND stock < stock_minimum", businessId).
		Order("name ASC").
		Find(&ingredients).Error
	return ingredients, err
}
