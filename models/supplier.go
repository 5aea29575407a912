package models

import (
	"context"
	"errors"
	"time"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Supplier struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BusinessId    string    `gorm:"index;not null" json:"business_id"`
	Name          string    `gorm:"size:255;not null" json:"name" binding:"required"`
	ContactPerson string    `gorm:"size:255" json:"contact_person"`
	Email         string    `gorm:"size:255" json:"email"`
	Phone         string    `gorm:"size:100" json:"phone"`
	Address       string    `gorm:"type:text" json:"address"`
	Notes         string    `gorm:"type:text" json:"notes"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Supplier) GetBusinessId() string { return s.BusinessId }

type NewSupplier struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Notes         string `json:"notes"`
}

func (input NewSupplier) validate() error {
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("invalid supplier email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("invalid supplier phone: %v", err)
		}
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	db := config.GetDB()

	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	supplier := Supplier{
		BusinessId:    businessId,
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
		Notes:         input.Notes,
		IsActive:      utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return GetResource[Supplier](ctx, id)
}

func ListSuppliers(ctx context.Context) ([]Supplier, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var suppliers []Supplier
	err = db.WithContext(ctx).
		Where("business_id = ?", businessId).
		Order("name ASC").
		Find(&suppliers).Error
	return suppliers, err
}

// SupplierIngredient is the packaging policy for an ingredient at one
// supplier: package price, package size and the minimum order in packages.
type SupplierIngredient struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	BusinessId           string          `gorm:"index;not null" json:"business_id"`
	SupplierId           int             `gorm:"index;not null;uniqueIndex:idx_supplier_ingredient" json:"supplier_id" binding:"required"`
	IngredientId         int             `gorm:"index;not null;uniqueIndex:idx_supplier_ingredient" json:"ingredient_id" binding:"required"`
	Price                decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	PackageSize          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"package_size"`
	PackageUnit          string          `gorm:"size:50" json:"package_unit"`
	MinimumOrderQuantity int64           `gorm:"not null;default:1" json:"minimum_order_quantity"`
	IsPreferredSupplier  *bool           `gorm:"not null;default:false" json:"is_preferred_supplier"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (si SupplierIngredient) GetBusinessId() string { return si.BusinessId }

type NewSupplierIngredient struct {
	SupplierId           int             `json:"supplier_id" binding:"required"`
	IngredientId         int             `json:"ingredient_id" binding:"required"`
	Price                decimal.Decimal `json:"price"`
	PackageSize          decimal.Decimal `json:"package_size" binding:"required"`
	PackageUnit          string          `json:"package_unit"`
	MinimumOrderQuantity int64           `json:"minimum_order_quantity"`
	IsPreferredSupplier  *bool           `json:"is_preferred_supplier"`
}

func (input NewSupplierIngredient) validate(ctx context.Context, businessId string) error {
	if !input.PackageSize.IsPositive() {
		return utils.NewValidationError("package size must be positive")
	}
	if input.Price.IsNegative() {
		return utils.NewValidationError("price cannot be negative")
	}
	if input.MinimumOrderQuantity < 0 {
		return utils.NewValidationError("minimum order quantity cannot be negative")
	}
	if err := utils.ValidateResourceId[Supplier](ctx, businessId, input.SupplierId); err != nil {
		return errors.New("supplier not found")
	}
	if err := utils.ValidateResourceId[Ingredient](ctx, businessId, input.IngredientId); err != nil {
		return errors.New("ingredient not found")
	}
	return nil
}

// UpsertSupplierIngredient creates or replaces the packaging policy for a
// (supplier, ingredient) pair. Setting IsPreferredSupplier clears the flag on
// every other supplier of the same ingredient in the same transaction, so at
// most one preferred supplier per ingredient can exist.
func UpsertSupplierIngredient(ctx context.Context, input *NewSupplierIngredient) (*SupplierIngredient, error) {
	db := config.GetDB()

	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	minimumOrder := input.MinimumOrderQuantity
	if minimumOrder == 0 {
		minimumOrder = 1
	}
	preferred := input.IsPreferredSupplier
	if preferred == nil {
		preferred = utils.NewFalse()
	}

	var result SupplierIngredient
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if *preferred {
			err := tx.Model(&SupplierIngredient{}).
				Where("business_id = ? AND ingredient_id = ? AND supplier_id <> ?",
					businessId, input.IngredientId, input.SupplierId).
				Update("is_preferred_supplier", false).Error
			if err != nil {
				return err
			}
		}

		var existing SupplierIngredient
		err := tx.Where("business_id = ? AND supplier_id = ? AND ingredient_id = ?",
			businessId, input.SupplierId, input.IngredientId).
			First(&existing).Error
		switch {
		case err == nil:
			existing.Price = input.Price
			existing.PackageSize = input.PackageSize
			existing.PackageUnit = input.PackageUnit
			existing.MinimumOrderQuantity = minimumOrder
			existing.IsPreferredSupplier = preferred
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			result = SupplierIngredient{
				BusinessId:           businessId,
				SupplierId:           input.SupplierId,
				IngredientId:         input.IngredientId,
				Price:                input.Price,
				PackageSize:          input.PackageSize,
				PackageUnit:          input.PackageUnit,
				MinimumOrderQuantity: minimumOrder,
				IsPreferredSupplier:  preferred,
			}
			return tx.Create(&result).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	utils.CleanRedis[SupplierIngredient](result.ID)
	return &result, nil
}

// GetSupplierIngredient is the catalog reader contract: the packaging policy
// for one (supplier, ingredient) pair, or RecordNotFound.
func GetSupplierIngredient(ctx context.Context, supplierId int, ingredientId int) (*SupplierIngredient, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var si SupplierIngredient
	err = db.WithContext(ctx).
		Where("business_id = ? AND supplier_id = ? AND ingredient_id = ?", businessId, supplierId, ingredientId).
		First(&si).Error
	if err != nil {
		return nil, err
	}
	return &si, nil
}

// GetPreferredSupplierIngredient returns the preferred packaging policy for an
// ingredient, or nil when no supplier is assigned.
func GetPreferredSupplierIngredient(ctx context.Context, ingredientId int) (*SupplierIngredient, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var si SupplierIngredient
	err = db.WithContext(ctx).
		Where("business_id = ? AND ingredient_id = ? AND is_preferred_supplier = ?", businessId, ingredientId, true).
		First(&si).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &si, nil
}

// ListSupplierIngredientsByIngredientIds batch-loads every supplier policy
// for a set of ingredients, keyed by ingredient id.
func ListSupplierIngredientsByIngredientIds(ctx context.Context, ingredientIds []int) (map[int][]SupplierIngredient, error) {
	if len(ingredientIds) == 0 {
		return map[int][]SupplierIngredient{}, nil
	}
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var rows []SupplierIngredient
	err = db.WithContext(ctx).
		Where("business_id = ? AND ingredient_id IN ?", businessId, utils.UniqueSlice(ingredientIds)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[int][]SupplierIngredient)
	for _, row := range rows {
		result[row.IngredientId] = append(result[row.IngredientId], row)
	}
	return result, nil
}

// ListSupplierIngredientsForIngredient returns every supplier's policy for an
// ingredient (price rating input).
func ListSupplierIngredientsForIngredient(ctx context.Context, ingredientId int) ([]SupplierIngredient, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var rows []SupplierIngredient
	err = db.WithContext(ctx).
		Where("business_id = ? AND ingredient_id = ?", businessId, ingredientId).
		Find(&rows).Error
	return rows, err
}
