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

type Recipe struct {
	ID          int                `gorm:"primary_key" json:"id"`
	BusinessId  string             `gorm:"index;not null" json:"business_id"`
	Name        string             `gorm:"size:255;not null" json:"name" binding:"required"`
	Description string             `gorm:"type:text" json:"description"`
	Servings    int                `gorm:"not null;default:1" json:"servings"`
	IsActive    *bool              `gorm:"not null;default:true" json:"is_active"`
	Ingredients []RecipeIngredient `json:"recipe_ingredients"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r Recipe) GetBusinessId() string { return r.BusinessId }

type RecipeIngredient struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	RecipeId           int             `gorm:"index;not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientId       int             `gorm:"index;not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id" binding:"required"`
	QuantityPerServing decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity_per_serving"`
}

type NewRecipe struct {
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	Servings    int                   `json:"servings"`
	Ingredients []NewRecipeIngredient `json:"ingredients" validate:"dive"`
}

type NewRecipeIngredient struct {
	IngredientId       int             `json:"ingredient_id" binding:"required"`
	QuantityPerServing decimal.Decimal `json:"quantity_per_serving" binding:"required"`
}

func (input NewRecipe) validate(ctx context.Context, businessId string) error {
	if input.Servings < 0 {
		return utils.NewValidationError("servings cannot be negative")
	}
	for _, line := range input.Ingredients {
		if !line.QuantityPerServing.IsPositive() {
			return utils.NewValidationError("quantity per serving must be positive")
		}
		if err := utils.ValidateResourceId[Ingredient](ctx, businessId, line.IngredientId); err != nil {
			return errors.New("ingredient not found")
		}
	}
	return nil
}

func CreateRecipe(ctx context.Context, input *NewRecipe) (*Recipe, error) {
	db := config.GetDB()

	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId); err != nil {
		return nil, err
	}

	servings := input.Servings
	if servings == 0 {
		servings = 1
	}

	recipe := Recipe{
		BusinessId:  businessId,
		Name:        input.Name,
		Description: input.Description,
		Servings:    servings,
		IsActive:    utils.NewTrue(),
	}
	for _, line := range input.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, RecipeIngredient{
			IngredientId:       line.IngredientId,
			QuantityPerServing: line.QuantityPerServing,
		})
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&recipe).Error
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func GetRecipe(ctx context.Context, id int) (*Recipe, error) {
	return GetResource[Recipe](ctx, id, "Ingredients")
}

func ListRecipes(ctx context.Context) ([]Recipe, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var recipes []Recipe
	err = db.WithContext(ctx).
		Preload("Ingredients").
		Where("business_id = ?", businessId).
		Order("name ASC").
		Find(&recipes).Error
	return recipes, err
}

// GetRecipeIngredients is the demand source reader contract: the ingredient
// lines of one recipe.
func GetRecipeIngredients(ctx context.Context, recipeId int) ([]RecipeIngredient, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Recipe](ctx, businessId, recipeId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var lines []RecipeIngredient
	err = db.WithContext(ctx).
		Where("recipe_id = ?", recipeId).
		Find(&lines).Error
	return lines, err
}

// ListRecipeIngredientsByRecipeIds batch-loads the lines of many recipes.
func ListRecipeIngredientsByRecipeIds(ctx context.Context, recipeIds []int) (map[int][]RecipeIngredient, error) {
	if len(recipeIds) == 0 {
		return map[int][]RecipeIngredient{}, nil
	}

	db := config.GetDB()
	var lines []RecipeIngredient
	err := db.WithContext(ctx).
		Where("recipe_id IN ?", utils.UniqueSlice(recipeIds)).
		Find(&lines).Error
	if err != nil {
		return nil, err
	}

	result := make(map[int][]RecipeIngredient)
	for _, line := range lines {
		result[line.RecipeId] = append(result[line.RecipeId], line)
	}
	return result, nil
}
