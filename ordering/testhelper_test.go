package ordering

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTest opens a fresh in-memory database for one test and returns a
// context carrying a freshly created tenant.
func setupTest(t *testing.T) context.Context {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	config.SetDB(db)
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	business, err := models.CreateBusiness(ctx, &models.NewBusiness{Name: "Test Kitchen"})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	ctx = utils.SetBusinessIdInContext(ctx, business.ID.String())
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "tester")
	return ctx
}

func mustIngredient(t *testing.T, ctx context.Context, input *models.NewIngredient) *models.Ingredient {
	t.Helper()
	ingredient, err := models.CreateIngredient(ctx, input)
	if err != nil {
		t.Fatalf("create ingredient %s: %v", input.Name, err)
	}
	return ingredient
}

func mustSupplier(t *testing.T, ctx context.Context, name string) *models.Supplier {
	t.Helper()
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: name})
	if err != nil {
		t.Fatalf("create supplier %s: %v", name, err)
	}
	return supplier
}

func mustPolicy(t *testing.T, ctx context.Context, input *models.NewSupplierIngredient) *models.SupplierIngredient {
	t.Helper()
	policy, err := models.UpsertSupplierIngredient(ctx, input)
	if err != nil {
		t.Fatalf("upsert supplier ingredient: %v", err)
	}
	return policy
}

func mustRecipe(t *testing.T, ctx context.Context, name string, lines []models.NewRecipeIngredient) *models.Recipe {
	t.Helper()
	recipe, err := models.CreateRecipe(ctx, &models.NewRecipe{Name: name, Servings: 1, Ingredients: lines})
	if err != nil {
		t.Fatalf("create recipe %s: %v", name, err)
	}
	return recipe
}

func mustEvent(t *testing.T, ctx context.Context, name string, status string, menu []models.NewEventMenu) *models.Event {
	t.Helper()
	event, err := models.CreateEvent(ctx, &models.NewEvent{
		Name:       name,
		EventDate:  time.Now().AddDate(0, 0, 7),
		GuestCount: 10,
		Status:     status,
		Menu:       menu,
	})
	if err != nil {
		t.Fatalf("create event %s: %v", name, err)
	}
	return event
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, label string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", label, got, want)
	}
}
