// seed-demo creates a demo tenant with a small catalog: ingredients with
// supplier packaging terms, two recipes and two upcoming events, so the
// shopping list and order generation can be exercised right away.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/utils"
	"github.com/shopspring/decimal"
)

const (
	demoUsername = "demoChef"
	demoPassword = "demo-Chef-1"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateTable(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	business, err := models.CreateBusiness(ctx, &models.NewBusiness{
		Name:  "Demo Catering Co",
		Email: "owner@demo-catering.test",
	})
	fatalIf("create business", err)

	ctx = utils.SetBusinessIdInContext(ctx, business.ID.String())
	ctx = utils.SetUserNameInContext(ctx, "Seed")

	user, err := models.CreateUser(ctx, business.ID.String(), &models.NewUser{
		Name:     "Demo Chef",
		Username: demoUsername,
		Password: demoPassword,
		Role:     "admin",
	})
	fatalIf("create user", err)
	ctx = utils.SetUserIdInContext(ctx, user.ID)

	flour, err := models.CreateIngredient(ctx, &models.NewIngredient{
		Name: "Flour", Unit: "kg",
		BasePrice:    decimal.NewFromFloat(1.20),
		WastePercent: decimal.NewFromFloat(0.05),
		Stock:        decimal.NewFromInt(8),
		StockMinimum: decimal.NewFromInt(5),
	})
	fatalIf("create flour", err)
	tomato, err := models.CreateIngredient(ctx, &models.NewIngredient{
		Name: "Tomato", Unit: "kg",
		BasePrice:    decimal.NewFromFloat(2.40),
		WastePercent: decimal.NewFromFloat(0.10),
		StockMinimum: decimal.NewFromInt(3),
	})
	fatalIf("create tomato", err)
	oil, err := models.CreateIngredient(ctx, &models.NewIngredient{
		Name: "Olive Oil", Unit: "l",
		BasePrice: decimal.NewFromFloat(6.50),
	})
	fatalIf("create oil", err)

	mill, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name: "Miller Bros", Email: "sales@millerbros.test",
	})
	fatalIf("create supplier", err)
	farm, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name: "Green Farm", Email: "orders@greenfarm.test",
	})
	fatalIf("create supplier", err)

	_, err = models.UpsertSupplierIngredient(ctx, &models.NewSupplierIngredient{
		SupplierId: mill.ID, IngredientId: flour.ID,
		Price:       decimal.NewFromInt(30),
		PackageSize: decimal.NewFromInt(25), PackageUnit: "kg",
		MinimumOrderQuantity: 1,
		IsPreferredSupplier:  utils.NewTrue(),
	})
	fatalIf("flour policy", err)
	_, err = models.UpsertSupplierIngredient(ctx, &models.NewSupplierIngredient{
		SupplierId: farm.ID, IngredientId: tomato.ID,
		Price:       decimal.NewFromInt(12),
		PackageSize: decimal.NewFromInt(5), PackageUnit: "kg",
		MinimumOrderQuantity: 2,
		IsPreferredSupplier:  utils.NewTrue(),
	})
	fatalIf("tomato policy", err)
	// oil deliberately has no supplier: shows the missing bucket

	pizza, err := models.CreateRecipe(ctx, &models.NewRecipe{
		Name: "Pizza Margherita", Servings: 1,
		Ingredients: []models.NewRecipeIngredient{
			{IngredientId: flour.ID, QuantityPerServing: decimal.NewFromFloat(0.25)},
			{IngredientId: tomato.ID, QuantityPerServing: decimal.NewFromFloat(0.15)},
			{IngredientId: oil.ID, QuantityPerServing: decimal.NewFromFloat(0.02)},
		},
	})
	fatalIf("create pizza", err)
	pasta, err := models.CreateRecipe(ctx, &models.NewRecipe{
		Name: "Pasta al Pomodoro", Servings: 1,
		Ingredients: []models.NewRecipeIngredient{
			{IngredientId: flour.ID, QuantityPerServing: decimal.NewFromFloat(0.12)},
			{IngredientId: tomato.ID, QuantityPerServing: decimal.NewFromFloat(0.20)},
		},
	})
	fatalIf("create pasta", err)

	nextWeek := time.Now().AddDate(0, 0, 7)
	_, err = models.CreateEvent(ctx, &models.NewEvent{
		Name: "Garcia Wedding", EventDate: nextWeek, GuestCount: 120,
		Status: "confirmed",
		Menu: []models.NewEventMenu{
			{RecipeId: pizza.ID, Portions: 120},
		},
	})
	fatalIf("create wedding", err)
	_, err = models.CreateEvent(ctx, &models.NewEvent{
		Name: "Corporate Lunch", EventDate: nextWeek.AddDate(0, 0, 2), GuestCount: 60,
		Status: "planned",
		Menu: []models.NewEventMenu{
			{RecipeId: pasta.ID, Portions: 60},
		},
	})
	fatalIf("create lunch", err)

	fmt.Printf("seeded business %s (login %s / %s)\n", business.ID, demoUsername, demoPassword)
}

func fatalIf(op string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", op, err)
		os.Exit(1)
	}
}
