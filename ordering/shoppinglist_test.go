package ordering

import (
	"testing"

	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/utils"
	"github.com/shopspring/decimal"
)

func TestComputeShoppingList(t *testing.T) {
	ctx := setupTest(t)
	t.Setenv("STOCK_NETTING", "1")

	flour := mustIngredient(t, ctx, &models.NewIngredient{
		Name: "Flour", Unit: "kg", BasePrice: dec("1.20"),
		WastePercent: dec("0.05"), Stock: dec("10.5"),
	})
	oil := mustIngredient(t, ctx, &models.NewIngredient{
		Name: "Olive Oil", Unit: "l", BasePrice: dec("6.50"),
	})

	mill := mustSupplier(t, ctx, "Miller Bros")
	mustPolicy(t, ctx, &models.NewSupplierIngredient{
		SupplierId: mill.ID, IngredientId: flour.ID,
		Price: dec("30"), PackageSize: dec("25"), PackageUnit: "kg",
		MinimumOrderQuantity: 1,
		IsPreferredSupplier:  utils.NewTrue(),
	})
	// oil has no supplier on purpose

	recipe := mustRecipe(t, ctx, "Focaccia", []models.NewRecipeIngredient{
		{IngredientId: flour.ID, QuantityPerServing: dec("0.4")},
		{IngredientId: oil.ID, QuantityPerServing: dec("0.05")},
	})
	event := mustEvent(t, ctx, "Festival", "confirmed", []models.NewEventMenu{
		{RecipeId: recipe.ID, Portions: 100},
	})

	list, err := ComputeShoppingList(ctx, models.EventFilter{EventIds: []int{event.ID}})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(list.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(list.Lines))
	}

	// sorted by name: flour first
	flourLine := list.Lines[0]
	if flourLine.IngredientId != flour.ID {
		t.Fatalf("first line = %d, want flour", flourLine.IngredientId)
	}
	// 0.4 × 100 = 40, waste 5% ⇒ 42, minus 10.5 stock ⇒ 31.5 ⇒ 2 × 25kg packages
	assertDecimal(t, "flour needed with waste", flourLine.NeededWithWaste, dec("42"))
	assertDecimal(t, "flour to buy", flourLine.ToBuy, dec("31.5"))
	if flourLine.PackagesToBuy != 2 {
		t.Fatalf("flour packages = %d, want 2", flourLine.PackagesToBuy)
	}
	assertDecimal(t, "flour real quantity", flourLine.RealQuantity, dec("50"))
	assertDecimal(t, "flour cost", flourLine.RealTotalCost, dec("60"))
	assertDecimal(t, "flour unit price", flourLine.UnitPrice, dec("1.2"))
	if flourLine.SupplierStatus != models.SupplierStatusComplete {
		t.Fatalf("flour status = %s", flourLine.SupplierStatus)
	}
	if flourLine.SupplierName != "Miller Bros" {
		t.Fatalf("flour supplier = %q", flourLine.SupplierName)
	}

	oilLine := list.Lines[1]
	if oilLine.SupplierStatus != models.SupplierStatusMissing {
		t.Fatalf("oil status = %s, want missing", oilLine.SupplierStatus)
	}
	if oilLine.SupplierId != nil {
		t.Fatal("oil must be unassigned")
	}
	// 0.05 × 100 = 5 l at base price
	assertDecimal(t, "oil cost", oilLine.RealTotalCost, dec("32.5"))

	if list.SupplierStats.Complete != 1 || list.SupplierStats.Missing != 1 || list.SupplierStats.Incomplete != 0 {
		t.Fatalf("stats = %+v", list.SupplierStats)
	}

	// one group per supplier, unassigned bucket last
	if len(list.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(list.Groups))
	}
	if list.Groups[0].SupplierId == nil || *list.Groups[0].SupplierId != mill.ID {
		t.Fatal("first group must be the supplier's")
	}
	if list.Groups[1].SupplierId != nil {
		t.Fatal("last group must be the unassigned bucket")
	}
	assertDecimal(t, "grand total", list.TotalCost, dec("92.5"))
}

func TestComputeShoppingListNettingDisabled(t *testing.T) {
	ctx := setupTest(t)
	t.Setenv("STOCK_NETTING", "false")

	flour := mustIngredient(t, ctx, &models.NewIngredient{
		Name: "Flour", Unit: "kg", Stock: dec("100"),
	})
	recipe := mustRecipe(t, ctx, "Bread", []models.NewRecipeIngredient{
		{IngredientId: flour.ID, QuantityPerServing: dec("1")},
	})
	event := mustEvent(t, ctx, "Bake Sale", "confirmed", []models.NewEventMenu{
		{RecipeId: recipe.ID, Portions: 12},
	})

	list, err := ComputeShoppingList(ctx, models.EventFilter{EventIds: []int{event.ID}})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// gross demand is quantized even though stock would cover it
	assertDecimal(t, "to buy ignores stock", list.Lines[0].ToBuy, dec("12"))
}

func TestComputeShoppingListStockCoversNeed(t *testing.T) {
	ctx := setupTest(t)
	t.Setenv("STOCK_NETTING", "1")

	flour := mustIngredient(t, ctx, &models.NewIngredient{
		Name: "Flour", Unit: "kg", Stock: dec("100"),
	})
	mill := mustSupplier(t, ctx, "Miller Bros")
	mustPolicy(t, ctx, &models.NewSupplierIngredient{
		SupplierId: mill.ID, IngredientId: flour.ID,
		Price: dec("30"), PackageSize: dec("25"),
		MinimumOrderQuantity: 2,
		IsPreferredSupplier:  utils.NewTrue(),
	})

	recipe := mustRecipe(t, ctx, "Bread", []models.NewRecipeIngredient{
		{IngredientId: flour.ID, QuantityPerServing: dec("1")},
	})
	event := mustEvent(t, ctx, "Bake Sale", "confirmed", []models.NewEventMenu{
		{RecipeId: recipe.ID, Portions: 12},
	})

	list, err := ComputeShoppingList(ctx, models.EventFilter{EventIds: []int{event.ID}})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	line := list.Lines[0]
	assertDecimal(t, "to buy", line.ToBuy, decimal.Zero)
	// minimum order quantity must not force a purchase when nothing is needed
	if line.PackagesToBuy != 0 {
		t.Fatalf("packages = %d, want 0", line.PackagesToBuy)
	}
	assertDecimal(t, "cost", line.RealTotalCost, decimal.Zero)
}

func groupLine(supplierId *int, cost string) ShoppingListLine {
	return ShoppingListLine{SupplierId: supplierId, RealTotalCost: dec(cost)}
}

func TestGroupBySupplier(t *testing.T) {
	one, two := 1, 2
	lines := []ShoppingListLine{
		groupLine(&two, "10"),
		groupLine(&one, "5"),
		groupLine(nil, "3"),
		groupLine(&one, "2.5"),
	}

	groups, total := GroupBySupplier(lines)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if *groups[0].SupplierId != 1 || *groups[1].SupplierId != 2 {
		t.Fatal("supplier groups must be ordered by supplier id")
	}
	if groups[2].SupplierId != nil {
		t.Fatal("unassigned bucket must come last")
	}
	assertDecimal(t, "group 1 total", groups[0].Total, dec("7.5"))
	assertDecimal(t, "group 2 total", groups[1].Total, dec("10"))
	assertDecimal(t, "unassigned total", groups[2].Total, dec("3"))
	assertDecimal(t, "grand total", total, dec("20.5"))

	// idempotent on identical input
	again, againTotal := GroupBySupplier(lines)
	if len(again) != len(groups) || !againTotal.Equal(total) {
		t.Fatal("grouping must be deterministic")
	}
}

func TestGroupBySupplierEmpty(t *testing.T) {
	groups, total := GroupBySupplier(nil)
	if len(groups) != 0 {
		t.Fatalf("groups = %d, want 0", len(groups))
	}
	assertDecimal(t, "total", total, decimal.Zero)
}

func ratingRow(supplierId int, price, size string) models.SupplierIngredient {
	return models.SupplierIngredient{
		SupplierId:  supplierId,
		Price:       dec(price),
		PackageSize: dec(size),
	}
}

func TestPriceRating(t *testing.T) {
	// per-unit prices: 1.00, 1.50, 2.00
	rows := []models.SupplierIngredient{
		ratingRow(1, "25", "25"),
		ratingRow(2, "37.5", "25"),
		ratingRow(3, "20", "10"),
	}

	cheapest := priceRating(&rows[0], rows)
	assertDecimal(t, "cheapest", *cheapest, dec("100"))

	middle := priceRating(&rows[1], rows)
	assertDecimal(t, "middle", *middle, dec("50"))

	priciest := priceRating(&rows[2], rows)
	assertDecimal(t, "priciest", *priciest, decimal.Zero)
}

func TestPriceRatingSingleSupplier(t *testing.T) {
	rows := []models.SupplierIngredient{ratingRow(1, "25", "25")}
	rating := priceRating(&rows[0], rows)
	assertDecimal(t, "single supplier", *rating, dec("100"))
}

func TestPriceRatingUnpricedSupplier(t *testing.T) {
	rows := []models.SupplierIngredient{
		ratingRow(1, "0", "25"),
		ratingRow(2, "30", "25"),
	}
	if rating := priceRating(&rows[0], rows); rating != nil {
		t.Fatalf("unpriced supplier must not be rated, got %s", rating)
	}
}
