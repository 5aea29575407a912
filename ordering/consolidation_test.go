package ordering

import (
	"context"
	"fmt"
	"testing"

	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/utils"
)

// pendingOrderNeeding creates one pending order whose source event demands
// the given portions of a one-unit-per-serving recipe for the ingredient.
func pendingOrderNeeding(t *testing.T, ctx context.Context, ingredient *models.Ingredient, portions int) *models.SupplierOrder {
	t.Helper()

	recipe := mustRecipe(t, ctx, fmt.Sprintf("Recipe %s %d", ingredient.Name, portions),
		[]models.NewRecipeIngredient{
			{IngredientId: ingredient.ID, QuantityPerServing: dec("1")},
		})
	event := mustEvent(t, ctx, fmt.Sprintf("Event %s %d", ingredient.Name, portions), "confirmed",
		[]models.NewEventMenu{{RecipeId: recipe.ID, Portions: portions}})

	return makeOrder(t, ctx, nil, []int{event.ID}, []OrderLineInput{
		{IngredientId: ingredient.ID, Quantity: dec(fmt.Sprint(portions)), UnitPrice: dec("1")},
	})
}

func consolidationFixture(t *testing.T, ctx context.Context, packageSize string) *models.Ingredient {
	t.Helper()
	ingredient := mustIngredient(t, ctx, &models.NewIngredient{Name: "Flour", Unit: "kg"})
	supplier := mustSupplier(t, ctx, "Miller Bros")
	mustPolicy(t, ctx, &models.NewSupplierIngredient{
		SupplierId: supplier.ID, IngredientId: ingredient.ID,
		Price: dec("10"), PackageSize: dec(packageSize),
		IsPreferredSupplier: utils.NewTrue(),
	})
	return ingredient
}

func TestConsolidationNoSavingsAcrossPartialPackages(t *testing.T) {
	ctx := setupTest(t)

	// 3 + 4 in packages of 5: ceil(3/5)+ceil(4/5) = 2, ceil(7/5) = 2
	flour := consolidationFixture(t, ctx, "5")
	pendingOrderNeeding(t, ctx, flour, 3)
	pendingOrderNeeding(t, ctx, flour, 4)

	report, err := ComputeConsolidationSavings(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
}

func TestConsolidationExactCeilingArithmetic(t *testing.T) {
	ctx := setupTest(t)

	// 3 + 3 in packages of 5: intuition says mergeable, ceiling math says not
	flour := consolidationFixture(t, ctx, "5")
	pendingOrderNeeding(t, ctx, flour, 3)
	pendingOrderNeeding(t, ctx, flour, 3)

	report, err := ComputeConsolidationSavings(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
}

func TestConsolidationSavesAPackage(t *testing.T) {
	ctx := setupTest(t)

	// 1 + 1 in packages of 4: separate 2, consolidated ceil(2/4) = 1
	flour := consolidationFixture(t, ctx, "4")
	first := pendingOrderNeeding(t, ctx, flour, 1)
	second := pendingOrderNeeding(t, ctx, flour, 1)

	report, err := ComputeConsolidationSavings(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("report entries = %d, want 1", len(report))
	}

	saving := report[0]
	if saving.IngredientId != flour.ID || saving.IngredientName != "Flour" {
		t.Fatalf("saving = %+v", saving)
	}
	if saving.PackagesSaved != 1 {
		t.Fatalf("packages saved = %d, want 1", saving.PackagesSaved)
	}
	assertDecimal(t, "savings", saving.Savings, dec("10"))
	if len(saving.OrdersAffected) != 2 {
		t.Fatalf("orders affected = %v", saving.OrdersAffected)
	}
	affected := map[int]bool{first.ID: false, second.ID: false}
	for _, id := range saving.OrdersAffected {
		affected[id] = true
	}
	if !affected[first.ID] || !affected[second.ID] {
		t.Fatalf("orders affected = %v, want %d and %d", saving.OrdersAffected, first.ID, second.ID)
	}
}

func TestConsolidationNoSavingsAtPackageBoundary(t *testing.T) {
	ctx := setupTest(t)

	// 3 + 4 in packages of 4: consolidated ceil(7/4) = 2, same as separate
	flour := consolidationFixture(t, ctx, "4")
	pendingOrderNeeding(t, ctx, flour, 3)
	pendingOrderNeeding(t, ctx, flour, 4)

	report, err := ComputeConsolidationSavings(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
}

func TestConsolidationSingleOrderExcluded(t *testing.T) {
	ctx := setupTest(t)

	flour := consolidationFixture(t, ctx, "4")
	pendingOrderNeeding(t, ctx, flour, 1)

	report, err := ComputeConsolidationSavings(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("single order must be excluded, got %+v", report)
	}
}

func TestConsolidationOnlyPendingOrdersCount(t *testing.T) {
	ctx := setupTest(t)

	flour := consolidationFixture(t, ctx, "4")
	pendingOrderNeeding(t, ctx, flour, 1)
	confirmed := pendingOrderNeeding(t, ctx, flour, 1)

	// once confirmed, the order is out of the analyzer's scope
	if _, err := UpdateOrderStatus(ctx, confirmed.ID, "ordered", nil); err != nil {
		t.Fatalf("to ordered: %v", err)
	}

	report, err := ComputeConsolidationSavings(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
}

func TestConsolidationOrdersWithoutProvenanceSkipped(t *testing.T) {
	ctx := setupTest(t)

	flour := consolidationFixture(t, ctx, "4")
	pendingOrderNeeding(t, ctx, flour, 1)
	// same need, but no source events to re-aggregate from
	makeOrder(t, ctx, nil, nil, []OrderLineInput{
		{IngredientId: flour.ID, Quantity: dec("1"), UnitPrice: dec("1")},
	})

	report, err := ComputeConsolidationSavings(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report) != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
}

func TestConsolidationRankedBySavings(t *testing.T) {
	ctx := setupTest(t)

	flour := mustIngredient(t, ctx, &models.NewIngredient{Name: "Flour", Unit: "kg"})
	saffron := mustIngredient(t, ctx, &models.NewIngredient{Name: "Saffron", Unit: "g"})
	supplier := mustSupplier(t, ctx, "Wholesale One")
	mustPolicy(t, ctx, &models.NewSupplierIngredient{
		SupplierId: supplier.ID, IngredientId: flour.ID,
		Price: dec("10"), PackageSize: dec("4"),
		IsPreferredSupplier: utils.NewTrue(),
	})
	mustPolicy(t, ctx, &models.NewSupplierIngredient{
		SupplierId: supplier.ID, IngredientId: saffron.ID,
		Price: dec("90"), PackageSize: dec("4"),
		IsPreferredSupplier: utils.NewTrue(),
	})

	pendingOrderNeeding(t, ctx, flour, 1)
	pendingOrderNeeding(t, ctx, flour, 1)
	pendingOrderNeeding(t, ctx, saffron, 1)
	pendingOrderNeeding(t, ctx, saffron, 1)

	report, err := ComputeConsolidationSavings(ctx)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("report entries = %d, want 2", len(report))
	}
	if report[0].IngredientName != "Saffron" || report[1].IngredientName != "Flour" {
		t.Fatalf("report must rank by savings descending, got %s then %s",
			report[0].IngredientName, report[1].IngredientName)
	}
	assertDecimal(t, "top savings", report[0].Savings, dec("90"))
}
