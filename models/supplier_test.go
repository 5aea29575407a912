package models

import (
	"testing"

	"github.com/mkitchen/resto_backend/utils"
)

func TestUpsertSupplierIngredientCreatesAndUpdates(t *testing.T) {
	ctx := setupTest(t)

	flour, err := CreateIngredient(ctx, &NewIngredient{Name: "Flour", Unit: "kg"})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	mill, err := CreateSupplier(ctx, &NewSupplier{Name: "Miller Bros"})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}

	created, err := UpsertSupplierIngredient(ctx, &NewSupplierIngredient{
		SupplierId: mill.ID, IngredientId: flour.ID,
		Price: dec("30"), PackageSize: dec("25"), PackageUnit: "kg",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created.MinimumOrderQuantity != 1 {
		t.Fatalf("minimum order quantity = %d, want default 1", created.MinimumOrderQuantity)
	}

	updated, err := UpsertSupplierIngredient(ctx, &NewSupplierIngredient{
		SupplierId: mill.ID, IngredientId: flour.ID,
		Price: dec("28"), PackageSize: dec("25"), PackageUnit: "kg",
		MinimumOrderQuantity: 2,
	})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("upsert must update the existing row, got new id %d", updated.ID)
	}
	if !updated.Price.Equal(dec("28")) {
		t.Fatalf("price = %s, want 28", updated.Price)
	}
}

func TestUpsertSupplierIngredientSinglePreferred(t *testing.T) {
	ctx := setupTest(t)

	flour, err := CreateIngredient(ctx, &NewIngredient{Name: "Flour", Unit: "kg"})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	mill, err := CreateSupplier(ctx, &NewSupplier{Name: "Miller Bros"})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	farm, err := CreateSupplier(ctx, &NewSupplier{Name: "Green Farm"})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}

	_, err = UpsertSupplierIngredient(ctx, &NewSupplierIngredient{
		SupplierId: mill.ID, IngredientId: flour.ID,
		Price: dec("30"), PackageSize: dec("25"),
		IsPreferredSupplier: utils.NewTrue(),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	_, err = UpsertSupplierIngredient(ctx, &NewSupplierIngredient{
		SupplierId: farm.ID, IngredientId: flour.ID,
		Price: dec("27"), PackageSize: dec("20"),
		IsPreferredSupplier: utils.NewTrue(),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// preferring the second supplier demotes the first
	preferred, err := GetPreferredSupplierIngredient(ctx, flour.ID)
	if err != nil {
		t.Fatalf("get preferred: %v", err)
	}
	if preferred == nil || preferred.SupplierId != farm.ID {
		t.Fatalf("preferred = %+v, want supplier %d", preferred, farm.ID)
	}

	rows, err := ListSupplierIngredientsForIngredient(ctx, flour.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	preferredCount := 0
	for _, row := range rows {
		if row.IsPreferredSupplier != nil && *row.IsPreferredSupplier {
			preferredCount++
		}
	}
	if preferredCount != 1 {
		t.Fatalf("preferred rows = %d, want 1", preferredCount)
	}
}

func TestUpsertSupplierIngredientValidation(t *testing.T) {
	ctx := setupTest(t)

	flour, err := CreateIngredient(ctx, &NewIngredient{Name: "Flour", Unit: "kg"})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}
	mill, err := CreateSupplier(ctx, &NewSupplier{Name: "Miller Bros"})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}

	_, err = UpsertSupplierIngredient(ctx, &NewSupplierIngredient{
		SupplierId: mill.ID, IngredientId: flour.ID,
		Price: dec("30"), PackageSize: dec("0"),
	})
	if err == nil {
		t.Fatal("zero package size must be rejected")
	}

	_, err = UpsertSupplierIngredient(ctx, &NewSupplierIngredient{
		SupplierId: 4242, IngredientId: flour.ID,
		Price: dec("30"), PackageSize: dec("25"),
	})
	if err == nil {
		t.Fatal("unknown supplier must be rejected")
	}
}

func TestGetPreferredSupplierIngredientNone(t *testing.T) {
	ctx := setupTest(t)

	flour, err := CreateIngredient(ctx, &NewIngredient{Name: "Flour", Unit: "kg"})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	preferred, err := GetPreferredSupplierIngredient(ctx, flour.ID)
	if err != nil {
		t.Fatalf("get preferred: %v", err)
	}
	if preferred != nil {
		t.Fatalf("preferred = %+v, want nil", preferred)
	}
}
