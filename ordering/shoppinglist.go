package ordering

import (
	"context"
	"sort"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/models"
	"github.com/shopspring/decimal"
)

// ShoppingListLine is the derived, never-persisted purchasing view of one
// ingredient. Recomputed on every request.
type ShoppingListLine struct {
	IngredientId         int                   `json:"ingredient_id"`
	IngredientName       string                `json:"ingredient_name"`
	Unit                 string                `json:"unit"`
	NeededBase           decimal.Decimal       `json:"needed_base"`
	NeededWithWaste      decimal.Decimal       `json:"needed_with_waste"`
	InStock              decimal.Decimal       `json:"in_stock"`
	ToBuy                decimal.Decimal       `json:"to_buy"`
	SupplierId           *int                  `json:"supplier_id"`
	SupplierName         string                `json:"supplier_name,omitempty"`
	PackageSize          decimal.Decimal       `json:"package_size"`
	PackageUnit          string                `json:"package_unit,omitempty"`
	MinimumOrderQuantity int64                 `json:"minimum_order_quantity"`
	PackagesToBuy        int64                 `json:"packages_to_buy"`
	RealQuantity         decimal.Decimal       `json:"real_quantity"`
	RealTotalCost        decimal.Decimal       `json:"real_total_cost"`
	UnitPrice            decimal.Decimal       `json:"unit_price"`
	SupplierStatus       models.SupplierStatus `json:"supplier_status"`
	// PriceRating scores the chosen supplier's per-unit price against the
	// cheapest (100) and most expensive (0) supplier of the same ingredient.
	// Descriptive only; never feeds the ordering math.
	PriceRating *decimal.Decimal `json:"price_rating,omitempty"`
}

// SupplierGroup is one prospective order: the lines bought from one supplier,
// or from the unassigned bucket (SupplierId == nil).
type SupplierGroup struct {
	SupplierId   *int               `json:"supplier_id"`
	SupplierName string             `json:"supplier_name,omitempty"`
	Lines        []ShoppingListLine `json:"lines"`
	Total        decimal.Decimal    `json:"total"`
}

// SupplierStats counts lines per completeness classification.
type SupplierStats struct {
	Complete   int `json:"complete"`
	Incomplete int `json:"incomplete"`
	Missing    int `json:"missing"`
}

type ShoppingList struct {
	Lines         []ShoppingListLine `json:"lines"`
	Groups        []SupplierGroup    `json:"groups"`
	TotalCost     decimal.Decimal    `json:"total_cost"`
	SupplierStats SupplierStats      `json:"supplier_stats"`
}

// ComputeShoppingList aggregates demand for the filtered events, nets it
// against stock (when enabled), quantizes each ingredient against its
// preferred supplier's packaging policy and groups the result per supplier.
func ComputeShoppingList(ctx context.Context, filter models.EventFilter) (*ShoppingList, error) {
	demand, err := AggregateDemand(ctx, filter)
	if err != nil {
		return nil, err
	}

	ingredientIds := make([]int, 0, len(demand))
	for id := range demand {
		ingredientIds = append(ingredientIds, id)
	}

	ingredients, err := models.ListIngredientsByIds(ctx, ingredientIds)
	if err != nil {
		return nil, err
	}
	policies, err := models.ListSupplierIngredientsByIngredientIds(ctx, ingredientIds)
	if err != nil {
		return nil, err
	}
	suppliers, err := models.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	supplierNames := make(map[int]string, len(suppliers))
	for _, supplier := range suppliers {
		supplierNames[supplier.ID] = supplier.Name
	}

	netting := config.StockNettingEnabled()

	lines := make([]ShoppingListLine, 0, len(demand))
	for id, need := range demand {
		ingredient := ingredients[id]
		if ingredient == nil {
			continue
		}

		toBuy := need.NeededWithWaste
		if netting {
			toBuy = NetAgainstStock(need.NeededWithWaste, ingredient.Stock)
		}

		policy, preferredRow := preferredPolicy(policies[id])
		quantized := Quantize(id, toBuy, ingredient.BasePrice, policy)

		line := ShoppingListLine{
			IngredientId:    id,
			IngredientName:  ingredient.Name,
			Unit:            ingredient.Unit,
			NeededBase:      need.NeededBase,
			NeededWithWaste: need.NeededWithWaste,
			InStock:         ingredient.Stock,
			ToBuy:           toBuy,
			PackagesToBuy:   quantized.PackagesToBuy,
			RealQuantity:    quantized.RealQuantity,
			RealTotalCost:   quantized.RealTotalCost,
			UnitPrice:       quantized.UnitPrice,
			SupplierStatus:  quantized.SupplierStatus,
		}
		if policy != nil {
			supplierId := policy.SupplierId
			line.SupplierId = &supplierId
			line.SupplierName = supplierNames[supplierId]
			line.PackageSize = policy.PackageSize
			line.PackageUnit = policy.PackageUnit
			line.MinimumOrderQuantity = policy.MinimumOrderQuantity
			line.PriceRating = priceRating(preferredRow, policies[id])
		}
		lines = append(lines, line)
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].IngredientName < lines[j].IngredientName
	})

	groups, totalCost := GroupBySupplier(lines)
	for i := range groups {
		if groups[i].SupplierId != nil {
			groups[i].SupplierName = supplierNames[*groups[i].SupplierId]
		}
	}

	list := &ShoppingList{
		Lines:     lines,
		Groups:    groups,
		TotalCost: totalCost,
	}
	for _, line := range lines {
		switch line.SupplierStatus {
		case models.SupplierStatusComplete:
			list.SupplierStats.Complete++
		case models.SupplierStatusIncomplete:
			list.SupplierStats.Incomplete++
		case models.SupplierStatusMissing:
			list.SupplierStats.Missing++
		}
	}
	return list, nil
}

// GroupBySupplier partitions lines by supplier (unassigned bucket last) and
// sums each group's real total cost. Pure and idempotent for identical input.
func GroupBySupplier(lines []ShoppingListLine) ([]SupplierGroup, decimal.Decimal) {
	bySupplier := make(map[int][]ShoppingListLine)
	var unassigned []ShoppingListLine
	for _, line := range lines {
		if line.SupplierId == nil {
			unassigned = append(unassigned, line)
			continue
		}
		bySupplier[*line.SupplierId] = append(bySupplier[*line.SupplierId], line)
	}

	supplierIds := make([]int, 0, len(bySupplier))
	for id := range bySupplier {
		supplierIds = append(supplierIds, id)
	}
	sort.Ints(supplierIds)

	var groups []SupplierGroup
	grandTotal := decimal.Zero
	for _, id := range supplierIds {
		supplierId := id
		group := SupplierGroup{SupplierId: &supplierId, Lines: bySupplier[id]}
		for _, line := range group.Lines {
			group.Total = group.Total.Add(line.RealTotalCost)
		}
		grandTotal = grandTotal.Add(group.Total)
		groups = append(groups, group)
	}
	if len(unassigned) > 0 {
		group := SupplierGroup{Lines: unassigned}
		for _, line := range group.Lines {
			group.Total = group.Total.Add(line.RealTotalCost)
		}
		grandTotal = grandTotal.Add(group.Total)
		groups = append(groups, group)
	}
	return groups, grandTotal
}

// preferredPolicy picks the preferred supplier's packaging terms out of every
// policy on file for an ingredient, or nil when no supplier is assigned.
func preferredPolicy(rows []models.SupplierIngredient) (*PackagingPolicy, *models.SupplierIngredient) {
	for i := range rows {
		row := &rows[i]
		if row.IsPreferredSupplier != nil && *row.IsPreferredSupplier {
			return &PackagingPolicy{
				SupplierId:           row.SupplierId,
				PricePerPackage:      row.Price,
				PackageSize:          row.PackageSize,
				PackageUnit:          row.PackageUnit,
				MinimumOrderQuantity: row.MinimumOrderQuantity,
			}, row
		}
	}
	return nil, nil
}

// priceRating linearly interpolates the chosen supplier's per-unit price
// between the cheapest (100) and most expensive (0) supplier of the same
// ingredient. A single priced supplier rates 100.
func priceRating(chosen *models.SupplierIngredient, rows []models.SupplierIngredient) *decimal.Decimal {
	if chosen == nil || !chosen.Price.IsPositive() || !chosen.PackageSize.IsPositive() {
		return nil
	}

	perUnit := func(row *models.SupplierIngredient) decimal.Decimal {
		return row.Price.Div(row.PackageSize)
	}

	var unitPrices []decimal.Decimal
	for i := range rows {
		row := &rows[i]
		if row.Price.IsPositive() && row.PackageSize.IsPositive() {
			unitPrices = append(unitPrices, perUnit(row))
		}
	}
	hundred := decimal.NewFromInt(100)
	if len(unitPrices) < 2 {
		return &hundred
	}

	minPrice, maxPrice := unitPrices[0], unitPrices[0]
	for _, p := range unitPrices[1:] {
		if p.LessThan(minPrice) {
			minPrice = p
		}
		if p.GreaterThan(maxPrice) {
			maxPrice = p
		}
	}
	if maxPrice.Equal(minPrice) {
		return &hundred
	}

	rating := maxPrice.Sub(perUnit(chosen)).Div(maxPrice.Sub(minPrice)).Mul(hundred).Round(2)
	return &rating
}
