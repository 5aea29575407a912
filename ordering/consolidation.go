package ordering

import (
	"context"
	"sort"
	"time"

	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/models"
	"github.com/shopspring/decimal"
)

// ConsolidationSaving reports how many packages one ingredient would save if
// the pending orders needing it were merged before quantization.
type ConsolidationSaving struct {
	IngredientId   int             `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	OrdersAffected []int           `json:"orders_affected"`
	PackagesSaved  int64           `json:"packages_saved"`
	Savings        decimal.Decimal `json:"savings"`
}

// orderNeed is one pending order's re-aggregated requirement for an ingredient.
type orderNeed struct {
	orderId int
	need    decimal.Decimal
}

// ComputeConsolidationSavings cross-references pending future orders'
// provenance against live demand. For each ingredient appearing in at least
// two such orders:
//
//	packagesSeparate     = Σ over orders of ceil(orderNeed / packageSize)
//	packagesConsolidated = ceil(Σ over orders of orderNeed / packageSize)
//	packagesSaved        = packagesSeparate − packagesConsolidated
//
// Ceiling division guarantees packagesSaved ≥ 0; zero savings are omitted.
// Read-only and advisory: orders are never mutated, the ranked report is for
// an operator to act on by regenerating orders. Orders whose demand can no
// longer be aggregated are skipped with a logged warning.
func ComputeConsolidationSavings(ctx context.Context) ([]ConsolidationSaving, error) {
	logger := config.GetLogger()

	// date comparison, not instant: orders placed earlier today still count
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	orders, err := models.ListSupplierOrders(ctx, models.SupplierOrderFilter{
		Statuses: []models.SupplierOrderStatus{models.SupplierOrderStatusPending},
		DateFrom: &today,
	})
	if err != nil {
		return nil, err
	}

	needsByIngredient := make(map[int][]orderNeed)
	for _, order := range orders {
		eventIds := order.SourceEventIds()
		if len(eventIds) == 0 {
			continue
		}

		demand, err := AggregateDemand(ctx, models.EventFilter{EventIds: eventIds})
		if err != nil {
			config.LogWarn(logger, "consolidation.go", "ComputeConsolidationSavings",
				"AggregateDemand", order.ID, "skipping order: "+err.Error())
			continue
		}

		// only ingredients actually recorded on the order count
		for _, item := range order.Items {
			need, ok := demand[item.IngredientId]
			if !ok || !need.NeededWithWaste.IsPositive() {
				continue
			}
			needsByIngredient[item.IngredientId] = append(needsByIngredient[item.IngredientId], orderNeed{
				orderId: order.ID,
				need:    need.NeededWithWaste,
			})
		}
	}

	var ingredientIds []int
	for id, needs := range needsByIngredient {
		if len(needs) >= 2 {
			ingredientIds = append(ingredientIds, id)
		}
	}
	if len(ingredientIds) == 0 {
		return []ConsolidationSaving{}, nil
	}

	ingredients, err := models.ListIngredientsByIds(ctx, ingredientIds)
	if err != nil {
		return nil, err
	}
	policies, err := models.ListSupplierIngredientsByIngredientIds(ctx, ingredientIds)
	if err != nil {
		return nil, err
	}

	var report []ConsolidationSaving
	for _, id := range ingredientIds {
		policy, _ := preferredPolicy(policies[id])
		if policy == nil || !policy.PackageSize.IsPositive() || !policy.PricePerPackage.IsPositive() {
			// no packaging terms, nothing to save
			continue
		}

		needs := needsByIngredient[id]
		var packagesSeparate int64
		combined := decimal.Zero
		ordersAffected := make([]int, 0, len(needs))
		for _, n := range needs {
			packagesSeparate += ceilPackages(n.need, policy.PackageSize)
			combined = combined.Add(n.need)
			ordersAffected = append(ordersAffected, n.orderId)
		}
		packagesConsolidated := ceilPackages(combined, policy.PackageSize)

		saved := packagesSeparate - packagesConsolidated
		if saved <= 0 {
			continue
		}

		saving := ConsolidationSaving{
			IngredientId:   id,
			OrdersAffected: ordersAffected,
			PackagesSaved:  saved,
			Savings:        policy.PricePerPackage.Mul(decimal.NewFromInt(saved)),
		}
		if ingredient := ingredients[id]; ingredient != nil {
			saving.IngredientName = ingredient.Name
		}
		report = append(report, saving)
	}

	sort.Slice(report, func(i, j int) bool {
		if !report[i].Savings.Equal(report[j].Savings) {
			return report[i].Savings.GreaterThan(report[j].Savings)
		}
		return report[i].IngredientName < report[j].IngredientName
	})
	return report, nil
}
