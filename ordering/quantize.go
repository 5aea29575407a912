// Package ordering implements the supply ordering core: demand aggregation
// over scheduled events, package quantization against supplier policies,
// supplier grouping, order generation and lifecycle, and consolidation
// savings analysis.
package ordering

import (
	"github.com/mkitchen/resto_backend/models"
	"github.com/shopspring/decimal"
)

// PackagingPolicy is a supplier's terms for one ingredient: price per whole
// package, package size in the ingredient's base unit, and the minimum order
// in packages.
type PackagingPolicy struct {
	SupplierId           int             `json:"supplier_id"`
	PricePerPackage      decimal.Decimal `json:"price_per_package"`
	PackageSize          decimal.Decimal `json:"package_size"`
	PackageUnit          string          `json:"package_unit"`
	MinimumOrderQuantity int64           `json:"minimum_order_quantity"`
}

// QuantizedLine is the result of converting a continuous quantity-to-buy into
// whole purchasable packages.
type QuantizedLine struct {
	IngredientId   int                   `json:"ingredient_id"`
	ToBuy          decimal.Decimal       `json:"to_buy"`
	PackagesToBuy  int64                 `json:"packages_to_buy"`
	RealQuantity   decimal.Decimal       `json:"real_quantity"`
	RealTotalCost  decimal.Decimal       `json:"real_total_cost"`
	UnitPrice      decimal.Decimal       `json:"unit_price"`
	SupplierStatus models.SupplierStatus `json:"supplier_status"`
	Policy         *PackagingPolicy      `json:"policy,omitempty"`
}

// NetAgainstStock nets demand against on-hand stock, clamped at zero:
// toBuy = max(0, neededWithWaste - stock).
func NetAgainstStock(neededWithWaste, stock decimal.Decimal) decimal.Decimal {
	toBuy := neededWithWaste.Sub(stock)
	if toBuy.IsNegative() {
		return decimal.Zero
	}
	return toBuy
}

// Quantize converts toBuy into whole supplier packages.
//
//	packagesToBuy = max(minimumOrderQuantity, ceil(toBuy / packageSize))   (0 if toBuy == 0)
//	realQuantity  = packagesToBuy × packageSize
//	realTotalCost = packagesToBuy × pricePerPackage
//
// Rounding is always up: under-ordering is never acceptable, over-ordering by
// up to one package is the accepted tradeoff. With no usable policy the line
// falls back to the unpackaged estimate priced at the ingredient's base price
// and is classified incomplete (supplier without a price) or missing (no
// supplier at all).
func Quantize(ingredientId int, toBuy decimal.Decimal, basePrice decimal.Decimal, policy *PackagingPolicy) QuantizedLine {
	if toBuy.IsNegative() {
		toBuy = decimal.Zero
	}

	line := QuantizedLine{
		IngredientId: ingredientId,
		ToBuy:        toBuy,
		Policy:       policy,
	}

	if policy == nil {
		line.SupplierStatus = models.SupplierStatusMissing
		line.RealQuantity = toBuy
		line.UnitPrice = basePrice
		line.RealTotalCost = toBuy.Mul(basePrice)
		return line
	}

	if !policy.PricePerPackage.IsPositive() || !policy.PackageSize.IsPositive() {
		line.SupplierStatus = models.SupplierStatusIncomplete
		line.RealQuantity = toBuy
		line.UnitPrice = basePrice
		line.RealTotalCost = toBuy.Mul(basePrice)
		return line
	}

	line.SupplierStatus = models.SupplierStatusComplete
	line.UnitPrice = policy.PricePerPackage.Div(policy.PackageSize).Round(4)

	// No minimum applies to a zero need.
	if toBuy.IsZero() {
		line.RealQuantity = decimal.Zero
		line.RealTotalCost = decimal.Zero
		return line
	}

	packages := ceilPackages(toBuy, policy.PackageSize)
	if packages < policy.MinimumOrderQuantity {
		packages = policy.MinimumOrderQuantity
	}

	line.PackagesToBuy = packages
	line.RealQuantity = policy.PackageSize.Mul(decimal.NewFromInt(packages))
	line.RealTotalCost = policy.PricePerPackage.Mul(decimal.NewFromInt(packages))
	return line
}

// ceilPackages computes ceil(toBuy / packageSize) as a whole package count.
func ceilPackages(toBuy, packageSize decimal.Decimal) int64 {
	return toBuy.Div(packageSize).Ceil().IntPart()
}
