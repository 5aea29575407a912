package ordering

import (
	"context"

	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/utils"
	"github.com/shopspring/decimal"
)

// MaxAggregationEvents bounds one aggregation pass. Demand over more events
// must be split into several requests.
const MaxAggregationEvents = 500

// DemandLine is the aggregated requirement for one ingredient across the
// selected events.
type DemandLine struct {
	IngredientId    int             `json:"ingredient_id"`
	NeededBase      decimal.Decimal `json:"needed_base"`
	NeededWithWaste decimal.Decimal `json:"needed_with_waste"`
}

// AggregateDemand expands the selected events into per-ingredient quantity
// requirements:
//
//	neededBase      = Σ over (event, recipe, line) of quantityPerServing × portions
//	neededWithWaste = neededBase × (1 + wastePercent)
//
// Events without a menu contribute nothing. Unavailable ingredients are
// excluded entirely: discontinued ingredients must never be auto-ordered.
// Pure read + fold, no side effects.
func AggregateDemand(ctx context.Context, filter models.EventFilter) (map[int]*DemandLine, error) {
	events, err := models.ListEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(events) > MaxAggregationEvents {
		return nil, utils.NewValidationError("aggregation spans %d events, limit is %d", len(events), MaxAggregationEvents)
	}
	if len(events) == 0 {
		return map[int]*DemandLine{}, nil
	}

	eventIds := make([]int, 0, len(events))
	for _, event := range events {
		eventIds = append(eventIds, event.ID)
	}

	menus, err := models.ListEventMenusByEventIds(ctx, eventIds)
	if err != nil {
		return nil, err
	}

	var recipeIds []int
	for _, menu := range menus {
		for _, assignment := range menu {
			recipeIds = append(recipeIds, assignment.RecipeId)
		}
	}
	recipeLines, err := models.ListRecipeIngredientsByRecipeIds(ctx, recipeIds)
	if err != nil {
		return nil, err
	}

	// fold quantityPerServing × portions per ingredient
	base := make(map[int]decimal.Decimal)
	for _, eventId := range eventIds {
		for _, assignment := range menus[eventId] {
			portions := decimal.NewFromInt(int64(assignment.Portions))
			for _, line := range recipeLines[assignment.RecipeId] {
				base[line.IngredientId] = base[line.IngredientId].Add(line.QuantityPerServing.Mul(portions))
			}
		}
	}
	if len(base) == 0 {
		return map[int]*DemandLine{}, nil
	}

	ingredientIds := make([]int, 0, len(base))
	for id := range base {
		ingredientIds = append(ingredientIds, id)
	}
	ingredients, err := models.ListIngredientsByIds(ctx, ingredientIds)
	if err != nil {
		return nil, err
	}

	one := decimal.NewFromInt(1)
	demand := make(map[int]*DemandLine)
	for id, neededBase := range base {
		ingredient, ok := ingredients[id]
		if !ok {
			continue
		}
		if ingredient.IsAvailable != nil && !*ingredient.IsAvailable {
			continue
		}
		demand[id] = &DemandLine{
			IngredientId:    id,
			NeededBase:      neededBase,
			NeededWithWaste: neededBase.Mul(one.Add(ingredient.WastePercent)),
		}
	}
	return demand, nil
}
