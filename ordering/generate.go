package ordering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

// OrderLineInput is one confirmed shopping list line: the real quantized
// quantity and its derived per-base-unit price.
type OrderLineInput struct {
	IngredientId int             `json:"ingredient_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// OrderGroupInput is one supplier group of a shopping list, confirmed for
// ordering. SupplierId nil targets the unassigned bucket.
type OrderGroupInput struct {
	SupplierId *int             `json:"supplier_id"`
	Lines      []OrderLineInput `json:"lines" validate:"required,min=1,dive"`
}

type GenerateOrdersInput struct {
	Groups       []OrderGroupInput `json:"groups" validate:"required,min=1,dive"`
	OrderDate    *time.Time        `json:"order_date"`
	DeliveryDate *time.Time        `json:"delivery_date"`
	Notes        string            `json:"notes"`
	SourceEvents []int             `json:"source_events"`
}

// FailedSupplier reports one supplier group that could not be committed.
type FailedSupplier struct {
	SupplierId *int   `json:"supplier_id"`
	Reason     string `json:"reason"`
}

// GenerateOrdersResult is a first-class partial-success shape: the caller can
// retry only the failed subset.
type GenerateOrdersResult struct {
	Created []int            `json:"created"`
	Failed  []FailedSupplier `json:"failed"`
}

// GenerateOrders persists one pending order per supplier group. Each
// supplier's order is its own transaction boundary: a failure in one group
// never rolls back orders already committed for other groups. Transient
// storage errors are retried once per group.
func GenerateOrders(ctx context.Context, input *GenerateOrdersInput) (*GenerateOrdersResult, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := validate.Struct(input); err != nil {
		return nil, utils.NewValidationError("invalid order input: %v", err)
	}
	for _, group := range input.Groups {
		for _, line := range group.Lines {
			if !line.Quantity.IsPositive() {
				return nil, utils.NewValidationError("ingredient %d: quantity must be positive", line.IngredientId)
			}
			if line.UnitPrice.IsNegative() {
				return nil, utils.NewValidationError("ingredient %d: unit price cannot be negative", line.IngredientId)
			}
		}
		if group.SupplierId != nil {
			if err := utils.ValidateResourceId[models.Supplier](ctx, businessId, *group.SupplierId); err != nil {
				return nil, &utils.NotFoundError{Resource: "supplier", Id: *group.SupplierId}
			}
		}
	}
	for _, eventId := range input.SourceEvents {
		if err := utils.ValidateResourceId[models.Event](ctx, businessId, eventId); err != nil {
			return nil, &utils.NotFoundError{Resource: "event", Id: eventId}
		}
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	orderDate := time.Now()
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}

	result := &GenerateOrdersResult{}
	for _, group := range input.Groups {
		orderId, err := createOrderForGroup(ctx, businessId, userId, orderDate, group, input)
		if err != nil {
			result.Failed = append(result.Failed, FailedSupplier{
				SupplierId: group.SupplierId,
				Reason:     err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, orderId)

		supplierLabel := "unassigned"
		if group.SupplierId != nil {
			supplierLabel = fmt.Sprint(*group.SupplierId)
		}
		models.RecordAudit(ctx, "*CREATE*", "supplier_orders", orderId,
			fmt.Sprintf("Supplier order created for supplier %s with %d items.", supplierLabel, len(group.Lines)))
	}
	return result, nil
}

// createOrderForGroup commits one order with its items and provenance rows in
// a single transaction, retrying once on a transient failure.
func createOrderForGroup(ctx context.Context, businessId string, userId int, orderDate time.Time, group OrderGroupInput, input *GenerateOrdersInput) (int, error) {
	db := config.GetDB()

	var orderId int
	run := func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			total := decimal.Zero
			items := make([]models.SupplierOrderItem, 0, len(group.Lines))
			for _, line := range group.Lines {
				totalPrice := line.TotalPrice
				if totalPrice.IsZero() {
					totalPrice = line.Quantity.Mul(line.UnitPrice).Round(4)
				}
				total = total.Add(totalPrice)
				items = append(items, models.SupplierOrderItem{
					IngredientId: line.IngredientId,
					Quantity:     line.Quantity,
					UnitPrice:    line.UnitPrice,
					TotalPrice:   totalPrice,
				})
			}

			order := models.SupplierOrder{
				BusinessId:   businessId,
				SupplierId:   group.SupplierId,
				OrderDate:    orderDate,
				DeliveryDate: input.DeliveryDate,
				Status:       models.SupplierOrderStatusPending,
				TotalAmount:  total,
				Notes:        input.Notes,
				StockApplied: utils.NewFalse(),
				CreatedBy:    userId,
				Items:        items,
			}
			for position, eventId := range input.SourceEvents {
				order.SourceEvents = append(order.SourceEvents, models.SupplierOrderEvent{
					EventId:  eventId,
					Position: position,
				})
			}

			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			orderId = order.ID
			return nil
		})
	}

	err := run()
	if err != nil && isTransientStorageError(err) {
		err = run()
	}
	if err != nil {
		return 0, &utils.StorageError{Op: "create supplier order", Err: err}
	}
	return orderId, nil
}

// isTransientStorageError recognizes commit failures worth one retry
// (deadlocks, lock waits, dropped connections).
func isTransientStorageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "lock wait timeout") ||
		strings.Contains(msg, "try restarting transaction") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "invalid connection")
}
