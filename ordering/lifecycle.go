package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/mkitchen/resto_backend/config"
	"github.com/mkitchen/resto_backend/models"
	"github.com/mkitchen/resto_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Legal transitions: pending → ordered → delivered, and pending|ordered →
// cancelled. delivered and cancelled are terminal.
var legalTransitions = map[models.SupplierOrderStatus][]models.SupplierOrderStatus{
	models.SupplierOrderStatusPending: {models.SupplierOrderStatusOrdered, models.SupplierOrderStatusCancelled},
	models.SupplierOrderStatusOrdered: {models.SupplierOrderStatusDelivered, models.SupplierOrderStatusCancelled},
}

func transitionAllowed(from, to models.SupplierOrderStatus) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateOrderStatus moves an order through its lifecycle. Setting the current
// status again leaves the status and stock untouched but still applies a
// notes update. The first transition into delivered increments
// each ingredient's stock by the item quantity, exactly once: the increment
// is guarded by the order's StockApplied flag, not by status equality, and
// runs as an atomic UPDATE inside the same transaction as the status change.
func UpdateOrderStatus(ctx context.Context, orderId int, newStatusRaw string, notes *string) (*models.SupplierOrder, error) {
	newStatus, err := models.ParseSupplierOrderStatus(newStatusRaw)
	if err != nil {
		return nil, utils.NewValidationError("invalid order status %q", newStatusRaw)
	}
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var order models.SupplierOrder
	changed := false

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items").
			Where("business_id = ?", businessId).
			First(&order, orderId).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.NotFoundError{Resource: "supplier order", Id: orderId}
		}
		if err != nil {
			return err
		}

		if order.Status == newStatus {
			// status no-op, including a repeated delivered: stock must not
			// double. A notes update still goes through.
			if notes != nil {
				return tx.Model(&order).Update("notes", *notes).Error
			}
			return nil
		}
		changed = true
		if !transitionAllowed(order.Status, newStatus) {
			return utils.NewConflictError(string(order.Status),
				"cannot transition order %d from %s to %s", orderId, order.Status, newStatus)
		}

		updates := map[string]interface{}{"status": newStatus}
		if notes != nil {
			updates["notes"] = *notes
		}

		if newStatus == models.SupplierOrderStatusDelivered && !utils.DereferencePtr(order.StockApplied) {
			for _, item := range order.Items {
				err := tx.Model(&models.Ingredient{}).
					Where("business_id = ? AND id = ?", businessId, item.IngredientId).
					Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
				if err != nil {
					return err
				}
				utils.CleanRedis[models.Ingredient](item.IngredientId)
			}
			updates["stock_applied"] = true
			if order.DeliveryDate == nil {
				now := time.Now()
				updates["delivery_date"] = now
			}
		}

		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if changed {
		models.RecordAudit(ctx, "*STATUS*", "supplier_orders", orderId,
			fmt.Sprintf("Supplier order status changed to %s.", newStatus))
	}

	return models.GetSupplierOrder(ctx, orderId)
}

// OrderItemEdit updates one line with the real negotiated quantity/price.
type OrderItemEdit struct {
	ItemId    int             `json:"item_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// UpdateOrderItems edits item quantities and prices. Permitted only while the
// order is ordered: the window between confirmation and physical receipt,
// when real negotiated prices become known. Recomputes every item total and
// the order total, then back-propagates the new unit price into the
// ingredient's base price and the supplier's package price so future
// estimates stay accurate (last-writer-wins).
//
// Concurrent edits of the same order are serialized best-effort with a
// per-order redis lock; the database transaction remains the authority.
func UpdateOrderItems(ctx context.Context, orderId int, edits []OrderItemEdit) (decimal.Decimal, error) {
	if len(edits) == 0 {
		return decimal.Zero, utils.NewValidationError("no item edits given")
	}
	for _, edit := range edits {
		if edit.ItemId <= 0 {
			return decimal.Zero, utils.NewValidationError("item id is required")
		}
		if !edit.Quantity.IsPositive() {
			return decimal.Zero, utils.NewValidationError("item %d: quantity must be positive", edit.ItemId)
		}
		if edit.UnitPrice.IsNegative() {
			return decimal.Zero, utils.NewValidationError("item %d: unit price cannot be negative", edit.ItemId)
		}
	}
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return decimal.Zero, errors.New("business id is required")
	}

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, fmt.Sprintf("order-edit:%d", orderId), 30*time.Second, nil)
		if err == nil {
			defer lock.Release(context.WithoutCancel(ctx))
		} else if errors.Is(err, redislock.ErrNotObtained) {
			return decimal.Zero, utils.NewConflictError("locked", "order %d is being edited by another request", orderId)
		}
		// other redis errors: proceed, the DB transaction still serializes
	}

	db := config.GetDB()
	var newTotal decimal.Decimal

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.SupplierOrder
		err := tx.Preload("Items").
			Where("business_id = ?", businessId).
			First(&order, orderId).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.NotFoundError{Resource: "supplier order", Id: orderId}
		}
		if err != nil {
			return err
		}

		if order.Status != models.SupplierOrderStatusOrdered {
			return utils.NewConflictError(string(order.Status),
				"items can only be edited while the order is ordered")
		}

		itemsById := make(map[int]*models.SupplierOrderItem, len(order.Items))
		for i := range order.Items {
			itemsById[order.Items[i].ID] = &order.Items[i]
		}

		for _, edit := range edits {
			item, ok := itemsById[edit.ItemId]
			if !ok {
				return &utils.NotFoundError{Resource: "order item", Id: edit.ItemId}
			}

			item.Quantity = edit.Quantity
			item.UnitPrice = edit.UnitPrice
			item.TotalPrice = edit.Quantity.Mul(edit.UnitPrice).Round(4)
			if err := tx.Save(item).Error; err != nil {
				return err
			}

			if err := backPropagatePrice(tx, businessId, order.SupplierId, item.IngredientId, edit.UnitPrice); err != nil {
				return err
			}
		}

		// keep total_amount consistent with the items, edited or not
		newTotal = decimal.Zero
		for i := range order.Items {
			newTotal = newTotal.Add(order.Items[i].TotalPrice)
		}
		return tx.Model(&order).Update("total_amount", newTotal).Error
	})
	if err != nil {
		return decimal.Zero, err
	}

	models.RecordAudit(ctx, "*UPDATE*", "supplier_orders", orderId,
		fmt.Sprintf("Supplier order items updated, new total %s.", newTotal))

	return newTotal, nil
}

// backPropagatePrice pushes a negotiated per-unit price into the catalog:
// the ingredient's base price, and the supplier's package price scaled by the
// package size.
func backPropagatePrice(tx *gorm.DB, businessId string, supplierId *int, ingredientId int, unitPrice decimal.Decimal) error {
	err := tx.Model(&models.Ingredient{}).
		Where("business_id = ? AND id = ?", businessId, ingredientId).
		Update("base_price", unitPrice).Error
	if err != nil {
		return err
	}
	utils.CleanRedis[models.Ingredient](ingredientId)

	if supplierId == nil {
		return nil
	}

	var policy models.SupplierIngredient
	err = tx.Where("business_id = ? AND supplier_id = ? AND ingredient_id = ?",
		businessId, *supplierId, ingredientId).
		First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	packagePrice := unitPrice.Mul(policy.PackageSize).Round(4)
	if err := tx.Model(&policy).Update("price", packagePrice).Error; err != nil {
		return err
	}
	utils.CleanRedis[models.SupplierIngredient](policy.ID)
	return nil
}

// DeleteOrder removes an order with its items and provenance rows. A
// delivered order cannot be deleted: its stock effects are already applied
// and must not be silently undone.
func DeleteOrder(ctx context.Context, orderId int) error {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return errors.New("business id is required")
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.SupplierOrder
		err := tx.Where("business_id = ?", businessId).First(&order, orderId).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &utils.NotFoundError{Resource: "supplier order", Id: orderId}
		}
		if err != nil {
			return err
		}

		if order.Status == models.SupplierOrderStatusDelivered {
			return utils.NewConflictError(string(order.Status), "a delivered order cannot be deleted")
		}

		if err := tx.Where("supplier_order_id = ?", orderId).Delete(&models.SupplierOrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_order_id = ?", orderId).Delete(&models.SupplierOrderEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		return err
	}

	models.RecordAudit(ctx, "*DELETE*", "supplier_orders", orderId, "Supplier order deleted.")
	return nil
}
