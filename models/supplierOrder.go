package models

import (
	"context"
	"time"

	"github.com/mkitchen/resto_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SupplierOrder is the persisted aggregate root of the ordering core.
// SupplierId is nil for the "no supplier assigned" bucket. Created atomically
// with its items by the order generator; mutated only by the lifecycle
// manager.
type SupplierOrder struct {
	ID           int                 `gorm:"primary_key" json:"id"`
	BusinessId   string              `gorm:"index;not null" json:"business_id"`
	SupplierId   *int                `gorm:"index;default:null" json:"supplier_id"`
	OrderDate    time.Time           `gorm:"index;not null" json:"order_date"`
	DeliveryDate *time.Time          `gorm:"default:null" json:"delivery_date"`
	Status       SupplierOrderStatus `gorm:"size:20;not null;default:pending" json:"status"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Notes        string              `gorm:"type:text" json:"notes"`
	// StockApplied tracks whether the delivery stock increment has run, so a
	// repeated transition into delivered stays a no-op.
	StockApplied *bool                `gorm:"not null;default:false" json:"stock_applied"`
	CreatedBy    int                  `gorm:"index" json:"created_by"`
	Items        []SupplierOrderItem  `json:"items"`
	SourceEvents []SupplierOrderEvent `json:"source_events"`
	CreatedAt    time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o SupplierOrder) GetBusinessId() string { return o.BusinessId }

// SupplierOrderItem is one ingredient line. Quantity is the real,
// package-quantized quantity; UnitPrice is derived per base unit, not per
// package. Invariant: sum(items.total_price) == order.total_amount after any
// mutation.
type SupplierOrderItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	SupplierOrderId int             `gorm:"index;not null" json:"supplier_order_id"`
	IngredientId    int             `gorm:"index;not null" json:"ingredient_id"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
}

// SupplierOrderEvent records provenance: the events whose demand produced the
// order. Position preserves the original ordering of the id list.
type SupplierOrderEvent struct {
	ID              int `gorm:"primary_key" json:"id"`
	SupplierOrderId int `gorm:"index;not null;uniqueIndex:idx_order_event" json:"supplier_order_id"`
	EventId         int `gorm:"index;not null;uniqueIndex:idx_order_event" json:"event_id"`
	Position        int `gorm:"not null;default:0" json:"position"`
}

// SourceEventIds returns the provenance event ids in their recorded order.
// Requires SourceEvents to be preloaded.
func (o *SupplierOrder) SourceEventIds() []int {
	ids := make([]int, 0, len(o.SourceEvents))
	for _, se := range o.SourceEvents {
		ids = append(ids, se.EventId)
	}
	return ids
}

func GetSupplierOrder(ctx context.Context, id int) (*SupplierOrder, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var order SupplierOrder
	err = db.WithContext(ctx).
		Preload("Items").
		Preload("SourceEvents", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("business_id = ?", businessId).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SupplierOrderFilter narrows ListSupplierOrders. Zero value lists everything
// for the tenant.
type SupplierOrderFilter struct {
	Statuses   []SupplierOrderStatus `json:"statuses"`
	SupplierId *int                  `json:"supplier_id"`
	DateFrom   *time.Time            `json:"date_from"`
	DateTo     *time.Time            `json:"date_to"`
}

func ListSupplierOrders(ctx context.Context, filter SupplierOrderFilter) ([]SupplierOrder, error) {
	businessId, err := requireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	query := db.WithContext(ctx).
		Preload("Items").
		Preload("SourceEvents", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("business_id = ?", businessId)

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.SupplierId != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierId)
	}
	if filter.DateFrom != nil {
		query = query.Where("order_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("order_date <= ?", *filter.DateTo)
	}

	var orders []SupplierOrder
	err = query.Order("order_date DESC").Find(&orders).Error
	return orders, err
}
