package models

import "errors"

type EventStatus string

const (
	EventStatusPlanned   EventStatus = "planned"
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

var eventStatuses = map[string]EventStatus{
	"planned":   EventStatusPlanned,
	"confirmed": EventStatusConfirmed,
	"completed": EventStatusCompleted,
	"cancelled": EventStatusCancelled,
}

func ParseEventStatus(s string) (EventStatus, error) {
	status, ok := eventStatuses[s]
	if !ok {
		return "", errors.New("invalid event status")
	}
	return status, nil
}

type SupplierOrderStatus string

const (
	SupplierOrderStatusPending   SupplierOrderStatus = "pending"
	SupplierOrderStatusOrdered   SupplierOrderStatus = "ordered"
	SupplierOrderStatusDelivered SupplierOrderStatus = "delivered"
	SupplierOrderStatusCancelled SupplierOrderStatus = "cancelled"
)

var supplierOrderStatuses = map[string]SupplierOrderStatus{
	"pending":   SupplierOrderStatusPending,
	"ordered":   SupplierOrderStatusOrdered,
	"delivered": SupplierOrderStatusDelivered,
	"cancelled": SupplierOrderStatusCancelled,
}

func ParseSupplierOrderStatus(s string) (SupplierOrderStatus, error) {
	status, ok := supplierOrderStatuses[s]
	if !ok {
		return "", errors.New("invalid supplier order status")
	}
	return status, nil
}

// Terminal states admit no further transition.
func (s SupplierOrderStatus) IsTerminal() bool {
	return s == SupplierOrderStatusDelivered || s == SupplierOrderStatusCancelled
}

// SupplierStatus classifies how complete an ingredient's supplier assignment
// and pricing are on a shopping list line.
type SupplierStatus string

const (
	// supplier assigned and package price > 0
	SupplierStatusComplete SupplierStatus = "complete"
	// supplier assigned but price missing/zero
	SupplierStatusIncomplete SupplierStatus = "incomplete"
	// no supplier assigned at all
	SupplierStatusMissing SupplierStatus = "missing"
)
