package models

import "testing"

func TestParseSupplierOrderStatus(t *testing.T) {
	for _, raw := range []string{"pending", "ordered", "delivered", "cancelled"} {
		status, err := ParseSupplierOrderStatus(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if string(status) != raw {
			t.Fatalf("parse %q = %q", raw, status)
		}
	}
	if _, err := ParseSupplierOrderStatus("shipped"); err == nil {
		t.Fatal("unknown status must be rejected")
	}
	if _, err := ParseSupplierOrderStatus("Pending"); err == nil {
		t.Fatal("status parsing is case sensitive")
	}
}

func TestSupplierOrderStatusIsTerminal(t *testing.T) {
	if SupplierOrderStatusPending.IsTerminal() || SupplierOrderStatusOrdered.IsTerminal() {
		t.Fatal("pending and ordered are not terminal")
	}
	if !SupplierOrderStatusDelivered.IsTerminal() || !SupplierOrderStatusCancelled.IsTerminal() {
		t.Fatal("delivered and cancelled are terminal")
	}
}

func TestParseEventStatus(t *testing.T) {
	if _, err := ParseEventStatus("confirmed"); err != nil {
		t.Fatalf("parse confirmed: %v", err)
	}
	if _, err := ParseEventStatus("tentative"); err == nil {
		t.Fatal("unknown status must be rejected")
	}
}
