package enums

import "fmt"

// SupplierSaleStatus tracks the lifecycle of a supplier ledger row.
type SupplierSaleStatus string

const (
	SupplierSaleStatusPending   SupplierSaleStatus = "pending"
	SupplierSaleStatusConfirmed SupplierSaleStatus = "confirmed"
	SupplierSaleStatusShipped   SupplierSaleStatus = "shipped"
	SupplierSaleStatusDelivered SupplierSaleStatus = "delivered"
	SupplierSaleStatusCancelled SupplierSaleStatus = "cancelled"
	SupplierSaleStatusRefunded  SupplierSaleStatus = "refunded"
)

var validSupplierSaleStatuses = []SupplierSaleStatus{
	SupplierSaleStatusPending,
	SupplierSaleStatusConfirmed,
	SupplierSaleStatusShipped,
	SupplierSaleStatusDelivered,
	SupplierSaleStatusCancelled,
	SupplierSaleStatusRefunded,
}

// String implements fmt.Stringer.
func (s SupplierSaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SupplierSaleStatus.
func (s SupplierSaleStatus) IsValid() bool {
	for _, candidate := range validSupplierSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSupplierSaleStatus converts raw input into a SupplierSaleStatus.
func ParseSupplierSaleStatus(value string) (SupplierSaleStatus, error) {
	for _, candidate := range validSupplierSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier sale status %q", value)
}
