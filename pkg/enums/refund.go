package enums

import "fmt"

// RefundStatus tracks the lifecycle of a refund request.
type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "pending"
	RefundStatusProcessing RefundStatus = "processing"
	RefundStatusCompleted  RefundStatus = "completed"
	RefundStatusFailed     RefundStatus = "failed"
	RefundStatusCancelled  RefundStatus = "cancelled"
)

var validRefundStatuses = []RefundStatus{
	RefundStatusPending,
	RefundStatusProcessing,
	RefundStatusCompleted,
	RefundStatusFailed,
	RefundStatusCancelled,
}

// String implements fmt.Stringer.
func (r RefundStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundStatus.
func (r RefundStatus) IsValid() bool {
	for _, candidate := range validRefundStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsOpen reports whether the refund is still being worked.
func (r RefundStatus) IsOpen() bool {
	return r == RefundStatusPending || r == RefundStatusProcessing
}

// RefundReason captures why the customer asked for a refund.
type RefundReason string

const (
	RefundReasonCustomerRequest  RefundReason = "customer_request"
	RefundReasonDefectiveProduct RefundReason = "defective_product"
	RefundReasonWrongItem        RefundReason = "wrong_item"
	RefundReasonLateDelivery     RefundReason = "late_delivery"
	RefundReasonOrderCancelled   RefundReason = "order_cancelled"
	RefundReasonOther            RefundReason = "other"
)

var validRefundReasons = []RefundReason{
	RefundReasonCustomerRequest,
	RefundReasonDefectiveProduct,
	RefundReasonWrongItem,
	RefundReasonLateDelivery,
	RefundReasonOrderCancelled,
	RefundReasonOther,
}

// IsValid reports whether the value is a known RefundReason.
func (r RefundReason) IsValid() bool {
	for _, candidate := range validRefundReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRefundReason converts raw input into a RefundReason.
func ParseRefundReason(value string) (RefundReason, error) {
	for _, candidate := range validRefundReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund reason %q", value)
}
