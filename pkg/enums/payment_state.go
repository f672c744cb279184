package enums

// PaymentState tracks the lifecycle of an individual payment attempt.
type PaymentState string

const (
	PaymentStatePending    PaymentState = "pending"
	PaymentStateProcessing PaymentState = "processing"
	PaymentStateCompleted  PaymentState = "completed"
	PaymentStateFailed     PaymentState = "failed"
	PaymentStateCancelled  PaymentState = "cancelled"
)

var validPaymentStates = []PaymentState{
	PaymentStatePending,
	PaymentStateProcessing,
	PaymentStateCompleted,
	PaymentStateFailed,
	PaymentStateCancelled,
}

// String implements fmt.Stringer.
func (p PaymentState) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentState.
func (p PaymentState) IsValid() bool {
	for _, candidate := range validPaymentStates {
		if candidate == p {
			return true
		}
	}
	return false
}
