package enums

import "fmt"

// NotificationType categorizes in-app notifications.
type NotificationType string

const (
	NotificationTypeLowStock        NotificationType = "low_stock"
	NotificationTypeOrderPaid       NotificationType = "order_paid"
	NotificationTypeOrderShipped    NotificationType = "order_shipped"
	NotificationTypeRefundRequested NotificationType = "refund_requested"
	NotificationTypeSupportReply    NotificationType = "support_reply"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeLowStock,
	NotificationTypeOrderPaid,
	NotificationTypeOrderShipped,
	NotificationTypeRefundRequested,
	NotificationTypeSupportReply,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
