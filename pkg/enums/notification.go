package enums

import "fmt"

// NotificationType says which kind of record a notification announces.
type NotificationType string

const (
	NotificationTypeOrder       NotificationType = "order"
	NotificationTypeReservation NotificationType = "reservation"
	NotificationTypeNewsletter  NotificationType = "newsletter"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrder,
	NotificationTypeReservation,
	NotificationTypeNewsletter,
}

func (n NotificationType) String() string {
	return string(n)
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
