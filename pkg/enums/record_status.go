package enums

import "fmt"

// RecordStatus is the lifecycle status shared by orders and reservations.
// Any status may follow any other; the admin picks freely.
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusConfirmed RecordStatus = "confirmed"
	RecordStatusPreparing RecordStatus = "preparing"
	RecordStatusReady     RecordStatus = "ready"
	RecordStatusDelivered RecordStatus = "delivered"
)

var validRecordStatuses = []RecordStatus{
	RecordStatusPending,
	RecordStatusConfirmed,
	RecordStatusPreparing,
	RecordStatusReady,
	RecordStatusDelivered,
}

// RecordStatuses returns the vocabulary in display order.
func RecordStatuses() []RecordStatus {
	out := make([]RecordStatus, len(validRecordStatuses))
	copy(out, validRecordStatuses)
	return out
}

// String implements fmt.Stringer.
func (s RecordStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RecordStatus.
func (s RecordStatus) IsValid() bool {
	for _, candidate := range validRecordStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRecordStatus converts raw input into a RecordStatus. Matching is exact.
func ParseRecordStatus(value string) (RecordStatus, error) {
	for _, candidate := range validRecordStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid record status %q", value)
}
