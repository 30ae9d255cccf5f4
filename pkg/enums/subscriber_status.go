package enums

// SubscriberStatus tracks a newsletter subscriber. Only active is in use.
type SubscriberStatus string

const SubscriberStatusActive SubscriberStatus = "active"

func (s SubscriberStatus) IsValid() bool {
	return s == SubscriberStatusActive
}
