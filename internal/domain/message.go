package domain

import "time"

// Field is one labelled value inside a notification message.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Message is the channel-agnostic notification built by the formatter.
// A serializer in the dispatcher maps it to the destination wire format.
type Message struct {
	Username  string
	Title     string
	Body      string
	URL       string
	Color     int
	Fields    []Field
	Footer    string
	Timestamp time.Time
}

// DeliveryResult reports what the dispatcher did with a message.
type DeliveryResult string

const (
	DeliveryDelivered DeliveryResult = "delivered"
	DeliveryRetried   DeliveryResult = "rate_limited_retried"
	DeliveryFailed    DeliveryResult = "failed"
	DeliverySkipped   DeliveryResult = "skipped"
)

// DeliveredRecord is the audit row written after a successful dispatch.
type DeliveredRecord struct {
	DocumentKey string
	FilerName   string
	Category    Category
	Channel     string
	DeliveredAt time.Time
}
