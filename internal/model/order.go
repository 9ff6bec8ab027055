package model

import "time"

type Order struct {
	ID uint `gorm:"primaryKey"`
	// stripe checkout session id. The unique index is the idempotency
	// boundary: two deliveries of the same completed session can never
	// produce two rows.
	StripeSessionID string `gorm:"size:128;uniqueIndex;not null"`
	Email           string
	Name            string
	Line1           string
	Line2           string
	City            string
	PostalCode      string
	Country         string
	Phone           string
	Items           string `gorm:"type:text"` // JSON-serialized line items
	Total           int64  `gorm:"not null"`  // smallest currency unit
	CreatedAt       time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"` // stripe event id
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
