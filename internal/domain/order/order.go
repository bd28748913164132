package order

import "time"

type Status string

const (
	StatusPaid     Status = "PAID"
	StatusRefunded Status = "REFUNDED"
)

// Receipt is the durable record of a completed provider checkout session.
// SessionID is unique: a session is recorded at most once, which backs the
// once-only confirmation guarantee.
type Receipt struct {
	ID         int64
	SessionID  string
	UserID     *int64
	Email      string
	TotalCents int64
	Currency   string
	Status     Status
	Items      []ReceiptItem
	CreatedAt  time.Time
}

type ReceiptItem struct {
	ID         int64
	ReceiptID  int64
	Name       string
	PriceCents int64
	Quantity   int64
}
