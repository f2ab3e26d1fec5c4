package plan

import "time"

// Money represents a monetary amount in the smallest currency unit.
// R$ 59,99 is Amount: 5999, Currency: "BRL".
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// BillingInterval is the billing frequency of a plan.
type BillingInterval string

const (
	IntervalMonth BillingInterval = "month"
	IntervalYear  BillingInterval = "year"
)

// Plan is a purchasable subscription tier. The catalog is seeded by
// migrations and read-only at runtime.
type Plan struct {
	ID          string
	Name        string
	Description string
	Price       Money
	Interval    BillingInterval
	Features    []string // ordered, as presented on the pricing page
	Public      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
