package models

import "github.com/shopspring/decimal"

// Order statuses.
const (
	OrderStatusNew        = "new"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
)

// OrderLine is a single product position of an order.
// Price is the unit price fixed when the order was placed.
type OrderLine struct {
	OrderID   int
	ProductID int
	Quantity  int
	Price     decimal.Decimal
}

// Cost returns the price of the whole line.
func (l OrderLine) Cost() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a customer order waiting for a restaurant.
// RestaurantID is nil until staff assign the order to a branch.
type Order struct {
	ID           int
	Address      string
	Status       string
	RestaurantID *int
	Lines        []OrderLine
	TotalPrice   decimal.Decimal // sum of line costs
}

// Assigned reports whether a restaurant has already been chosen for the order.
func (o Order) Assigned() bool {
	return o.RestaurantID != nil
}
