package models

import "github.com/shopspring/decimal"

// Product is an item of the shared catalog sold by restaurants.
type Product struct {
	ID    int
	Name  string
	Price decimal.Decimal
}
