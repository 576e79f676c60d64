package matching

import "github.com/UnknownOlympus/courier/internal/models"

// ProductSet is a set of product identifiers.
type ProductSet map[int]struct{}

// Contains reports whether id is in the set.
func (s ProductSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// IsSubsetOf reports whether every element of s is also in other.
// The empty set is a subset of any set.
func (s ProductSet) IsSubsetOf(other ProductSet) bool {
	if len(s) > len(other) {
		return false
	}
	for id := range s {
		if !other.Contains(id) {
			return false
		}
	}

	return true
}

// AvailableProducts returns the products currently on sale in the restaurant.
// Duplicate menu entries for one product are OR-ed: a single available entry is enough.
func AvailableProducts(restaurant models.Restaurant) ProductSet {
	available := make(ProductSet, len(restaurant.Menu))
	for _, entry := range restaurant.Menu {
		if entry.Available {
			available[entry.ProductID] = struct{}{}
		}
	}

	return available
}

// AvailabilityRow is one product of the product by restaurant availability table.
// Available has one flag per menu, in the order the menus were given.
type AvailabilityRow struct {
	Product   models.Product
	Available []bool
}

// AvailabilityTable reports for every product whether each restaurant can sell it now.
// A restaurant with no menu entry for the product counts as unavailable.
func AvailabilityTable(products []models.Product, menus []Menu) []AvailabilityRow {
	rows := make([]AvailabilityRow, 0, len(products))
	for _, product := range products {
		flags := make([]bool, len(menus))
		for i, menu := range menus {
			flags[i] = menu.Available.Contains(product.ID)
		}
		rows = append(rows, AvailabilityRow{Product: product, Available: flags})
	}

	return rows
}
