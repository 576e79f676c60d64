package matching

import "github.com/UnknownOlympus/courier/internal/models"

// Menu pairs a restaurant with its precomputed available products.
type Menu struct {
	Restaurant models.Restaurant
	Available  ProductSet
}

// BuildMenus resolves availability once per restaurant so it can be shared by every order of a batch.
func BuildMenus(restaurants []models.Restaurant) []Menu {
	menus := make([]Menu, 0, len(restaurants))
	for _, restaurant := range restaurants {
		menus = append(menus, Menu{Restaurant: restaurant, Available: AvailableProducts(restaurant)})
	}

	return menus
}

// RequiredProducts returns the distinct products of the order. Quantities are ignored.
func RequiredProducts(order models.Order) ProductSet {
	required := make(ProductSet, len(order.Lines))
	for _, line := range order.Lines {
		required[line.ProductID] = struct{}{}
	}

	return required
}

// MatchingRestaurants returns the restaurants able to supply every product of the order,
// in the order they appear in menus. An order without lines matches every restaurant.
func MatchingRestaurants(order models.Order, menus []Menu) []models.Restaurant {
	required := RequiredProducts(order)

	matched := make([]models.Restaurant, 0, len(menus))
	for _, menu := range menus {
		if required.IsSubsetOf(menu.Available) {
			matched = append(matched, menu.Restaurant)
		}
	}

	return matched
}
