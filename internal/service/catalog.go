package service

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/courier/internal/matching"
	"github.com/UnknownOlympus/courier/internal/models"
)

// ProductAvailability is the product by restaurant table shown to staff.
// Every row's flags follow the order of Restaurants.
type ProductAvailability struct {
	Restaurants []models.Restaurant
	Products    []matching.AvailabilityRow
}

// ProductAvailability loads the catalog and the restaurant menus and reports which
// restaurant can sell which product right now.
func (ds *DispatchService) ProductAvailability(ctx context.Context) (ProductAvailability, error) {
	products, err := ds.repo.FetchProducts(ctx)
	if err != nil {
		return ProductAvailability{}, fmt.Errorf("failed to load products: %w", err)
	}

	restaurants, err := ds.repo.FetchRestaurants(ctx)
	if err != nil {
		return ProductAvailability{}, fmt.Errorf("failed to load restaurants: %w", err)
	}

	return ProductAvailability{
		Restaurants: restaurants,
		Products:    matching.AvailabilityTable(products, matching.BuildMenus(restaurants)),
	}, nil
}
