package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/UnknownOlympus/courier/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// FetchRestaurants retrieves every restaurant together with its menu entries,
// sorted by restaurant name. Restaurants with an empty menu are returned with a nil Menu.
func (r *Repository) FetchRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	query := `
		SELECT r.id, r.name, r.address, r.contact_phone, m.product_id, m.availability
		FROM restaurants r
		LEFT JOIN restaurant_menu_items m ON m.restaurant_id = r.id
		ORDER BY r.name, r.id, m.id;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	index := make(map[int]int)

	for rows.Next() {
		var (
			rest      models.Restaurant
			productID *int
			available *bool
		)
		if errScan := rows.Scan(
			&rest.ID, &rest.Name, &rest.Address, &rest.ContactPhone, &productID, &available,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan restaurant menu item: %w", errScan)
		}

		pos, seen := index[rest.ID]
		if !seen {
			pos = len(restaurants)
			index[rest.ID] = pos
			restaurants = append(restaurants, rest)
		}

		if productID != nil {
			restaurants[pos].Menu = append(restaurants[pos].Menu, models.MenuEntry{
				RestaurantID: rest.ID,
				ProductID:    *productID,
				Available:    available != nil && *available,
			})
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Restaurants loaded", "count", len(restaurants))

	return restaurants, nil
}

// FetchOpenOrders retrieves orders that are not completed, with their lines and total price.
// New orders come first, then orders in progress.
func (r *Repository) FetchOpenOrders(ctx context.Context) ([]models.Order, error) {
	query := `
		SELECT o.id, o.address, o.status, o.restaurant_id, i.product_id, i.quantity, i.price
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.status <> 'completed'
		ORDER BY o.status DESC, o.id, i.id;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	index := make(map[int]int)

	for rows.Next() {
		var (
			ord       models.Order
			productID *int
			quantity  *int
			price     decimal.NullDecimal
		)
		if errScan := rows.Scan(
			&ord.ID, &ord.Address, &ord.Status, &ord.RestaurantID, &productID, &quantity, &price,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", errScan)
		}

		pos, seen := index[ord.ID]
		if !seen {
			pos = len(orders)
			index[ord.ID] = pos
			orders = append(orders, ord)
		}

		if productID != nil {
			line := models.OrderLine{OrderID: ord.ID, ProductID: *productID, Price: price.Decimal}
			if quantity != nil {
				line.Quantity = *quantity
			}
			orders[pos].Lines = append(orders[pos].Lines, line)
			orders[pos].TotalPrice = orders[pos].TotalPrice.Add(line.Cost())
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Open orders loaded", "count", len(orders))

	return orders, nil
}

// FetchProducts retrieves the product catalog ordered by ID.
func (r *Repository) FetchProducts(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT id, name, price
		FROM products
		ORDER BY id;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		if errScan := rows.Scan(&product.ID, &product.Name, &product.Price); errScan != nil {
			return nil, fmt.Errorf("failed to scan product: %w", errScan)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return products, nil
}

// GetCoordinates returns the cached coordinates for the given addresses.
// Addresses without an entry are absent from the result.
func (r *Repository) GetCoordinates(ctx context.Context, addresses []string) (map[string]models.Coordinates, error) {
	coords := make(map[string]models.Coordinates, len(addresses))
	if len(addresses) == 0 {
		return coords, nil
	}

	query := `
		SELECT address, lon, lat
		FROM coordinates
		WHERE address = ANY($1);
	`

	rows, err := r.db.Query(ctx, query, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to query coordinates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			address string
			point   models.Coordinates
		)
		if errScan := rows.Scan(&address, &point.Longitude, &point.Latitude); errScan != nil {
			return nil, fmt.Errorf("failed to scan coordinates: %w", errScan)
		}
		coords[address] = point
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return coords, nil
}

// InsertCoordinates stores the coordinates of an address unless an entry already exists.
// It returns the stored value, which is the earlier one on conflict.
func (r *Repository) InsertCoordinates(
	ctx context.Context,
	address string,
	coords models.Coordinates,
) (models.Coordinates, error) {
	query := `
		WITH inserted AS (
			INSERT INTO coordinates (address, lon, lat, created_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (address) DO NOTHING
			RETURNING lon, lat
		)
		SELECT lon, lat FROM inserted
		UNION ALL
		SELECT lon, lat FROM coordinates WHERE address = $1
		LIMIT 1;
	`

	var stored models.Coordinates
	err := r.db.QueryRow(ctx, query, address, coords.Longitude, coords.Latitude).
		Scan(&stored.Longitude, &stored.Latitude)
	if errors.Is(err, pgx.ErrNoRows) {
		// The conflicting row was committed after this statement took its snapshot.
		return r.storedCoordinates(ctx, address)
	}
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to insert coordinates: %w", err)
	}

	return stored, nil
}

func (r *Repository) storedCoordinates(ctx context.Context, address string) (models.Coordinates, error) {
	query := `
		SELECT lon, lat FROM coordinates WHERE address = $1;
	`

	var stored models.Coordinates
	if err := r.db.QueryRow(ctx, query, address).Scan(&stored.Longitude, &stored.Latitude); err != nil {
		return models.Coordinates{}, fmt.Errorf("failed to read concurrently inserted coordinates: %w", err)
	}

	r.log.DebugContext(ctx, "Coordinates were inserted concurrently", "address", address)

	return stored, nil
}
