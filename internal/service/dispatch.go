package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/UnknownOlympus/courier/internal/geocoding"
	"github.com/UnknownOlympus/courier/internal/matching"
	"github.com/UnknownOlympus/courier/internal/metrics"
	"github.com/UnknownOlympus/courier/internal/models"
	"github.com/UnknownOlympus/courier/internal/ranking"
	"github.com/UnknownOlympus/courier/internal/repository"
	"github.com/google/uuid"
)

// CoordinateCache is the shared address to coordinates store. Only DispatchService writes to it.
type CoordinateCache interface {
	GetMany(ctx context.Context, addresses []string) map[string]models.Coordinates
	Put(ctx context.Context, address string, coords models.Coordinates) (models.Coordinates, error)
}

// Result maps an order ID to its candidate restaurants, nearest first.
type Result map[int][]models.Candidate

// OrderRanking is an open order with the restaurants able to fulfil it.
// Candidates is nil for orders that already have a restaurant.
type OrderRanking struct {
	Order      models.Order
	Candidates []models.Candidate
}

// DispatchService matches open orders with restaurants and ranks them by distance,
// resolving missing coordinates through the cache and the geocoding provider.
type DispatchService struct {
	log          *slog.Logger         // Logger for logging service activities
	repo         repository.Interface // Source of orders and restaurants
	cache        CoordinateCache      // Persistent address coordinates
	provider     geocoding.Provider   // Geocoding provider for addresses missing from the cache
	providerName string               // Name of the provider for metrics labeling
	metrics      *metrics.Metrics     // Metrics for tracking service performance
	numWorkers   int                  // Maximum number of concurrent geocoding requests
	pollInterval time.Duration        // Interval between background passes
	addrPrefix   string               // Prefix sent to the provider in front of every address
}

// NewDispatchService creates a new instance of DispatchService.
func NewDispatchService(
	log *slog.Logger,
	repo repository.Interface,
	cache CoordinateCache,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
	addressPrefix string,
) *DispatchService {
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &DispatchService{
		log:          log,
		repo:         repo,
		cache:        cache,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
		addrPrefix:   addressPrefix,
	}
}

// Run periodically performs a full pass so that coordinates of new orders and
// restaurants are already cached when staff open the orders page.
func (ds *DispatchService) Run(ctx context.Context) {
	ticker := time.NewTicker(ds.pollInterval)
	defer ticker.Stop()

	ds.log.InfoContext(ctx, "Dispatch service started...")

	for {
		select {
		case <-ctx.Done():
			ds.log.InfoContext(ctx, "Dispatch service stopped.")
			return
		case <-ticker.C:
			rankings, err := ds.Dispatch(ctx)
			if err != nil {
				ds.log.ErrorContext(ctx, "Background pass failed", "error", err)
				continue
			}
			ds.log.InfoContext(ctx, "Background pass finished", "orders", len(rankings))
		}
	}
}

// Dispatch loads open orders and restaurants and ranks candidates for every unassigned order.
// Assigned orders are returned as well, without candidates.
func (ds *DispatchService) Dispatch(ctx context.Context) ([]OrderRanking, error) {
	orders, err := ds.repo.FetchOpenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	restaurants, err := ds.repo.FetchRestaurants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurants: %w", err)
	}

	result := ds.Process(ctx, orders, restaurants)

	rankings := make([]OrderRanking, 0, len(orders))
	for _, order := range orders {
		rankings = append(rankings, OrderRanking{Order: order, Candidates: result[order.ID]})
	}

	return rankings, nil
}

// Process ranks the matching restaurants of every order without an assigned restaurant.
// Assigned orders are absent from the result. Failures to resolve an address only mark
// the affected candidates as unresolved; Process itself never fails.
func (ds *DispatchService) Process(ctx context.Context, orders []models.Order, restaurants []models.Restaurant) Result {
	started := time.Now()
	log := ds.log.With("pass", uuid.NewString())

	menus := matching.BuildMenus(restaurants)

	pending := make([]models.Order, 0, len(orders))
	matched := make(map[int][]models.Restaurant, len(orders))
	for _, order := range orders {
		if order.Assigned() {
			continue
		}
		pending = append(pending, order)
		matched[order.ID] = matching.MatchingRestaurants(order, menus)
	}

	addresses := collectAddresses(pending, matched)
	log.DebugContext(ctx, "Orders matched", "pending", len(pending), "addresses", len(addresses))

	coords := ds.resolve(ctx, log, addresses)

	result := make(Result, len(pending))
	for _, order := range pending {
		pairs := make([]ranking.Pair, 0, len(matched[order.ID]))
		for _, rest := range matched[order.ID] {
			pairs = append(pairs, ranking.Pair{Restaurant: rest, Coordinates: lookup(coords, rest.Address)})
		}
		result[order.ID] = ranking.Rank(lookup(coords, order.Address), pairs)
	}

	ds.metrics.PassSeconds.Observe(time.Since(started).Seconds())
	log.InfoContext(ctx, "Dispatch pass finished",
		"orders", len(orders), "ranked", len(result), "resolved_addresses", len(coords))

	return result
}

// collectAddresses returns the distinct non-empty addresses of pending orders and of every
// restaurant matching at least one of them, in first-seen order.
func collectAddresses(pending []models.Order, matched map[int][]models.Restaurant) []string {
	seen := make(map[string]struct{})
	var addresses []string

	add := func(address string) {
		address = normalizeAddress(address)
		if address == "" {
			return
		}
		if _, ok := seen[address]; ok {
			return
		}
		seen[address] = struct{}{}
		addresses = append(addresses, address)
	}

	for _, order := range pending {
		add(order.Address)
		for _, rest := range matched[order.ID] {
			add(rest.Address)
		}
	}

	return addresses
}

// resolve returns the coordinates of every address it could resolve: cache hits first,
// then one provider call per miss on a bounded worker pool. Resolved misses are written
// to the cache right away. An address that fails is simply absent from the result.
func (ds *DispatchService) resolve(ctx context.Context, log *slog.Logger, addresses []string) map[string]models.Coordinates {
	coords := ds.cache.GetMany(ctx, addresses)

	missing := make([]string, 0, len(addresses))
	for _, address := range addresses {
		if _, ok := coords[address]; !ok {
			missing = append(missing, address)
		}
	}

	ds.metrics.CacheLookups.WithLabelValues("hit").Add(float64(len(addresses) - len(missing)))
	ds.metrics.CacheLookups.WithLabelValues("miss").Add(float64(len(missing)))

	if len(missing) == 0 {
		return coords
	}

	workers := min(ds.numWorkers, len(missing))
	log.InfoContext(ctx, "Geocoding addresses missing from cache", "jobs", len(missing), "num_workers", workers)

	jobs := make(chan string, len(missing))
	var (
		wgr sync.WaitGroup
		mu  sync.Mutex
	)

	for i := 1; i <= workers; i++ {
		wgr.Add(1)
		go func(idx int) {
			defer wgr.Done()
			for address := range jobs {
				point, ok := ds.geocode(ctx, log, idx, address)
				if !ok {
					continue
				}
				mu.Lock()
				coords[address] = point
				mu.Unlock()
			}
		}(i)
	}

	for _, address := range missing {
		jobs <- address
	}
	close(jobs)

	wgr.Wait()

	return coords
}

// geocode resolves one address through the provider and stores the result in the cache.
// The value returned is the one held by the cache, which wins over a fresh resolution.
func (ds *DispatchService) geocode(
	ctx context.Context,
	log *slog.Logger,
	idx int,
	address string,
) (models.Coordinates, bool) {
	ds.metrics.ActiveWorkers.Inc()
	defer ds.metrics.ActiveWorkers.Dec()

	startTime := time.Now()
	point, err := ds.provider.Geocode(ctx, ds.addrPrefix+address)
	ds.metrics.RequestSeconds.WithLabelValues(ds.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		log.WarnContext(ctx, "Failed to geocode", "worker", idx, "address", address, "error", err)
		ds.metrics.AddressesResolved.WithLabelValues("failure").Inc()
		ds.metrics.APIErrors.Inc()
		return models.Coordinates{}, false
	}
	ds.metrics.AddressesResolved.WithLabelValues("success").Inc()

	stored, err := ds.cache.Put(ctx, address, *point)
	if err != nil {
		log.ErrorContext(ctx, "Failed to cache coordinates", "worker", idx, "address", address, "error", err)
		return *point, true
	}

	log.DebugContext(ctx, "Address geocoded", "worker", idx, "address", address)

	return stored, true
}

func lookup(coords map[string]models.Coordinates, address string) *models.Coordinates {
	point, ok := coords[normalizeAddress(address)]
	if !ok {
		return nil
	}

	return &point
}

func normalizeAddress(address string) string {
	return strings.TrimSpace(address)
}
