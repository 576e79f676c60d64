package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/courier/internal/models"
	"github.com/UnknownOlympus/courier/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatcher produces the staff views: candidate rankings of open orders
// and product availability per restaurant.
type Dispatcher interface {
	Dispatch(ctx context.Context) ([]service.OrderRanking, error)
	ProductAvailability(ctx context.Context) (service.ProductAvailability, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log        *slog.Logger
	dispatcher Dispatcher
	db         Pinger
}

func NewHandler(log *slog.Logger, dispatcher Dispatcher, db Pinger) *Handler {
	return &Handler{log: log, dispatcher: dispatcher, db: db}
}

// InitRoutes builds the router with the staff API and the monitoring endpoints.
func (h *Handler) InitRoutes(reg *prometheus.Registry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", h.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/orders/candidates", h.orderCandidates)
		api.GET("/products/availability", h.productAvailability)
	}

	return router
}

type candidateResponse struct {
	RestaurantID   int             `json:"restaurant_id"`
	RestaurantName string          `json:"restaurant_name"`
	Address        string          `json:"address"`
	DistanceKm     models.Distance `json:"distance_km"`
	Resolved       bool            `json:"resolved"`
}

type orderResponse struct {
	OrderID      int                 `json:"order_id"`
	Address      string              `json:"address"`
	Status       string              `json:"status"`
	RestaurantID *int                `json:"restaurant_id"`
	TotalPrice   string              `json:"total_price"`
	Candidates   []candidateResponse `json:"candidates"`
}

type restaurantRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type productRow struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Available []bool `json:"available"`
}

type availabilityResponse struct {
	Restaurants []restaurantRef `json:"restaurants"`
	Products    []productRow    `json:"products"`
}

func (h *Handler) orderCandidates(c *gin.Context) {
	ctx := c.Request.Context()

	rankings, err := h.dispatcher.Dispatch(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "Failed to rank order candidates", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
		return
	}

	response := make([]orderResponse, 0, len(rankings))
	for _, r := range rankings {
		candidates := make([]candidateResponse, 0, len(r.Candidates))
		for _, cand := range r.Candidates {
			candidates = append(candidates, candidateResponse{
				RestaurantID:   cand.Restaurant.ID,
				RestaurantName: cand.Restaurant.Name,
				Address:        cand.Restaurant.Address,
				DistanceKm:     cand.Distance,
				Resolved:       cand.Distance.Resolved(),
			})
		}
		response = append(response, orderResponse{
			OrderID:      r.Order.ID,
			Address:      r.Order.Address,
			Status:       r.Order.Status,
			RestaurantID: r.Order.RestaurantID,
			TotalPrice:   r.Order.TotalPrice.StringFixed(2),
			Candidates:   candidates,
		})
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) productAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	table, err := h.dispatcher.ProductAvailability(ctx)
	if err != nil {
		h.log.ErrorContext(ctx, "Failed to build product availability", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}

	response := availabilityResponse{
		Restaurants: make([]restaurantRef, 0, len(table.Restaurants)),
		Products:    make([]productRow, 0, len(table.Products)),
	}
	for _, rest := range table.Restaurants {
		response.Restaurants = append(response.Restaurants, restaurantRef{ID: rest.ID, Name: rest.Name})
	}
	for _, row := range table.Products {
		response.Products = append(response.Products, productRow{
			ID:        row.Product.ID,
			Name:      row.Product.Name,
			Price:     row.Product.Price.StringFixed(2),
			Available: row.Available,
		})
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) healthz(c *gin.Context) {
	ctx := c.Request.Context()
	h.log.DebugContext(ctx, "Performing health checks...")

	if err := h.db.Ping(ctx); err != nil {
		h.log.ErrorContext(ctx, "Health check failed", "error", err)
		c.String(http.StatusServiceUnavailable, "DB ping failed")
		return
	}

	c.String(http.StatusOK, "OK")
}
