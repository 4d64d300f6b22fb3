package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/metrics"
	"github.com/tair/stock-ledger/internal/inventory/reservation"
	"github.com/tair/stock-ledger/internal/inventory/usecase"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
	"github.com/tair/stock-ledger/pkg/breaker"
	"github.com/tair/stock-ledger/pkg/logger"
)

// InventoryHandler handles HTTP requests for inventory
type InventoryHandler struct {
	commands *usecase.CommandHandlers
	queries  *usecase.QueryHandlers
	repo     domain.Repository
	breaker  *breaker.Breaker
	metrics  *metrics.Metrics
}

// NewInventoryHandler creates a new inventory handler. br may be nil when
// event publishing is disabled.
func NewInventoryHandler(
	commands *usecase.CommandHandlers,
	queries *usecase.QueryHandlers,
	repo domain.Repository,
	br *breaker.Breaker,
	m *metrics.Metrics,
) *InventoryHandler {
	return &InventoryHandler{
		commands: commands,
		queries:  queries,
		repo:     repo,
		breaker:  br,
		metrics:  m,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type createOrUpdateStockRequest struct {
	ProductID     uint   `json:"product_id"`
	Location      string `json:"location"`
	DeltaQuantity int    `json:"delta_quantity"`
}

type reserveStockRequest struct {
	ProductID  uint   `json:"product_id"`
	Quantity   int    `json:"quantity"`
	OrderID    string `json:"order_id"`
	TTLMinutes *int   `json:"ttl_minutes,omitempty"`
}

type reservationResponse struct {
	ReservationID     string              `json:"reservation_id"`
	ProductID         uint                `json:"product_id"`
	Quantity          int                 `json:"quantity"`
	OrderID           string              `json:"order_id"`
	ExpiresAt         time.Time           `json:"expires_at"`
	Allocations       []domain.Allocation `json:"allocations"`
	AvailableQuantity int                 `json:"available_quantity"`
}

type declinedResponse struct {
	ProductID         uint `json:"product_id"`
	AvailableQuantity int  `json:"available_quantity"`
	RequestedQuantity int  `json:"requested_quantity"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records request count and latency per route template
func (h *InventoryHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(rw, r)

		h.metrics.ObserveRequest(r.Method, endpoint, rw.statusCode, time.Since(start))
	}
}

// CreateOrUpdateStock handles POST /api/inventory/stock
func (h *InventoryHandler) CreateOrUpdateStock(w http.ResponseWriter, r *http.Request) {
	var req createOrUpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	record, err := h.commands.CreateOrUpdateStock.Handle(r.Context(), command.CreateOrUpdateStockCommand{
		ProductID:     req.ProductID,
		Location:      req.Location,
		DeltaQuantity: req.DeltaQuantity,
	})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock updated successfully",
		Data:    record,
	})
}

// GetStock handles GET /api/inventory/stock/{id}
func (h *InventoryHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUintVar(w, r, "id", "Invalid stock record ID")
	if !ok {
		return
	}

	record, err := h.queries.GetStock.Handle(r.Context(), query.GetStockQuery{ID: id})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    record,
	})
}

// ListStock handles GET /api/inventory/products/{product_id}/stock
func (h *InventoryHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseUintVar(w, r, "product_id", "Invalid product ID")
	if !ok {
		return
	}

	result, err := h.queries.ListStock.Handle(r.Context(), query.ListStockQuery{ProductID: productID})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// CheckStock handles GET /api/inventory/check/{product_id}?quantity=N
func (h *InventoryHandler) CheckStock(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseUintVar(w, r, "product_id", "Invalid product ID")
	if !ok {
		return
	}

	required := 1
	if raw := r.URL.Query().Get("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   "Invalid quantity",
			})
			return
		}
		required = n
	}

	result, err := h.queries.CheckStock.Handle(r.Context(), query.CheckStockQuery{
		ProductID:        productID,
		RequiredQuantity: required,
	})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// ReserveStock handles POST /api/inventory/reservations
func (h *InventoryHandler) ReserveStock(w http.ResponseWriter, r *http.Request) {
	var req reserveStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	result, err := h.commands.ReserveStock.Handle(r.Context(), command.ReserveStockCommand{
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		OrderID:    req.OrderID,
		TTLMinutes: req.TTLMinutes,
	})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if !result.Success {
		respondJSON(w, http.StatusOK, Response{
			Success: false,
			Message: result.Message,
			Data: declinedResponse{
				ProductID:         req.ProductID,
				AvailableQuantity: result.AvailableQuantity,
				RequestedQuantity: result.RequestedQuantity,
			},
		})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: result.Message,
		Data:    toReservationResponse(result),
	})
}

// GetReservation handles GET /api/inventory/reservations/{id}
func (h *InventoryHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	res, err := h.queries.GetReservation.Handle(r.Context(), query.GetReservationQuery{ID: id})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    res,
	})
}

// ReleaseStock handles POST /api/inventory/reservations/{id}/release
func (h *InventoryHandler) ReleaseStock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := h.commands.ReleaseStock.Handle(r.Context(), command.ReleaseStockCommand{ReservationID: id})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if !result.Released {
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Message: "Reservation not found or already released",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Reservation released successfully",
		Data:    result.Reservation,
	})
}

// HealthCheck handles GET /health
func (h *InventoryHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	data := map[string]interface{}{}
	if h.breaker != nil {
		data["event_publisher"] = h.breaker.Stats()
	}

	if err := h.repo.Ping(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Health check failed")
		respondJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database unavailable",
			Data:    data,
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Inventory service is healthy",
		Data:    data,
	})
}

// RegisterRoutes registers all inventory routes. reserveLimit guards the
// reservation endpoint and may be nil.
func (h *InventoryHandler) RegisterRoutes(router *mux.Router, reserveLimit *RateLimiter) {
	reserve := http.HandlerFunc(h.ReserveStock)
	if reserveLimit != nil {
		reserve = reserveLimit.Middleware(reserve).ServeHTTP
	}

	router.HandleFunc("/api/inventory/stock", h.metricsMiddleware("/api/inventory/stock", h.CreateOrUpdateStock)).Methods("POST")
	router.HandleFunc("/api/inventory/stock/{id}", h.metricsMiddleware("/api/inventory/stock/{id}", h.GetStock)).Methods("GET")
	router.HandleFunc("/api/inventory/products/{product_id}/stock", h.metricsMiddleware("/api/inventory/products/{product_id}/stock", h.ListStock)).Methods("GET")
	router.HandleFunc("/api/inventory/check/{product_id}", h.metricsMiddleware("/api/inventory/check/{product_id}", h.CheckStock)).Methods("GET")
	router.HandleFunc("/api/inventory/reservations", h.metricsMiddleware("/api/inventory/reservations", reserve)).Methods("POST")
	router.HandleFunc("/api/inventory/reservations/{id}", h.metricsMiddleware("/api/inventory/reservations/{id}", h.GetReservation)).Methods("GET")
	router.HandleFunc("/api/inventory/reservations/{id}/release", h.metricsMiddleware("/api/inventory/reservations/{id}/release", h.ReleaseStock)).Methods("POST")
}

// RegisterHealthCheck registers health check endpoint
func (h *InventoryHandler) RegisterHealthCheck(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}

func toReservationResponse(result *reservation.ReservationResult) reservationResponse {
	res := result.Reservation
	return reservationResponse{
		ReservationID:     res.ID,
		ProductID:         res.ProductID,
		Quantity:          res.TotalQuantity,
		OrderID:           res.OrderID,
		ExpiresAt:         res.ExpiresAt,
		Allocations:       res.Allocations,
		AvailableQuantity: result.AvailableQuantity,
	}
}

func parseUintVar(w http.ResponseWriter, r *http.Request, name, message string) (uint, bool) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   message,
		})
		return 0, false
	}
	return uint(v), true
}

// statusFor maps domain error kinds onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError sends the error envelope. Store failures are not echoed back.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(ctx).Err(err).Str("kind", domain.KindOf(err)).Msg("Request failed")
		if !errors.Is(err, domain.ErrInvariantViolation) {
			message = "Internal server error"
		}
	}

	respondJSON(w, status, Response{
		Success: false,
		Error:   message,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
