package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for Inventory Service
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreateOrUpdateStock godoc
// @Summary Stock in or adjust stock
// @Description Add delta_quantity to the product's stock at a location, creating the record on first stock-in. The result may not drop below zero or below the reserved quantity.
// @Tags Stock
// @Accept json
// @Produce json
// @Param request body object{product_id=int,location=string,delta_quantity=int} true "Stock change"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/inventory/stock [post]
func (h *InventoryHandler) CreateOrUpdateStockDoc() {}

// GetStock godoc
// @Summary Get stock record by ID
// @Tags Stock
// @Produce json
// @Param id path int true "Stock record ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/inventory/stock/{id} [get]
func (h *InventoryHandler) GetStockDoc() {}

// ListStock godoc
// @Summary List a product's stock by location
// @Tags Stock
// @Produce json
// @Param product_id path int true "Product ID"
// @Success 200 {object} object{success=bool,data=object{product_id=int,records=array,total_quantity=int,reserved_quantity=int,available_quantity=int}}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/inventory/products/{product_id}/stock [get]
func (h *InventoryHandler) ListStockDoc() {}

// CheckStock godoc
// @Summary Check product availability
// @Description Advisory availability check. Only a reservation holds stock.
// @Tags Stock
// @Produce json
// @Param product_id path int true "Product ID"
// @Param quantity query int false "Required quantity (default: 1)"
// @Success 200 {object} object{success=bool,data=object{product_id=int,available=bool,available_quantity=int,required_quantity=int}}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/inventory/check/{product_id} [get]
func (h *InventoryHandler) CheckStockDoc() {}

// ReserveStock godoc
// @Summary Reserve stock for an order
// @Description Reserve quantity across the product's locations for ttl_minutes (default 30). Insufficient stock is reported with success=false and status 200.
// @Tags Reservations
// @Accept json
// @Produce json
// @Param request body object{product_id=int,quantity=int,order_id=string,ttl_minutes=int} true "Reservation request"
// @Success 201 {object} object{success=bool,message=string,data=object{reservation_id=string,product_id=int,quantity=int,order_id=string,expires_at=string,allocations=array,available_quantity=int}}
// @Success 200 {object} object{success=bool,message=string,data=object{product_id=int,available_quantity=int,requested_quantity=int}}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Failure 429 {object} object{success=bool,error=string}
// @Router /api/inventory/reservations [post]
func (h *InventoryHandler) ReserveStockDoc() {}

// GetReservation godoc
// @Summary Get reservation by ID
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/inventory/reservations/{id} [get]
func (h *InventoryHandler) GetReservationDoc() {}

// ReleaseStock godoc
// @Summary Release a reservation
// @Description Return a reservation's allocations to available stock. Unknown and already released reservations both answer 404 with success=false.
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 404 {object} object{success=bool,message=string}
// @Router /api/inventory/reservations/{id}/release [post]
func (h *InventoryHandler) ReleaseStockDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health, database connectivity and event publisher breaker state
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *InventoryHandler) HealthCheckDoc() {}
