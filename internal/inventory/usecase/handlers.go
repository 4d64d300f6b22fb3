package usecase

import (
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
)

// CommandHandlers is a struct that holds all command handlers
type CommandHandlers struct {
	CreateOrUpdateStock *command.CreateOrUpdateStockHandler
	ReserveStock        *command.ReserveStockHandler
	ReleaseStock        *command.ReleaseStockHandler
	ReleaseOrder        *command.ReleaseOrderHandler
}

// QueryHandlers is a struct that holds all query handlers
type QueryHandlers struct {
	GetStock       *query.GetStockHandler
	ListStock      *query.ListStockHandler
	CheckStock     *query.CheckStockHandler
	GetReservation *query.GetReservationHandler
}

// NewCommandHandlers bundles the command handlers for the transports
func NewCommandHandlers(
	createOrUpdate *command.CreateOrUpdateStockHandler,
	reserve *command.ReserveStockHandler,
	release *command.ReleaseStockHandler,
	releaseOrder *command.ReleaseOrderHandler,
) *CommandHandlers {
	return &CommandHandlers{
		CreateOrUpdateStock: createOrUpdate,
		ReserveStock:        reserve,
		ReleaseStock:        release,
		ReleaseOrder:        releaseOrder,
	}
}

// NewQueryHandlers bundles the query handlers for the transports
func NewQueryHandlers(
	getStock *query.GetStockHandler,
	listStock *query.ListStockHandler,
	checkStock *query.CheckStockHandler,
	getReservation *query.GetReservationHandler,
) *QueryHandlers {
	return &QueryHandlers{
		GetStock:       getStock,
		ListStock:      listStock,
		CheckStock:     checkStock,
		GetReservation: getReservation,
	}
}
