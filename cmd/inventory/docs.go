package main

// @title Inventory Service API
// @version 1.0
// @description Stock ledger and reservation service: per-location stock, time-bounded reservations and expiry.

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT

// @host localhost:8082
// @BasePath /

// @tag.name Stock
// @tag.description Stock ledger endpoints

// @tag.name Reservations
// @tag.description Reservation endpoints

// @tag.name Health
// @tag.description Health check endpoints

// @tag.name Swagger
// @tag.description Swagger documentation endpoints
