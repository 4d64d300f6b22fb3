package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/inventory/domain"
)

// GormRepository implements domain.Repository on GORM. A GormRepository
// created by Transaction is bound to that transaction.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.StockRecord{}, &domain.Reservation{}, &domain.Allocation{})
}

func (r *GormRepository) Stock() domain.StockRepository {
	return &gormStockRepository{db: r.db}
}

func (r *GormRepository) Reservations() domain.ReservationRepository {
	return &gormReservationRepository{db: r.db}
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type gormStockRepository struct {
	db *gorm.DB
}

func (r *gormStockRepository) Create(ctx context.Context, record *domain.StockRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *gormStockRepository) FindByID(ctx context.Context, id uint) (*domain.StockRecord, error) {
	var record domain.StockRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("stock record %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gormStockRepository) FindByProductAndLocation(ctx context.Context, productID uint, location string) (*domain.StockRecord, error) {
	var record domain.StockRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location = ?", productID, location).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("stock record for product %d at %s", productID, location)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gormStockRepository) FindByProductID(ctx context.Context, productID uint) ([]domain.StockRecord, error) {
	var records []domain.StockRecord
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("location ASC").
		Order("id ASC").
		Find(&records).Error
	return records, err
}

func (r *gormStockRepository) SumAvailable(ctx context.Context, productID uint) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.StockRecord{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity - reserved_quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *gormStockRepository) AdjustQuantity(ctx context.Context, id uint, delta int, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.StockRecord{}).
		Where("id = ? AND quantity + ? >= reserved_quantity", id, delta).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"version":    gorm.Expr("version + 1"),
			"updated_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("adjust quantity of record %d: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *gormStockRepository) IncrementReserved(ctx context.Context, productID, id uint, amount int, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.StockRecord{}).
		Where("id = ? AND product_id = ? AND quantity - reserved_quantity >= ?", id, productID, amount).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity + ?", amount),
			"version":           gorm.Expr("version + 1"),
			"updated_at":        at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("reserve %d on record %d: %w", amount, id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *gormStockRepository) DecrementReserved(ctx context.Context, productID, id uint, amount int, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.StockRecord{}).
		Where("id = ? AND product_id = ? AND reserved_quantity >= ?", id, productID, amount).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", amount),
			"version":           gorm.Expr("version + 1"),
			"updated_at":        at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("unreserve %d on record %d: %w", amount, id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

type gormReservationRepository struct {
	db *gorm.DB
}

func orderedAllocations(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *gormReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *gormReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var reservation domain.Reservation
	err := r.db.WithContext(ctx).
		Preload("Allocations", orderedAllocations).
		Where("id = ?", id).
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("reservation %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *gormReservationRepository) FindActiveByOrderID(ctx context.Context, orderID string) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := r.db.WithContext(ctx).
		Preload("Allocations", orderedAllocations).
		Where("order_id = ? AND is_active = ?", orderID, true).
		Order("created_at ASC").
		Find(&reservations).Error
	return reservations, err
}

func (r *gormReservationRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := r.db.WithContext(ctx).
		Preload("Allocations", orderedAllocations).
		Where("is_active = ? AND expires_at <= ?", true, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&reservations).Error
	return reservations, err
}

func (r *gormReservationRepository) Deactivate(ctx context.Context, id string, status domain.ReservationStatus, at time.Time, requireExpired bool) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("id = ? AND is_active = ?", id, true)
	if requireExpired {
		query = query.Where("expires_at <= ?", at)
	}

	res := query.Updates(map[string]interface{}{
		"is_active":   false,
		"status":      status,
		"released_at": at,
	})
	if res.Error != nil {
		return false, fmt.Errorf("deactivate reservation %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
