package sales

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormStorage persists orders in a relational table through gorm. The
// autoincrement surrogate key gives ScanAll a stable insertion order; the
// unique index on order_id turns duplicate inserts into ErrDuplicateID.
type GormStorage struct {
	db *gorm.DB
}

var _ Storage = (*GormStorage)(nil)

// NewGormStorage migrates the sales table and returns a storage handle.
func NewGormStorage(db *gorm.DB) (*GormStorage, error) {
	if err := db.AutoMigrate(&Order{}); err != nil {
		return nil, fmt.Errorf("migrate sales table: %w", err)
	}
	return &GormStorage{db: db}, nil
}

func (g *GormStorage) Insert(o *Order) error {
	if o.OrderID == "" {
		return ErrEmptyID
	}
	if err := g.db.Create(o).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (g *GormStorage) UpdateByOrderID(orderID string, scope Scope, patch Patch) (int64, error) {
	var affected int64
	err := g.db.Transaction(func(tx *gorm.DB) error {
		var o Order
		q := tx.Where("order_id = ?", orderID)
		if !scope.Unrestricted() {
			q = q.Where("salesperson = ?", NormalizeKey(scope.Salesperson))
		}
		if err := q.First(&o).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := patch.Apply(&o); err != nil {
			return err
		}
		if err := tx.Save(&o).Error; err != nil {
			return err
		}
		affected = 1
		return nil
	})
	return affected, err
}

func (g *GormStorage) DeleteByOrderID(orderID string, scope Scope) (int64, error) {
	q := g.db.Where("order_id = ?", orderID)
	if !scope.Unrestricted() {
		q = q.Where("salesperson = ?", NormalizeKey(scope.Salesperson))
	}
	res := q.Delete(&Order{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete order: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (g *GormStorage) ScanAll() ([]*Order, error) {
	var orders []*Order
	if err := g.db.Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	return orders, nil
}
