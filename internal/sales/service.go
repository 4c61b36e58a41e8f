package sales

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"sales_desk/internal/session"
	"sales_desk/internal/users"
)

// Service provides high-level order management and reporting operations on
// a Storage backend. Every command takes the caller's session context;
// salesperson sessions are scoped to their own records, region-manager
// sessions are unrestricted.
type Service struct {
	storage Storage
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

func scopeFor(sess *session.Session) Scope {
	if sess.Role == users.RoleRegionManager {
		return Scope{}
	}
	return Scope{Salesperson: sess.Username}
}

// AddOrder normalizes and derives a new order record from a raw submission
// and inserts it. Salesperson sessions own what they create: the
// Salesperson field is forced to the session identity. On an order-ID
// collision the insert is retried once with a fresh identifier before
// surfacing ErrConflict.
func (s *Service) AddOrder(sess *session.Session, row Row) (*Order, error) {
	if sess.Role == users.RoleSalesperson {
		row.Salesperson = sess.Username
	}

	now := s.now()
	o, err := BuildOrder(row, NewOrderID(now), now)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Insert(o); err != nil {
		if !errors.Is(err, ErrDuplicateID) {
			s.logger.Error("failed to save order", zap.String("order_id", o.OrderID), zap.Error(err))
			return nil, err
		}
		o.OrderID = RetryOrderID(s.now())
		if err := s.storage.Insert(o); err != nil {
			if errors.Is(err, ErrDuplicateID) {
				return nil, ErrConflict
			}
			s.logger.Error("failed to save order", zap.String("order_id", o.OrderID), zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("order created",
		zap.String("order_id", o.OrderID),
		zap.String("salesperson", o.Salesperson),
		zap.Float64("total_price", o.TotalPrice),
	)
	return o, nil
}

// UpdateOrder patches the order with the given ID within the session's
// scope. TotalPrice is recomputed from the patched inputs by the store.
// An absent or out-of-scope target yields ErrNotFound.
func (s *Service) UpdateOrder(sess *session.Session, orderID string, patch Patch) error {
	n, err := s.storage.UpdateByOrderID(orderID, scopeFor(sess), patch)
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			s.logger.Error("failed to update order", zap.String("order_id", orderID), zap.Error(err))
		}
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Info("order updated", zap.String("order_id", orderID), zap.String("user", sess.Username))
	return nil
}

// DeleteOrder removes the order with the given ID within the session's
// scope. An absent or out-of-scope target yields ErrNotFound.
func (s *Service) DeleteOrder(sess *session.Session, orderID string) error {
	n, err := s.storage.DeleteByOrderID(orderID, scopeFor(sess))
	if err != nil {
		s.logger.Error("failed to delete order", zap.String("order_id", orderID), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Info("order deleted", zap.String("order_id", orderID), zap.String("user", sess.Username))
	return nil
}

// ListOrders returns the orders visible to the session, in scan order.
func (s *Service) ListOrders(sess *session.Session) ([]*Order, error) {
	orders, err := s.storage.ScanAll()
	if err != nil {
		return nil, err
	}
	scope := scopeFor(sess)
	if scope.Unrestricted() {
		return orders, nil
	}
	visible := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if scope.Matches(o) {
			visible = append(visible, o)
		}
	}
	return visible, nil
}

// Report sums TotalPrice per product for the rows matching the given
// dimension value, over a snapshot of the whole table.
func (s *Service) Report(d Dimension, filterValue string) (map[string]float64, error) {
	switch d {
	case DimensionRegion, DimensionStore, DimensionSalesperson:
	default:
		return nil, &ValidationError{Field: "dimension", Reason: "must be region, store or salesperson"}
	}
	orders, err := s.storage.ScanAll()
	if err != nil {
		return nil, err
	}
	return ProductTotals(orders, d, filterValue), nil
}

// TopProducts returns, per store, the product with the largest summed total.
func (s *Service) TopProducts() (map[string]ProductTotal, error) {
	orders, err := s.storage.ScanAll()
	if err != nil {
		return nil, err
	}
	return TopProductPerStore(orders), nil
}

// Dashboard returns the whole-table roll-up.
func (s *Service) Dashboard() (Summary, error) {
	orders, err := s.storage.ScanAll()
	if err != nil {
		return Summary{}, err
	}
	return Summarize(orders), nil
}
