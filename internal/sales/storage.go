package sales

import "sync"

// Storage is the main interface for the sales table.
//
// UpdateByOrderID and DeleteByOrderID filter by both the order ID and the
// given Scope, so a salesperson can never touch another salesperson's
// orders; an unrestricted Scope (manager role) drops the owner filter. Both
// return the number of rows affected — zero means "not found" and is not an
// error. ScanAll returns every record in stable insertion order.
type Storage interface {
	Insert(o *Order) error
	UpdateByOrderID(orderID string, scope Scope, patch Patch) (int64, error)
	DeleteByOrderID(orderID string, scope Scope) (int64, error)
	ScanAll() ([]*Order, error)
}

// LocalStorage provides an in-memory implementation for storing orders.
// A slice preserves insertion order so scans are deterministic.
type LocalStorage struct {
	mu     sync.RWMutex
	orders []*Order
	byID   map[string]*Order
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage instantiates a new empty LocalStorage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		byID: map[string]*Order{},
	}
}

// Insert appends an order. Returns ErrEmptyID for a blank OrderID and
// ErrDuplicateID if the ID is already present.
func (l *LocalStorage) Insert(o *Order) error {
	if o.OrderID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byID[o.OrderID]; ok {
		return ErrDuplicateID
	}
	o.ID = uint(len(l.orders) + 1)
	l.orders = append(l.orders, o)
	l.byID[o.OrderID] = o
	return nil
}

func (l *LocalStorage) UpdateByOrderID(orderID string, scope Scope, patch Patch) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.byID[orderID]
	if !ok || !scope.Matches(o) {
		return 0, nil
	}
	// Patch a copy and commit only on success, so a rejected patch never
	// leaves partial state in the store.
	cp := *o
	if err := patch.Apply(&cp); err != nil {
		return 0, err
	}
	*o = cp
	return 1, nil
}

func (l *LocalStorage) DeleteByOrderID(orderID string, scope Scope) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.byID[orderID]
	if !ok || !scope.Matches(o) {
		return 0, nil
	}
	delete(l.byID, orderID)
	for i, cur := range l.orders {
		if cur.OrderID == orderID {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			break
		}
	}
	return 1, nil
}

// ScanAll retrieves all orders in insertion order. Callers get copies so a
// reporting snapshot cannot observe later in-place updates.
func (l *LocalStorage) ScanAll() ([]*Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	orders := make([]*Order, 0, len(l.orders))
	for _, o := range l.orders {
		cp := *o
		orders = append(orders, &cp)
	}
	return orders, nil
}
