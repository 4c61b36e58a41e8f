package sales

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when an order with the given ID is not found
// (or is out of the caller's scope).
var ErrNotFound = errors.New("order not found")

// ErrConflict is returned when an order-ID collision persists after a retry.
var ErrConflict = errors.New("order id conflict")

// ErrDuplicateID is returned by a Storage when inserting an order whose ID
// already exists. The service consumes it to drive the regenerate-and-retry.
var ErrDuplicateID = errors.New("duplicate order id")

// ErrEmptyID is returned when trying to store an order with an empty ID.
var ErrEmptyID = errors.New("empty order id")

// ValidationError reports a malformed or out-of-range input field. It is
// raised before anything reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Order represents one sales record in the system.
//
// The four identifier-like fields (Salesperson, RegionManager, Region,
// StoreLocation) are stored trimmed and lowercased so values compare equal
// regardless of source formatting. TotalPrice is always derived, never
// caller-supplied.
type Order struct {
	ID            uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID       string    `json:"order_id" gorm:"uniqueIndex;size:64"`
	CustomerName  string    `json:"customer_name" gorm:"size:191"`
	CustomerType  string    `json:"customer_type" gorm:"size:32"`
	Product       string    `json:"product" gorm:"size:191"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	Discount      float64   `json:"discount"`
	ShippingCost  float64   `json:"shipping_cost"`
	TotalPrice    float64   `json:"total_price"`
	Region        string    `json:"region" gorm:"index;size:64"`
	StoreLocation string    `json:"store_location" gorm:"index;size:64"`
	Salesperson   string    `json:"salesperson" gorm:"index;size:64"`
	RegionManager string    `json:"region_manager" gorm:"size:64"`
	PaymentMethod string    `json:"payment_method" gorm:"size:32"`
	Promotion     string    `json:"promotion" gorm:"size:32"`
	Returned      string    `json:"returned" gorm:"size:16"`
	OrderDate     time.Time `json:"order_date"`
	// Fingerprint is set on imported rows only: a hash of the normalized
	// source row, letting the sync engine recognize previously-imported
	// content.
	Fingerprint string    `json:"-" gorm:"index;size:64"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Row is a raw order submission before normalization and derivation: the
// shape produced by the spreadsheet row source and by live API submissions,
// without OrderID or TotalPrice (both derived by the core).
type Row struct {
	CustomerName  string    `json:"customer_name"`
	CustomerType  string    `json:"customer_type"`
	Product       string    `json:"product"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	Discount      float64   `json:"discount"`
	ShippingCost  float64   `json:"shipping_cost"`
	Region        string    `json:"region"`
	StoreLocation string    `json:"store_location"`
	Salesperson   string    `json:"salesperson"`
	RegionManager string    `json:"region_manager"`
	PaymentMethod string    `json:"payment_method"`
	Promotion     string    `json:"promotion"`
	Returned      string    `json:"returned"`
	OrderDate     time.Time `json:"order_date"`
}

// BuildOrder normalizes a raw row, derives its total and assembles a full
// record under the given identifier and clock reading. OrderDate falls back
// to the creation time when the row carries none.
func BuildOrder(row Row, orderID string, now time.Time) (*Order, error) {
	row, err := NormalizeRow(row)
	if err != nil {
		return nil, err
	}
	total, err := ComputeTotal(row.Quantity, row.UnitPrice, row.Discount, row.ShippingCost)
	if err != nil {
		return nil, err
	}
	orderDate := row.OrderDate
	if orderDate.IsZero() {
		orderDate = now
	}
	return &Order{
		OrderID:       orderID,
		CustomerName:  row.CustomerName,
		CustomerType:  row.CustomerType,
		Product:       row.Product,
		Quantity:      row.Quantity,
		UnitPrice:     row.UnitPrice,
		Discount:      row.Discount,
		ShippingCost:  row.ShippingCost,
		TotalPrice:    total,
		Region:        row.Region,
		StoreLocation: row.StoreLocation,
		Salesperson:   row.Salesperson,
		RegionManager: row.RegionManager,
		PaymentMethod: row.PaymentMethod,
		Promotion:     row.Promotion,
		Returned:      row.Returned,
		OrderDate:     orderDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Scope is the owning-salesperson constraint applied to mutations and
// listings. The zero Scope is unrestricted (manager role).
type Scope struct {
	Salesperson string
}

// Unrestricted reports whether the scope applies no owner filter.
func (s Scope) Unrestricted() bool { return s.Salesperson == "" }

// Matches reports whether the order is visible under this scope.
func (s Scope) Matches(o *Order) bool {
	return s.Unrestricted() || o.Salesperson == NormalizeKey(s.Salesperson)
}

// Patch is a partial update to an order. Nil fields are left untouched.
// Totals are never patched directly; Apply recomputes them.
type Patch struct {
	CustomerName  *string    `json:"customer_name"`
	CustomerType  *string    `json:"customer_type"`
	Product       *string    `json:"product"`
	Quantity      *int       `json:"quantity"`
	UnitPrice     *float64   `json:"unit_price"`
	Discount      *float64   `json:"discount"`
	ShippingCost  *float64   `json:"shipping_cost"`
	Region        *string    `json:"region"`
	StoreLocation *string    `json:"store_location"`
	RegionManager *string    `json:"region_manager"`
	PaymentMethod *string    `json:"payment_method"`
	Promotion     *string    `json:"promotion"`
	Returned      *string    `json:"returned"`
	OrderDate     *time.Time `json:"order_date"`
}

// Apply mutates o in place, re-normalizing identifier fields and recomputing
// TotalPrice from the patched inputs so the stored total never drifts from
// the formula. Returns a *ValidationError on out-of-range numeric input.
func (p Patch) Apply(o *Order) error {
	if p.CustomerName != nil {
		o.CustomerName = *p.CustomerName
	}
	if p.CustomerType != nil {
		o.CustomerType = *p.CustomerType
	}
	if p.Product != nil {
		o.Product = *p.Product
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		o.UnitPrice = *p.UnitPrice
	}
	if p.Discount != nil {
		o.Discount = *p.Discount
	}
	if p.ShippingCost != nil {
		o.ShippingCost = *p.ShippingCost
	}
	if p.Region != nil {
		o.Region = NormalizeKey(*p.Region)
	}
	if p.StoreLocation != nil {
		o.StoreLocation = NormalizeKey(*p.StoreLocation)
	}
	if p.RegionManager != nil {
		o.RegionManager = NormalizeKey(*p.RegionManager)
	}
	if p.PaymentMethod != nil {
		o.PaymentMethod = *p.PaymentMethod
	}
	if p.Promotion != nil {
		o.Promotion = *p.Promotion
	}
	if p.Returned != nil {
		o.Returned = *p.Returned
	}
	if p.OrderDate != nil {
		o.OrderDate = *p.OrderDate
	}

	total, err := ComputeTotal(o.Quantity, o.UnitPrice, o.Discount, o.ShippingCost)
	if err != nil {
		return err
	}
	o.TotalPrice = total
	o.UpdatedAt = time.Now()
	return nil
}
