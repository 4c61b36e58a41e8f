package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComputeTotal derives the order total from its inputs:
//
//	total = quantity * unitPrice - discount + shippingCost
//
// The arithmetic runs on decimals so chained updates never accumulate
// binary-float drift. Quantity must be positive; unitPrice, discount and
// shippingCost must be non-negative.
func ComputeTotal(quantity int, unitPrice, discount, shippingCost float64) (float64, error) {
	if quantity <= 0 {
		return 0, &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if unitPrice < 0 {
		return 0, &ValidationError{Field: "unit_price", Reason: "must not be negative"}
	}
	if discount < 0 {
		return 0, &ValidationError{Field: "discount", Reason: "must not be negative"}
	}
	if shippingCost < 0 {
		return 0, &ValidationError{Field: "shipping_cost", Reason: "must not be negative"}
	}

	total := decimal.NewFromInt(int64(quantity)).
		Mul(decimal.NewFromFloat(unitPrice)).
		Sub(decimal.NewFromFloat(discount)).
		Add(decimal.NewFromFloat(shippingCost))
	return total.InexactFloat64(), nil
}

// NewOrderID generates an order identifier from the creation timestamp.
// Nanosecond resolution keeps tokens distinct under normal clock behavior;
// the service retries with RetryOrderID if an insert still collides.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ORD%d", now.UTC().UnixNano())
}

// RetryOrderID generates a replacement identifier after a collision,
// mixing in a random suffix so the retry cannot hit the same token.
func RetryOrderID(now time.Time) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("ORD%d-%s", now.UTC().UnixNano(), suffix)
}
