package sales

import "strings"

// Dimension selects the grouping key for an aggregation.
type Dimension string

const (
	DimensionRegion       Dimension = "region"
	DimensionStore        Dimension = "store"
	DimensionSalesperson  Dimension = "salesperson"
	DimensionProduct      Dimension = "product"
	DimensionStoreProduct Dimension = "store_product"
)

// Measure selects the value being aggregated.
type Measure string

const (
	MeasureTotalPrice Measure = "total_price"
	MeasureQuantity   Measure = "quantity"
)

// Op selects the aggregation operator.
type Op string

const (
	OpSum   Op = "sum"
	OpCount Op = "count"
	OpMax   Op = "max"
)

// storeProductSep joins the (store, product) pair key. Both parts are
// normalized before joining, so the separator cannot collide with content
// produced by NormalizeKey in practice.
const storeProductSep = "|"

func groupKey(o *Order, d Dimension) string {
	switch d {
	case DimensionRegion:
		return NormalizeKey(o.Region)
	case DimensionStore:
		return NormalizeKey(o.StoreLocation)
	case DimensionSalesperson:
		return NormalizeKey(o.Salesperson)
	case DimensionProduct:
		return NormalizeKey(o.Product)
	case DimensionStoreProduct:
		return NormalizeKey(o.StoreLocation) + storeProductSep + NormalizeKey(o.Product)
	}
	return ""
}

func measureOf(o *Order, m Measure) float64 {
	switch m {
	case MeasureQuantity:
		return float64(o.Quantity)
	case MeasureTotalPrice:
		return o.TotalPrice
	}
	return 0
}

// Aggregate groups orders along the given dimension and folds the measure
// with the given operator. Group keys are normalized, so rows differing
// only in casing land in the same group. An empty input or an unknown
// operator yields an empty mapping, never an error.
func Aggregate(orders []*Order, d Dimension, m Measure, op Op) map[string]float64 {
	out := map[string]float64{}
	for _, o := range orders {
		key := groupKey(o, d)
		switch op {
		case OpSum:
			out[key] += measureOf(o, m)
		case OpCount:
			out[key]++
		case OpMax:
			v := measureOf(o, m)
			if cur, ok := out[key]; !ok || v > cur {
				out[key] = v
			}
		}
	}
	return out
}

// ProductTotals filters orders to those whose dimension value matches
// filterValue (normalized comparison) and sums TotalPrice per product.
// This is the shape behind every per-region/store/salesperson report view.
func ProductTotals(orders []*Order, d Dimension, filterValue string) map[string]float64 {
	want := NormalizeKey(filterValue)
	out := map[string]float64{}
	for _, o := range orders {
		if groupKey(o, d) != want {
			continue
		}
		out[NormalizeKey(o.Product)] += o.TotalPrice
	}
	return out
}

// ProductTotal is the winning (product, summed total) pair for a store.
type ProductTotal struct {
	Product string  `json:"product"`
	Total   float64 `json:"total"`
}

// TopProductPerStore sums TotalPrice per (store, product) pair and selects,
// for each store, the pair with the largest sum. Ties break to the pair
// first encountered in scan order, so the result is deterministic for a
// fixed scan order.
func TopProductPerStore(orders []*Order) map[string]ProductTotal {
	type pair struct{ store, product string }
	totals := map[pair]float64{}
	var seen []pair
	for _, o := range orders {
		p := pair{NormalizeKey(o.StoreLocation), NormalizeKey(o.Product)}
		if _, ok := totals[p]; !ok {
			seen = append(seen, p)
		}
		totals[p] += o.TotalPrice
	}

	out := map[string]ProductTotal{}
	for _, p := range seen {
		total := totals[p]
		if best, ok := out[p.store]; !ok || total > best.Total {
			out[p.store] = ProductTotal{Product: p.product, Total: total}
		}
	}
	return out
}

// Summary is the dashboard roll-up over the whole sales table.
type Summary struct {
	TotalSales     float64 `json:"total_sales"`
	TotalCustomers int     `json:"total_customers"`
	TotalOrders    int     `json:"total_orders"`
	AvgOrderValue  float64 `json:"avg_order_value"`
}

// Summarize computes the dashboard figures: summed totals, distinct
// customer count, order count and mean order value. The mean is 0 for an
// empty table rather than a division error.
func Summarize(orders []*Order) Summary {
	s := Summary{TotalOrders: len(orders)}
	customers := map[string]struct{}{}
	for _, o := range orders {
		s.TotalSales += o.TotalPrice
		customers[strings.TrimSpace(o.CustomerName)] = struct{}{}
	}
	s.TotalCustomers = len(customers)
	if s.TotalOrders > 0 {
		s.AvgOrderValue = s.TotalSales / float64(s.TotalOrders)
	}
	return s
}
