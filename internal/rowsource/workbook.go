package rowsource

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"sales_desk/internal/sales"
)

// Workbook reads sales rows from an xlsx spreadsheet. The first sheet is
// expected to carry a header row with the column names of the source
// system (CustomerName, Product, Quantity, UnitPrice, ...); unknown
// columns are ignored and missing ones yield zero values.
type Workbook struct {
	path string
}

var _ Source = (*Workbook)(nil)

func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

func (w *Workbook) Rows() ([]sales.Row, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", w.path)
	}
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range raw[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cell := func(cells []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	rows := make([]sales.Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		if len(cells) == 0 {
			continue
		}
		r := sales.Row{
			CustomerName:  cell(cells, "customername"),
			CustomerType:  cell(cells, "customertype"),
			Product:       cell(cells, "product"),
			Quantity:      parseInt(cell(cells, "quantity")),
			UnitPrice:     parseFloat(cell(cells, "unitprice")),
			Discount:      parseFloat(cell(cells, "discount")),
			ShippingCost:  parseFloat(cell(cells, "shippingcost")),
			Region:        cell(cells, "region"),
			StoreLocation: cell(cells, "storelocation"),
			Salesperson:   cell(cells, "salesperson"),
			RegionManager: cell(cells, "regionmanager"),
			PaymentMethod: cell(cells, "paymentmethod"),
			Promotion:     cell(cells, "promotion"),
			Returned:      cell(cells, "returned"),
			OrderDate:     parseDate(cell(cells, "orderdate"), cell(cells, "date")),
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		// Excel often renders integers as "2.0".
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseDate(candidates ...string) time.Time {
	layouts := []string{"2006-01-02", "2006-01-02 15:04:05", "01-02-06", "1/2/06 15:04"}
	for _, s := range candidates {
		if s == "" {
			continue
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
