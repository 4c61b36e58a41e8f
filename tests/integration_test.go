package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"sales_desk/api"
	"sales_desk/internal/importer"
	"sales_desk/internal/rowsource"
	"sales_desk/internal/sales"
	"sales_desk/internal/session"
	"sales_desk/internal/users"
)

func sampleRows() []sales.Row {
	return []sales.Row{
		{
			CustomerName: "John Doe", CustomerType: "Regular", Product: "Laptop",
			Quantity: 2, UnitPrice: 1200, Discount: 10, ShippingCost: 50,
			Region: "North", StoreLocation: "Store A",
			Salesperson: "Alice", RegionManager: "Bob",
			PaymentMethod: "Credit Card", Promotion: "Yes",
		},
		{
			CustomerName: "Jane Smith", CustomerType: "Premium", Product: "Phone",
			Quantity: 1, UnitPrice: 800, Discount: 5, ShippingCost: 30,
			Region: "South", StoreLocation: "Store B",
			Salesperson: "Charlie", RegionManager: "Diana",
			PaymentMethod: "Cash", Promotion: "No",
		},
	}
}

// initRoutesTests wires the API with in-memory dependencies: local storage
// and directory, a static row source, and a fingerprint-deduping sync
// engine so each login's bootstrap sync imports the sample data only once.
func initRoutesTests(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	logger := zaptest.NewLogger(t)
	store := sales.NewLocalStorage()
	directory := users.NewLocalDirectory()
	require.NoError(t, users.EnsureAdmin(directory, "admin", "admin123"))

	engine, err := importer.NewEngine(store, directory, logger, "password123", importer.WithFingerprintDedup())
	require.NoError(t, err)

	api.InitRoutesWith(router, api.Dependencies{
		Logger:    logger,
		Store:     store,
		Directory: directory,
		Sessions:  session.NewManager(),
		Engine:    engine,
		Source:    rowsource.NewStatic(sampleRows()...),
	})
	return router
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewBuffer(b)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "login for %s: %s", username, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// TestSalesHappyPath_FullFlow drives the whole surface: admin login with
// bootstrap sync, a provisioned salesperson recording and updating an
// order, scoped listings, and manager analytics.
func TestSalesHappyPath_FullFlow(t *testing.T) {
	router := initRoutesTests(t)

	adminToken := login(t, router, "admin", "admin123")

	//1: admin's login synced the sample workbook rows.
	t.Run("GET_DashboardAfterSync", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/dashboard", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var summary sales.Summary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
		assert.Equal(t, 2, summary.TotalOrders)
		assert.Equal(t, 2, summary.TotalCustomers)
		assert.Equal(t, 3265.0, summary.TotalSales, "2440 + 825 from the imported rows")
		assert.Equal(t, 1632.5, summary.AvgOrderValue)
	})

	//2: the sync provisioned "alice" with the shared default credential.
	aliceToken := login(t, router, "alice", "password123")

	var orderID string

	//3: POST /orders as alice.
	t.Run("POST_AddOrder", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/orders", aliceToken, map[string]interface{}{
			"customer_name": "New Customer", "customer_type": "Regular",
			"product": "Laptop", "quantity": 2, "unit_price": 1200,
			"discount": 10, "shipping_cost": 50,
			"region": "North", "store_location": "Store A", "region_manager": "Bob",
			"payment_method": "Credit Card",
		})
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created sales.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.OrderID)
		assert.Equal(t, 2440.0, created.TotalPrice)
		assert.Equal(t, "alice", created.Salesperson, "orders are owned by the creating session")
		assert.Equal(t, "north", created.Region, "identifier fields are stored normalized")

		orderID = created.OrderID
	})
	require.NotEmpty(t, orderID)

	//4: PATCH /orders/:id recomputes the total.
	t.Run("PATCH_UpdateOrder", func(t *testing.T) {
		w := doJSON(router, http.MethodPatch, fmt.Sprintf("/orders/%s", orderID), aliceToken,
			map[string]interface{}{"quantity": 3})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(router, http.MethodGet, "/orders", aliceToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Results []sales.Order `json:"results"`
			Count   int           `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 2, resp.Count, "alice sees the imported alice row and her own order only")

		var updated *sales.Order
		for i := range resp.Results {
			if resp.Results[i].OrderID == orderID {
				updated = &resp.Results[i]
			}
		}
		require.NotNil(t, updated)
		assert.Equal(t, 3640.0, updated.TotalPrice, "3*1200 - 10 + 50")
	})

	//5: reports are manager-only.
	t.Run("GET_ReportsForbiddenForSalesperson", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/dashboard", aliceToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	//6: per-region totals group by product over normalized keys.
	t.Run("GET_RegionReport", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/reports/region/North", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var totals map[string]float64
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &totals))
		assert.Equal(t, map[string]float64{"laptop": 6080}, totals, "2440 imported + 3640 live")
	})

	//7: top product per store.
	t.Run("GET_TopProducts", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/dashboard/top-products", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var top map[string]sales.ProductTotal
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
		assert.Equal(t, sales.ProductTotal{Product: "laptop", Total: 6080}, top["store a"])
		assert.Equal(t, sales.ProductTotal{Product: "phone", Total: 825}, top["store b"])
	})

	//8: logout invalidates the token.
	t.Run("POST_Logout", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/logout", aliceToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, http.MethodGet, "/orders", aliceToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthFailures(t *testing.T) {
	router := initRoutesTests(t)

	t.Run("BadCredentials", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/login", "", map[string]string{
			"username": "admin", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MissingToken", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/orders", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestScopedMutationsOverHTTP(t *testing.T) {
	router := initRoutesTests(t)

	// Admin's login runs the bootstrap sync, provisioning alice and charlie.
	login(t, router, "admin", "admin123")

	aliceToken := login(t, router, "alice", "password123")
	charlieToken := login(t, router, "charlie", "password123")

	w := doJSON(router, http.MethodPost, "/orders", aliceToken, map[string]interface{}{
		"customer_name": "C", "product": "Tablet", "quantity": 1, "unit_price": 300,
		"region": "North", "store_location": "Store A", "region_manager": "Bob",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created sales.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Charlie cannot touch Alice's order.
	w = doJSON(router, http.MethodDelete, "/orders/"+created.OrderID, charlieToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPatch, "/orders/"+created.OrderID, charlieToken,
		map[string]interface{}{"quantity": 9})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The owner can.
	w = doJSON(router, http.MethodDelete, "/orders/"+created.OrderID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidationOverHTTP(t *testing.T) {
	router := initRoutesTests(t)
	adminToken := login(t, router, "admin", "admin123")

	w := doJSON(router, http.MethodPost, "/orders", adminToken, map[string]interface{}{
		"customer_name": "C", "product": "Tablet", "quantity": 0, "unit_price": 300,
		"salesperson": "alice", "region": "North", "store_location": "Store A",
		"region_manager": "Bob",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/reports/year/2024", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown report dimension is rejected")
}
