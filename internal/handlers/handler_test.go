package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-sales-ledger/internal/auth"
	"go-sales-ledger/internal/database"
	"go-sales-ledger/internal/logger"
	"go-sales-ledger/internal/middleware"
	"go-sales-ledger/internal/models"
	"go-sales-ledger/internal/sales"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAssistant struct{ question string }

func (f *fakeAssistant) Ask(_ context.Context, q string) (string, error) {
	f.question = q
	return "You sold 600.00 ETB.", nil
}

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	store  *database.Store
	tokens *auth.Tokens

	admin string
	sales string
	plate models.PlateNumber
}

func newTestEnv(t *testing.T, assistant Assistant) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open("sqlite", ":memory:", "silent", logger.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	store := database.NewStore(db)
	tokens := auth.NewTokens("test-secret", time.Hour)
	svc := sales.NewService(store, store, store, sales.Options{}, logger.Nop())

	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	adminUser := &models.User{Username: "admin", Name: "System Administrator", PasswordHash: hash, Role: models.RoleAdmin}
	require.NoError(t, store.CreateUser(ctx, adminUser))
	salesUser := &models.User{Username: "sales1", Name: "Sales Person 1", PasswordHash: hash, Role: models.RoleSalesperson}
	require.NoError(t, store.CreateUser(ctx, salesUser))

	_, err = store.UpsertProducts(ctx, []models.Product{
		{ProductCode: "1030", ProductName: "COCA 300 ml", Price: decimal.RequireFromString("600.00")},
		{ProductCode: "2108", ProductName: "Sprite 500 ml", Price: decimal.RequireFromString("680.00")},
	})
	require.NoError(t, err)

	plate := models.PlateNumber{Plate: "ABC-1234"}
	require.NoError(t, store.CreatePlate(ctx, &plate))

	r := gin.New()
	r.Use(middleware.RequestID(logger.Nop()), middleware.ErrorHandler())
	New(store, svc, tokens, assistant).Routes(r, RouteOptions{AllowRegistration: true})

	adminToken, err := tokens.Generate(adminUser.ID, adminUser.Username, adminUser.Role)
	require.NoError(t, err)
	salesToken, err := tokens.Generate(salesUser.ID, salesUser.Username, salesUser.Role)
	require.NoError(t, err)

	return &testEnv{t: t, router: r, store: store, tokens: tokens, admin: adminToken, sales: salesToken, plate: plate}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) count(model any) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.store.DB().Model(model).Count(&n).Error)
	return n
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func saleBody(salesPerson string, plateID any, products ...map[string]any) map[string]any {
	return map[string]any{
		"date":          "2024-05-01",
		"salesPerson":   salesPerson,
		"plateNumberId": plateID,
		"products":      products,
		"cashReceived":  12000.00,
		"cashDeposited": 11500.00,
		"difference":    1,
	}
}

func product(code string, received, sold int) map[string]any {
	return map[string]any{
		"productCode":     code,
		"productName":     "client name " + code,
		"received":        received,
		"sold":            sold,
		"productReturned": received - sold,
		"emptyReturned":   sold,
	}
}

func TestCreateSaleComputesTotals(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/sales", env.sales, saleBody("sales1", env.plate.ID, product("1030", 24, 10)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode[saleResponse](t, w)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "sales1", got.SalesPerson.Username)
	require.NotNil(t, got.PlateNumber)
	assert.Equal(t, "ABC-1234", got.PlateNumber.Plate)
	require.Len(t, got.Products, 1)
	assert.True(t, got.Products[0].TotalSales.Equal(decimal.RequireFromString("6000.00")))
	assert.Equal(t, "COCA 300 ml", got.Products[0].ProductName)
	assert.Equal(t, 14, got.Products[0].ProductReturned)
	assert.True(t, got.TotalSales.Equal(decimal.RequireFromString("6000.00")))
	assert.True(t, got.Difference.Equal(decimal.RequireFromString("500")))
	assert.True(t, got.CashMismatch)
	assert.Equal(t, "2024-05-01", got.Date.Format("2006-01-02"))
}

func TestCreateSaleUnknownProductIsZero(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/sales", env.sales, saleBody("sales1", nil, product("9999", 5, 5)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode[saleResponse](t, w)
	assert.True(t, got.Products[0].TotalSales.IsZero())
	assert.True(t, got.TotalSales.IsZero())
	assert.Equal(t, "client name 9999", got.Products[0].ProductName)
	assert.Nil(t, got.PlateNumber)
}

func TestCreateSaleUnknownSalespersonWritesNothing(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/sales", env.admin, saleBody("ghost", nil, product("1030", 1, 1)))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, env.count(&models.Sale{}))
	assert.Zero(t, env.count(&models.SaleProductEntry{}))
}

func TestCreateSaleUnknownPlateWritesNothing(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/sales", env.sales, saleBody("sales1", 999, product("1030", 1, 1)))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, env.count(&models.Sale{}))
	assert.Zero(t, env.count(&models.SaleProductEntry{}))
}

func TestCreateSaleForSomeoneElseIsForbidden(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/sales", env.sales, saleBody("admin", nil, product("1030", 1, 1)))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, env.count(&models.Sale{}))
}

func TestCreateSaleRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/sales", env.sales, saleBody("sales1", nil, product("1030", 1, -1)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := saleBody("sales1", nil, product("1030", 1, 1))
	body["date"] = "yesterday"
	w = env.do(http.MethodPost, "/api/sales", env.sales, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/sales", env.sales, saleBody("sales1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Zero(t, env.count(&models.Sale{}))
}

func TestCreateSaleTwiceCreatesTwoSales(t *testing.T) {
	env := newTestEnv(t, nil)
	body := saleBody("sales1", env.plate.ID, product("1030", 2, 2))

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/sales", env.sales, body).Code)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/sales", env.sales, body).Code)

	assert.Equal(t, int64(2), env.count(&models.Sale{}))
	assert.Equal(t, int64(2), env.count(&models.SaleProductEntry{}))
}

func TestListSalesNewestFirst(t *testing.T) {
	env := newTestEnv(t, nil)

	first := saleBody("sales1", env.plate.ID, product("1030", 1, 1))
	first["date"] = "2024-05-01"
	second := saleBody("sales1", nil, product("1030", 2, 2), product("2108", 1, 1))
	second["date"] = "2024-05-02"
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/sales", env.sales, first).Code)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/sales", env.sales, second).Code)

	w := env.do(http.MethodGet, "/api/sales", env.sales, nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decode[[]saleResponse](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-05-02", list[0].Date.Format("2006-01-02"))
	assert.Len(t, list[0].Products, 2)
	assert.True(t, list[0].TotalSales.Equal(decimal.RequireFromString("1880")))
	assert.Equal(t, "Sales Person 1", list[1].SalesPerson.Name)

	w = env.do(http.MethodGet, "/api/sales/"+jsonNumber(list[1].ID), env.sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	one := decode[saleResponse](t, w)
	assert.Equal(t, list[1].ID, one.ID)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/sales/999", env.sales, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/sales/abc", env.sales, nil).Code)
}

func TestDashboardAggregates(t *testing.T) {
	env := newTestEnv(t, nil)

	// 1030 costs 600: sold 1, 2, 3 gives totals 600, 1200, 1800
	for i, sold := range []int{1, 2, 3} {
		body := saleBody("sales1", nil, product("1030", sold, sold))
		body["date"] = time.Date(2024, 5, i+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/sales", env.sales, body).Code)
	}

	w := env.do(http.MethodGet, "/api/reports", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Totals struct {
			SumTotalSales decimal.Decimal `json:"sumTotalSales"`
			Count         int64           `json:"count"`
		} `json:"totals"`
		Salespersons int64          `json:"salespersons"`
		Products     int64          `json:"products"`
		RecentSales  []saleResponse `json:"recentSales"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Totals.SumTotalSales.Equal(decimal.NewFromInt(3600)))
	assert.Equal(t, int64(3), got.Totals.Count)
	assert.Equal(t, int64(1), got.Salespersons)
	assert.Equal(t, int64(2), got.Products)
	require.Len(t, got.RecentSales, 3)
	assert.Equal(t, "2024-05-03", got.RecentSales[0].Date.Format("2006-01-02"))

	w = env.do(http.MethodGet, "/api/reports/summary?from=2024-05-02&to=2024-05-02", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	day := decode[database.SalesTotals](t, w)
	assert.Equal(t, int64(1), day.Count)
	assert.True(t, day.SumTotalSales.Equal(decimal.NewFromInt(1200)))

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/reports/summary?from=May", env.admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/reports", env.sales, nil).Code)
}

func TestUserManagement(t *testing.T) {
	env := newTestEnv(t, nil)
	newUser := map[string]any{"username": "sales2", "name": "Sales Person 2", "password": "pw123", "plateNumber": "XYZ-1"}

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/users", env.sales, newUser).Code)

	w := env.do(http.MethodPost, "/api/users", env.admin, newUser)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "pw123")
	assert.NotContains(t, w.Body.String(), "passwordHash")

	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/users", env.admin, newUser).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/users", env.admin, map[string]any{"username": "x"}).Code)

	w = env.do(http.MethodGet, "/api/users", env.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, w), 3)

	w = env.do(http.MethodGet, "/api/salespersons", env.sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.User](t, w), 2)

	w = env.do(http.MethodGet, "/api/users/sales1", env.sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sales Person 1", decode[models.User](t, w).Name)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/users/sales2", env.sales, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/users/nobody", env.admin, nil).Code)

	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/users/sales2", env.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/api/users/sales2", env.admin, nil).Code)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodDelete, "/api/users/admin", env.admin, nil).Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/login", "", map[string]any{"username": "sales1", "password": "admin123"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]string](t, w)
	assert.Equal(t, "SALESPERSON", got["role"])

	claims, err := env.tokens.Validate(got["token"])
	require.NoError(t, err)
	assert.Equal(t, "sales1", claims.Username)

	assert.Equal(t, http.StatusUnauthorized,
		env.do(http.MethodPost, "/login", "", map[string]any{"username": "sales1", "password": "nope"}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		env.do(http.MethodPost, "/login", "", map[string]any{"username": "ghost", "password": "nope"}).Code)
}

func TestRegisterCreatesAdmin(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/register", "", map[string]any{"username": "boss", "name": "Boss", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)

	u, err := env.store.UserByUsername(context.Background(), "boss")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestProductsAndPlates(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/products/update", env.admin, []map[string]any{
		{"productCode": "1030", "productName": "COCA 300 ml", "price": 620},
		{"productCode": "5897", "productName": "Ambo 475 ml", "price": "555.00"},
		{"productCode": "", "productName": "skipped", "price": 1},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/products", env.sales, nil)
	products := decode[[]models.Product](t, w)
	require.Len(t, products, 3)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(620)))

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/products/update", env.admin, []map[string]any{
		{"productCode": "1", "productName": "Bad", "price": -1},
	}).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/products/update", env.sales, []map[string]any{}).Code)

	w = env.do(http.MethodPost, "/api/platenumbers", env.admin, map[string]any{"plate": "xyz-9"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/platenumbers", env.admin, map[string]any{"plate": "XYZ-9"}).Code)

	w = env.do(http.MethodGet, "/api/platenumbers", env.sales, nil)
	plates := decode[[]plateRef](t, w)
	require.Len(t, plates, 2)
	assert.Equal(t, "ABC-1234", plates[0].Plate)
	assert.Equal(t, "XYZ-9", plates[1].Plate)
}

func TestAskAI(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable,
		env.do(http.MethodPost, "/api/ask", env.admin, map[string]any{"message": "hi"}).Code)

	fake := &fakeAssistant{}
	env = newTestEnv(t, fake)
	w := env.do(http.MethodPost, "/api/ask", env.admin, map[string]any{"message": "How much did we sell in May?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "How much did we sell in May?", fake.question)
	assert.Contains(t, w.Body.String(), "600.00 ETB")

	assert.Equal(t, http.StatusForbidden,
		env.do(http.MethodPost, "/api/ask", env.sales, map[string]any{"message": "hi"}).Code)
}

func TestUnauthenticated(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/sales", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", "", nil).Code)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
