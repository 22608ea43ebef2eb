package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auraleen/internal/middleware"
	"auraleen/internal/models"
	"auraleen/internal/pdf"
	"auraleen/internal/services"
)

type fakeOrders struct {
	placedOwner string
	placedReq   *models.PlaceOrderRequest
	listOwner   string
	listOut     []*models.Order
	getOut      *models.Order
	getErr      error
}

func (f *fakeOrders) PlaceOrder(ownerEmail string, req *models.PlaceOrderRequest) (*models.Order, string, error) {
	f.placedOwner = ownerEmail
	f.placedReq = req
	return &models.Order{ID: "2d1b44f0-9f6f-4df0-8a3c-17e6709fc0db"}, "WK-9FC0DB", nil
}

func (f *fakeOrders) ListOrders(requesterEmail string) ([]*models.Order, error) {
	f.listOwner = requesterEmail
	return f.listOut, nil
}

func (f *fakeOrders) GetOrderForViewer(requesterEmail, orderID string) (*models.Order, error) {
	return f.getOut, f.getErr
}

type fakePDF struct{ path string }

func (f *fakePDF) GenerateInvoice(data pdf.InvoiceData) (string, error) { return f.path, nil }

func newOrderRouter(orders services.OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewOrderHandler(orders, &fakePDF{})
	group := r.Group("/orders", middleware.AuthMiddleware())
	group.POST("", h.Create)
	group.GET("", h.List)
	return r
}

func sessionToken(t *testing.T, email string) string {
	t.Helper()
	claims := &middleware.Claims{
		UserID: 7,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(middleware.JWTKey)
	require.NoError(t, err)
	return signed
}

func TestCreateOrderRequiresSession(t *testing.T) {
	r := newOrderRouter(&fakeOrders{})

	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrderOwnerTakenFromSessionNotBody(t *testing.T) {
	orders := &fakeOrders{}
	r := newOrderRouter(orders)

	// клиент пытается подсунуть чужого владельца — поле просто игнорируется
	body := `{
		"userEmail": "attacker@x.com",
		"name": "Ali", "phone": "0300", "city": "Lahore", "area": "Gulberg",
		"address": "House 1", "subtotal": 40,
		"items": [{"name": "Raw Silk", "size": "5m", "quantity": 2, "price": 20}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "buyer@x.com"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "buyer@x.com", orders.placedOwner)
	assert.Contains(t, w.Body.String(), `"id":"WK-9FC0DB"`)
}

func TestListOrdersScopedToSessionEmail(t *testing.T) {
	orders := &fakeOrders{}
	r := newOrderRouter(orders)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "buyer@x.com"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "buyer@x.com", orders.listOwner)
	// пустой список сериализуется как [], не null
	assert.Contains(t, w.Body.String(), `"orders":[]`)
}
