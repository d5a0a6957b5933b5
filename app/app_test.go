package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/rental-server/config"
	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/services"
	"github.com/vnkhanh/rental-server/utils"
)

const gatewaySecret = "e2e_gateway_secret"

type stubGateway struct {
	mu sync.Mutex
	n  int
}

func (g *stubGateway) CreateOrder(_ context.Context, amountMinor int64, currency, _ string, _ map[string]string) (*services.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return &services.GatewayOrder{ID: fmt.Sprintf("order_e2e_%d", g.n), Amount: amountMinor, Currency: currency}, nil
}

func (g *stubGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return utils.VerifyRazorpaySignature(orderID, paymentID, signature, gatewaySecret)
}

func (g *stubGateway) KeyID() string { return "rzp_e2e" }

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (s *memStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return nil
}

func (s *memStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("%s: not found", key)
	}
	return data, nil
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("JWT_SECRET", "e2e-jwt-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	a := New(Deps{
		DB:          db,
		Gateway:     &stubGateway{},
		Mailer:      services.LogMailer{},
		SMS:         services.NopSMS{},
		PDFStore:    &memStore{files: map[string][]byte{}},
		Renderer:    services.FPDFRenderer{Currency: "INR"},
		LLM:         services.NewOpenAIService("", "gpt-4o-mini"),
		Currency:    "INR",
		CallbackURL: "http://localhost/callback",
	})
	t.Cleanup(a.Close)
	return &testServer{t: t, db: db, router: a.Router}
}

func (s *testServer) user(username string, staff bool) models.User {
	s.t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(s.t, err)
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    username,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      staff,
	}
	require.NoError(s.t, s.db.Create(&u).Error)
	return u
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login/", "", gin.H{"username": username, "password": "password123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(s.t, body.Token)
	return body.Token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, code, body["code"])
	assert.NotEmpty(t, body["message"])
}

func TestRentalFlow(t *testing.T) {
	s := newTestServer(t)
	s.user("owner", false)
	s.user("tenant", false)
	ownerTok := s.login("owner")
	tenantTok := s.login("tenant")

	w := s.do(http.MethodPost, "/api/owner/rooms/", ownerTok, gin.H{
		"title": "Cozy Studio", "price": "800", "location": "Downtown", "contact_phone": "+15550001111",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roomID := uint(decode(t, w)["id"].(float64))

	w = s.do(http.MethodPost, "/api/bookings/add/", tenantTok, gin.H{
		"room_id": roomID, "start_date": "2024-01-15", "months": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booking := decode(t, w)
	assert.Equal(t, "pending", booking["status"])
	assert.Equal(t, "2024-04-15", booking["end_date"])
	assert.Equal(t, "2400.00", booking["total_rent"])
	bookingID := uint(booking["id"].(float64))

	// only the owner may decide
	w = s.do(http.MethodPut, fmt.Sprintf("/api/bookings/approve/%d/", bookingID), tenantTok, nil)
	assertError(t, w, http.StatusNotFound, utils.ErrCodeNotFound)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/invoices/create/%d/", bookingID), tenantTok, nil)
	assertError(t, w, http.StatusBadRequest, utils.ErrCodeWrongStatus)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/bookings/approve/%d/", bookingID), ownerTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode(t, w)["status"])

	w = s.do(http.MethodPut, fmt.Sprintf("/api/bookings/reject/%d/", bookingID), ownerTok, nil)
	assertError(t, w, http.StatusBadRequest, utils.ErrCodeWrongStatus)

	w = s.do(http.MethodPost, "/api/generate-agreement/", tenantTok, gin.H{"booking_id": bookingID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	agreement := decode(t, w)
	assert.Equal(t, false, agreement["ai_generated"])
	assert.Contains(t, agreement["agreement"], "Cozy Studio")

	w = s.do(http.MethodPost, fmt.Sprintf("/api/invoices/create/%d/", bookingID), tenantTok, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	invoice := created["invoice"].(map[string]interface{})
	assert.Equal(t, "2832.00", invoice["total_amount"])
	assert.Equal(t, "sent", invoice["status"])
	assert.Equal(t, true, created["pdf_generated"])
	invoiceID := uint(invoice["id"].(float64))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/invoices/create/%d/", bookingID), tenantTok, nil)
	assertError(t, w, http.StatusBadRequest, utils.ErrCodeAlreadyExists)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/invoices/%d/download/", invoiceID), tenantTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(http.MethodPost, "/api/payments/process/", tenantTok, gin.H{"invoice_id": invoiceID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)["order"].(map[string]interface{})
	assert.EqualValues(t, 283200, order["amount"])
	orderID := order["id"].(string)

	w = s.do(http.MethodPost, "/api/payments/razorpay/callback/", "", gin.H{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": "pay_e2e",
		"razorpay_signature":  "forged",
	})
	assertError(t, w, http.StatusBadRequest, utils.ErrCodeInvalidSignature)

	// only the paying tenant can report a checkout failure
	w = s.do(http.MethodPost, "/api/payments/razorpay/failure/", "", gin.H{"razorpay_order_id": orderID})
	assertError(t, w, http.StatusUnauthorized, utils.ErrCodeUnauthorized)
	w = s.do(http.MethodPost, "/api/payments/razorpay/failure/", ownerTok, gin.H{"razorpay_order_id": orderID})
	assertError(t, w, http.StatusNotFound, utils.ErrCodeNotFound)

	w = s.do(http.MethodPost, "/api/payments/razorpay/callback/", "", gin.H{
		"razorpay_order_id":  orderID,
		"payment_id":         "pay_e2e",
		"razorpay_signature": utils.RazorpaySignature(orderID, "pay_e2e", gatewaySecret),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	w = s.do(http.MethodGet, "/api/invoices/", tenantTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var invoices []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoices))
	require.Len(t, invoices, 1)
	assert.Equal(t, "paid", invoices[0]["status"])

	w = s.do(http.MethodPost, "/api/payments/process/", tenantTok, gin.H{"invoice_id": invoiceID})
	assertError(t, w, http.StatusBadRequest, utils.ErrCodeAlreadyPaid)

	w = s.do(http.MethodGet, "/api/notifications/unread-count/", tenantTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["unread_count"])
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)
	s.user("owner", false)
	s.user("tenant", false)
	s.user("admin", true)
	ownerTok := s.login("owner")
	tenantTok := s.login("tenant")

	assertError(t, s.do(http.MethodGet, "/api/bookings/my/", "", nil), http.StatusUnauthorized, utils.ErrCodeUnauthorized)
	assertError(t, s.do(http.MethodGet, "/api/bookings/my/", "garbage", nil), http.StatusUnauthorized, utils.ErrCodeUnauthorized)
	assertError(t, s.do(http.MethodPost, "/api/auth/login/", "", gin.H{"username": "tenant", "password": "wrong-pass"}),
		http.StatusUnauthorized, utils.ErrCodeUnauthorized)

	w := s.do(http.MethodPost, "/api/owner/rooms/", ownerTok, gin.H{"title": "Loft", "price": 900, "location": "Riverside"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roomID := uint(decode(t, w)["id"].(float64))

	assertError(t, s.do(http.MethodPut, fmt.Sprintf("/api/owner/rooms/%d/", roomID), tenantTok, gin.H{"title": "Mine now"}),
		http.StatusForbidden, utils.ErrCodeForbidden)
	assertError(t, s.do(http.MethodDelete, fmt.Sprintf("/api/owner/rooms/%d/", roomID+10), ownerTok, nil),
		http.StatusNotFound, utils.ErrCodeNotFound)

	assertError(t, s.do(http.MethodPost, "/api/bookings/add/", tenantTok, gin.H{"room_id": roomID, "start_date": "15-01-2024", "months": 1}),
		http.StatusBadRequest, utils.ErrCodeValidation)
	assertError(t, s.do(http.MethodPost, "/api/bookings/add/", ownerTok, gin.H{"room_id": roomID, "start_date": "2024-01-15", "months": 1}),
		http.StatusBadRequest, utils.ErrCodeInvalidOperation)

	assertError(t, s.do(http.MethodPost, "/api/admin/invoices/mark-overdue/", tenantTok, nil), http.StatusForbidden, utils.ErrCodeForbidden)
	w = s.do(http.MethodPost, "/api/admin/invoices/mark-overdue/", s.login("admin"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, decode(t, w)["updated"])
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := s.user("owner", false)
	room := models.Room{OwnerID: owner.ID, Title: "Garden Flat", Location: "Quiet Suburb", Price: decimal.NewFromInt(650)}
	require.NoError(t, s.db.Omit("Owner").Create(&room).Error)

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/rooms/?search=garden", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	assertError(t, s.do(http.MethodGet, "/api/rooms/999/", "", nil), http.StatusNotFound, utils.ErrCodeNotFound)

	w = s.do(http.MethodPost, "/api/chatbot/message/", "", gin.H{"message": "how do I cancel?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w)["reply"], "cancel")
}
