package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/rental-server/config"
	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

const testKeySecret = "test_secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    username,
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createRoom(t *testing.T, db *gorm.DB, owner models.User, title, location string, price int64) models.Room {
	t.Helper()
	r := models.Room{
		OwnerID:      owner.ID,
		Title:        title,
		Location:     location,
		Price:        decimal.NewFromInt(price),
		ContactPhone: "+15550001111",
	}
	require.NoError(t, db.Omit("Owner").Create(&r).Error)
	return r
}

func fixedClock(day string) func() time.Time {
	t, err := utils.ParseDate(day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(10 * time.Hour) }
}

type sentMessage struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{To: to, Subject: subject, Body: body})
	return nil
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (s *fakeSMS) Send(_ context.Context, to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{To: to, Body: body})
	return nil
}

// brokenNotifier fails or panics on every call.
type brokenNotifier struct {
	panics bool
}

func (n brokenNotifier) Notify(context.Context, uint, string, string, string) error {
	if n.panics {
		panic("notifier exploded")
	}
	return errors.New("notification store down")
}

type memPDFStore struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemPDFStore() *memPDFStore {
	return &memPDFStore{files: map[string][]byte{}}
}

func (s *memPDFStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.files[key] = data
	return nil
}

func (s *memPDFStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

type failingRenderer struct{}

func (failingRenderer) Render(*models.Invoice, *models.Booking, *models.Room, *models.User) ([]byte, error) {
	return nil, errors.New("font missing")
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   int
	err     error
	delay   time.Duration
	orderID string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, _ map[string]string) (*GatewayOrder, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	id := g.orderID
	if id == "" {
		id = "order_test_" + receipt + "_" + string(rune('a'+n-1))
	}
	return &GatewayOrder{ID: id, Amount: amountMinor, Currency: currency}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return utils.VerifyRazorpaySignature(orderID, paymentID, signature, testKeySecret)
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// fakeCompleter returns a canned reply or error.
type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, _, prompt string, _ int64) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
