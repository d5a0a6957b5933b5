package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

type fixedPredictor struct {
	price decimal.Decimal
	err   error
}

func (p fixedPredictor) PredictPrice(context.Context, *models.Room) (decimal.Decimal, error) {
	return p.price, p.err
}

func TestPredictPriceUsesTierPeers(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	target := createRoom(t, db, owner, "Luxury Loft", "Downtown Plaza", 2000)
	createRoom(t, db, owner, "Park View", "Central Park", 1000)
	createRoom(t, db, owner, "East Side", "City Center East", 1400)
	createRoom(t, db, owner, "Quiet Home", "Suburb Lane", 600)

	got, err := NewLocationPricePredictor(db).PredictPrice(context.Background(), &target)
	require.NoError(t, err)
	assert.Equal(t, "1200.00", got.StringFixed(2))
}

func TestPredictPriceScalesOverallMean(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	createRoom(t, db, owner, "Loft", "Downtown", 1000)
	createRoom(t, db, owner, "Flat", "Midtown Street", 2000)
	target := createRoom(t, db, owner, "Cottage", "Quiet Suburb", 500)

	got, err := NewLocationPricePredictor(db).PredictPrice(context.Background(), &target)
	require.NoError(t, err)
	assert.Equal(t, "1275.00", got.StringFixed(2))
}

func TestPredictPriceLoneRoom(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	target := createRoom(t, db, owner, "Only", "Anywhere", 750)

	got, err := NewLocationPricePredictor(db).PredictPrice(context.Background(), &target)
	require.NoError(t, err)
	assert.Equal(t, "750.00", got.StringFixed(2))
}

func TestRecommendColdStart(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	tenant := createUser(t, db, "tenant")
	first := createRoom(t, db, owner, "A", "Riverside", 1000)
	second := createRoom(t, db, owner, "B", "Hilltop", 1000)
	createRoom(t, db, tenant, "Mine", "Riverside", 1000)

	ids, err := NewHistoryRecommender(db).Recommend(context.Background(), tenant.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID, first.ID}, ids)
}

func TestRecommendRanksByHistory(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	tenant := createUser(t, db, "tenant")
	booked := createRoom(t, db, owner, "Booked", "12 Park Road, Riverside", 1000)
	avenue := createRoom(t, db, owner, "Avenue", "Riverside Avenue", 1000)
	hilltop := createRoom(t, db, owner, "Hilltop", "Hilltop Heights", 1000)
	parkRoad := createRoom(t, db, owner, "Park Road", "Park Road Riverside", 3000)

	bookings := NewBookingService(db, NewNotificationService(db), LogMailer{}, NopSMS{})
	_, err := bookings.CreateBooking(context.Background(), tenant, CreateBookingInput{RoomID: booked.ID, StartDate: "2024-03-01", Months: 1})
	require.NoError(t, err)

	rec := NewHistoryRecommender(db)
	ids, err := rec.Recommend(context.Background(), tenant.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{parkRoad.ID, avenue.ID, hilltop.ID}, ids)

	ids, err = rec.Recommend(context.Background(), tenant.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{parkRoad.ID, avenue.ID}, ids)
}

func TestLocationWords(t *testing.T) {
	assert.Equal(t, []string{"park", "road", "riverside"}, locationWords("12 Park Road, Riverside"))
	assert.Empty(t, locationWords("12 A B"))
}

func TestChatbotValidation(t *testing.T) {
	db := newTestDB(t)
	bot := NewAssistantChatbot(db, &fakeCompleter{err: ErrAIDisabled})
	ctx := context.Background()

	_, err := bot.Reply(ctx, nil, nil, "   ")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = bot.Reply(ctx, nil, nil, strings.Repeat("a", maxChatMessage+1))
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestChatbotFallback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, llm := range []*fakeCompleter{{err: ErrAIDisabled}, {err: errors.New("rate limited")}} {
		bot := NewAssistantChatbot(db, llm)
		reply, err := bot.Reply(ctx, nil, nil, "How do I BOOK a room?")
		require.NoError(t, err)
		assert.Contains(t, reply, "To book a room")

		reply, err = bot.Reply(ctx, nil, nil, "hello there")
		require.NoError(t, err)
		assert.Equal(t, chatDefaultReply, reply)
	}
}

func TestChatbotPromptContext(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	tenant := createUser(t, db, "tenant")
	room := createRoom(t, db, owner, "Cozy Studio", "Downtown", 800)
	llm := &fakeCompleter{reply: "Sure, it's available."}
	bot := NewAssistantChatbot(db, llm)

	reply, err := bot.Reply(context.Background(), &tenant, &room.ID, "Is it quiet?")
	require.NoError(t, err)
	assert.Equal(t, "Sure, it's available.", reply)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Current room: Cozy Studio")
	assert.Contains(t, llm.prompts[0], "Price: 800.00 per month")
	assert.Contains(t, llm.prompts[0], "User: tenant")
	assert.True(t, strings.HasSuffix(llm.prompts[0], "User question: Is it quiet?"))

	missing := room.ID + 99
	_, err = bot.Reply(context.Background(), nil, &missing, "Is it quiet?")
	assert.NoError(t, err)
}

func TestClassify(t *testing.T) {
	d := decimal.NewFromInt
	cases := []struct {
		ownerMin, offer, market int64
		want                    NegotiationPosition
	}{
		{1000, 1000, 1200, PositionTenantAcceptable},
		{1000, 1100, 900, PositionTenantAcceptable},
		{1200, 1100, 1000, PositionTenantGenerous},
		{1000, 900, 1100, PositionCloseToDeal},
		{1000, 899, 1100, PositionSignificantGap},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classify(d(tc.ownerMin), d(tc.offer), d(tc.market)),
			"min=%d offer=%d market=%d", tc.ownerMin, tc.offer, tc.market)
	}
}

func TestNegotiationAnalyze(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	room := createRoom(t, db, owner, "Cozy Studio", "Downtown", 900)
	ctx := context.Background()
	d := decimal.NewFromInt
	n := NewNegotiationAssistant(db, fixedPredictor{price: d(1100)}, &fakeCompleter{err: ErrAIDisabled})

	a, err := n.Analyze(ctx, room.ID, d(1000), d(950), "")
	require.NoError(t, err)
	assert.Equal(t, PositionCloseToDeal, a.Position)
	assert.Equal(t, "975.00", a.SuggestedPrice.StringFixed(2))
	assert.Equal(t, "50.00", a.OwnerTenantGap.StringFixed(2))
	assert.Equal(t, "polite", a.Tone)
	assert.Contains(t, a.Message, "975.00")
	assert.Len(t, a.Tips, 3)

	a, err = n.Analyze(ctx, room.ID, d(1000), d(500), "Firm")
	require.NoError(t, err)
	assert.Equal(t, PositionSignificantGap, a.Position)
	assert.Equal(t, "1045.00", a.SuggestedPrice.StringFixed(2))
	assert.Equal(t, "firm", a.Tone)

	a, err = n.Analyze(ctx, room.ID, d(1000), d(1000), "friendly")
	require.NoError(t, err)
	assert.Equal(t, PositionTenantAcceptable, a.Position)
	assert.Equal(t, "1000.00", a.SuggestedPrice.StringFixed(2))
}

func TestNegotiationAnalyzeErrors(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	room := createRoom(t, db, owner, "Cozy Studio", "Downtown", 900)
	ctx := context.Background()
	d := decimal.NewFromInt
	n := NewNegotiationAssistant(db, fixedPredictor{price: d(1100)}, &fakeCompleter{err: ErrAIDisabled})

	_, err := n.Analyze(ctx, room.ID, d(0), d(500), "polite")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = n.Analyze(ctx, room.ID, d(1000), d(500), "rude")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	_, err = n.Analyze(ctx, room.ID+1, d(1000), d(500), "polite")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestNegotiationUsesCompleterAndRoomPriceFallback(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "owner")
	room := createRoom(t, db, owner, "Cozy Studio", "Downtown", 900)
	d := decimal.NewFromInt
	llm := &fakeCompleter{reply: "Meet at 950."}
	n := NewNegotiationAssistant(db, fixedPredictor{err: errors.New("no data")}, llm)

	a, err := n.Analyze(context.Background(), room.ID, d(1000), d(400), "professional")
	require.NoError(t, err)
	assert.Equal(t, "900.00", a.MarketPrice.StringFixed(2))
	assert.Equal(t, "855.00", a.SuggestedPrice.StringFixed(2))
	assert.Equal(t, "Meet at 950.", a.Message)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "professional")
}
