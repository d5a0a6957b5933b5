package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

type NegotiationPosition string

const (
	PositionTenantAcceptable NegotiationPosition = "tenant_acceptable"
	PositionTenantGenerous   NegotiationPosition = "tenant_generous"
	PositionCloseToDeal      NegotiationPosition = "close_to_deal"
	PositionSignificantGap   NegotiationPosition = "significant_gap"
)

var negotiationTones = map[string]bool{"polite": true, "firm": true, "friendly": true, "professional": true}

var negotiationTips = map[NegotiationPosition][]string{
	PositionTenantAcceptable: {
		"This offer meets your minimum price",
		"Accepting now secures the tenant quickly",
		"You are in a good negotiating position",
	},
	PositionTenantGenerous: {
		"This offer is above market value, act quickly",
		"The tenant seems very interested in the room",
		"You still have room to negotiate if needed",
	},
	PositionCloseToDeal: {
		"You are very close to an agreement",
		"A small compromise could seal the deal",
		"Consider meeting in the middle",
	},
	PositionSignificantGap: {
		"There is a substantial gap to bridge",
		"Focus on the value the room provides",
		"Consider incentives or flexible terms",
	},
}

var (
	closeToDealRatio = decimal.RequireFromString("0.9")
	gapDiscount      = decimal.RequireFromString("0.95")
	two              = decimal.NewFromInt(2)
)

type NegotiationAnalysis struct {
	RoomID          uint                `json:"room_id"`
	Position        NegotiationPosition `json:"position"`
	OwnerMinPrice   decimal.Decimal     `json:"owner_min_price"`
	TenantOffer     decimal.Decimal     `json:"tenant_offer"`
	MarketPrice     decimal.Decimal     `json:"market_price"`
	OwnerTenantGap  decimal.Decimal     `json:"owner_tenant_gap"`
	MarketOwnerGap  decimal.Decimal     `json:"market_owner_gap"`
	MarketTenantGap decimal.Decimal     `json:"market_tenant_gap"`
	SuggestedPrice  decimal.Decimal     `json:"suggested_price"`
	Message         string              `json:"message"`
	Tips            []string            `json:"tips"`
	Tone            string              `json:"tone"`
}

type Negotiator interface {
	Analyze(ctx context.Context, roomID uint, ownerMin, tenantOffer decimal.Decimal, tone string) (*NegotiationAnalysis, error)
}

type NegotiationAssistant struct {
	db    *gorm.DB
	price PricePredictor
	llm   Completer
}

func NewNegotiationAssistant(db *gorm.DB, price PricePredictor, llm Completer) *NegotiationAssistant {
	return &NegotiationAssistant{db: db, price: price, llm: llm}
}

// classify orders the checks: offer at or above the owner's minimum, above
// market, within 10% of the minimum, otherwise a significant gap.
func classify(ownerMin, offer, market decimal.Decimal) NegotiationPosition {
	switch {
	case offer.GreaterThanOrEqual(ownerMin):
		return PositionTenantAcceptable
	case offer.GreaterThanOrEqual(market):
		return PositionTenantGenerous
	case offer.GreaterThanOrEqual(ownerMin.Mul(closeToDealRatio)):
		return PositionCloseToDeal
	default:
		return PositionSignificantGap
	}
}

func (n *NegotiationAssistant) Analyze(ctx context.Context, roomID uint, ownerMin, tenantOffer decimal.Decimal, tone string) (*NegotiationAnalysis, error) {
	if !ownerMin.IsPositive() || !tenantOffer.IsPositive() {
		return nil, utils.Validation("owner_min_price and tenant_offer must be greater than 0", nil)
	}
	tone = strings.ToLower(strings.TrimSpace(tone))
	if tone == "" {
		tone = "polite"
	}
	if !negotiationTones[tone] {
		return nil, utils.Validation("tone must be one of polite, firm, friendly, professional", nil)
	}

	var room models.Room
	if err := n.db.WithContext(ctx).First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Room not found")
		}
		return nil, fmt.Errorf("load room %d: %w", roomID, err)
	}

	market, err := n.price.PredictPrice(ctx, &room)
	if err != nil || !market.IsPositive() {
		market = room.Price
	}

	a := &NegotiationAnalysis{
		RoomID:          room.ID,
		Position:        classify(ownerMin, tenantOffer, market),
		OwnerMinPrice:   ownerMin,
		TenantOffer:     tenantOffer,
		MarketPrice:     market,
		OwnerTenantGap:  ownerMin.Sub(tenantOffer),
		MarketOwnerGap:  market.Sub(ownerMin),
		MarketTenantGap: market.Sub(tenantOffer),
		Tone:            tone,
	}
	switch a.Position {
	case PositionCloseToDeal:
		a.SuggestedPrice = ownerMin.Add(tenantOffer).Div(two).Round(2)
	case PositionSignificantGap:
		a.SuggestedPrice = market.Mul(gapDiscount).Round(2)
	default:
		a.SuggestedPrice = tenantOffer
	}
	a.Tips = negotiationTips[a.Position]

	msg, err := n.llm.Complete(ctx,
		"You are a professional rent negotiation mediator helping both parties reach a fair agreement.",
		negotiationPrompt(a), 200)
	if err != nil {
		if !errors.Is(err, ErrAIDisabled) {
			utils.Logger.WithError(err).Warn("negotiation completion failed, using fallback")
		}
		msg = fallbackNegotiationMessage(a)
	}
	a.Message = msg
	return a, nil
}

func negotiationPrompt(a *NegotiationAnalysis) string {
	return fmt.Sprintf(`Analyze this rent negotiation and give a helpful, %s response.

Owner's minimum acceptable price: %s
Tenant's current offer: %s
Market price estimate: %s
Gap between owner and tenant: %s
Negotiation position: %s

Acknowledge both positions, explain the market context and suggest a fair compromise price with a short reason.
Keep it to 2-3 sentences.`,
		a.Tone, a.OwnerMinPrice.StringFixed(2), a.TenantOffer.StringFixed(2),
		a.MarketPrice.StringFixed(2), a.OwnerTenantGap.StringFixed(2), a.Position)
}

func fallbackNegotiationMessage(a *NegotiationAnalysis) string {
	switch a.Position {
	case PositionTenantAcceptable:
		return fmt.Sprintf("Great news! The tenant's offer of %s meets or exceeds your minimum. This looks like a fair deal at current market rates.", a.TenantOffer.StringFixed(2))
	case PositionTenantGenerous:
		return fmt.Sprintf("The tenant's offer of %s is above market value. You might consider accepting it while it's available.", a.TenantOffer.StringFixed(2))
	case PositionCloseToDeal:
		return fmt.Sprintf("You're very close to an agreement! A fair compromise would be %s, which is reasonable given the market price of %s.", a.SuggestedPrice.StringFixed(2), a.MarketPrice.StringFixed(2))
	default:
		return fmt.Sprintf("Based on a market estimate of %s, a fair negotiated rent would be %s. This reflects current demand while staying reasonable for both parties.", a.MarketPrice.StringFixed(2), a.SuggestedPrice.StringFixed(2))
	}
}
