package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/models"
)

type PricePredictor interface {
	PredictPrice(ctx context.Context, room *models.Room) (decimal.Decimal, error)
}

type locationTier int

const (
	tierStandard locationTier = iota
	tierPremium
	tierBudget
)

var (
	premiumKeywords = []string{"downtown", "city center", "prime", "central", "luxury"}
	budgetKeywords  = []string{"suburb", "outskirts", "affordable", "budget"}

	premiumFactor = decimal.RequireFromString("1.2")
	budgetFactor  = decimal.RequireFromString("0.85")
)

func tierOf(location string) locationTier {
	loc := strings.ToLower(location)
	for _, kw := range premiumKeywords {
		if strings.Contains(loc, kw) {
			return tierPremium
		}
	}
	for _, kw := range budgetKeywords {
		if strings.Contains(loc, kw) {
			return tierBudget
		}
	}
	return tierStandard
}

func (t locationTier) factor() decimal.Decimal {
	switch t {
	case tierPremium:
		return premiumFactor
	case tierBudget:
		return budgetFactor
	}
	return decimal.NewFromInt(1)
}

// LocationPricePredictor estimates rent from rooms in the same location tier.
type LocationPricePredictor struct {
	db *gorm.DB
}

func NewLocationPricePredictor(db *gorm.DB) *LocationPricePredictor {
	return &LocationPricePredictor{db: db}
}

// PredictPrice returns the mean price of other rooms in the same tier. With no
// peers it scales the overall mean by the tier factor, and with no other rooms
// at all it returns the room's own price.
func (p *LocationPricePredictor) PredictPrice(ctx context.Context, room *models.Room) (decimal.Decimal, error) {
	var others []models.Room
	if err := p.db.WithContext(ctx).Select("id", "price", "location").
		Where("id <> ?", room.ID).Find(&others).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load rooms for prediction: %w", err)
	}
	if len(others) == 0 {
		return room.Price.Round(2), nil
	}

	tier := tierOf(room.Location)
	var peers, all []decimal.Decimal
	for _, o := range others {
		all = append(all, o.Price)
		if tierOf(o.Location) == tier {
			peers = append(peers, o.Price)
		}
	}
	if len(peers) > 0 {
		return mean(peers).Round(2), nil
	}
	return mean(all).Mul(tier.factor()).Round(2), nil
}

func mean(xs []decimal.Decimal) decimal.Decimal {
	if len(xs) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(xs[0], xs[1:]...).Div(decimal.NewFromInt(int64(len(xs))))
}
