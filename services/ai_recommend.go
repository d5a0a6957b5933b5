package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/models"
)

const DefaultRecommendations = 5

type Recommender interface {
	Recommend(ctx context.Context, userID uint, limit int) ([]uint, error)
}

// HistoryRecommender ranks unbooked rooms by similarity to the user's
// booking history: location word overlap and closeness to the mean price.
type HistoryRecommender struct {
	db *gorm.DB
}

func NewHistoryRecommender(db *gorm.DB) *HistoryRecommender {
	return &HistoryRecommender{db: db}
}

func (r *HistoryRecommender) Recommend(ctx context.Context, userID uint, limit int) ([]uint, error) {
	if limit <= 0 {
		limit = DefaultRecommendations
	}
	db := r.db.WithContext(ctx)

	var history []models.Room
	if err := db.Where("id IN (?)", db.Model(&models.Booking{}).Select("room_id").Where("user_id = ?", userID)).
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("load booking history: %w", err)
	}

	q := db.Where("owner_id <> ?", userID)
	if len(history) > 0 {
		booked := make([]uint, 0, len(history))
		for _, h := range history {
			booked = append(booked, h.ID)
		}
		q = q.Where("id NOT IN ?", booked)
	}
	var candidates []models.Room
	if err := q.Order("created_at DESC, id DESC").Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("load candidate rooms: %w", err)
	}

	// cold start: newest first
	if len(history) == 0 {
		return firstIDs(candidates, limit), nil
	}

	words := map[string]bool{}
	var total float64
	for _, h := range history {
		for _, w := range locationWords(h.Location) {
			words[w] = true
		}
		total += h.Price.InexactFloat64()
	}
	meanPrice := total / float64(len(history))

	type scored struct {
		room  models.Room
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{room: c, score: similarity(c, words, meanPrice)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	rooms := make([]models.Room, 0, len(ranked))
	for _, s := range ranked {
		rooms = append(rooms, s.room)
	}
	return firstIDs(rooms, limit), nil
}

func similarity(room models.Room, words map[string]bool, meanPrice float64) float64 {
	var overlap float64
	roomWords := locationWords(room.Location)
	for _, w := range roomWords {
		if words[w] {
			overlap++
		}
	}
	if len(roomWords) > 0 {
		overlap /= float64(len(roomWords))
	}

	proximity := 0.0
	if meanPrice > 0 {
		diff := room.Price.InexactFloat64() - meanPrice
		if diff < 0 {
			diff = -diff
		}
		proximity = 1 / (1 + diff/meanPrice)
	}
	return 0.6*overlap + 0.4*proximity
}

// locationWords splits a location into lowercase words, dropping house
// numbers and short fillers.
func locationWords(location string) []string {
	fields := strings.FieldsFunc(strings.ToLower(location), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 3 {
			out = append(out, f)
		}
	}
	return out
}

func firstIDs(rooms []models.Room, limit int) []uint {
	if len(rooms) > limit {
		rooms = rooms[:limit]
	}
	ids := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}
