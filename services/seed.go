package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

type seedUser struct {
	username, email, first, last, password string
}

type seedRoom struct {
	owner, title, description, location string
	price                                int64
}

var seedUsers = []seedUser{
	{"john_owner", "john@example.com", "John", "Smith", "owner123"},
	{"sarah_owner", "sarah@example.com", "Sarah", "Johnson", "owner123"},
	{"mike_user", "mike@example.com", "Mike", "Brown", "user123"},
}

var seedRooms = []seedRoom{
	{"john_owner", "Cozy Studio Apartment", "A cozy studio close to shops and transit, fully furnished.", "123 Main Street, Downtown", 800},
	{"john_owner", "Spacious 2BHK Flat", "Two bedrooms, modular kitchen and a balcony with a city view.", "45 Park Avenue, City Center", 1500},
	{"sarah_owner", "Budget Room near University", "Affordable single room ideal for students.", "78 College Road, Suburb", 450},
	{"sarah_owner", "Luxury Penthouse", "Top floor penthouse with private terrace and premium amenities.", "1 Skyline Towers, Prime Location", 3500},
	{"sarah_owner", "Quiet Garden Cottage", "Small cottage with a garden, peaceful neighbourhood.", "9 Willow Lane, Outskirts", 650},
}

// Seed inserts demo users and rooms. Existing usernames are left untouched.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := map[string]uint{}
		for _, su := range seedUsers {
			var u models.User
			err := tx.Where("username = ?", su.username).First(&u).Error
			if err == nil {
				ids[su.username] = u.ID
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("load user %s: %w", su.username, err)
			}

			hash, err := utils.HashPassword(su.password)
			if err != nil {
				return err
			}
			u = models.User{
				Username:     su.username,
				Email:        su.email,
				FirstName:    su.first,
				LastName:     su.last,
				PasswordHash: hash,
				IsActive:     true,
			}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("create user %s: %w", su.username, err)
			}
			if err := tx.Create(&models.UserProfile{UserID: u.ID}).Error; err != nil {
				return fmt.Errorf("create profile %s: %w", su.username, err)
			}
			ids[su.username] = u.ID
			utils.Logger.WithField("username", su.username).Info("seeded user")
		}

		for _, sr := range seedRooms {
			var n int64
			if err := tx.Model(&models.Room{}).Where("title = ?", sr.title).Count(&n).Error; err != nil {
				return fmt.Errorf("count rooms: %w", err)
			}
			if n > 0 {
				continue
			}
			room := models.Room{
				OwnerID:     ids[sr.owner],
				Title:       sr.title,
				Description: sr.description,
				Price:       decimal.NewFromInt(sr.price),
				Location:    sr.location,
			}
			if err := tx.Create(&room).Error; err != nil {
				return fmt.Errorf("create room %s: %w", sr.title, err)
			}
		}
		return nil
	})
}
