package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Room struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID      uint            `gorm:"index;not null" json:"owner_id"`
	Title        string          `gorm:"size:200;not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Location     string          `gorm:"size:255;not null" json:"location"`
	Image        string          `gorm:"size:500" json:"image"`
	ContactPhone string          `gorm:"size:15" json:"contact_phone"`
	ContactEmail string          `gorm:"size:254" json:"contact_email"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Owner    User      `gorm:"foreignKey:OwnerID" json:"-"`
	Bookings []Booking `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
}
