package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingApproved  BookingStatus = "approved"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Terminal() bool {
	return s != BookingPending
}

type Booking struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID uint `gorm:"index;not null" json:"room_id"`
	UserID uint `gorm:"index;not null" json:"user_id"`
	// snapshot of room.owner_id at creation, never re-synced
	OwnerID   uint            `gorm:"<-:create;index;not null" json:"owner_id"`
	StartDate time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time       `gorm:"type:date;not null" json:"end_date"`
	Months    int             `gorm:"not null" json:"months"`
	TotalRent decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_rent"`
	Status    BookingStatus   `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Room    Room     `gorm:"foreignKey:RoomID" json:"-"`
	User    User     `gorm:"foreignKey:UserID" json:"-"`
	Owner   User     `gorm:"foreignKey:OwnerID" json:"-"`
	Invoice *Invoice `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"-"`
}
