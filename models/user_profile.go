package models

import "time"

// UserProfile carries contact details. The OTP and staff-request columns
// belong to the signup flow and are not exposed by the API.
type UserProfile struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Phone          string     `gorm:"size:15" json:"phone"`
	Address        string     `gorm:"type:text" json:"address"`
	EmailVerified  bool       `gorm:"not null;default:false" json:"email_verified"`
	OTPCode        string     `gorm:"column:otp_code;size:6" json:"-"`
	OTPCreatedAt   *time.Time `gorm:"column:otp_created_at" json:"-"`
	StaffRequested bool       `gorm:"not null;default:false" json:"-"`
	StaffApproved  bool       `gorm:"not null;default:false" json:"-"`
	GoogleID       *string    `gorm:"size:100;uniqueIndex" json:"-"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
