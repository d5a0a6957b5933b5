package dtos

import "github.com/shopspring/decimal"

type PredictPriceRequest struct {
	RoomID uint `json:"room_id" binding:"required"`
}

type ChatRequest struct {
	Message string `json:"message" binding:"required,max=1000"`
	RoomID  *uint  `json:"room_id"`
}

type AgreementRequest struct {
	BookingID       uint   `json:"booking_id" binding:"required"`
	AdditionalTerms string `json:"additional_terms"`
}

type NegotiationRequest struct {
	RoomID        uint            `json:"room_id" binding:"required"`
	OwnerMinPrice decimal.Decimal `json:"owner_min_price"`
	TenantOffer   decimal.Decimal `json:"tenant_offer"`
	Tone          string          `json:"tone"`
}
