package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

const (
	MinBookingMonths = 1
	MaxBookingMonths = 24
)

type CreateBookingInput struct {
	RoomID    uint
	StartDate string
	Months    int
}

type BookingService struct {
	db       *gorm.DB
	notifier Notifier
	mailer   Mailer
	sms      SMSSender
	now      func() time.Time
}

func NewBookingService(db *gorm.DB, notifier Notifier, mailer Mailer, sms SMSSender) *BookingService {
	return &BookingService{
		db:       db,
		notifier: notifier,
		mailer:   mailer,
		sms:      sms,
		now:      time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, tenant models.User, in CreateBookingInput) (*models.Booking, error) {
	if in.Months < MinBookingMonths || in.Months > MaxBookingMonths {
		return nil, utils.Validation(fmt.Sprintf("months must be between %d and %d", MinBookingMonths, MaxBookingMonths), nil)
	}
	start, err := utils.ParseDate(in.StartDate)
	if err != nil {
		return nil, utils.Validation("start_date must be a valid YYYY-MM-DD date", err)
	}

	var room models.Room
	if err := s.db.WithContext(ctx).First(&room, in.RoomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Room not found")
		}
		return nil, fmt.Errorf("load room %d: %w", in.RoomID, err)
	}
	if room.OwnerID == tenant.ID {
		return nil, utils.InvalidOperation("", "You cannot book your own room")
	}

	booking := models.Booking{
		RoomID:    room.ID,
		UserID:    tenant.ID,
		OwnerID:   room.OwnerID,
		StartDate: start,
		EndDate:   utils.AddMonths(start, in.Months),
		Months:    in.Months,
		TotalRent: room.Price.Mul(decimal.NewFromInt(int64(in.Months))),
		Status:    models.BookingPending,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	booking.Room = room
	booking.User = tenant

	fields := logrus.Fields{"booking_id": booking.ID, "room_id": room.ID}
	utils.Logger.WithFields(fields).Info("booking created")

	bestEffort("notify owner of booking", fields, func() error {
		return s.notifier.Notify(ctx, room.OwnerID, "New Booking Request",
			fmt.Sprintf("%s requested to book %s for %d month(s).", tenant.DisplayName(), room.Title, booking.Months),
			"/bookings/received")
	})
	if room.ContactPhone != "" {
		bestEffort("sms owner of booking", fields, func() error {
			return s.sms.Send(ctx, room.ContactPhone,
				fmt.Sprintf("New booking request for %s from %s starting %s.", room.Title, tenant.DisplayName(), utils.FormatDate(start)))
		})
	}

	return &booking, nil
}

func (s *BookingService) Approve(ctx context.Context, owner models.User, bookingID uint) (*models.Booking, error) {
	return s.decide(ctx, owner, bookingID, models.BookingApproved)
}

func (s *BookingService) Reject(ctx context.Context, owner models.User, bookingID uint) (*models.Booking, error) {
	return s.decide(ctx, owner, bookingID, models.BookingRejected)
}

func (s *BookingService) decide(ctx context.Context, owner models.User, bookingID uint, to models.BookingStatus) (*models.Booking, error) {
	booking, err := s.load(ctx, "bookings.id = ? AND bookings.owner_id = ?", bookingID, owner.ID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, booking, to); err != nil {
		return nil, err
	}

	verb := "approved"
	if to == models.BookingRejected {
		verb = "rejected"
	}
	fields := logrus.Fields{"booking_id": booking.ID, "status": to}
	utils.Logger.WithFields(fields).Info("booking " + verb)

	if booking.User.Email != "" {
		bestEffort("email tenant booking decision", fields, func() error {
			return s.mailer.Send(ctx, booking.User.Email,
				fmt.Sprintf("Your booking for %s was %s", booking.Room.Title, verb),
				fmt.Sprintf("Hello %s,\n\nYour booking for %s (%s to %s) has been %s by the owner.\n",
					booking.User.DisplayName(), booking.Room.Title,
					utils.FormatDate(booking.StartDate), utils.FormatDate(booking.EndDate), verb))
		})
	}
	bestEffort("notify tenant of booking decision", fields, func() error {
		return s.notifier.Notify(ctx, booking.UserID, "Booking "+verb,
			fmt.Sprintf("Your booking for %s has been %s.", booking.Room.Title, verb),
			"/bookings/my")
	})

	return booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, tenant models.User, bookingID uint) (*models.Booking, error) {
	booking, err := s.load(ctx, "bookings.id = ? AND bookings.user_id = ?", bookingID, tenant.ID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, booking, models.BookingCancelled); err != nil {
		return nil, err
	}

	fields := logrus.Fields{"booking_id": booking.ID, "status": booking.Status}
	utils.Logger.WithFields(fields).Info("booking cancelled")

	bestEffort("notify owner of cancellation", fields, func() error {
		return s.notifier.Notify(ctx, booking.OwnerID, "Booking cancelled",
			fmt.Sprintf("%s cancelled the booking for %s.", tenant.DisplayName(), booking.Room.Title),
			"/bookings/received")
	})
	return booking, nil
}

// transition moves a pending booking to a terminal status. The update is
// guarded by status = pending so concurrent decisions have one winner.
func (s *BookingService) transition(ctx context.Context, booking *models.Booking, to models.BookingStatus) error {
	if booking.Status != models.BookingPending {
		return utils.InvalidOperation(utils.ErrCodeWrongStatus,
			fmt.Sprintf("Booking is already %s", booking.Status))
	}

	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, models.BookingPending).
		Updates(map[string]interface{}{"status": to, "updated_at": s.now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("update booking %d: %w", booking.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return utils.InvalidOperation(utils.ErrCodeWrongStatus, "Booking is no longer pending")
	}
	booking.Status = to
	return nil
}

func (s *BookingService) load(ctx context.Context, query string, args ...interface{}) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Preload("Room").Preload("User").Preload("Owner").Preload("Invoice").
		Where(query, args...).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Booking not found")
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return &booking, nil
}

func (s *BookingService) ListTenantBookings(ctx context.Context, tenantID uint) ([]models.Booking, error) {
	return s.list(ctx, "user_id = ?", tenantID)
}

func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID uint) ([]models.Booking, error) {
	return s.list(ctx, "owner_id = ?", ownerID)
}

func (s *BookingService) list(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	var out []models.Booking
	err := s.db.WithContext(ctx).
		Preload("Room").Preload("User").Preload("Owner").Preload("Invoice").
		Where(query, args...).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}
