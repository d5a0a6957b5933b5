package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

// ImageStore uploads a file and returns its public URL.
type ImageStore interface {
	Upload(objectPath string, data io.Reader, contentType string) (string, error)
}

type RoomFilter struct {
	Search   string
	Location string
	Page     int
	PageSize int
}

type RoomInput struct {
	Title        string
	Description  string
	Price        decimal.Decimal
	Location     string
	ContactPhone string
	ContactEmail string
}

// RoomPatch holds the fields of a partial update; nil means unchanged.
type RoomPatch struct {
	Title        *string
	Description  *string
	Price        *decimal.Decimal
	Location     *string
	ContactPhone *string
	ContactEmail *string
}

type RoomService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRoomService(db *gorm.DB, images ImageStore) *RoomService {
	return &RoomService{db: db, images: images}
}

func (s *RoomService) ListRooms(ctx context.Context, f RoomFilter) ([]models.Room, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}

	q := s.db.WithContext(ctx).Model(&models.Room{})
	if kw := strings.TrimSpace(f.Search); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?", like, like, like)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(loc)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}

	var rooms []models.Room
	if err := q.Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).
		Find(&rooms).Error; err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, total, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).Preload("Owner").First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Room not found")
		}
		return nil, fmt.Errorf("load room %d: %w", id, err)
	}
	return &room, nil
}

func (s *RoomService) ListOwnerRooms(ctx context.Context, ownerID uint) ([]models.Room, error) {
	var rooms []models.Room
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("list owner rooms: %w", err)
	}
	return rooms, nil
}

func validateRoom(title, location string, price decimal.Decimal) error {
	if strings.TrimSpace(title) == "" {
		return utils.Validation("title is required", nil)
	}
	if strings.TrimSpace(location) == "" {
		return utils.Validation("location is required", nil)
	}
	if !price.IsPositive() {
		return utils.Validation("price must be greater than 0", nil)
	}
	return nil
}

func (s *RoomService) CreateRoom(ctx context.Context, owner models.User, in RoomInput) (*models.Room, error) {
	if err := validateRoom(in.Title, in.Location, in.Price); err != nil {
		return nil, err
	}
	room := models.Room{
		OwnerID:      owner.ID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Price:        in.Price.Round(2),
		Location:     strings.TrimSpace(in.Location),
		ContactPhone: in.ContactPhone,
		ContactEmail: in.ContactEmail,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&room).Error; err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	utils.Logger.WithFields(logrus.Fields{"room_id": room.ID, "owner_id": owner.ID}).Info("room created")
	return &room, nil
}

func (s *RoomService) UpdateRoom(ctx context.Context, room *models.Room, p RoomPatch) (*models.Room, error) {
	updated := *room
	if p.Title != nil {
		updated.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		updated.Description = *p.Description
	}
	if p.Price != nil {
		updated.Price = p.Price.Round(2)
	}
	if p.Location != nil {
		updated.Location = strings.TrimSpace(*p.Location)
	}
	if p.ContactPhone != nil {
		updated.ContactPhone = *p.ContactPhone
	}
	if p.ContactEmail != nil {
		updated.ContactEmail = *p.ContactEmail
	}
	if err := validateRoom(updated.Title, updated.Location, updated.Price); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Model(&models.Room{ID: room.ID}).Updates(map[string]interface{}{
		"title":         updated.Title,
		"description":   updated.Description,
		"price":         updated.Price,
		"location":      updated.Location,
		"contact_phone": updated.ContactPhone,
		"contact_email": updated.ContactEmail,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update room %d: %w", room.ID, err)
	}
	return s.GetRoom(ctx, room.ID)
}

// DeleteRoom removes the room with its bookings, their invoices and payments.
func (s *RoomService) DeleteRoom(ctx context.Context, room *models.Room) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookings := tx.Model(&models.Booking{}).Select("id").Where("room_id = ?", room.ID)
		invoices := tx.Model(&models.Invoice{}).Select("id").Where("booking_id IN (?)", bookings)

		if err := tx.Where("invoice_id IN (?)", invoices).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		if err := tx.Where("booking_id IN (?)", bookings).Delete(&models.Invoice{}).Error; err != nil {
			return fmt.Errorf("delete invoices: %w", err)
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Booking{}).Error; err != nil {
			return fmt.Errorf("delete bookings: %w", err)
		}
		if err := tx.Delete(&models.Room{}, room.ID).Error; err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.Logger.WithField("room_id", room.ID).Info("room deleted")
	return nil
}

// UploadImage stores the image and saves its URL on the room.
func (s *RoomService) UploadImage(ctx context.Context, room *models.Room, filename, contentType string, data io.Reader) (*models.Room, error) {
	if s.images == nil {
		return nil, utils.DependencyFailure("Image storage is not configured", utils.ErrStorageNotConfigured)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, utils.Validation("file must be an image", nil)
	}

	objectPath := fmt.Sprintf("rooms/%d/%s%s", room.ID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	url, err := s.images.Upload(objectPath, data, contentType)
	if err != nil {
		return nil, utils.DependencyFailure("Failed to upload image", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Room{ID: room.ID}).Update("image", url).Error; err != nil {
		return nil, fmt.Errorf("save room image: %w", err)
	}
	room.Image = url
	return room, nil
}
