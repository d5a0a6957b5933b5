package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/rental-server/models"
	"github.com/vnkhanh/rental-server/utils"
)

type ProfileInput struct {
	Phone   *string
	Address *string
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Login checks credentials (username or email) and issues a JWT.
func (s *UserService) Login(ctx context.Context, login, password string) (string, *models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", nil, utils.Validation("username and password are required", nil)
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = ?", login, strings.ToLower(login)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, utils.Unauthorized("Invalid credentials")
		}
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive || !utils.CheckPassword(user.PasswordHash, password) {
		return "", nil, utils.Unauthorized("Invalid credentials")
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *UserService) IssueToken(user *models.User) (string, error) {
	token, err := utils.GenerateToken(strconv.FormatUint(uint64(user.ID), 10), user.Role())
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("User not found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// GetProfile returns the user's profile, creating an empty one on first access.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	profile := models.UserProfile{UserID: userID}
	err := s.db.WithContext(ctx).
		Where(models.UserProfile{UserID: userID}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if len(phone) > 15 {
			return nil, utils.Validation("phone must be at most 15 characters", nil)
		}
		updates["phone"] = phone
	}
	if in.Address != nil {
		updates["address"] = strings.TrimSpace(*in.Address)
	}
	if len(updates) == 0 {
		return profile, nil
	}
	if err := s.db.WithContext(ctx).Model(profile).Omit(clause.Associations).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}
