package sqlstore

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	user.Email = normalizeEmail(user.Email)
	return create(ctx, s.db, "insert user", user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", normalizeEmail(email))
}

func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.findUser(ctx, "whatsapp_phone = ?", strings.TrimSpace(phone))
}

func (s *Store) findUser(ctx context.Context, cond string, value string) (*models.User, error) {
	if value == "" {
		return nil, models.ErrNotFound
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where(cond, value).First(&user).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

func (s *Store) IsEmailAllowed(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AllowedEmail{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, translate("check allowed email", err)
	}
	return count > 0, nil
}

// AddAllowedEmail inserts the email, ignoring it when already present.
func (s *Store) AddAllowedEmail(ctx context.Context, email string) error {
	entry := models.AllowedEmail{Email: normalizeEmail(email), CreatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
	return translate("add allowed email", err)
}

func (s *Store) RemoveAllowedEmail(ctx context.Context, email string) error {
	res := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Delete(&models.AllowedEmail{})
	if res.Error != nil {
		return translate("remove allowed email", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) ListAllowedEmails(ctx context.Context) ([]models.AllowedEmail, error) {
	var entries []models.AllowedEmail
	if err := s.db.WithContext(ctx).Order("email asc").Find(&entries).Error; err != nil {
		return nil, translate("list allowed emails", err)
	}
	return entries, nil
}
