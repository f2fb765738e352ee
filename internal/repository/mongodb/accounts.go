package mongodb

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

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
	return s.insert(ctx, collUsers, "insert user", user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "_id", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email", normalizeEmail(email))
}

func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.findUser(ctx, "whatsapp_phone", strings.TrimSpace(phone))
}

func (s *Store) findUser(ctx context.Context, key, value string) (*models.User, error) {
	if value == "" {
		return nil, models.ErrNotFound
	}
	var user models.User
	if err := s.coll(collUsers).FindOne(s.bind(ctx), bson.D{{Key: key, Value: value}}).Decode(&user); err != nil {
		return nil, translate("get user", err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s, collUsers, "list users", bson.D{}, sortBy(bson.E{Key: "created_at", Value: 1}))
}

func (s *Store) IsEmailAllowed(ctx context.Context, email string) (bool, error) {
	n, err := s.coll(collAllowed).CountDocuments(s.bind(ctx), bson.D{{Key: "_id", Value: normalizeEmail(email)}})
	if err != nil {
		return false, translate("check allowed email", err)
	}
	return n > 0, nil
}

// AddAllowedEmail upserts the entry so repeated adds are no-ops.
func (s *Store) AddAllowedEmail(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	_, err := s.coll(collAllowed).UpdateOne(s.bind(ctx),
		bson.D{{Key: "_id", Value: email}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: time.Now().UTC()}}}},
		options.Update().SetUpsert(true))
	return translate("add allowed email", err)
}

func (s *Store) RemoveAllowedEmail(ctx context.Context, email string) error {
	res, err := s.coll(collAllowed).DeleteOne(s.bind(ctx), bson.D{{Key: "_id", Value: normalizeEmail(email)}})
	if err != nil {
		return translate("remove allowed email", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) ListAllowedEmails(ctx context.Context) ([]models.AllowedEmail, error) {
	return findAll[models.AllowedEmail](ctx, s, collAllowed, "list allowed emails", bson.D{}, sortBy(bson.E{Key: "_id", Value: 1}))
}
