package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizforge-backend/internal/models"
	"quizforge-backend/internal/repository"
)

type userDocument struct {
	UserID      string     `bson:"userId"`
	GoogleSub   string     `bson:"googleSub"`
	Email       string     `bson:"email"`
	Name        string     `bson:"name"`
	Image       string     `bson:"image"`
	Role        string     `bson:"role"`
	CreatedAt   time.Time  `bson:"createdAt"`
	LastLoginAt *time.Time `bson:"lastLoginAt,omitempty"`
}

func (d *userDocument) toModel() (*models.User, error) {
	id, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q for %s: %w", d.UserID, d.Email, err)
	}
	return &models.User{
		ID:          id,
		GoogleSub:   d.GoogleSub,
		Email:       d.Email,
		Name:        d.Name,
		Image:       d.Image,
		Role:        d.Role,
		CreatedAt:   d.CreatedAt,
		LastLoginAt: d.LastLoginAt,
	}, nil
}

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(userCollection)}
}

// UpsertIdentity only sets the role on insert, so a role edited directly in the
// collection is kept across logins.
func (s *UserStore) UpsertIdentity(ctx context.Context, id models.Identity) (*models.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"googleSub":   id.Subject,
			"name":        id.Name,
			"image":       id.Image,
			"lastLoginAt": now,
		},
		"$setOnInsert": bson.M{
			"userId":    uuid.NewString(),
			"email":     id.Email,
			"role":      models.RoleUser,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDocument
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"email": id.Email}, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toModel()
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}

	var doc userDocument
	if err := s.coll.FindOne(ctx, bson.M{"userId": id}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel()
}
