package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizforge-backend/internal/models"
)

type StudentStore struct {
	coll *mongo.Collection
}

func NewStudentStore(db *mongo.Database) *StudentStore {
	return &StudentStore{coll: db.Collection(studentCollection)}
}

func (s *StudentStore) GetByEmail(ctx context.Context, email string) (*models.StudentProfile, error) {
	var p models.StudentProfile
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *StudentStore) Upsert(ctx context.Context, email string, f models.StudentProfileFields) error {
	update := bson.M{"$set": bson.M{
		"email":          email,
		"name":           f.Name,
		"rollNumber":     f.RollNumber,
		"university":     f.University,
		"program":        f.Program,
		"currentYear":    f.CurrentYear,
		"graduationYear": f.GraduationYear,
		"updatedAt":      time.Now().UTC(),
	}}

	_, err := s.coll.UpdateOne(ctx, bson.M{"email": email}, update, options.Update().SetUpsert(true))
	return err
}
