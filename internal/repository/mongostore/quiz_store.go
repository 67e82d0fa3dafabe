// Package mongostore implements the quiz, student and user stores on MongoDB.
// Collections are quiz, forms and users with camelCase field names.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizforge-backend/internal/models"
	"quizforge-backend/internal/repository"
)

const (
	quizCollection    = "quiz"
	studentCollection = "forms"
	userCollection    = "users"
)

type quizDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Questions []models.Question  `bson:"questions"`
	Published bool               `bson:"published"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *quizDocument) toModel() *models.Quiz {
	questions := d.Questions
	if questions == nil {
		questions = []models.Question{}
	}
	return &models.Quiz{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Questions: questions,
		Published: d.Published,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type quizSummaryDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Title         string             `bson:"title"`
	QuestionCount int                `bson:"questionCount"`
	CreatedAt     time.Time          `bson:"createdAt"`
	Published     bool               `bson:"published"`
}

type QuizStore struct {
	coll *mongo.Collection
}

func NewQuizStore(db *mongo.Database) *QuizStore {
	return &QuizStore{coll: db.Collection(quizCollection)}
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}

func (s *QuizStore) Create(ctx context.Context, q *models.Quiz) error {
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	doc := quizDocument{
		Title:     q.Title,
		Questions: q.Questions,
		Published: q.Published,
		CreatedAt: q.CreatedAt,
		UpdatedAt: now,
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	q.ID = oid.Hex()
	q.UpdatedAt = now
	return nil
}

func (s *QuizStore) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc quizDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (s *QuizStore) Update(ctx context.Context, id string, title string, questions []models.Question, published *bool) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	set := bson.M{
		"title":     title,
		"questions": questions,
		"updatedAt": time.Now().UTC(),
	}
	if published != nil {
		set["published"] = *published
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *QuizStore) SetPublished(ctx context.Context, id string, published bool) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"published": 1})

	var doc struct {
		Published bool `bson:"published"`
	}
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"published": published, "updatedAt": time.Now().UTC()}},
		opts,
	).Decode(&doc)
	if err != nil {
		return false, translate(err)
	}
	return doc.Published, nil
}

func (s *QuizStore) List(ctx context.Context) ([]models.QuizSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$project", Value: bson.M{
			"title":         1,
			"createdAt":     1,
			"published":     bson.M{"$ifNull": bson.A{"$published", false}},
			"questionCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$questions", bson.A{}}}},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	quizzes := []models.QuizSummary{}
	for cur.Next(ctx) {
		var doc quizSummaryDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, models.QuizSummary{
			ID:            doc.ID.Hex(),
			Title:         doc.Title,
			QuestionCount: doc.QuestionCount,
			CreatedAt:     doc.CreatedAt,
			Published:     doc.Published,
		})
	}
	return quizzes, cur.Err()
}

func translate(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}
