package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mockinterview/internal/model"
)

// QuestionRepo stores the question catalog for deployments that keep it in MongoDB
type QuestionRepo interface {
	GetAll(ctx context.Context) ([]model.QuestionRecord, error)
	ReplaceAll(ctx context.Context, questions []model.QuestionRecord) error
}

type questionRepo struct {
	collection *mongo.Collection
}

func NewQuestionRepo(client *mongo.Client, database string) QuestionRepo {
	db := client.Database(database)
	return &questionRepo{
		collection: db.Collection("questions"),
	}
}

// GetAll returns the catalog in insertion order
func (r *questionRepo) GetAll(ctx context.Context) ([]model.QuestionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []model.QuestionRecord
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ReplaceAll swaps the whole catalog
func (r *questionRepo) ReplaceAll(ctx context.Context, questions []model.QuestionRecord) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(questions) == 0 {
		return nil
	}

	docs := make([]interface{}, len(questions))
	for i, q := range questions {
		id := q.ID
		if id == "" {
			id = fmt.Sprintf("q%03d", i+1)
		}
		docs[i] = bson.M{
			"_id":             id,
			"order":           i,
			"question":        q.Text,
			"type":            q.Type,
			"followUpTrigger": q.TriggerCategory,
		}
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}
