package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"mockinterview/internal/model"
)

// MongoStore keeps sessions and answers in two collections. WithTx needs a
// replica set or sharded cluster.
type MongoStore struct {
	client   *mongo.Client
	sessions *mongo.Collection
	answers  *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		sessions: db.Collection("sessions"),
		answers:  db.Collection("answers"),
	}
}

// EnsureIndexes creates the lookup indexes and the unique answer ordinal per session
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.answers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "ordinal", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create answer index: %w", err)
	}

	_, err = s.sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "startedAt", Value: -1}}},
		{Keys: bson.D{{Key: "completed", Value: 1}, {Key: "updatedAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	}, opts)
	return err
}

func (s *MongoStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := s.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *MongoStore) ListAnswers(ctx context.Context, sessionID string) ([]*model.Answer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ordinal", Value: 1}})
	cursor, err := s.answers.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	answers := []*model.Answer{}
	if err = cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (s *MongoStore) CreateSession(ctx context.Context, session *model.Session) error {
	_, err := s.sessions.InsertOne(ctx, session)
	return err
}

func (s *MongoStore) UpdateSession(ctx context.Context, session *model.Session) error {
	res, err := s.sessions.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) InsertAnswer(ctx context.Context, answer *model.Answer) error {
	_, err := s.answers.InsertOne(ctx, answer)
	return err
}

func (s *MongoStore) DeleteSession(ctx context.Context, id string) error {
	res, err := s.sessions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = s.answers.DeleteMany(ctx, bson.M{"sessionId": id})
	return err
}

func (s *MongoStore) ListSessionsByUser(ctx context.Context, userID string) ([]*model.Session, error) {
	return s.findSessions(ctx, bson.M{"userId": userID})
}

func (s *MongoStore) ListStaleSessions(ctx context.Context, idleSince time.Time) ([]*model.Session, error) {
	return s.findSessions(ctx, bson.M{
		"completed": false,
		"updatedAt": bson.M{"$lt": idleSince},
	})
}

func (s *MongoStore) SessionExists(ctx context.Context, id string) (bool, error) {
	n, err := s.sessions.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoStore) findSessions(ctx context.Context, filter bson.M) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	cursor, err := s.sessions.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
