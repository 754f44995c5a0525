package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps artifacts in a MongoDB GridFS bucket. The key doubles
// as file id and file name.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(client *mongo.Client, database string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(client.Database(database), options.GridFSBucket().SetName("audio"))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (s *GridFSStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := s.Delete(ctx, key); err != nil {
		return err
	}
	return s.bucket.UploadFromStreamWithID(key, key, bytes.NewReader(data))
}

func (s *GridFSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(key, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	err := s.bucket.DeleteContext(ctx, key)
	if err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return err
	}
	return nil
}

func (s *GridFSStore) DeleteSession(ctx context.Context, sessionID string) (int, error) {
	keys, err := s.find(ctx, bson.M{"filename": bson.M{"$regex": "^" + regexp.QuoteMeta(SessionPrefix(sessionID))}})
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys {
		if id, _, _ := ParseKey(key); id != sessionID {
			continue
		}
		if err := s.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *GridFSStore) List(ctx context.Context) ([]string, error) {
	return s.find(ctx, bson.M{})
}

func (s *GridFSStore) find(ctx context.Context, filter bson.M) ([]string, error) {
	cursor, err := s.bucket.FindContext(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []struct {
		Name string `bson:"filename"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(files))
	for _, f := range files {
		keys = append(keys, f.Name)
	}
	return keys, nil
}
