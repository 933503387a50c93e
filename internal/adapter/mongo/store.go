// Package mongo wraps the document store: insert-many for the load step and
// filtered finds for reconciliation and ad hoc queries. No decision logic
// lives here.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greenandcoop/weather-obs-etl/internal/domain"
)

// Store is the document-store adapter for the observation collection.
type Store struct {
	client *mongo.Client
	col    *mongo.Collection
	logger *slog.Logger
}

// Connect dials the document store and binds to the observation collection.
func Connect(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect document store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping document store: %w", err)
	}
	return &Store{
		client: client,
		col:    client.Database(database).Collection(collection),
		logger: logger,
	}, nil
}

// Close disconnects from the store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// InsertMany appends records to the collection and returns the inserted
// count. An empty batch is a no-op.
func (s *Store) InsertMany(ctx context.Context, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	docs := make([]any, len(records))
	for i, rec := range records {
		docs[i] = bson.M(rec)
	}
	res, err := s.col.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert records: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// FindAll returns every persisted record, projecting away the store's
// internal id so records compare field-for-field against expected batches.
func (s *Store) FindAll(ctx context.Context) ([]domain.Record, error) {
	return s.find(ctx, bson.M{})
}

// FindByStation returns a station's records, optionally narrowed to dates
// starting with datePrefix (e.g. "2025-01").
func (s *Store) FindByStation(ctx context.Context, stationID, datePrefix string) ([]domain.Record, error) {
	filter := bson.M{"station_id": stationID}
	if datePrefix != "" {
		filter["date"] = bson.M{"$regex": "^" + datePrefix}
	}
	return s.find(ctx, filter)
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]domain.Record, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.Record
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, domain.Record(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
