// Package inbox records which broker events a consumer has already handled.
package inbox

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultRetention outlives any broker redelivery window.
const DefaultRetention = 7 * 24 * time.Hour

// Store claims event ids per consumer group. Claims are keyed
// "<consumer>/<event id>" and expire after the retention period.
type Store struct {
	col      *mongo.Collection
	consumer string
	now      func() time.Time
}

func NewStore(ctx context.Context, db *mongo.Database, consumer string, retention time.Duration) (*Store, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	col := db.Collection("app_inbox")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "received_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
	}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("inbox: create ttl index: %w", err)
	}
	return &Store{col: col, consumer: consumer, now: time.Now}, nil
}

func (s *Store) claimID(eventID string) string {
	return s.consumer + "/" + eventID
}

// Seen claims eventID and reports whether an earlier delivery already did.
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	_, err := s.col.InsertOne(ctx, bson.M{
		"_id":         s.claimID(eventID),
		"event_id":    eventID,
		"consumer":    s.consumer,
		"received_at": s.now().UTC(),
	})
	switch {
	case err == nil:
		return false, nil
	case mongo.IsDuplicateKeyError(err):
		return true, nil
	default:
		return false, err
	}
}

// Forget drops the claim so a redelivery is handled again.
func (s *Store) Forget(ctx context.Context, eventID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": s.claimID(eventID)})
	return err
}
