// Package buildlog archives one record per compiled source file (file
// path, emitted diagnostics, total duration, success/failure) to a
// MongoDB collection, so a fleet of builds can be queried after the
// fact for "which files fail most often" or "which builds got slower".
//
// Grounded on the teacher's pkg/mongodb/handler.go (a Handler wrapping a
// *mongo.Client and *mongo.Database, context-scoped connect/ping/close).
package buildlog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Record is one archived build outcome.
type Record struct {
	SessionID   string        `bson:"session_id"`
	File        string        `bson:"file"`
	ClassName   string        `bson:"class_name,omitempty"`
	Success     bool          `bson:"success"`
	Diagnostics []string      `bson:"diagnostics,omitempty"`
	Duration    time.Duration `bson:"duration_ns"`
	RecordedAt  time.Time     `bson:"recorded_at"`
}

// Archive wraps a MongoDB collection of Records.
type Archive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to uri and returns an Archive writing into
// database.builds.
func Open(uri, database string) (*Archive, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("buildlog: connecting to %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("buildlog: pinging mongo: %w", err)
	}
	return &Archive{client: client, coll: client.Database(database).Collection("builds")}, nil
}

// Close disconnects the underlying client.
func (a *Archive) Close() error {
	return a.client.Disconnect(context.Background())
}

// Append stores one build record.
func (a *Archive) Append(ctx context.Context, rec Record) error {
	rec.RecordedAt = time.Now()
	if _, err := a.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("buildlog: inserting record for %s: %w", rec.File, err)
	}
	return nil
}

// RecentFailures returns the most recent failed-build records, newest
// first, for post-hoc inspection of a flaky source file.
func (a *Archive) RecentFailures(ctx context.Context, limit int64) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}}).SetLimit(limit)
	cur, err := a.coll.Find(ctx, bson.D{{Key: "success", Value: false}}, opts)
	if err != nil {
		return nil, fmt.Errorf("buildlog: querying failures: %w", err)
	}
	defer cur.Close(ctx)

	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("buildlog: decoding failures: %w", err)
	}
	return out, nil
}
