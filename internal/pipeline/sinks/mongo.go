package sinks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"tripsync/internal/pipeline"
)

// ── Mongo Sink ──────────────────────────────────────────────
// Upserts one document per trip, keyed by the trip ID. Re-running the
// same export rewrites the same documents, so the write path is
// idempotent. The store caps write batches, hence the chunking.

// maxBatchOps is the destination's ceiling on operations per write batch.
const maxBatchOps = 500

// bulkWriter is the subset of *mongo.Collection the sink needs.
// Kept narrow so tests can fail individual batches.
type bulkWriter interface {
	BulkWrite(ctx context.Context, models []mongo.WriteModel, opts ...options.Lister[options.BulkWriteOptions]) (*mongo.BulkWriteResult, error)
}

// Mongo upserts trip documents into a keyed collection.
type Mongo struct {
	client *mongo.Client
	coll   bulkWriter
}

// NewMongo connects to the document store and returns a sink writing
// to the given database/collection. The connection is verified with a
// ping before the first run is allowed to proceed.
func NewMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		disconnect(client)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Write upserts every record that carries a non-empty trip ID; records
// without one are skipped, since they cannot be deduplicated. Staged
// writes are submitted in batches of at most maxBatchOps operations.
// All batches must succeed; a failed batch fails the run even when
// earlier batches already committed.
func (m *Mongo) Write(ctx context.Context, records []pipeline.Record) (int, error) {
	models := make([]mongo.WriteModel, 0, len(records))
	skipped := 0
	for _, rec := range records {
		id := strings.TrimSpace(rec.Field("trip_id"))
		if id == "" {
			skipped++
			continue
		}
		fields := bson.M{}
		for k, v := range rec.Data {
			fields[k] = v
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{
				"$set":         fields,
				"$currentDate": bson.M{"synced_at": true},
			}).
			SetUpsert(true))
	}
	if skipped > 0 {
		log.Printf("[MONGO] Skipped %d record(s) without a trip ID", skipped)
	}
	if len(models) == 0 {
		return 0, nil
	}

	for i, batch := range chunkModels(models, maxBatchOps) {
		if _, err := m.coll.BulkWrite(ctx, batch); err != nil {
			return 0, fmt.Errorf("bulk write batch %d (%d ops): %w", i+1, len(batch), err)
		}
	}

	log.Printf("[MONGO] Upserted %d document(s)", len(models))
	return len(models), nil
}

// Close disconnects from the document store.
func (m *Mongo) Close() error {
	if m.client == nil {
		return nil
	}
	return disconnect(m.client)
}

func disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// chunkModels splits models into consecutive batches of at most size.
func chunkModels(models []mongo.WriteModel, size int) [][]mongo.WriteModel {
	var batches [][]mongo.WriteModel
	for start := 0; start < len(models); start += size {
		end := start + size
		if end > len(models) {
			end = len(models)
		}
		batches = append(batches, models[start:end])
	}
	return batches
}
