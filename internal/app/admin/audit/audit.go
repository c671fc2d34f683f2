package audit

import (
	"context"
	"fmt"
	"time"

	"painelloja/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entry is one audit record of an admin mutation.
type Entry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Actor      string             `bson:"actor" json:"actor"`
	Action     string             `bson:"action" json:"action"` // create, update, delete
	EntityType string             `bson:"entity_type" json:"entity_type"`
	EntityID   string             `bson:"entity_id" json:"entity_id"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// Recorder persists audit entries. Writes are best-effort: the caller
// logs failures and moves on, an audit outage must not fail mutations.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	Close(ctx context.Context) error
}

type mongoRecorder struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoRecorder connects to MongoDB and prepares the audit
// collection with an index on entity_id for per-entity history reads.
func NewMongoRecorder(ctx context.Context, uri, dbName string) (Recorder, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	collection := client.Database(dbName).Collection("mutations")

	indexCtx, cancelIndex := context.WithTimeout(ctx, 10*time.Second)
	defer cancelIndex()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "entity_id", Value: 1}},
		Options: options.Index().SetName("entity_id_idx"),
	}
	if _, err := collection.Indexes().CreateOne(indexCtx, indexModel); err != nil {
		// The index may already exist; keep going.
		logger.Warn().Err(err).Msg("failed to create audit index")
	}

	return &mongoRecorder{client: client, collection: collection}, nil
}

func (r *mongoRecorder) Record(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

func (r *mongoRecorder) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

type actorKey struct{}

// WithActor stamps the authenticated user onto the request context so
// services can attribute mutations without threading an extra
// parameter through every call.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the stamped actor, or "unknown" when the
// context carries none (tests, internal calls).
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "unknown"
}
