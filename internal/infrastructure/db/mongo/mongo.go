package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

const (
	collUsers         = "users"
	collChildren      = "children"
	collSponsorships  = "sponsorships"
	collDonations     = "donations"
	collLogbook       = "logbook_entries"
	collEvents        = "events"
	collRegistrations = "event_registrations"
	collProjects      = "projects"
	collVolunteers    = "volunteers"
)

// Config captures the settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. Sponsorship writes use
// multi-document transactions, so the server must be a replica set.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("fundacion-api").
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// EnsureIndexes creates the indexes every repository relies on. The partial
// unique index on sponsorships backs the one-active-sponsorship-per-child
// rule at the storage level.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	specs := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collChildren: {
			{Keys: bson.D{{Key: "state", Value: 1}}},
		},
		collSponsorships: {
			{
				Keys: bson.D{{Key: "child_id", Value: 1}},
				Options: options.Index().
					SetName("one_active_per_child").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"state": "ACTIVO"}),
			},
			{Keys: bson.D{{Key: "sponsor_id", Value: 1}, {Key: "start_date", Value: -1}}},
		},
		collDonations: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "state", Value: 1}}},
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
		collLogbook: {
			{Keys: bson.D{{Key: "child_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		collEvents: {
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "date", Value: 1}}},
		},
		collRegistrations: {
			{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "registered_at", Value: -1}}},
		},
		collVolunteers: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "project_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// objectID parses a hex id. Malformed ids cannot exist in the store, so
// they are reported as notFound.
func objectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

// findOne decodes the single document matching filter into out.
func findOne(ctx context.Context, coll *mongo.Collection, filter any, out any, notFound error) error {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return err
}

// findAll decodes every document matching filter into out, a pointer to a slice.
func findAll(ctx context.Context, coll *mongo.Collection, filter any, out any, opts ...*options.FindOptions) error {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
