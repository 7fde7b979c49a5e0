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

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

type LogbookRepository struct {
	coll *mongo.Collection
}

func NewLogbookRepository(db *mongo.Database) *LogbookRepository {
	return &LogbookRepository{coll: db.Collection(collLogbook)}
}

type mongoLogEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ChildID     string             `bson:"child_id"`
	Date        time.Time          `bson:"date"`
	Description string             `bson:"description"`
	PhotoURL    string             `bson:"photo_url,omitempty"`
	VideoURL    string             `bson:"video_url,omitempty"`
	AuthorID    string             `bson:"author_id"`
}

func (m mongoLogEntry) toDomain() *domain.LogEntry {
	return &domain.LogEntry{
		ID:          m.ID.Hex(),
		ChildID:     m.ChildID,
		Date:        m.Date.UTC(),
		Description: m.Description,
		PhotoURL:    m.PhotoURL,
		VideoURL:    m.VideoURL,
		AuthorID:    m.AuthorID,
	}
}

func (r *LogbookRepository) Create(ctx context.Context, e *domain.LogEntry) (*domain.LogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoLogEntry{
		ChildID:     e.ChildID,
		Date:        e.Date,
		Description: e.Description,
		PhotoURL:    e.PhotoURL,
		VideoURL:    e.VideoURL,
		AuthorID:    e.AuthorID,
	})
	if err != nil {
		return nil, fmt.Errorf("insert logbook entry: %w", err)
	}
	created := *e
	created.ID = insertedID(res)
	return &created, nil
}

func (r *LogbookRepository) FindByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	oid, err := objectID(id, domain.ErrLogEntryNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var me mongoLogEntry
	if err := findOne(ctx, r.coll, bson.M{"_id": oid}, &me, domain.ErrLogEntryNotFound); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find logbook entry: %w", err)
	}
	return me.toDomain(), nil
}

func (r *LogbookRepository) ListByChild(ctx context.Context, childID string) ([]*domain.LogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var docs []mongoLogEntry
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	if err := findAll(ctx, r.coll, bson.M{"child_id": childID}, &docs, opts); err != nil {
		return nil, fmt.Errorf("list logbook entries: %w", err)
	}
	out := make([]*domain.LogEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *LogbookRepository) Update(ctx context.Context, e *domain.LogEntry) error {
	oid, err := objectID(e.ID, domain.ErrLogEntryNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"date":        e.Date,
		"description": e.Description,
		"photo_url":   e.PhotoURL,
		"video_url":   e.VideoURL,
	}})
	if err != nil {
		return fmt.Errorf("update logbook entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrLogEntryNotFound
	}
	return nil
}

func (r *LogbookRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrLogEntryNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete logbook entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrLogEntryNotFound
	}
	return nil
}
