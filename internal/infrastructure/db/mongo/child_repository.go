package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

type ChildRepository struct {
	coll *mongo.Collection
}

func NewChildRepository(db *mongo.Database) *ChildRepository {
	return &ChildRepository{coll: db.Collection(collChildren)}
}

// mongoChild carries lock_version, bumped by every locking read inside a
// transaction so that concurrent lockers conflict on the document.
type mongoChild struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	BirthDate    time.Time          `bson:"birth_date"`
	Gender       string             `bson:"gender,omitempty"`
	Description  string             `bson:"description,omitempty"`
	PhotoURL     string             `bson:"photo_url,omitempty"`
	State        string             `bson:"state"`
	RegisteredAt time.Time          `bson:"registered_at"`
	LockVersion  int64              `bson:"lock_version"`
}

func (m mongoChild) toDomain() *domain.Child {
	return &domain.Child{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		BirthDate:    m.BirthDate.UTC(),
		Gender:       m.Gender,
		Description:  m.Description,
		PhotoURL:     m.PhotoURL,
		State:        domain.ChildState(m.State),
		RegisteredAt: m.RegisteredAt.UTC(),
	}
}

func (r *ChildRepository) Create(ctx context.Context, c *domain.Child) (*domain.Child, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoChild{
		Name:         c.Name,
		BirthDate:    c.BirthDate,
		Gender:       c.Gender,
		Description:  c.Description,
		PhotoURL:     c.PhotoURL,
		State:        string(c.State),
		RegisteredAt: c.RegisteredAt,
	})
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	created := *c
	created.ID = insertedID(res)
	return &created, nil
}

func (r *ChildRepository) FindByID(ctx context.Context, id string) (*domain.Child, error) {
	oid, err := objectID(id, domain.ErrChildNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoChild
	if err := findOne(ctx, r.coll, bson.M{"_id": oid}, &mc, domain.ErrChildNotFound); err != nil {
		if err == domain.ErrChildNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("find child: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *ChildRepository) List(ctx context.Context, state domain.ChildState) ([]*domain.Child, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if state != "" {
		filter["state"] = string(state)
	}
	var docs []mongoChild
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := findAll(ctx, r.coll, filter, &docs, opts); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	out := make([]*domain.Child, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
