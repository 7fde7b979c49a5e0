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

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(collEvents)}
}

type mongoEvent struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Title               string             `bson:"title"`
	Description         string             `bson:"description,omitempty"`
	Schedule            string             `bson:"schedule,omitempty"`
	Place               string             `bson:"place,omitempty"`
	ImageURL            string             `bson:"image_url,omitempty"`
	DetailedDescription string             `bson:"detailed_description,omitempty"`
	Date                time.Time          `bson:"date"`
	Active              bool               `bson:"active"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

func toMongoEvent(e *domain.Event) mongoEvent {
	return mongoEvent{
		Title:               e.Title,
		Description:         e.Description,
		Schedule:            e.Schedule,
		Place:               e.Place,
		ImageURL:            e.ImageURL,
		DetailedDescription: e.DetailedDescription,
		Date:                e.Date,
		Active:              e.Active,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func (m mongoEvent) toDomain() *domain.Event {
	return &domain.Event{
		ID:                  m.ID.Hex(),
		Title:               m.Title,
		Description:         m.Description,
		Schedule:            m.Schedule,
		Place:               m.Place,
		ImageURL:            m.ImageURL,
		DetailedDescription: m.DetailedDescription,
		Date:                m.Date.UTC(),
		Active:              m.Active,
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoEvent(e))
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	created := *e
	created.ID = insertedID(res)
	return &created, nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	oid, err := objectID(id, domain.ErrEventNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var me mongoEvent
	if err := findOne(ctx, r.coll, bson.M{"_id": oid}, &me, domain.ErrEventNotFound); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return me.toDomain(), nil
}

func (r *EventRepository) List(ctx context.Context, activeOnly bool, from time.Time) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	if !from.IsZero() {
		filter["date"] = bson.M{"$gte": from}
	}
	var docs []mongoEvent
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	if err := findAll(ctx, r.coll, filter, &docs, opts); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]*domain.Event, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	oid, err := objectID(e.ID, domain.ErrEventNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoEvent(e)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrEventNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// RegistrationRepository implements ports.RegistrationRepository using MongoDB.
type RegistrationRepository struct {
	coll *mongo.Collection
}

func NewRegistrationRepository(db *mongo.Database) *RegistrationRepository {
	return &RegistrationRepository{coll: db.Collection(collRegistrations)}
}

type mongoRegistration struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	EventID      string             `bson:"event_id"`
	FullName     string             `bson:"full_name"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone,omitempty"`
	State        string             `bson:"state"`
	RegisteredAt time.Time          `bson:"registered_at"`
}

func (m mongoRegistration) toDomain() *domain.Registration {
	return &domain.Registration{
		ID:           m.ID.Hex(),
		EventID:      m.EventID,
		FullName:     m.FullName,
		Email:        m.Email,
		Phone:        m.Phone,
		State:        domain.RegistrationState(m.State),
		RegisteredAt: m.RegisteredAt.UTC(),
	}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *domain.Registration) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoRegistration{
		EventID:      reg.EventID,
		FullName:     reg.FullName,
		Email:        reg.Email,
		Phone:        reg.Phone,
		State:        string(reg.State),
		RegisteredAt: reg.RegisteredAt,
	})
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	created := *reg
	created.ID = insertedID(res)
	return &created, nil
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*domain.Registration, error) {
	oid, err := objectID(id, domain.ErrRegistrationNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRegistration
	if err := findOne(ctx, r.coll, bson.M{"_id": oid}, &mr, domain.ErrRegistrationNotFound); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return mr.toDomain(), nil
}

func (r *RegistrationRepository) List(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if eventID != "" {
		filter["event_id"] = eventID
	}
	var docs []mongoRegistration
	opts := options.Find().SetSort(bson.D{{Key: "registered_at", Value: -1}})
	if err := findAll(ctx, r.coll, filter, &docs, opts); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	out := make([]*domain.Registration, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *RegistrationRepository) UpdateState(ctx context.Context, id string, state domain.RegistrationState) (*domain.Registration, error) {
	oid, err := objectID(id, domain.ErrRegistrationNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRegistration
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"state": string(state)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mr)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update registration state: %w", err)
	}
	return mr.toDomain(), nil
}
