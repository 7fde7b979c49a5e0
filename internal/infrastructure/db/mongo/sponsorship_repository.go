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
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
)

const txTimeout = 15 * time.Second

type mongoSponsorship struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SponsorID   string             `bson:"sponsor_id"`
	ChildID     string             `bson:"child_id"`
	StartDate   time.Time          `bson:"start_date"`
	EndDate     *time.Time         `bson:"end_date,omitempty"`
	State       string             `bson:"state"`
	LockVersion int64              `bson:"lock_version"`
}

func (m mongoSponsorship) toDomain() *domain.Sponsorship {
	sp := &domain.Sponsorship{
		ID:        m.ID.Hex(),
		SponsorID: m.SponsorID,
		ChildID:   m.ChildID,
		StartDate: m.StartDate.UTC(),
		State:     domain.SponsorshipState(m.State),
	}
	if m.EndDate != nil {
		end := m.EndDate.UTC()
		sp.EndDate = &end
	}
	return sp
}

// SponsorshipRepository serves sponsorship reads outside transactions.
type SponsorshipRepository struct {
	coll *mongo.Collection
}

func NewSponsorshipRepository(db *mongo.Database) *SponsorshipRepository {
	return &SponsorshipRepository{coll: db.Collection(collSponsorships)}
}

func (r *SponsorshipRepository) FindByID(ctx context.Context, id string) (*domain.Sponsorship, error) {
	oid, err := objectID(id, domain.ErrSponsorshipNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ms mongoSponsorship
	if err := findOne(ctx, r.coll, bson.M{"_id": oid}, &ms, domain.ErrSponsorshipNotFound); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find sponsorship: %w", err)
	}
	return ms.toDomain(), nil
}

func (r *SponsorshipRepository) ListBySponsor(ctx context.Context, sponsorID string, activeOnly bool) ([]*domain.Sponsorship, error) {
	filter := bson.M{"sponsor_id": sponsorID}
	if activeOnly {
		filter["state"] = string(domain.SponsorshipActive)
	}
	return r.list(ctx, filter)
}

func (r *SponsorshipRepository) ListAll(ctx context.Context) ([]*domain.Sponsorship, error) {
	return r.list(ctx, bson.M{})
}

func (r *SponsorshipRepository) list(ctx context.Context, filter bson.M) ([]*domain.Sponsorship, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var docs []mongoSponsorship
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}, {Key: "_id", Value: -1}})
	if err := findAll(ctx, r.coll, filter, &docs, opts); err != nil {
		return nil, fmt.Errorf("list sponsorships: %w", err)
	}
	out := make([]*domain.Sponsorship, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *SponsorshipRepository) ExistsActive(ctx context.Context, sponsorID, childID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{
		"sponsor_id": sponsorID,
		"child_id":   childID,
		"state":      string(domain.SponsorshipActive),
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("exists active sponsorship: %w", err)
	}
	return n > 0, nil
}

// SponsorshipTx runs sponsorship units of work in a multi-document
// transaction. Locking reads bump a version field on the locked document, so
// two transactions locking the same child hit a write conflict; the driver
// retries the loser, which then reads the committed state.
type SponsorshipTx struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewSponsorshipTx(client *mongo.Client, db *mongo.Database) *SponsorshipTx {
	return &SponsorshipTx{client: client, db: db}
}

func (t *SponsorshipTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store ports.SponsorshipStore) error) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, txTimeout)
		defer cancel()
	}

	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	store := &txStore{
		users:        t.db.Collection(collUsers),
		children:     t.db.Collection(collChildren),
		sponsorships: t.db.Collection(collSponsorships),
	}
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc, store)
	}, txOpts)
	return err
}

// txStore implements ports.SponsorshipStore. Every call must receive the
// session context handed to the transaction callback.
type txStore struct {
	users        *mongo.Collection
	children     *mongo.Collection
	sponsorships *mongo.Collection
}

var lockAndReturn = options.FindOneAndUpdate().SetReturnDocument(options.After)

func (s *txStore) FindUser(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id, domain.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	var mu mongoUser
	if err := findOne(ctx, s.users, bson.M{"_id": oid}, &mu, domain.ErrUserNotFound); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (s *txStore) LockChild(ctx context.Context, id string) (*domain.Child, error) {
	oid, err := objectID(id, domain.ErrChildNotFound)
	if err != nil {
		return nil, err
	}
	var mc mongoChild
	err = s.children.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"lock_version": 1}},
		lockAndReturn,
	).Decode(&mc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrChildNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock child: %w", err)
	}
	return mc.toDomain(), nil
}

func (s *txStore) SetChildState(ctx context.Context, id string, from, to domain.ChildState) error {
	oid, err := objectID(id, domain.ErrChildNotFound)
	if err != nil {
		return err
	}
	res, err := s.children.UpdateOne(ctx,
		bson.M{"_id": oid, "state": string(from)},
		bson.M{"$set": bson.M{"state": string(to)}},
	)
	if err != nil {
		return fmt.Errorf("set child state: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrChildUnavailable
	}
	return nil
}

func (s *txStore) UpdateChild(ctx context.Context, c *domain.Child) error {
	oid, err := objectID(c.ID, domain.ErrChildNotFound)
	if err != nil {
		return err
	}
	res, err := s.children.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        c.Name,
		"birth_date":  c.BirthDate,
		"gender":      c.Gender,
		"description": c.Description,
		"photo_url":   c.PhotoURL,
		"state":       string(c.State),
	}})
	if err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrChildNotFound
	}
	return nil
}

func (s *txStore) DeleteChild(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrChildNotFound)
	if err != nil {
		return err
	}
	res, err := s.children.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrChildNotFound
	}
	return nil
}

func (s *txStore) HasActiveSponsorship(ctx context.Context, childID string) (bool, error) {
	n, err := s.sponsorships.CountDocuments(ctx, bson.M{
		"child_id": childID,
		"state":    string(domain.SponsorshipActive),
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("has active sponsorship: %w", err)
	}
	return n > 0, nil
}

func (s *txStore) InsertSponsorship(ctx context.Context, sp *domain.Sponsorship) error {
	res, err := s.sponsorships.InsertOne(ctx, mongoSponsorship{
		SponsorID: sp.SponsorID,
		ChildID:   sp.ChildID,
		StartDate: sp.StartDate,
		EndDate:   sp.EndDate,
		State:     string(sp.State),
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrChildUnavailable
	}
	if err != nil {
		return fmt.Errorf("insert sponsorship: %w", err)
	}
	sp.ID = insertedID(res)
	return nil
}

func (s *txStore) LockSponsorship(ctx context.Context, id string) (*domain.Sponsorship, error) {
	oid, err := objectID(id, domain.ErrSponsorshipNotFound)
	if err != nil {
		return nil, err
	}
	var ms mongoSponsorship
	err = s.sponsorships.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"lock_version": 1}},
		lockAndReturn,
	).Decode(&ms)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrSponsorshipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock sponsorship: %w", err)
	}
	return ms.toDomain(), nil
}

func (s *txStore) UpdateSponsorship(ctx context.Context, sp *domain.Sponsorship) error {
	oid, err := objectID(sp.ID, domain.ErrSponsorshipNotFound)
	if err != nil {
		return err
	}
	set := bson.M{"state": string(sp.State)}
	if sp.EndDate != nil {
		set["end_date"] = *sp.EndDate
	}
	res, err := s.sponsorships.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update sponsorship: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSponsorshipNotFound
	}
	return nil
}
