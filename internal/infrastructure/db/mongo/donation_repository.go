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

type DonationRepository struct {
	coll *mongo.Collection
}

func NewDonationRepository(db *mongo.Database) *DonationRepository {
	return &DonationRepository{coll: db.Collection(collDonations)}
}

// mongoDonation omits donor_id for anonymous donations; the report
// aggregation coalesces the missing field.
type mongoDonation struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	DonorID         string             `bson:"donor_id,omitempty"`
	Type            string             `bson:"type"`
	Amount          float64            `bson:"amount"`
	Description     string             `bson:"description,omitempty"`
	Bank            string             `bson:"bank,omitempty"`
	Email           string             `bson:"email,omitempty"`
	TaxID           string             `bson:"tax_id,omitempty"`
	MaterialSubtype string             `bson:"material_subtype,omitempty"`
	State           string             `bson:"state"`
	CreatedAt       time.Time          `bson:"created_at"`
}

func (m mongoDonation) toDomain() *domain.Donation {
	return &domain.Donation{
		ID:              m.ID.Hex(),
		DonorID:         m.DonorID,
		Type:            domain.DonationType(m.Type),
		Amount:          m.Amount,
		Description:     m.Description,
		Bank:            m.Bank,
		Email:           m.Email,
		TaxID:           m.TaxID,
		MaterialSubtype: m.MaterialSubtype,
		State:           domain.DonationState(m.State),
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

func (r *DonationRepository) Create(ctx context.Context, d *domain.Donation) (*domain.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoDonation{
		DonorID:         d.DonorID,
		Type:            string(d.Type),
		Amount:          d.Amount,
		Description:     d.Description,
		Bank:            d.Bank,
		Email:           d.Email,
		TaxID:           d.TaxID,
		MaterialSubtype: d.MaterialSubtype,
		State:           string(d.State),
		CreatedAt:       d.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("insert donation: %w", err)
	}
	created := *d
	created.ID = insertedID(res)
	return &created, nil
}

func (r *DonationRepository) FindByID(ctx context.Context, id string) (*domain.Donation, error) {
	oid, err := objectID(id, domain.ErrDonationNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var md mongoDonation
	if err := findOne(ctx, r.coll, bson.M{"_id": oid}, &md, domain.ErrDonationNotFound); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find donation: %w", err)
	}
	return md.toDomain(), nil
}

func (r *DonationRepository) List(ctx context.Context, f domain.DonationFilter) ([]*domain.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.State != "" {
		filter["state"] = string(f.State)
	}
	if f.Email != "" {
		filter["email"] = f.Email
	}
	var docs []mongoDonation
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if err := findAll(ctx, r.coll, filter, &docs, opts); err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	out := make([]*domain.Donation, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *DonationRepository) UpdateState(ctx context.Context, id string, state domain.DonationState) (*domain.Donation, error) {
	oid, err := objectID(id, domain.ErrDonationNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var md mongoDonation
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"state": string(state)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&md)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrDonationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update donation state: %w", err)
	}
	return md.toDomain(), nil
}

func (r *DonationRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrDonationNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete donation: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDonationNotFound
	}
	return nil
}

// donorRow is one $group output document of the donor report.
type donorRow struct {
	Key struct {
		DonorID string `bson:"donor_id"`
		Email   string `bson:"email"`
	} `bson:"_id"`
	Total float64   `bson:"total"`
	Count int64     `bson:"count"`
	Last  time.Time `bson:"last"`
}

// DonorSummaries runs the donor report aggregation.
func (r *DonationRepository) DonorSummaries(ctx context.Context, f domain.ReportFilter) ([]domain.DonorSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Aggregate(ctx, donorReportPipeline(f))
	if err != nil {
		return nil, fmt.Errorf("donor report: %w", err)
	}
	var rows []donorRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("donor report: decode: %w", err)
	}

	out := make([]domain.DonorSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.DonorSummary{
			DonorID:        row.Key.DonorID,
			Email:          row.Key.Email,
			TotalAmount:    row.Total,
			DonationCount:  row.Count,
			LastDonationAt: row.Last.UTC(),
		})
	}
	return out, nil
}

// donorReportPipeline filters, groups by (donor, email) and sorts by total
// descending, then last donation descending, then email.
func donorReportPipeline(f domain.ReportFilter) mongo.Pipeline {
	match := bson.D{}
	if !f.From.IsZero() || !f.To.IsZero() {
		rng := bson.D{}
		if !f.From.IsZero() {
			rng = append(rng, bson.E{Key: "$gte", Value: f.From})
		}
		if !f.To.IsZero() {
			rng = append(rng, bson.E{Key: "$lte", Value: f.To})
		}
		match = append(match, bson.E{Key: "created_at", Value: rng})
	}
	if f.Type != "" {
		match = append(match, bson.E{Key: "type", Value: string(f.Type)})
	}
	if f.MaterialSubtype != "" {
		match = append(match, bson.E{Key: "material_subtype", Value: f.MaterialSubtype})
	}

	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	return append(pipeline,
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "donor_id", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$donor_id", domain.AnonymousDonorID}}}},
				{Key: "email", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$email", ""}}}},
			}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last", Value: bson.D{{Key: "$max", Value: "$created_at"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "total", Value: -1},
			{Key: "last", Value: -1},
			{Key: "_id.email", Value: 1},
		}}},
	)
}
