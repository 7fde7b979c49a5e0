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

type ProjectRepository struct {
	coll *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{coll: db.Collection(collProjects)}
}

type mongoProject struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	StartDate   *time.Time         `bson:"start_date,omitempty"`
	EndDate     *time.Time         `bson:"end_date,omitempty"`
	State       string             `bson:"state"`
}

func toMongoProject(p *domain.Project) mongoProject {
	return mongoProject{
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		State:       string(p.State),
	}
}

func (m mongoProject) toDomain() *domain.Project {
	return &domain.Project{
		ID:          m.ID.Hex(),
		Name:        m.Name,
		Description: m.Description,
		StartDate:   timePtr(derefTime(m.StartDate)),
		EndDate:     timePtr(derefTime(m.EndDate)),
		State:       domain.ProjectState(m.State),
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoProject(p))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	created := *p
	created.ID = insertedID(res)
	return &created, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	oid, err := objectID(id, domain.ErrProjectNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProject
	if err := findOne(ctx, r.coll, bson.M{"_id": oid}, &mp, domain.ErrProjectNotFound); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProjectRepository) List(ctx context.Context, state domain.ProjectState) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if state != "" {
		filter["state"] = string(state)
	}
	var docs []mongoProject
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := findAll(ctx, r.coll, filter, &docs, opts); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]*domain.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	oid, err := objectID(p.ID, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, toMongoProject(p))
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrProjectNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// VolunteeringRepository relies on the unique (user_id, project_id) index
// created by EnsureIndexes to reject double enrollment.
type VolunteeringRepository struct {
	coll *mongo.Collection
}

func NewVolunteeringRepository(db *mongo.Database) *VolunteeringRepository {
	return &VolunteeringRepository{coll: db.Collection(collVolunteers)}
}

type mongoVolunteering struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	ProjectID  string             `bson:"project_id"`
	Role       string             `bson:"role"`
	EnrolledAt time.Time          `bson:"enrolled_at"`
}

func (r *VolunteeringRepository) Create(ctx context.Context, v *domain.Volunteering) (*domain.Volunteering, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, mongoVolunteering{
		UserID:     v.UserID,
		ProjectID:  v.ProjectID,
		Role:       v.Role,
		EnrolledAt: v.EnrolledAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrAlreadyEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("insert volunteering: %w", err)
	}
	created := *v
	created.ID = insertedID(res)
	return &created, nil
}

func (r *VolunteeringRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Volunteering, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var docs []mongoVolunteering
	opts := options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: 1}})
	if err := findAll(ctx, r.coll, bson.M{"project_id": projectID}, &docs, opts); err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	out := make([]*domain.Volunteering, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Volunteering{
			ID:         d.ID.Hex(),
			UserID:     d.UserID,
			ProjectID:  d.ProjectID,
			Role:       d.Role,
			EnrolledAt: d.EnrolledAt.UTC(),
		})
	}
	return out, nil
}
