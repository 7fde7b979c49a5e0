package main

import (
	"context"
	"fmt"

	"github.com/huahuacuna/fundacion-api/internal/core/ports"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/config"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/db/mongo"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/db/postgres"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/http/handlers"
)

// store is one persistence backend with every repository the services need.
type store struct {
	name  string
	check handlers.Check
	close func(ctx context.Context) error

	users         ports.UserRepository
	children      ports.ChildRepository
	sponsorships  ports.SponsorshipRepository
	tx            ports.SponsorshipTx
	donations     ports.DonationRepository
	logbook       ports.LogbookRepository
	events        ports.EventRepository
	registrations ports.RegistrationRepository
	projects      ports.ProjectRepository
	volunteers    ports.VolunteeringRepository
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return openPostgres(ctx, cfg.Postgres)
	case config.StoreMongo:
		return openMongo(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg config.MongoConfig) (*store, error) {
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.URI, Database: cfg.Database})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &store{
		name:          "mongodb",
		check:         handlers.MongoCheck(db),
		close:         client.Disconnect,
		users:         mongo.NewUserRepository(db),
		children:      mongo.NewChildRepository(db),
		sponsorships:  mongo.NewSponsorshipRepository(db),
		tx:            mongo.NewSponsorshipTx(client, db),
		donations:     mongo.NewDonationRepository(db),
		logbook:       mongo.NewLogbookRepository(db),
		events:        mongo.NewEventRepository(db),
		registrations: mongo.NewRegistrationRepository(db),
		projects:      mongo.NewProjectRepository(db),
		volunteers:    mongo.NewVolunteeringRepository(db),
	}, nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*store, error) {
	db, err := postgres.Open(ctx, postgres.Config{DSN: cfg.DSN, MaxOpenConns: cfg.MaxOpenConns})
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &store{
		name:          "postgres",
		check:         handlers.PostgresCheck(db),
		close:         func(context.Context) error { return db.Close() },
		users:         postgres.NewUserRepository(db),
		children:      postgres.NewChildRepository(db),
		sponsorships:  postgres.NewSponsorshipRepository(db),
		tx:            postgres.NewSponsorshipTx(db),
		donations:     postgres.NewDonationRepository(db),
		logbook:       postgres.NewLogbookRepository(db),
		events:        postgres.NewEventRepository(db),
		registrations: postgres.NewRegistrationRepository(db),
		projects:      postgres.NewProjectRepository(db),
		volunteers:    postgres.NewVolunteeringRepository(db),
	}, nil
}
