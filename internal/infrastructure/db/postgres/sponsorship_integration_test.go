//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/sync/errgroup"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
	"github.com/huahuacuna/fundacion-api/internal/core/service"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/db/postgres"
)

type discardNotifier struct{}

func (discardNotifier) Enqueue(ports.Mail) bool { return true }

type SponsorshipStoreSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *sql.DB
}

func TestSponsorshipStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SponsorshipStoreSuite))
}

func (s *SponsorshipStoreSuite) SetupSuite() {
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("fundacion"),
		tcpostgres.WithUsername("fundacion"),
		tcpostgres.WithPassword("fundacion"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = ctr

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = postgres.Open(ctx, postgres.Config{DSN: dsn, MaxOpenConns: 32})
	s.Require().NoError(err)
	s.Require().NoError(postgres.Migrate(ctx, s.db))
}

func (s *SponsorshipStoreSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = testcontainers.TerminateContainer(s.container)
	}
}

func (s *SponsorshipStoreSuite) SetupTest() {
	_, err := s.db.ExecContext(context.Background(),
		`TRUNCATE volunteers, projects, event_registrations, events, logbook_entries, donations, sponsorships, children, users`)
	s.Require().NoError(err)
}

func (s *SponsorshipStoreSuite) newSponsor(ctx context.Context, email string) *domain.User {
	now := time.Now().UTC()
	u, err := postgres.NewUserRepository(s.db).Create(ctx, &domain.User{
		Name:         email,
		Email:        email,
		PasswordHash: "x",
		Role:         domain.RoleSponsor,
		Status:       domain.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	s.Require().NoError(err)
	return u
}

func (s *SponsorshipStoreSuite) sponsorships() *service.SponsorshipService {
	return service.NewSponsorshipService(
		postgres.NewSponsorshipRepository(s.db),
		postgres.NewSponsorshipTx(s.db),
		discardNotifier{},
		zerolog.Nop(),
	)
}

// TestConcurrentCreateSingleWinner races many sponsors for one child and
// checks that exactly one sponsorship becomes active.
func (s *SponsorshipStoreSuite) TestConcurrentCreateSingleWinner() {
	ctx := context.Background()
	const sponsors = 20

	child, err := postgres.NewChildRepository(s.db).Create(ctx, &domain.Child{
		Name:         "Ana",
		BirthDate:    time.Date(2016, 4, 2, 0, 0, 0, 0, time.UTC),
		State:        domain.ChildAvailable,
		RegisteredAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	ids := make([]string, sponsors)
	for i := range ids {
		ids[i] = s.newSponsor(ctx, "padrino"+string(rune('a'+i))+"@example.org").ID
	}

	svc := s.sponsorships()
	var won, rejected atomic.Int32
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			_, err := svc.Create(ctx, id, child.ID)
			switch {
			case err == nil:
				won.Add(1)
			case errors.Is(err, domain.ErrChildUnavailable):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(int32(1), won.Load())
	s.Equal(int32(sponsors-1), rejected.Load())

	var active int
	s.Require().NoError(s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sponsorships WHERE child_id = $1 AND state = 'ACTIVO'`, child.ID).Scan(&active))
	s.Equal(1, active)

	stored, err := postgres.NewChildRepository(s.db).FindByID(ctx, child.ID)
	s.Require().NoError(err)
	s.Equal(domain.ChildSponsored, stored.State)
}

func (s *SponsorshipStoreSuite) TestFinalizeMakesChildSponsorableAgain() {
	ctx := context.Background()
	children := postgres.NewChildRepository(s.db)

	child, err := children.Create(ctx, &domain.Child{
		Name:         "Luis",
		BirthDate:    time.Date(2014, 9, 12, 0, 0, 0, 0, time.UTC),
		State:        domain.ChildAvailable,
		RegisteredAt: time.Now().UTC(),
	})
	s.Require().NoError(err)
	first := s.newSponsor(ctx, "uno@example.org")
	second := s.newSponsor(ctx, "dos@example.org")

	svc := s.sponsorships()
	sp, err := svc.Create(ctx, first.ID, child.ID)
	s.Require().NoError(err)

	_, err = svc.Create(ctx, second.ID, child.ID)
	s.ErrorIs(err, domain.ErrChildUnavailable)

	done, err := svc.Finalize(ctx, sp.ID)
	s.Require().NoError(err)
	s.Equal(domain.SponsorshipFinalized, done.State)
	s.NotNil(done.EndDate)

	stored, err := children.FindByID(ctx, child.ID)
	s.Require().NoError(err)
	s.Equal(domain.ChildAvailable, stored.State)

	_, err = svc.Create(ctx, second.ID, child.ID)
	s.NoError(err)
}

func (s *SponsorshipStoreSuite) TestDonorReportGroupsAnonymousDonations() {
	ctx := context.Background()
	repo := postgres.NewDonationRepository(s.db)
	donor := s.newSponsor(ctx, "donante@example.org")
	now := time.Now().UTC()

	for _, d := range []domain.Donation{
		{DonorID: donor.ID, Email: donor.Email, Type: domain.DonationMonetary, Amount: 100, CreatedAt: now.Add(-2 * time.Hour)},
		{DonorID: donor.ID, Email: donor.Email, Type: domain.DonationMonetary, Amount: 50, CreatedAt: now.Add(-time.Hour)},
		{Type: domain.DonationMonetary, Amount: 20, CreatedAt: now},
		{Type: domain.DonationMaterial, MaterialSubtype: "Alimentos", CreatedAt: now},
	} {
		d.State = domain.DonationPending
		_, err := repo.Create(ctx, &d)
		s.Require().NoError(err)
	}

	got, err := repo.DonorSummaries(ctx, domain.ReportFilter{Type: domain.DonationMonetary})
	s.Require().NoError(err)
	s.Require().Len(got, 2)

	s.Equal(donor.ID, got[0].DonorID)
	s.Equal(150.0, got[0].TotalAmount)
	s.Equal(int64(2), got[0].DonationCount)
	s.Equal(domain.AnonymousDonorID, got[1].DonorID)
	s.Equal(int64(1), got[1].DonationCount)
}
