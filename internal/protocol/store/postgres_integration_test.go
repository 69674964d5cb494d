//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"civicdesk/internal/platform/postgres"
	"civicdesk/internal/protocol/models"
	"civicdesk/internal/protocol/sequence"
	"civicdesk/pkg/platform/sentinel"
	"civicdesk/pkg/platform/tx"
	"civicdesk/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg        *containers.PostgresContainer
	protocols *PostgresProtocolStore
	history   *PostgresHistoryStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(s.pg.DB))
	s.protocols = NewPostgresProtocolStore(s.pg.DB)
	s.history = NewPostgresHistoryStore(s.pg.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background(), "protocols", "protocol_counters", "protocol_history"))
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	now := time.Date(2025, 11, 7, 8, 0, 0, 0, time.UTC)

	p, err := models.NewProtocol(models.FormatNumber(now, 1), "svc-ref", "education", "citizen-1", now)
	s.Require().NoError(err)
	s.Require().NoError(s.protocols.Create(ctx, p))

	got, err := s.protocols.GetByNumber(ctx, p.Number)
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Equal(models.StatusBound, got.Status)
	s.True(got.CreatedAt.Equal(now))

	dup, err := models.NewProtocol(p.Number, "svc-ref", "education", "citizen-2", now)
	s.Require().NoError(err)
	s.ErrorIs(s.protocols.Create(ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdateLifecycle() {
	ctx := context.Background()
	now := time.Date(2025, 11, 7, 8, 0, 0, 0, time.UTC)

	p, err := models.NewProtocol(models.FormatNumber(now, 1), "svc-ref", "health", "citizen-1", now)
	s.Require().NoError(err)
	s.Require().NoError(s.protocols.Create(ctx, p))

	p.ApplyApproval(now.Add(time.Hour))
	s.Require().NoError(s.protocols.Update(ctx, p))

	got, err := s.protocols.GetByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, got.Status)
	s.Require().NotNil(got.ConcludedAt)
	s.True(got.ConcludedAt.Equal(now.Add(time.Hour)))
}

func (s *PostgresStoreSuite) TestHistoryInTransactionRollsBackWithProtocol() {
	ctx := context.Background()
	now := time.Date(2025, 11, 7, 8, 0, 0, 0, time.UTC)

	p, err := models.NewProtocol(models.FormatNumber(now, 1), "svc-ref", "education", "citizen-1", now)
	s.Require().NoError(err)

	boom := tx.Run(ctx, s.pg.DB, func(ctx context.Context) error {
		if err := s.protocols.Create(ctx, p); err != nil {
			return err
		}
		entry := models.NewHistoryEntry(p.ID, models.HistoryCreated, now)
		entry.NewStatus = models.StatusBound
		if err := s.history.Append(ctx, entry); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Require().ErrorIs(boom, context.Canceled)

	_, err = s.protocols.GetByNumber(ctx, p.Number)
	s.ErrorIs(err, sentinel.ErrNotFound)

	entries, err := s.history.ListByProtocol(ctx, p.ID)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *PostgresStoreSuite) TestSequenceAllocatesContiguousBlockUnderConcurrency() {
	const callers = 100

	gen := sequence.NewPostgres(s.pg.DB, 10*time.Second)
	day := time.Date(2025, 11, 7, 12, 0, 0, 0, time.UTC)

	results := make(chan string, callers)
	var eg errgroup.Group
	for i := 0; i < callers; i++ {
		eg.Go(func() error {
			return tx.Run(context.Background(), s.pg.DB, func(ctx context.Context) error {
				n, err := gen.Next(ctx, day)
				if err != nil {
					return err
				}
				results <- n
				return nil
			})
		})
	}
	require.NoError(s.T(), eg.Wait())
	close(results)

	seen := make(map[string]struct{}, callers)
	for n := range results {
		_, dup := seen[n]
		s.False(dup, "duplicate number %s", n)
		seen[n] = struct{}{}
	}
	s.Len(seen, callers)
	s.Contains(seen, "PROT-20251107-00001")
	s.Contains(seen, "PROT-20251107-00100")
}

func (s *PostgresStoreSuite) TestSequenceResetsPerDay() {
	gen := sequence.NewPostgres(s.pg.DB, 10*time.Second)
	ctx := context.Background()

	first, err := gen.Next(ctx, time.Date(2025, 11, 7, 23, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal("PROT-20251107-00001", first)

	next, err := gen.Next(ctx, time.Date(2025, 11, 8, 0, 30, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal("PROT-20251108-00001", next)
}
