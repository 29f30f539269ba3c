//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"railguard/internal/ledger"
	"railguard/internal/stakeledger"
	stakestore "railguard/internal/stakeledger/store"
	"railguard/pkg/domain"
	"railguard/pkg/platform/sentinel"
	"railguard/pkg/testutil/containers"
)

const (
	testOwner  = domain.OwnerID("GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7")
	otherOwner = domain.OwnerID("GA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ")
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *stakestore.PostgresStore
	runner   *ledger.PostgresTxRunner
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = stakestore.NewPostgresStore(s.postgres.DB)
	s.runner = ledger.NewPostgresTxRunner(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "stakes"))
}

func (s *PostgresStoreSuite) newStake(owner domain.OwnerID, limit domain.Amount) *stakeledger.Stake {
	now := time.Now().UTC()
	return &stakeledger.Stake{
		Owner:         owner,
		SpendingLimit: limit,
		Active:        true,
		StakedAt:      now,
		ExpiresAt:     now.Add(24 * time.Hour),
	}
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	stake := s.newStake(testOwner, 50_000_000)
	stake.UsedAmount = 10_000_000
	stake.AccumulatedFees = 7_744_000
	s.Require().NoError(s.store.Save(ctx, stake))

	found, err := s.store.FindByOwner(ctx, testOwner)
	s.Require().NoError(err)
	s.Equal(testOwner, found.Owner)
	s.Equal(domain.Amount(50_000_000), found.SpendingLimit)
	s.Equal(domain.Amount(10_000_000), found.UsedAmount)
	s.Equal(domain.Amount(7_744_000), found.AccumulatedFees)
	s.True(found.Active)
	s.WithinDuration(stake.ExpiresAt, found.ExpiresAt, time.Second)
}

func (s *PostgresStoreSuite) TestUpsertReplacesRow() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, s.newStake(testOwner, 50_000_000)))

	replacement := s.newStake(testOwner, 80_000_000)
	replacement.AccumulatedFees = 1_000_000
	s.Require().NoError(s.store.Save(ctx, replacement))

	found, err := s.store.FindByOwner(ctx, testOwner)
	s.Require().NoError(err)
	s.Equal(domain.Amount(80_000_000), found.SpendingLimit)
	s.Equal(domain.Amount(1_000_000), found.AccumulatedFees)
}

func (s *PostgresStoreSuite) TestFindUnknownOwner() {
	_, err := s.store.FindByOwner(context.Background(), otherOwner)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestRowLockSerializesWriters runs concurrent read-modify-write cycles
// through FOR UPDATE inside owner transactions. Without the row lock some
// increments would be lost.
func (s *PostgresStoreSuite) TestRowLockSerializesWriters() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, s.newStake(testOwner, 1_000_000_000)))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.runner.RunInOwnerTx(ctx, testOwner, func(ctx context.Context) error {
				stake, err := s.store.FindByOwnerForUpdate(ctx, testOwner)
				if err != nil {
					return err
				}
				stake.UsedAmount += 1_000_000
				return s.store.Save(ctx, stake)
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.FindByOwner(ctx, testOwner)
	s.Require().NoError(err)
	s.Equal(domain.Amount(writers*1_000_000), found.UsedAmount)
}
