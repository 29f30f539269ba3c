//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"railguard/internal/audit"
	"railguard/internal/ledger"
	"railguard/pkg/domain"
	"railguard/pkg/testutil/containers"
)

const testOwner = domain.OwnerID("GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7")

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
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
	s.store = audit.NewPostgresStore(s.postgres.DB)
	s.runner = ledger.NewPostgresTxRunner(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "outbox"))
}

func (s *PostgresStoreSuite) newEvent(action audit.Action) audit.Event {
	return audit.Event{
		Owner:     testOwner,
		Action:    action,
		Amount:    10_000_000,
		Timestamp: time.Now().UTC(),
	}
}

func (s *PostgresStoreSuite) TestAppendAndDrain() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.newEvent(audit.ActionStakeCreated)))
	s.Require().NoError(s.store.Append(ctx, s.newEvent(audit.ActionRailIssued)))

	entries, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(testOwner.String(), entries[0].Key)

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(entries[0].Payload, &payload))
	s.Equal(string(audit.ActionStakeCreated), payload["action"])
	s.Equal(testOwner.String(), payload["owner"])

	ids := make([]uuid.UUID, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	s.Require().NoError(s.store.MarkPublished(ctx, ids))

	entries, err = s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

// TestAppendJoinsTransaction verifies the outbox write rolls back with the
// enclosing ledger transaction.
func (s *PostgresStoreSuite) TestAppendJoinsTransaction() {
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := s.runner.RunInOwnerTx(ctx, testOwner, func(ctx context.Context) error {
		if err := s.store.Append(ctx, s.newEvent(audit.ActionKillSwitch)); err != nil {
			return err
		}
		return errAbort
	})
	s.ErrorIs(err, errAbort)

	entries, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries, "rolled-back events never reach the outbox")
}

func (s *PostgresStoreSuite) TestFetchHonorsLimit() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Append(ctx, s.newEvent(audit.ActionDrawExecuted)))
	}

	entries, err := s.store.FetchUnpublished(ctx, 3)
	s.Require().NoError(err)
	s.Len(entries, 3)
}
