package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"railguard/internal/stakeledger"
	"railguard/internal/stakeledger/handler"
	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
	"railguard/pkg/requestcontext"
)

const testOwner = domain.OwnerID("GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7")

type stubService struct {
	stakeFn    func(ctx context.Context, owner domain.OwnerID, spendingLimit domain.Amount, duration time.Duration) (*stakeledger.Stake, error)
	unstakeFn  func(ctx context.Context, owner domain.OwnerID) (domain.Amount, error)
	claimFn    func(ctx context.Context, owner domain.OwnerID) (domain.Amount, error)
	capacityFn func(ctx context.Context, owner domain.OwnerID) (domain.Amount, error)
	getFn      func(ctx context.Context, owner domain.OwnerID) (*stakeledger.Stake, error)
}

func (s *stubService) Stake(ctx context.Context, owner domain.OwnerID, limit domain.Amount, duration time.Duration) (*stakeledger.Stake, error) {
	return s.stakeFn(ctx, owner, limit, duration)
}

func (s *stubService) Unstake(ctx context.Context, owner domain.OwnerID) (domain.Amount, error) {
	return s.unstakeFn(ctx, owner)
}

func (s *stubService) ClaimEarnings(ctx context.Context, owner domain.OwnerID) (domain.Amount, error) {
	return s.claimFn(ctx, owner)
}

func (s *stubService) AvailableCapacity(ctx context.Context, owner domain.OwnerID) (domain.Amount, error) {
	return s.capacityFn(ctx, owner)
}

func (s *stubService) Get(ctx context.Context, owner domain.OwnerID) (*stakeledger.Stake, error) {
	return s.getFn(ctx, owner)
}

type HandlerSuite struct {
	suite.Suite

	service *stubService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.service = &stubService{}
	s.router = chi.NewRouter()
	handler.New(s.service, slog.Default()).Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string, owner domain.OwnerID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	ctx := req.Context()
	if !owner.IsNil() {
		ctx = requestcontext.WithOwner(ctx, owner)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func (s *HandlerSuite) TestStake() {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	s.Run("creates a stake", func() {
		s.service.stakeFn = func(_ context.Context, owner domain.OwnerID, limit domain.Amount, duration time.Duration) (*stakeledger.Stake, error) {
			s.Equal(testOwner, owner)
			s.Equal(domain.Amount(10_000_000), limit)
			s.Equal(24*time.Hour, duration)
			return &stakeledger.Stake{
				Owner:         owner,
				SpendingLimit: limit,
				Active:        true,
				StakedAt:      now,
				ExpiresAt:     now.Add(duration),
			}, nil
		}

		rec := s.do(http.MethodPost, "/stake", `{"spending_limit":"1","duration_seconds":86400}`, testOwner)
		s.Equal(http.StatusCreated, rec.Code)

		var resp map[string]any
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal("1.0000000", resp["spending_limit"])
		s.Equal("0.0000000", resp["used_amount"])
		s.Equal(true, resp["active"])
	})

	s.Run("maps NoCredential to 403", func() {
		s.service.stakeFn = func(context.Context, domain.OwnerID, domain.Amount, time.Duration) (*stakeledger.Stake, error) {
			return nil, dErrors.New(dErrors.CodeNoCredential, "owner has no active credential")
		}
		rec := s.do(http.MethodPost, "/stake", `{"spending_limit":"1","duration_seconds":86400}`, testOwner)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("maps LimitOutOfRange to 422", func() {
		s.service.stakeFn = func(context.Context, domain.OwnerID, domain.Amount, time.Duration) (*stakeledger.Stake, error) {
			return nil, dErrors.New(dErrors.CodeLimitOutOfRange, "spending limit outside allowed range")
		}
		rec := s.do(http.MethodPost, "/stake", `{"spending_limit":"1","duration_seconds":86400}`, testOwner)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("rejects an unparseable amount", func() {
		rec := s.do(http.MethodPost, "/stake", `{"spending_limit":"ten","duration_seconds":86400}`, testOwner)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("requires authentication", func() {
		rec := s.do(http.MethodPost, "/stake", `{"spending_limit":"1","duration_seconds":86400}`, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *HandlerSuite) TestUnstake() {
	s.Run("returns the fees", func() {
		s.service.unstakeFn = func(_ context.Context, owner domain.OwnerID) (domain.Amount, error) {
			s.Equal(testOwner, owner)
			return 7_744_000, nil
		}
		rec := s.do(http.MethodPost, "/stake/unstake", "", testOwner)
		s.Equal(http.StatusOK, rec.Code)

		var resp map[string]string
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
		s.Equal("0.7744000", resp["fees"])
	})

	s.Run("maps ActiveRailsExist to 409", func() {
		s.service.unstakeFn = func(context.Context, domain.OwnerID) (domain.Amount, error) {
			return 0, dErrors.New(dErrors.CodeActiveRailsExist, "active rails are outstanding")
		}
		rec := s.do(http.MethodPost, "/stake/unstake", "", testOwner)
		s.Equal(http.StatusConflict, rec.Code)
	})
}

func (s *HandlerSuite) TestCapacity() {
	s.service.capacityFn = func(context.Context, domain.OwnerID) (domain.Amount, error) {
		return 4_000_000, nil
	}
	rec := s.do(http.MethodGet, "/stake/capacity", "", testOwner)
	s.Equal(http.StatusOK, rec.Code)

	var resp map[string]string
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal("0.4000000", resp["available"])
}
