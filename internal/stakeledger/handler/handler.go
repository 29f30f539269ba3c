package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"railguard/internal/stakeledger"
	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
	"railguard/pkg/platform/httputil"
	"railguard/pkg/requestcontext"
)

// Service defines the stake ledger operations the handler exposes.
type Service interface {
	Stake(ctx context.Context, owner domain.OwnerID, spendingLimit domain.Amount, duration time.Duration) (*stakeledger.Stake, error)
	Unstake(ctx context.Context, owner domain.OwnerID) (domain.Amount, error)
	ClaimEarnings(ctx context.Context, owner domain.OwnerID) (domain.Amount, error)
	AvailableCapacity(ctx context.Context, owner domain.OwnerID) (domain.Amount, error)
	Get(ctx context.Context, owner domain.OwnerID) (*stakeledger.Stake, error)
}

// Handler wires stake endpoints to the ledger service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts stake endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/stake", h.HandleStake)
	r.Post("/stake/unstake", h.HandleUnstake)
	r.Post("/stake/claim", h.HandleClaim)
	r.Get("/stake", h.HandleGet)
	r.Get("/stake/capacity", h.HandleCapacity)
}

type stakeRequest struct {
	SpendingLimit   string `json:"spending_limit"`
	DurationSeconds int64  `json:"duration_seconds"`
}

type stakeResponse struct {
	Owner           string    `json:"owner"`
	SpendingLimit   string    `json:"spending_limit"`
	UsedAmount      string    `json:"used_amount"`
	AccumulatedFees string    `json:"accumulated_fees"`
	Active          bool      `json:"active"`
	StakedAt        time.Time `json:"staked_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func fromStake(s *stakeledger.Stake) stakeResponse {
	return stakeResponse{
		Owner:           s.Owner.String(),
		SpendingLimit:   s.SpendingLimit.String(),
		UsedAmount:      s.UsedAmount.String(),
		AccumulatedFees: s.AccumulatedFees.String(),
		Active:          s.Active,
		StakedAt:        s.StakedAt,
		ExpiresAt:       s.ExpiresAt,
	}
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (domain.OwnerID, bool) {
	owner := requestcontext.Owner(r.Context())
	if owner.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "owner authentication required"))
		return "", false
	}
	return owner, true
}

// HandleStake handles POST /stake.
func (h *Handler) HandleStake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	req, ok := httputil.Decode[stakeRequest](w, r, h.logger)
	if !ok {
		return
	}
	limit, err := domain.ParseAmount(req.SpendingLimit)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid spending limit"))
		return
	}

	stake, err := h.service.Stake(ctx, owner, limit, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		h.logger.ErrorContext(ctx, "stake failed",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromStake(stake))
}

// HandleUnstake handles POST /stake/unstake.
func (h *Handler) HandleUnstake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	fees, err := h.service.Unstake(ctx, owner)
	if err != nil {
		h.logger.ErrorContext(ctx, "unstake failed",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"fees": fees.String()})
}

// HandleClaim handles POST /stake/claim.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	fees, err := h.service.ClaimEarnings(ctx, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"fees": fees.String()})
}

// HandleGet handles GET /stake.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	stake, err := h.service.Get(ctx, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromStake(stake))
}

// HandleCapacity handles GET /stake/capacity.
func (h *Handler) HandleCapacity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	available, err := h.service.AvailableCapacity(ctx, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"available": available.String()})
}
