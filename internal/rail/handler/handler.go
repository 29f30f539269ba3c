package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"railguard/internal/rail"
	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
	"railguard/pkg/platform/httputil"
	"railguard/pkg/requestcontext"
)

// Service defines the rail operations the handler exposes.
type Service interface {
	RequestCompliance(ctx context.Context, owner domain.OwnerID, agent domain.AgentID, amount domain.Amount, duration time.Duration) (*rail.Rail, error)
	ExecuteDraw(ctx context.Context, railID domain.RailID, amount domain.Amount) error
	RevokeRail(ctx context.Context, owner domain.OwnerID, railID domain.RailID) error
	RevokeAll(ctx context.Context, owner domain.OwnerID) (int, error)
	RailsForOwner(ctx context.Context, owner domain.OwnerID) ([]rail.Rail, error)
	RailsForAgent(ctx context.Context, agent domain.AgentID) ([]rail.Rail, error)
}

// Handler wires rail endpoints to the issuer service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts rail endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/rails/request", h.HandleRequest)
	r.Post("/rails/revoke-all", h.HandleRevokeAll)
	r.Post("/rails/{id}/draw", h.HandleDraw)
	r.Post("/rails/{id}/revoke", h.HandleRevoke)
	r.Get("/rails", h.HandleList)
}

type requestRailRequest struct {
	Owner           string `json:"owner"`
	Amount          string `json:"amount"`
	DurationSeconds int64  `json:"duration_seconds"`
}

type railResponse struct {
	ID            string     `json:"id"`
	Owner         string     `json:"owner"`
	Agent         string     `json:"agent"`
	SpendingLimit string     `json:"spending_limit"`
	UsedAmount    string     `json:"used_amount"`
	Fee           string     `json:"fee"`
	IsActive      bool       `json:"is_active"`
	IssuedAt      time.Time  `json:"issued_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
}

func fromRail(r *rail.Rail, now time.Time) railResponse {
	return railResponse{
		ID:            r.ID.String(),
		Owner:         r.Owner.String(),
		Agent:         r.Agent.String(),
		SpendingLimit: r.SpendingLimit.String(),
		UsedAmount:    r.UsedAmount.String(),
		Fee:           r.Fee.String(),
		IsActive:      r.IsActive(now),
		IssuedAt:      r.IssuedAt,
		ExpiresAt:     r.ExpiresAt,
		RevokedAt:     r.RevokedAt,
	}
}

// HandleRequest handles POST /rails/request. The caller is the agent; the
// owner whose stake backs the rail comes from the body.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agent := requestcontext.Agent(ctx)
	if agent.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "agent authentication required"))
		return
	}

	req, ok := httputil.Decode[requestRailRequest](w, r, h.logger)
	if !ok {
		return
	}
	owner, err := domain.ParseOwnerID(req.Owner)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid owner account"))
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid amount"))
		return
	}

	issued, err := h.service.RequestCompliance(ctx, owner, agent, amount, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		h.logger.ErrorContext(ctx, "rail request failed",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner,
			"agent", agent,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromRail(issued, requestcontext.Now(ctx)))
}

// HandleDraw handles POST /rails/{id}/draw.
func (h *Handler) HandleDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	railID, err := domain.ParseRailID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid rail id"))
		return
	}

	req, ok := httputil.Decode[struct {
		Amount string `json:"amount"`
	}](w, r, h.logger)
	if !ok {
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid amount"))
		return
	}

	if err := h.service.ExecuteDraw(ctx, railID, amount); err != nil {
		h.logger.ErrorContext(ctx, "draw failed",
			"request_id", requestcontext.RequestID(ctx),
			"rail_id", railID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevoke handles POST /rails/{id}/revoke.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := requestcontext.Owner(ctx)
	if owner.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "owner authentication required"))
		return
	}
	railID, err := domain.ParseRailID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid rail id"))
		return
	}

	if err := h.service.RevokeRail(ctx, owner, railID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRevokeAll handles POST /rails/revoke-all, the kill switch.
func (h *Handler) HandleRevokeAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := requestcontext.Owner(ctx)
	if owner.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "owner authentication required"))
		return
	}

	revoked, err := h.service.RevokeAll(ctx, owner)
	if err != nil {
		h.logger.ErrorContext(ctx, "kill switch failed",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"revoked": revoked})
}

// HandleList handles GET /rails. The authenticated party lists its own
// rails; owners see rails backed by their stake, agents see rails granted to
// them.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := requestcontext.Now(ctx)

	var (
		rails []rail.Rail
		err   error
	)
	switch {
	case !requestcontext.Owner(ctx).IsNil():
		rails, err = h.service.RailsForOwner(ctx, requestcontext.Owner(ctx))
	case !requestcontext.Agent(ctx).IsNil():
		rails, err = h.service.RailsForAgent(ctx, requestcontext.Agent(ctx))
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]railResponse, 0, len(rails))
	for i := range rails {
		out = append(out, fromRail(&rails[i], now))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
