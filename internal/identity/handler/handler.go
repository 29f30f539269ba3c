package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"railguard/internal/identity"
	"railguard/pkg/domain"
	dErrors "railguard/pkg/domain-errors"
	"railguard/pkg/platform/httputil"
	"railguard/pkg/requestcontext"
)

// Service defines the identity registry operations the handler exposes.
type Service interface {
	Issue(ctx context.Context, owner domain.OwnerID, proofHash domain.ProofHash) (*identity.Credential, error)
	Revoke(ctx context.Context, owner domain.OwnerID) error
	IsActive(ctx context.Context, owner domain.OwnerID) (bool, error)
	Get(ctx context.Context, owner domain.OwnerID) (*identity.Credential, error)
}

// Handler wires identity endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts identity endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/issue", h.HandleIssue)
	r.Post("/identity/revoke", h.HandleRevoke)
	r.Get("/identity/status", h.HandleStatus)
}

type issueRequest struct {
	ProofHash string `json:"proof_hash"`
}

type credentialResponse struct {
	Owner     string     `json:"owner"`
	ProofHash string     `json:"proof_hash"`
	Status    string     `json:"status"`
	IssuedAt  time.Time  `json:"issued_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

func fromCredential(c *identity.Credential) credentialResponse {
	return credentialResponse{
		Owner:     c.Owner.String(),
		ProofHash: c.ProofHash.String(),
		Status:    string(c.Status),
		IssuedAt:  c.IssuedAt,
		RevokedAt: c.RevokedAt,
	}
}

// HandleIssue handles POST /identity/issue.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := requestcontext.Owner(ctx)
	if owner.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "owner authentication required"))
		return
	}

	req, ok := httputil.Decode[issueRequest](w, r, h.logger)
	if !ok {
		return
	}
	proofHash, err := domain.ParseProofHash(req.ProofHash)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid proof hash"))
		return
	}

	credential, err := h.service.Issue(ctx, owner, proofHash)
	if err != nil {
		h.logger.ErrorContext(ctx, "credential issuance failed",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromCredential(credential))
}

// HandleRevoke handles POST /identity/revoke.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := requestcontext.Owner(ctx)
	if owner.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "owner authentication required"))
		return
	}

	if err := h.service.Revoke(ctx, owner); err != nil {
		h.logger.ErrorContext(ctx, "credential revocation failed",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatus handles GET /identity/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := requestcontext.Owner(ctx)
	if owner.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "owner authentication required"))
		return
	}

	active, err := h.service.IsActive(ctx, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"active": active})
}
