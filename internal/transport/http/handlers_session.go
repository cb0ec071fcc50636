package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"zonegate/internal/identity"
	identitystore "zonegate/internal/identity/store"
	"zonegate/internal/platform/metrics"
	"zonegate/internal/session"
	"zonegate/pkg/platform/audit"
	"zonegate/pkg/platform/httputil"
	"zonegate/pkg/platform/sentinel"
	"zonegate/pkg/requestcontext"
)

// SessionResolver is the slice of the resolver the bridge endpoint needs.
type SessionResolver interface {
	ResolveBearer(ctx context.Context, authHeader string) (session.Resolution, error)
}

// TokenIssuer covers issuance plus refresh verification for the token
// endpoints.
type TokenIssuer interface {
	IssueAccessToken(ident *identity.Identity) (string, error)
	IssueRefreshToken(userID uuid.UUID) (string, error)
	VerifyRefreshToken(tokenString string) (uuid.UUID, error)
}

// AuthHandler serves the mobile bridge and token refresh endpoints. Response
// shapes are fixed per outcome and never vary with the failure cause beyond
// the documented cases, so clients cannot probe token validity details.
type AuthHandler struct {
	resolver SessionResolver
	tokens   TokenIssuer
	users    identitystore.Store
	metrics  *metrics.Metrics
	audit    audit.Publisher
	logger   *slog.Logger
}

// AuthHandlerOption configures an AuthHandler.
type AuthHandlerOption func(*AuthHandler)

// WithAudit attaches an audit publisher.
func WithAudit(pub audit.Publisher) AuthHandlerOption {
	return func(h *AuthHandler) {
		h.audit = pub
	}
}

func NewAuthHandler(
	resolver SessionResolver,
	tokens TokenIssuer,
	users identitystore.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...AuthHandlerOption,
) *AuthHandler {
	h := &AuthHandler{
		resolver: resolver,
		tokens:   tokens,
		users:    users,
		metrics:  m,
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

type userPayload struct {
	ID                  string  `json:"id"`
	Email               string  `json:"email"`
	Name                *string `json:"name"`
	Image               *string `json:"image"`
	Role                string  `json:"role"`
	OnboardingCompleted bool    `json:"onboardingCompleted"`
}

type sessionResponse struct {
	User userPayload `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleGetSession is the mobile session bridge: a bearer-token client
// fetches the canonical user record so its view of identity stays consistent
// with the web session's.
func (h *AuthHandler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := h.resolver.ResolveBearer(ctx, r.Header.Get("Authorization"))
	if err != nil {
		h.logger.ErrorContext(ctx, "session resolution fault",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to get session"})
		return
	}

	h.metrics.IncrementSessionResolution(string(res.Outcome))

	switch res.Outcome {
	case session.OutcomeMissingCredential:
		httputil.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "No authentication token provided"})
	case session.OutcomeUnauthenticated:
		h.metrics.IncrementTokenVerifyFailed()
		h.emitAudit(ctx, audit.Event{
			Action:    audit.ActionAuthFailed,
			Subject:   "access",
			RequestID: requestcontext.RequestID(ctx),
		})
		httputil.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid authentication token"})
	case session.OutcomeUserNotFound:
		httputil.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "User not found"})
	case session.OutcomeAuthenticated:
		h.emitAudit(ctx, audit.Event{
			Action:    audit.ActionSessionAccessed,
			UserID:    res.Identity.ID.String(),
			RequestID: requestcontext.RequestID(ctx),
		})
		httputil.WriteJSON(w, http.StatusOK, sessionResponse{User: userPayload{
			ID:                  res.Identity.ID.String(),
			Email:               res.Identity.Email,
			Name:                res.Identity.Name,
			Image:               res.Identity.Image,
			Role:                string(res.Identity.Role),
			OnboardingCompleted: res.Identity.OnboardingCompleted,
		}})
	default:
		httputil.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to get session"})
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// handleRefresh exchanges a live refresh token for a fresh token pair. This
// is the explicit re-authentication operation; nothing in the core retries a
// failed verification on the caller's behalf.
func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "No refresh token provided"})
		return
	}

	userID, err := h.tokens.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		h.metrics.IncrementTokenVerifyFailed()
		h.emitAudit(ctx, audit.Event{
			Action:    audit.ActionAuthFailed,
			Subject:   "refresh",
			RequestID: requestcontext.RequestID(ctx),
		})
		httputil.WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid refresh token"})
		return
	}

	ident, err := h.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		httputil.WriteJSON(w, http.StatusNotFound, errorResponse{Error: "User not found"})
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh lookup fault",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to refresh token"})
		return
	}

	accessToken, err := h.tokens.IssueAccessToken(ident)
	if err != nil {
		h.logger.ErrorContext(ctx, "access token issuance failed", "error", err)
		httputil.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to refresh token"})
		return
	}
	refreshToken, err := h.tokens.IssueRefreshToken(ident.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "refresh token issuance failed", "error", err)
		httputil.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to refresh token"})
		return
	}

	h.metrics.IncrementTokensIssued("access")
	h.metrics.IncrementTokensIssued("refresh")
	h.emitAudit(ctx, audit.Event{
		Action:    audit.ActionTokenRefreshed,
		UserID:    ident.ID.String(),
		RequestID: requestcontext.RequestID(ctx),
	})

	httputil.WriteJSON(w, http.StatusOK, refreshResponse{
		Token:        accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) emitAudit(ctx context.Context, event audit.Event) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Emit(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}
}
