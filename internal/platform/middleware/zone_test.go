package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"zonegate/internal/identity"
	identitystore "zonegate/internal/identity/store"
	"zonegate/internal/jwt_token"
	"zonegate/internal/platform/metrics"
	"zonegate/internal/session"
	sessionstore "zonegate/internal/session/store"
	"zonegate/internal/zone"
	"zonegate/pkg/platform/audit"
	auditmemory "zonegate/pkg/platform/audit/memory"
	"zonegate/pkg/requestcontext"
)

var testMetrics = metrics.New()

type ZoneGateSuite struct {
	suite.Suite
	users    *identitystore.InMemoryStore
	sessions *sessionstore.InMemoryStore
	audit    *auditmemory.Store
	gate     *ZoneGate
}

func (s *ZoneGateSuite) SetupTest() {
	s.users = identitystore.NewInMemory()
	s.sessions = sessionstore.NewInMemory()
	s.audit = auditmemory.NewStore()

	tokens, err := jwttoken.New("test-signing-key", "test-issuer", "test-audience")
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	resolver := session.NewResolver(jwttoken.NewServiceAdapter(tokens), s.users, s.sessions, logger)

	s.gate = NewZoneGate(zone.NewGuard(), resolver, testMetrics, logger, WithAudit(s.audit))
}

func TestZoneGateSuite(t *testing.T) {
	suite.Run(t, new(ZoneGateSuite))
}

func (s *ZoneGateSuite) login(role identity.Role, onboarded bool) string {
	ident := &identity.Identity{
		ID:                  uuid.New(),
		Email:               "user@example.com",
		Role:                role,
		OnboardingCompleted: onboarded,
	}
	s.Require().NoError(s.users.Save(context.Background(), ident))

	sessionID := uuid.NewString()
	s.Require().NoError(s.sessions.Save(context.Background(), &sessionstore.WebSession{
		ID:        sessionID,
		UserID:    ident.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}))
	return sessionID
}

func (s *ZoneGateSuite) request(target zone.Zone, sessionID string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := s.gate.Require(target)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func (s *ZoneGateSuite) TestAnonymousAppRequestRedirectsToLogin() {
	rec := s.request(zone.ZoneApp, "")

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))
}

func (s *ZoneGateSuite) TestAuthenticatedAppRequestAllowed() {
	sessionID := s.login(identity.RoleUser, true)

	rec := s.request(zone.ZoneApp, sessionID)

	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *ZoneGateSuite) TestAuthenticatedAuthRequestRedirectsToApp() {
	sessionID := s.login(identity.RoleUser, true)

	rec := s.request(zone.ZoneAuth, sessionID)

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/", rec.Header().Get("Location"))
}

func (s *ZoneGateSuite) TestNonAdminRedirectedOutOfAdminZone() {
	sessionID := s.login(identity.RoleUser, true)

	rec := s.request(zone.ZoneAdmin, sessionID)

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/", rec.Header().Get("Location"))
	s.NotEmpty(s.audit.ByAction(audit.ActionZoneRedirected))
}

func (s *ZoneGateSuite) TestAdminAllowedIntoAdminZone() {
	sessionID := s.login(identity.RoleAdmin, true)

	rec := s.request(zone.ZoneAdmin, sessionID)

	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *ZoneGateSuite) TestStaleCookieForDeletedUserGatesAsAnonymous() {
	sessionID := s.login(identity.RoleUser, true)
	// Delete the account after the session was established.
	webSession, err := s.sessions.Current(context.Background(), sessionID)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Delete(context.Background(), webSession.UserID))

	rec := s.request(zone.ZoneApp, sessionID)

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login", rec.Header().Get("Location"))
}

func (s *ZoneGateSuite) TestIdentityInjectedForAllowedRequests() {
	sessionID := s.login(identity.RoleUser, false)

	var gotIdentity *identity.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = requestcontext.Identity(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := s.gate.Require(zone.ZoneOnboarding)(next)

	req := httptest.NewRequest(http.MethodGet, "/onboarding", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Require().NotNil(gotIdentity)
	s.Equal(identity.RoleUser, gotIdentity.Role)
	s.False(gotIdentity.OnboardingCompleted)
}
