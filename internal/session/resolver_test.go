package session_test

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks TokenVerifier

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"zonegate/internal/identity"
	identitystore "zonegate/internal/identity/store"
	"zonegate/internal/jwt_token"
	"zonegate/internal/session"
	"zonegate/internal/session/mocks"
	"zonegate/internal/session/revocation"
	sessionstore "zonegate/internal/session/store"
)

type ResolverSuite struct {
	suite.Suite
	users    *identitystore.InMemoryStore
	sessions *sessionstore.InMemoryStore
	tokens   *jwttoken.Service
	resolver *session.Resolver
}

func (s *ResolverSuite) SetupTest() {
	s.users = identitystore.NewInMemory()
	s.sessions = sessionstore.NewInMemory()

	tokens, err := jwttoken.New("test-signing-key", "test-issuer", "test-audience")
	s.Require().NoError(err)
	s.tokens = tokens

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.resolver = session.NewResolver(jwttoken.NewServiceAdapter(tokens), s.users, s.sessions, logger)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) seedUser() *identity.Identity {
	ident := &identity.Identity{
		ID:                  uuid.New(),
		Email:               "user@example.com",
		Role:                identity.RoleUser,
		OnboardingCompleted: true,
	}
	s.Require().NoError(s.users.Save(context.Background(), ident))
	return ident
}

func (s *ResolverSuite) TestResolveBearer() {
	s.Run("missing header resolves to missing credential", func() {
		res, err := s.resolver.ResolveBearer(context.Background(), "")
		s.Require().NoError(err)
		s.Equal(session.OutcomeMissingCredential, res.Outcome)
	})

	s.Run("malformed prefix resolves to missing credential without store lookup", func() {
		res, err := s.resolver.ResolveBearer(context.Background(), "Token abc123")
		s.Require().NoError(err)
		s.Equal(session.OutcomeMissingCredential, res.Outcome)
	})

	s.Run("invalid token resolves to unauthenticated", func() {
		res, err := s.resolver.ResolveBearer(context.Background(), "Bearer not-a-real-token")
		s.Require().NoError(err)
		s.Equal(session.OutcomeUnauthenticated, res.Outcome)
		s.Nil(res.Identity)
	})

	s.Run("valid token for deleted user resolves to user not found", func() {
		ident := s.seedUser()
		token, err := s.tokens.IssueAccessToken(ident)
		s.Require().NoError(err)
		s.Require().NoError(s.users.Delete(context.Background(), ident.ID))

		res, err := s.resolver.ResolveBearer(context.Background(), "Bearer "+token)
		s.Require().NoError(err)
		s.Equal(session.OutcomeUserNotFound, res.Outcome)
	})

	s.Run("valid token resolves to identity snapshot", func() {
		ident := s.seedUser()
		token, err := s.tokens.IssueAccessToken(ident)
		s.Require().NoError(err)

		res, err := s.resolver.ResolveBearer(context.Background(), "Bearer "+token)
		s.Require().NoError(err)
		s.True(res.Authenticated())
		s.Equal(ident, res.Identity)
	})

	s.Run("refresh token is rejected on the access path", func() {
		ident := s.seedUser()
		refresh, err := s.tokens.IssueRefreshToken(ident.ID)
		s.Require().NoError(err)

		res, err := s.resolver.ResolveBearer(context.Background(), "Bearer "+refresh)
		s.Require().NoError(err)
		s.Equal(session.OutcomeUnauthenticated, res.Outcome)
	})
}

func (s *ResolverSuite) TestResolveBearer_Denylist() {
	ident := s.seedUser()
	token, err := s.tokens.IssueAccessToken(ident)
	s.Require().NoError(err)

	denylist := revocation.NewInMemory()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	resolver := session.NewResolver(
		jwttoken.NewServiceAdapter(s.tokens), s.users, s.sessions, logger,
		session.WithDenylist(denylist),
	)

	s.Run("revoked user resolves to unauthenticated despite valid token", func() {
		s.Require().NoError(denylist.Revoke(context.Background(), ident.ID.String(), time.Hour))

		res, err := resolver.ResolveBearer(context.Background(), "Bearer "+token)
		s.Require().NoError(err)
		s.Equal(session.OutcomeUnauthenticated, res.Outcome)
	})
}

func (s *ResolverSuite) TestResolveWeb() {
	s.Run("empty session id resolves to missing credential", func() {
		res, err := s.resolver.ResolveWeb(context.Background(), "")
		s.Require().NoError(err)
		s.Equal(session.OutcomeMissingCredential, res.Outcome)
	})

	s.Run("unknown session resolves to unauthenticated", func() {
		res, err := s.resolver.ResolveWeb(context.Background(), "sess-unknown")
		s.Require().NoError(err)
		s.Equal(session.OutcomeUnauthenticated, res.Outcome)
	})

	s.Run("expired session resolves to unauthenticated", func() {
		ident := s.seedUser()
		s.Require().NoError(s.sessions.Save(context.Background(), &sessionstore.WebSession{
			ID:        "sess-expired",
			UserID:    ident.ID,
			CreatedAt: time.Now().Add(-48 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}))

		res, err := s.resolver.ResolveWeb(context.Background(), "sess-expired")
		s.Require().NoError(err)
		s.Equal(session.OutcomeUnauthenticated, res.Outcome)
	})

	s.Run("live session resolves to identity snapshot", func() {
		ident := s.seedUser()
		s.Require().NoError(s.sessions.Save(context.Background(), &sessionstore.WebSession{
			ID:        "sess-live",
			UserID:    ident.ID,
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}))

		res, err := s.resolver.ResolveWeb(context.Background(), "sess-live")
		s.Require().NoError(err)
		s.True(res.Authenticated())
		s.Equal(ident, res.Identity)
	})

	s.Run("session for deleted user resolves to user not found", func() {
		ident := s.seedUser()
		s.Require().NoError(s.sessions.Save(context.Background(), &sessionstore.WebSession{
			ID:        "sess-orphan",
			UserID:    ident.ID,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}))
		s.Require().NoError(s.users.Delete(context.Background(), ident.ID))

		res, err := s.resolver.ResolveWeb(context.Background(), "sess-orphan")
		s.Require().NoError(err)
		s.Equal(session.OutcomeUserNotFound, res.Outcome)
	})
}

func (s *ResolverSuite) TestResolveBearer_MalformedClaimUserID() {
	ctrl := gomock.NewController(s.T())
	defer ctrl.Finish()

	verifier := mocks.NewMockTokenVerifier(ctrl)
	verifier.EXPECT().VerifyAccessToken("opaque").Return(&session.Claims{UserID: "not-a-uuid"}, nil)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	resolver := session.NewResolver(verifier, s.users, s.sessions, logger)

	res, err := resolver.ResolveBearer(context.Background(), "Bearer opaque")
	s.Require().NoError(err)
	s.Equal(session.OutcomeUnauthenticated, res.Outcome)
}

type failingUserStore struct{}

func (failingUserStore) FindByID(context.Context, uuid.UUID) (*identity.Identity, error) {
	return nil, errors.New("connection reset")
}

func (s *ResolverSuite) TestResolveBearer_StoreFaultSurfacesAsError() {
	ident := s.seedUser()
	token, err := s.tokens.IssueAccessToken(ident)
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	resolver := session.NewResolver(jwttoken.NewServiceAdapter(s.tokens), failingUserStore{}, s.sessions, logger)

	_, err = resolver.ResolveBearer(context.Background(), "Bearer "+token)
	s.Require().Error(err)
}
