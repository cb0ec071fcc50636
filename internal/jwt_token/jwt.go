// Package jwttoken issues and verifies the signed credentials backing both
// client surfaces. Access and refresh tokens share one HS256 signing secret
// and are disambiguated by an embedded purpose tag: the verifier for one
// purpose must reject the other so a long-lived refresh token can never be
// replayed as an access token.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"zonegate/internal/identity"
	dErrors "zonegate/pkg/domain-errors"
)

const (
	// AccessTokenTTL bounds the life of an access token. Expiry is an
	// absolute timestamp checked at verification time; there is no
	// server-side revocation in the base design.
	AccessTokenTTL = 7 * 24 * time.Hour

	// RefreshTokenTTL bounds the life of a refresh token.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// PurposeRefresh marks refresh-token claims. Access tokens carry no
	// purpose tag.
	PurposeRefresh = "refresh"
)

// Claims represents the JWT claims for our tokens. Access tokens populate the
// identity fields; refresh tokens carry only UserID plus the purpose tag.
type Claims struct {
	UserID              string `json:"user_id"`
	Email               string `json:"email,omitempty"`
	Role                string `json:"role,omitempty"`
	OnboardingCompleted bool   `json:"onboarding_completed,omitempty"`
	Purpose             string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Service handles JWT creation and validation. The signing secret is injected
// at construction so tests can substitute secrets without process-wide state.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	clock      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a token service. An empty signing key is a configuration
// fault: the process must refuse to start rather than sign with a default.
func New(signingKey string, issuer string, audience string, opts ...Option) (*Service, error) {
	if signingKey == "" {
		return nil, errors.New("jwt signing key is required")
	}
	s := &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		clock:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// IssueAccessToken embeds an identity snapshot into a signed access token.
func (s *Service) IssueAccessToken(ident *identity.Identity) (string, error) {
	if ident == nil {
		return "", dErrors.New(dErrors.CodeBadRequest, "identity is required")
	}
	now := s.clock()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:              ident.ID.String(),
		Email:               ident.Email,
		Role:                string(ident.Role),
		OnboardingCompleted: ident.OnboardingCompleted,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// IssueRefreshToken mints a narrow-privilege token usable only to obtain a
// fresh access token.
func (s *Service) IssueRefreshToken(userID uuid.UUID) (string, error) {
	now := s.clock()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:  userID.String(),
		Purpose: PurposeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// VerifyAccessToken checks signature, expiry, and claim shape. Refresh-shaped
// claims are rejected here even when the signature verifies.
func (s *Service) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose == PurposeRefresh {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

// VerifyRefreshToken accepts only refresh-purpose claims and returns the
// embedded user ID.
func (s *Service) VerifyRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.Purpose != PurposeRefresh {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return userID, nil
}

func (s *Service) parse(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.clock))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	return claims, nil
}
