package jwttoken

import (
	"zonegate/internal/session"
)

// ToResolverClaims narrows verified token claims to the shape the session
// resolver consumes.
func ToResolverClaims(claims *Claims) *session.Claims {
	return &session.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}
}

// ServiceAdapter lets the session resolver depend on its own TokenVerifier
// interface instead of this package's concrete service.
type ServiceAdapter struct {
	service *Service
}

func NewServiceAdapter(service *Service) *ServiceAdapter {
	return &ServiceAdapter{service: service}
}

func (a *ServiceAdapter) VerifyAccessToken(tokenString string) (*session.Claims, error) {
	claims, err := a.service.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToResolverClaims(claims), nil
}
