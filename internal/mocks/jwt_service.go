package mocks

import (
	"context"
	"time"

	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	// Function fields for customizable behavior
	ExtractSubjectFn func(tokenString string) (string, error)
	ExtractKindFn    func(tokenString string) (domain.TokenKind, error)
	VerifyBindingFn  func(tokenString string, user *domain.User) bool

	// Default values used when functions aren't explicitly defined
	Subject    string
	SubjectErr error
	Kind       domain.TokenKind
	KindErr    error
	Binding    bool

	Token        string
	RefreshToken string
	GenerateErr  error
	Claims       *auth.Claims
	ValidateErr  error
}

// Ensure MockJWTService implements auth.JWTService
var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface.
func (m *MockJWTService) GenerateToken(ctx context.Context, user *domain.User) (string, error) {
	return m.Token, m.GenerateErr
}

// GenerateRefreshToken implements the auth.JWTService interface.
func (m *MockJWTService) GenerateRefreshToken(
	ctx context.Context,
	user *domain.User,
) (string, error) {
	return m.RefreshToken, m.GenerateErr
}

// ExtractSubject implements the auth.JWTService interface.
func (m *MockJWTService) ExtractSubject(tokenString string) (string, error) {
	if m.ExtractSubjectFn != nil {
		return m.ExtractSubjectFn(tokenString)
	}
	return m.Subject, m.SubjectErr
}

// ExtractKind implements the auth.JWTService interface.
func (m *MockJWTService) ExtractKind(tokenString string) (domain.TokenKind, error) {
	if m.ExtractKindFn != nil {
		return m.ExtractKindFn(tokenString)
	}
	return m.Kind, m.KindErr
}

// VerifyBinding implements the auth.JWTService interface.
func (m *MockJWTService) VerifyBinding(tokenString string, user *domain.User) bool {
	if m.VerifyBindingFn != nil {
		return m.VerifyBindingFn(tokenString, user)
	}
	return m.Binding
}

// ValidateRefreshToken implements the auth.JWTService interface.
func (m *MockJWTService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	return m.Claims, m.ValidateErr
}

// AccessTokenLifetime implements the auth.JWTService interface.
func (m *MockJWTService) AccessTokenLifetime() time.Duration {
	return time.Hour
}

// RefreshTokenLifetime implements the auth.JWTService interface.
func (m *MockJWTService) RefreshTokenLifetime() time.Duration {
	return 24 * time.Hour
}
