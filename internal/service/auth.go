// Package service provides authentication business logic,
// delegating identity lookup to an IdentityRepository.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/codemonkey/internal/models"
	"github.com/atinyakov/codemonkey/internal/repository"
)

// ErrInvalidCredentials is the only verification failure surfaced to callers.
// Unknown handles and wrong secrets are not distinguished.
var ErrInvalidCredentials = errors.New("invalid username or password")

// IdentityRepository defines the lookup operation
// required by the authentication service.
type IdentityRepository interface {
	// Verify returns the identity for handle if secret matches exactly.
	// It returns repository.ErrNotFound otherwise.
	Verify(ctx context.Context, handle, secret string) (models.Identity, error)
}

// Service implements authentication operations by delegating
// to an IdentityRepository.
type Service struct {
	// repo performs the data-layer operations.
	repo IdentityRepository
}

// NewAuthService constructs a new Service using the provided repository.
func NewAuthService(repo IdentityRepository) *Service {
	return &Service{repo: repo}
}

// Verify answers whether handle/secret identify a known user.
// It has no side effects.
func (s *Service) Verify(ctx context.Context, handle, secret string) (models.Identity, error) {
	id, err := s.repo.Verify(ctx, handle, secret)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("verify identity: %w", err)
	}
	return id, nil
}
