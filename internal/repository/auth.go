// Package repository provides identity lookup implementations for authentication services.
package repository

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/atinyakov/codemonkey/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a handle/secret pair does not identify a known identity.
var ErrNotFound = errors.New("identity not found")

// StaticIdentityRepository answers verification requests from an immutable fixture table.
type StaticIdentityRepository struct {
	identities  []models.Identity
	credentials models.Credentials
}

// NewStaticIdentityRepository copies fx so later changes to the caller's
// slices and maps do not leak into the table.
func NewStaticIdentityRepository(fx models.Fixtures) *StaticIdentityRepository {
	ids := make([]models.Identity, len(fx.Identities))
	copy(ids, fx.Identities)
	creds := make(models.Credentials, len(fx.Credentials))
	for k, v := range fx.Credentials {
		creds[k] = v
	}
	return &StaticIdentityRepository{identities: ids, credentials: creds}
}

// Verify looks up handle in the identity list and succeeds only if the
// credential table holds exactly secret for it.
func (r *StaticIdentityRepository) Verify(_ context.Context, handle, secret string) (models.Identity, error) {
	for _, id := range r.identities {
		if id.Username != handle {
			continue
		}
		want, ok := r.credentials[handle]
		if !ok || want != secret {
			return models.Identity{}, ErrNotFound
		}
		return id, nil
	}
	return models.Identity{}, ErrNotFound
}

// Identities returns a copy of the identity list.
func (r *StaticIdentityRepository) Identities() []models.Identity {
	out := make([]models.Identity, len(r.identities))
	copy(out, r.identities)
	return out
}

// LoadFixtures reads an identity table from a YAML file of the form
//
//	identities:
//	  - id: "1"
//	    username: admin
//	    ...
//	credentials:
//	  admin: "12345"
func LoadFixtures(path string) (models.Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Fixtures{}, fmt.Errorf("read fixtures: %w", err)
	}
	var fx models.Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return models.Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	seen := make(map[string]struct{}, len(fx.Identities))
	for _, id := range fx.Identities {
		if !id.Valid() {
			return models.Fixtures{}, fmt.Errorf("fixture identity missing id or username: %+v", id)
		}
		if _, dup := seen[id.Username]; dup {
			return models.Fixtures{}, fmt.Errorf("duplicate username %q", id.Username)
		}
		seen[id.Username] = struct{}{}
	}
	return fx, nil
}
