// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// ProjectRepository defines the interface for loading project descriptors
type ProjectRepository interface {
	// GetProject loads a descriptor variant by name (file name without extension)
	GetProject(ctx context.Context, name string) (*entities.Project, error)

	// ListProjects loads every descriptor variant in the repository
	ListProjects(ctx context.Context) ([]*entities.Project, error)
}
