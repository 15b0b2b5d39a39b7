// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// StagingRepository is a remote repository that holds uploaded artifacts until it is released
type StagingRepository struct {
	ID          string
	ProfileID   string
	Description string
	State       string // "open", "closed", "released"
}

// PublishReceipt describes what a publish sequence uploaded
type PublishReceipt struct {
	RepositoryID string
	Snapshot     bool
	Released     bool
	Uploaded     []string // repository-relative paths
}

// RepositoryGateway uploads a complete publication to a remote Maven repository
type RepositoryGateway interface {
	// Publish uploads every artifact of the publication and promotes it.
	// On failure nothing is left released: an opened staging repository is dropped.
	Publish(ctx context.Context, pub *entities.Publication, description string) (*PublishReceipt, error)
}
