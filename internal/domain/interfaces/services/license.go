// Package services defines interfaces for domain service contracts.
package services

import "github.com/hivemq/sdkpub/internal/domain/entities"

// HeaderMismatch is a source file that does not start with the configured license header
type HeaderMismatch struct {
	Path   string
	Reason string
}

// LicenseReport is the outcome of a license header check
type LicenseReport struct {
	Checked    int
	Mismatches []HeaderMismatch
	// MissingHeader is set when no header text is configured; every file is then a mismatch
	MissingHeader bool
}

// Passed reports whether every checked file carries the header
func (r *LicenseReport) Passed() bool {
	return r != nil && !r.MissingHeader && len(r.Mismatches) == 0
}

// LicenseService checks and fixes license headers
type LicenseService interface {
	Check(project *entities.Project) (*LicenseReport, error)
	Format(project *entities.Project) ([]string, error)
}

// MetadataViolation is a descriptor value that would produce an invalid publication
type MetadataViolation struct {
	Field   string
	Message string
}

// MetadataService validates descriptor content
type MetadataService interface {
	ValidateProject(project *entities.Project) []MetadataViolation
	CompareVariants(projects []*entities.Project) []MetadataViolation
}
