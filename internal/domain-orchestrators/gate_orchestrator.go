package orchestrators

import (
	"context"
	"fmt"
	"time"

	"github.com/hivemq/sdkpub/internal/domain"
	"github.com/hivemq/sdkpub/internal/domain/entities"
	domainServices "github.com/hivemq/sdkpub/internal/domain/interfaces/services"
	"github.com/hivemq/sdkpub/internal/domain/services"
)

// GateOrchestrator decides whether a packaged publication may be released
type GateOrchestrator struct {
	license      domainServices.LicenseService
	metadata     domainServices.MetadataService
	publications *services.PublicationService
}

// NewGateOrchestrator creates a new release gate orchestrator
func NewGateOrchestrator(license domainServices.LicenseService, metadata domainServices.MetadataService) *GateOrchestrator {
	return &GateOrchestrator{
		license:      license,
		metadata:     metadata,
		publications: services.NewPublicationService(),
	}
}

// GateResult contains the findings of the release gate
type GateResult struct {
	LicenseReport *domainServices.LicenseReport
	Violations    []domainServices.MetadataViolation
	Publication   *services.PublicationValidation
	Duration      time.Duration
	Blocked       bool
	BlockReason   string
	cause         error
}

// Err returns the classified reason the gate blocked, or nil
func (r *GateResult) Err() error {
	if !r.Blocked {
		return nil
	}
	return fmt.Errorf("%w: %s", r.cause, r.BlockReason)
}

// PerformGate checks license headers, metadata and publication completeness.
// Header and metadata findings only block when releasing; outside a release they are reported.
func (o *GateOrchestrator) PerformGate(_ context.Context, project *entities.Project, pub *entities.Publication, releasing bool) (*GateResult, error) {
	startTime := time.Now()
	result := &GateResult{}

	// Step 1: License headers
	report, err := o.license.Check(project)
	if err != nil {
		return nil, fmt.Errorf("license header check failed: %w", err)
	}
	result.LicenseReport = report

	// Step 2: Metadata that ends up in the POM
	result.Violations = o.metadata.ValidateProject(project)

	// Step 3: Every publication file was produced
	result.Publication = o.publications.ValidatePublication(pub, false)

	switch {
	case !result.Publication.IsReady():
		result.block(domain.ErrPackage, result.Publication.ErrorMessage())
	case releasing && report.MissingHeader:
		result.block(domain.ErrLicenseHeaderMismatch, "no license header configured")
	case releasing && !report.Passed():
		result.block(domain.ErrLicenseHeaderMismatch, fmt.Sprintf("%d of %d source files lack the license header", len(report.Mismatches), report.Checked))
	case releasing && len(result.Violations) > 0:
		result.block(domain.ErrInvalidMetadata, fmt.Sprintf("%d metadata violations, first: %s", len(result.Violations), result.Violations[0].Message))
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

func (r *GateResult) block(cause error, reason string) {
	r.Blocked = true
	r.BlockReason = reason
	r.cause = cause
}

// GetGateSummary generates a human-readable gate summary
func (o *GateOrchestrator) GetGateSummary(result *GateResult) string {
	return result.Summary()
}

// Summary returns a human-readable gate summary
func (r *GateResult) Summary() string {
	if r.Blocked {
		return fmt.Sprintf("🚫 BLOCKED: %s", r.BlockReason)
	}

	summary := fmt.Sprintf("✅ PASSED: %d source files carry the license header\n", r.LicenseReport.Checked)
	switch n := len(r.LicenseReport.Mismatches); {
	case r.LicenseReport.MissingHeader:
		summary = fmt.Sprintf("⚠️  PASSED without a license header (%d source files unchecked)\n", r.LicenseReport.Checked)
	case n > 0:
		summary = fmt.Sprintf("⚠️  PASSED with %d license header mismatches\n", n)
	}
	if len(r.Violations) > 0 {
		summary += fmt.Sprintf("   Metadata warnings: %d\n", len(r.Violations))
	}
	summary += fmt.Sprintf("   Publication: %d files\n", len(r.Publication.Expected))
	summary += fmt.Sprintf("   Duration: %v", r.Duration)

	return summary
}
