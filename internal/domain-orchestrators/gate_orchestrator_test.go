package orchestrators

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hivemq/sdkpub/internal/domain"
	"github.com/hivemq/sdkpub/internal/domain/entities"
	domainServices "github.com/hivemq/sdkpub/internal/domain/interfaces/services"
)

// completePublication writes the four files every release carries
func completePublication(t *testing.T) *entities.Publication {
	t.Helper()
	dir := t.TempDir()
	pub := &entities.Publication{Coordinates: entities.Coordinates{Group: "com.hivemq", Artifact: "sdk", Version: "1.0.0"}}
	for _, f := range []struct{ classifier, ext string }{{"", "jar"}, {"sources", "jar"}, {"javadoc", "jar"}, {"", "pom"}} {
		name := pub.Coordinates.FileName(f.classifier, f.ext)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(name), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		pub.Add(&entities.Artifact{Name: name, Classifier: f.classifier, Extension: f.ext, Path: path})
	}
	return pub
}

func TestGateOrchestrator_PerformGate(t *testing.T) {
	mismatch := &domainServices.LicenseReport{
		Checked:    2,
		Mismatches: []domainServices.HeaderMismatch{{Path: "src/main/java/Foo.java"}},
	}
	noHeader := &domainServices.LicenseReport{
		Checked:       1,
		Mismatches:    []domainServices.HeaderMismatch{{Path: "src/main/java/Foo.java"}},
		MissingHeader: true,
	}
	violation := []domainServices.MetadataViolation{{Field: "metadata.license.url", Message: "license url is empty"}}

	tests := []struct {
		name        string
		incomplete  bool
		report      *domainServices.LicenseReport
		violations  []domainServices.MetadataViolation
		releasing   bool
		wantBlocked bool
		wantErr     error
		wantSummary string
	}{
		{
			name:        "missing publication files always block",
			incomplete:  true,
			report:      &domainServices.LicenseReport{Checked: 1},
			wantBlocked: true,
			wantErr:     domain.ErrPackage,
			wantSummary: "BLOCKED",
		},
		{
			name:        "clean release passes",
			report:      &domainServices.LicenseReport{Checked: 3},
			releasing:   true,
			wantSummary: "PASSED: 3 source files",
		},
		{
			name:        "header mismatch blocks a release",
			report:      mismatch,
			releasing:   true,
			wantBlocked: true,
			wantErr:     domain.ErrLicenseHeaderMismatch,
			wantSummary: "1 of 2 source files",
		},
		{
			name:        "header mismatch is reported outside a release",
			report:      mismatch,
			wantSummary: "PASSED with 1 license header mismatches",
		},
		{
			name:        "missing header blocks a release",
			report:      noHeader,
			releasing:   true,
			wantBlocked: true,
			wantErr:     domain.ErrLicenseHeaderMismatch,
			wantSummary: "no license header configured",
		},
		{
			name:        "missing header is reported outside a release",
			report:      noHeader,
			wantSummary: "PASSED without a license header",
		},
		{
			name:        "metadata violation blocks a release",
			report:      &domainServices.LicenseReport{Checked: 1},
			violations:  violation,
			releasing:   true,
			wantBlocked: true,
			wantErr:     domain.ErrInvalidMetadata,
			wantSummary: "license url is empty",
		},
		{
			name:        "metadata violation is reported outside a release",
			report:      &domainServices.LicenseReport{Checked: 1},
			violations:  violation,
			wantSummary: "Metadata warnings: 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := completePublication(t)
			if tt.incomplete {
				pub = &entities.Publication{Coordinates: pub.Coordinates}
			}
			gate := NewGateOrchestrator(&mockLicenseService{report: tt.report}, &mockMetadataService{violations: tt.violations})

			result, err := gate.PerformGate(context.Background(), &entities.Project{}, pub, tt.releasing)
			if err != nil {
				t.Fatalf("PerformGate failed: %v", err)
			}
			if result.Blocked != tt.wantBlocked {
				t.Errorf("Blocked = %v, want %v (%s)", result.Blocked, tt.wantBlocked, result.BlockReason)
			}
			if tt.wantErr != nil && !errors.Is(result.Err(), tt.wantErr) {
				t.Errorf("Err() = %v, want %v", result.Err(), tt.wantErr)
			}
			if tt.wantErr == nil && result.Err() != nil {
				t.Errorf("Err() = %v, want nil", result.Err())
			}
			if summary := gate.GetGateSummary(result); !strings.Contains(summary, tt.wantSummary) {
				t.Errorf("summary %q should contain %q", summary, tt.wantSummary)
			}
		})
	}
}

func TestGateOrchestrator_MetadataBlocksRelease(t *testing.T) {
	f := newPipelineFixture(t)
	f.metadata.violations = []domainServices.MetadataViolation{{Field: "metadata.developers[0].email", Message: "developer cp has an invalid email"}}

	if _, err := f.orchestrator().Run(context.Background(), f.project, PipelineConfig{}); err != nil {
		t.Fatalf("build must tolerate metadata warnings: %v", err)
	}

	f = newPipelineFixture(t)
	f.metadata.violations = []domainServices.MetadataViolation{{Field: "metadata.developers[0].email", Message: "developer cp has an invalid email"}}

	_, err := f.orchestrator().Run(context.Background(), f.project, releaseConfig)
	if !errors.Is(err, domain.ErrInvalidMetadata) {
		t.Fatalf("expected ErrInvalidMetadata, got %v", err)
	}
}
