package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

func createPublication(t *testing.T, names ...string) *entities.Publication {
	t.Helper()
	dir := t.TempDir()
	pub := &entities.Publication{
		Coordinates: entities.Coordinates{Group: "com.hivemq", Artifact: "sdk", Version: "1.0.0"},
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(name), 0600); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
		pub.Add(&entities.Artifact{Name: name, Path: path})
	}
	return pub
}

func TestValidatePublication(t *testing.T) {
	complete := []string{"sdk-1.0.0.jar", "sdk-1.0.0-sources.jar", "sdk-1.0.0-javadoc.jar", "sdk-1.0.0.pom"}
	signatures := []string{"sdk-1.0.0.jar.asc", "sdk-1.0.0-sources.jar.asc", "sdk-1.0.0-javadoc.jar.asc", "sdk-1.0.0.pom.asc"}

	tests := []struct {
		name              string
		files             []string
		requireSignatures bool
		expectedStatus    PublicationStatus
		expectedMissing   int
	}{
		{
			name:           "unsigned publication - ready",
			files:          complete,
			expectedStatus: StatusReady,
		},
		{
			name:              "signed publication - ready",
			files:             append(append([]string{}, complete...), signatures...),
			requireSignatures: true,
			expectedStatus:    StatusReady,
		},
		{
			name:            "no artifacts",
			files:           nil,
			expectedStatus:  StatusNoArtifacts,
			expectedMissing: 4,
		},
		{
			name:            "javadoc jar missing",
			files:           []string{"sdk-1.0.0.jar", "sdk-1.0.0-sources.jar", "sdk-1.0.0.pom"},
			expectedStatus:  StatusMissingArtifacts,
			expectedMissing: 1,
		},
		{
			name:              "signatures required but absent",
			files:             complete,
			requireSignatures: true,
			expectedStatus:    StatusMissingSignatures,
		},
	}

	service := NewPublicationService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validation := service.ValidatePublication(createPublication(t, tt.files...), tt.requireSignatures)

			if validation.Status != tt.expectedStatus {
				t.Errorf("Status = %s, want %s (%s)", validation.Status, tt.expectedStatus, validation.ErrorMessage())
			}
			if len(validation.Missing) != tt.expectedMissing {
				t.Errorf("Missing = %v, want %d entries", validation.Missing, tt.expectedMissing)
			}
			if validation.IsReady() != (tt.expectedStatus == StatusReady) {
				t.Errorf("IsReady() = %v", validation.IsReady())
			}
			if validation.IsReady() && validation.ErrorMessage() != "" {
				t.Errorf("ready publication has error message %q", validation.ErrorMessage())
			}
		})
	}
}
