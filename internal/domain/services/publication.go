package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// PublicationStatus represents the readiness of a publication for upload
type PublicationStatus string

// Publication validation statuses
const (
	StatusReady             PublicationStatus = "ready"
	StatusNoArtifacts       PublicationStatus = "no_artifacts"
	StatusMissingArtifacts  PublicationStatus = "missing_artifacts"
	StatusMissingSignatures PublicationStatus = "missing_signatures"
)

// requiredArtifacts lists the classifier/extension pairs every release carries
var requiredArtifacts = []struct {
	classifier string
	extension  string
}{
	{"", "jar"},
	{"sources", "jar"},
	{"javadoc", "jar"},
	{"", "pom"},
}

// PublicationValidation contains the validation result for a publication
type PublicationValidation struct {
	Status            PublicationStatus
	Expected          []string
	Missing           []string
	MissingSignatures []string
}

// IsReady returns true if the publication can be uploaded
func (v *PublicationValidation) IsReady() bool {
	return v.Status == StatusReady
}

// ErrorMessage returns a human-readable error message if not ready
func (v *PublicationValidation) ErrorMessage() string {
	switch v.Status {
	case StatusReady:
		return ""
	case StatusNoArtifacts:
		return fmt.Sprintf("No artifacts found (expected: %d files)", len(v.Expected))
	case StatusMissingArtifacts:
		return fmt.Sprintf("Missing artifacts: %s", strings.Join(v.Missing, ", "))
	case StatusMissingSignatures:
		return fmt.Sprintf("Missing signatures: %s", strings.Join(v.MissingSignatures, ", "))
	default:
		return "Unknown status"
	}
}

// PublicationService decides whether a set of artifacts forms a complete publication
type PublicationService struct{}

// NewPublicationService creates a new publication service
func NewPublicationService() *PublicationService {
	return &PublicationService{}
}

// ValidatePublication checks that the main jar, sources jar, javadoc jar and POM exist on disk
// and, when signatures are required, that each of them has a detached signature.
func (s *PublicationService) ValidatePublication(pub *entities.Publication, requireSignatures bool) *PublicationValidation {
	validation := &PublicationValidation{}

	present := make(map[string]bool)
	for _, a := range pub.Artifacts {
		if _, err := os.Stat(a.Path); err == nil {
			present[a.Name] = true
		}
	}

	for _, r := range requiredArtifacts {
		name := pub.Coordinates.FileName(r.classifier, r.extension)
		validation.Expected = append(validation.Expected, name)
		if !present[name] {
			validation.Missing = append(validation.Missing, name)
			continue
		}
		if requireSignatures && !present[name+".asc"] {
			validation.MissingSignatures = append(validation.MissingSignatures, name)
		}
	}

	switch {
	case len(present) == 0:
		validation.Status = StatusNoArtifacts
	case len(validation.Missing) > 0:
		validation.Status = StatusMissingArtifacts
	case len(validation.MissingSignatures) > 0:
		validation.Status = StatusMissingSignatures
	default:
		validation.Status = StatusReady
	}

	return validation
}
