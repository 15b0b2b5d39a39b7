package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hivemq/sdkpub/internal/domain/entities"
	domainServices "github.com/hivemq/sdkpub/internal/domain/interfaces/services"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)

// MetadataValidationService checks descriptor values that end up in manifests and POMs
type MetadataValidationService struct{}

// NewMetadataValidationService creates a new metadata validation service
func NewMetadataValidationService() *MetadataValidationService {
	return &MetadataValidationService{}
}

// IsValidEmail reports whether s has the shape of an email address
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateProject returns every violation found in a single descriptor
func (s *MetadataValidationService) ValidateProject(project *entities.Project) []domainServices.MetadataViolation {
	var violations []domainServices.MetadataViolation
	add := func(field, format string, args ...interface{}) {
		violations = append(violations, domainServices.MetadataViolation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if project.Coordinates.Group == "" {
		add("group", "group is required")
	}
	if project.Coordinates.Artifact == "" {
		add("name", "artifact name is required")
	}
	if project.Coordinates.Version == "" {
		add("version", "version is required")
	}
	if strings.TrimSpace(project.Description) == "" {
		add("description", "description is required")
	}
	if project.Metadata.ReadableName == "" {
		add("metadata.readable_name", "readable name is required")
	}
	if project.Metadata.Organization.Name == "" {
		add("metadata.organization.name", "organization name is required for Implementation-Vendor")
	}
	if project.Metadata.License.ID == "" {
		add("metadata.license", "license is required")
	}
	if len(project.Metadata.Developers) == 0 {
		add("metadata.developers", "at least one developer is required")
	}

	seen := make(map[string]bool)
	for i, dev := range project.Metadata.Developers {
		field := fmt.Sprintf("metadata.developers[%d]", i)
		if dev.ID == "" {
			add(field+".id", "developer id is required")
		} else if seen[dev.ID] {
			add(field+".id", "duplicate developer id %s", dev.ID)
		}
		seen[dev.ID] = true

		if strings.TrimSpace(dev.FullName) == "" {
			add(field+".full_name", "developer %s has no full name", dev.ID)
		}
		if !IsValidEmail(dev.Email) {
			add(field+".email", "developer %s has an invalid email %q", dev.ID, dev.Email)
		}
	}

	if project.Metadata.GitHub.Issues && project.Metadata.GitHub.Slug() == "" {
		add("metadata.github", "issue tracker linkage requires a GitHub repository")
	}

	return violations
}

// CompareVariants reports drift between descriptor variants of the same pipeline.
// Group and description must be identical across all variants.
func (s *MetadataValidationService) CompareVariants(projects []*entities.Project) []domainServices.MetadataViolation {
	if len(projects) < 2 {
		return nil
	}

	var violations []domainServices.MetadataViolation
	reference := projects[0]
	for _, p := range projects[1:] {
		if p.Coordinates.Group != reference.Coordinates.Group {
			violations = append(violations, domainServices.MetadataViolation{
				Field: "group",
				Message: fmt.Sprintf("variant %s declares group %q, variant %s declares %q",
					p.Variant, p.Coordinates.Group, reference.Variant, reference.Coordinates.Group),
			})
		}
		if p.Description != reference.Description {
			violations = append(violations, domainServices.MetadataViolation{
				Field:   "description",
				Message: fmt.Sprintf("variant %s description differs from variant %s", p.Variant, reference.Variant),
			})
		}
		if p.Coordinates.Artifact != reference.Coordinates.Artifact {
			violations = append(violations, domainServices.MetadataViolation{
				Field:   "name",
				Message: fmt.Sprintf("variant %s publishes %s, variant %s publishes %s", p.Variant, p.Coordinates.Artifact, reference.Variant, reference.Coordinates.Artifact),
			})
		}
	}

	return violations
}
