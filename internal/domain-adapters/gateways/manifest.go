package gateways

import (
	"strings"
	"unicode/utf8"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

const manifestLineLength = 72

// ManifestAttribute is one main-section entry of a jar manifest
type ManifestAttribute struct {
	Name  string
	Value string
}

// ManifestAttributes returns the attributes stamped into every jar of the project
func ManifestAttributes(project *entities.Project) []ManifestAttribute {
	return []ManifestAttribute{
		{"Manifest-Version", "1.0"},
		{"Implementation-Title", project.Name},
		{"Implementation-Vendor", project.Metadata.Organization.Name},
		{"Implementation-Version", project.Coordinates.Version},
	}
}

// RenderManifest renders attributes in the jar manifest format: CRLF line endings and
// lines of at most 72 bytes, continued on the next line after a single space.
func RenderManifest(attrs []ManifestAttribute) []byte {
	var b strings.Builder
	for _, attr := range attrs {
		writeManifestLine(&b, attr.Name+": "+attr.Value)
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}

func writeManifestLine(b *strings.Builder, line string) {
	limit := manifestLineLength
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = manifestLineLength - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}
