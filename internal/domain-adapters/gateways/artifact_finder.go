package gateways

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/hivemq/sdkpub/internal/domain/entities"
	"github.com/hivemq/sdkpub/internal/domain/services"
)

// Output subdirectories written by the package stage
const (
	LibsDir         = "libs"
	PublicationsDir = "publications"
)

// ArtifactFinder locates a previously built publication on disk
type ArtifactFinder struct{}

// NewArtifactFinder creates a new artifact finder
func NewArtifactFinder() *ArtifactFinder {
	return &ArtifactFinder{}
}

// FindPublication collects every file named <artifact>-<version>[-classifier].<ext> in the libs and
// publications directories below outputDir, including signatures and checksum sidecars
func (f *ArtifactFinder) FindPublication(outputDir string, coords entities.Coordinates) (*entities.Publication, error) {
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("output directory does not exist: %s", outputDir)
	}

	prefix := fmt.Sprintf("%s-%s", coords.Artifact, coords.Version)
	pub := &entities.Publication{Coordinates: coords}

	var paths []string
	for _, sub := range []string{LibsDir, PublicationsDir} {
		matches, err := filepath.Glob(filepath.Join(outputDir, sub, prefix+"*"))
		if err != nil {
			return nil, fmt.Errorf("failed to glob %s: %w", sub, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if artifact, ok := classifyArtifact(filepath.Base(path), prefix, coords.Version); ok {
			artifact.Path = path
			pub.Add(artifact)
		}
	}

	if len(pub.Artifacts) == 0 {
		return nil, fmt.Errorf("no artifacts for %s in %s", coords, outputDir)
	}
	return pub, nil
}

// classifyArtifact derives classifier, extension and type from a file name
func classifyArtifact(name, prefix, version string) (*entities.Artifact, bool) {
	rest := strings.TrimPrefix(name, prefix)
	classifier := ""
	if strings.HasPrefix(rest, "-") {
		dot := strings.Index(rest, ".")
		if dot < 0 {
			return nil, false
		}
		classifier, rest = rest[1:dot], rest[dot:]
	}
	if !strings.HasPrefix(rest, ".") {
		return nil, false
	}
	extension := rest[1:]

	a := &entities.Artifact{Name: name, Version: version, Classifier: classifier, Extension: extension}
	base, suffix := extension, ""
	if i := strings.Index(extension, "."); i >= 0 {
		base, suffix = extension[:i], extension[i+1:]
	}

	if base != "jar" && base != "pom" {
		return nil, false
	}

	switch {
	case suffix == "asc":
		a.Type = entities.ArtifactTypeSignature
	case slices.Contains(services.ChecksumAlgorithms, suffix):
		a.Type = entities.ArtifactTypeChecksum
	case suffix != "":
		return nil, false
	case base == "pom" && classifier == "":
		a.Type = entities.ArtifactTypePOM
	case base == "pom":
		return nil, false
	case classifier == "":
		a.Type = entities.ArtifactTypeBinary
	case classifier == "sources":
		a.Type = entities.ArtifactTypeSources
	case classifier == "javadoc":
		a.Type = entities.ArtifactTypeJavadoc
	default:
		return nil, false
	}
	return a, true
}
