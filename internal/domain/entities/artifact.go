// Package entities defines core domain models and data structures.
package entities

// Artifact types produced by the pipeline
const (
	ArtifactTypeBinary    = "binary"
	ArtifactTypeSources   = "sources"
	ArtifactTypeJavadoc   = "javadoc"
	ArtifactTypePOM       = "pom"
	ArtifactTypeSignature = "signature"
	ArtifactTypeChecksum  = "checksum"
)

// Artifact represents a file produced by a build and published under the project coordinates
type Artifact struct {
	Name       string // file name, e.g. "sdk-1.0.0-sources.jar"
	Version    string
	Classifier string // "", "sources", "javadoc"
	Extension  string // "jar", "pom", "jar.asc", "pom.sha1", ...
	Path       string
	Type       string
}

// IsSignable reports whether the artifact must carry a detached signature when published
func (a *Artifact) IsSignable() bool {
	switch a.Type {
	case ArtifactTypeBinary, ArtifactTypeSources, ArtifactTypeJavadoc, ArtifactTypePOM:
		return true
	default:
		return false
	}
}

// Publication groups every artifact that is uploaded for one set of coordinates
type Publication struct {
	Coordinates Coordinates
	Artifacts   []*Artifact
}

// ByType returns the artifacts of the given type
func (p *Publication) ByType(artifactType string) []*Artifact {
	var out []*Artifact
	for _, a := range p.Artifacts {
		if a.Type == artifactType {
			out = append(out, a)
		}
	}
	return out
}

// Signable returns the artifacts that need a detached signature
func (p *Publication) Signable() []*Artifact {
	var out []*Artifact
	for _, a := range p.Artifacts {
		if a.IsSignable() {
			out = append(out, a)
		}
	}
	return out
}

// Add appends artifacts to the publication
func (p *Publication) Add(artifacts ...*Artifact) {
	p.Artifacts = append(p.Artifacts, artifacts...)
}
