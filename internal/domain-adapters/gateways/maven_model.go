package gateways

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// MavenPOM is the subset of a remote POM needed for dependency resolution
type MavenPOM struct {
	XMLName              xml.Name               `xml:"project"`
	GroupID              string                 `xml:"groupId"`
	ArtifactID           string                 `xml:"artifactId"`
	Version              string                 `xml:"version"`
	Packaging            string                 `xml:"packaging"`
	Parent               *MavenParent           `xml:"parent"`
	Properties           MavenProperties        `xml:"properties"`
	DependencyManagement MavenDependencySection `xml:"dependencyManagement"`
	Dependencies         []MavenDependency      `xml:"dependencies>dependency"`
}

// MavenParent references the parent POM
type MavenParent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// MavenDependencySection wraps dependencyManagement
type MavenDependencySection struct {
	Dependencies []MavenDependency `xml:"dependencies>dependency"`
}

// MavenDependency is one dependency or managed dependency entry
type MavenDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	Type       string `xml:"type"`
	Classifier string `xml:"classifier"`
	Optional   string `xml:"optional"`
}

// Key returns groupId:artifactId
func (d MavenDependency) Key() string {
	return d.GroupID + ":" + d.ArtifactID
}

// IsCompileScope reports whether the dependency is visible on a consumer's compile classpath
func (d MavenDependency) IsCompileScope() bool {
	return (d.Scope == "" || d.Scope == "compile") && d.Optional != "true" && d.Classifier == ""
}

// IsBOMImport reports whether the managed entry imports another BOM
func (d MavenDependency) IsBOMImport() bool {
	return d.Scope == "import" && d.Type == "pom"
}

// MavenProperties holds the free-form <properties> section
type MavenProperties map[string]string

// UnmarshalXML collects every child element of <properties>
func (p *MavenProperties) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	*p = MavenProperties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			return nil
		}
	}
}

// MavenMetadata is the maven-metadata.xml of an artifact
type MavenMetadata struct {
	XMLName    xml.Name `xml:"metadata"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

var propertyPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate replaces ${name} references with property values. Unknown references are kept.
func Interpolate(s string, props map[string]string) string {
	for i := 0; i < 10 && strings.Contains(s, "${"); i++ {
		next := propertyPattern.ReplaceAllStringFunc(s, func(ref string) string {
			if v, ok := props[ref[2:len(ref)-1]]; ok {
				return v
			}
			return ref
		})
		if next == s {
			break
		}
		s = next
	}
	return s
}

// EffectiveProperties returns the properties used for interpolation, including project.* values
func (p *MavenPOM) EffectiveProperties() map[string]string {
	props := make(map[string]string, len(p.Properties)+6)
	for k, v := range p.Properties {
		props[k] = v
	}
	props["project.groupId"] = p.GroupID
	props["project.artifactId"] = p.ArtifactID
	props["project.version"] = p.Version
	props["pom.groupId"] = p.GroupID
	props["pom.version"] = p.Version
	if p.Parent != nil {
		props["project.parent.version"] = p.Parent.Version
		props["project.parent.groupId"] = p.Parent.GroupID
	}
	return props
}

// inheritFrom merges a resolved parent into the POM. Child values win.
func (p *MavenPOM) inheritFrom(parent *MavenPOM) {
	if p.GroupID == "" {
		p.GroupID = parent.GroupID
	}
	if p.Version == "" {
		p.Version = parent.Version
	}
	if p.Properties == nil {
		p.Properties = MavenProperties{}
	}
	for k, v := range parent.Properties {
		if _, ok := p.Properties[k]; !ok {
			p.Properties[k] = v
		}
	}
	p.DependencyManagement.Dependencies = append(p.DependencyManagement.Dependencies, parent.DependencyManagement.Dependencies...)
	p.Dependencies = append(p.Dependencies, parent.Dependencies...)
}

// interpolate resolves property references in coordinates and dependency versions
func (p *MavenPOM) interpolate() {
	props := p.EffectiveProperties()
	resolve := func(deps []MavenDependency) {
		for i := range deps {
			deps[i].GroupID = Interpolate(deps[i].GroupID, props)
			deps[i].ArtifactID = Interpolate(deps[i].ArtifactID, props)
			deps[i].Version = Interpolate(deps[i].Version, props)
		}
	}
	resolve(p.DependencyManagement.Dependencies)
	resolve(p.Dependencies)
}

// ManagedVersions returns the versions pinned by dependencyManagement. The first entry for a key wins.
func (p *MavenPOM) ManagedVersions() map[string]string {
	managed := make(map[string]string)
	for _, d := range p.DependencyManagement.Dependencies {
		if d.IsBOMImport() || d.Version == "" {
			continue
		}
		if _, ok := managed[d.Key()]; !ok {
			managed[d.Key()] = d.Version
		}
	}
	return managed
}
