package entities

import "testing"

func TestCoordinates_FileName(t *testing.T) {
	c := Coordinates{Group: "com.hivemq", Artifact: "sdk", Version: "4.2.0"}

	tests := []struct {
		classifier string
		extension  string
		want       string
	}{
		{"", "jar", "sdk-4.2.0.jar"},
		{"sources", "jar", "sdk-4.2.0-sources.jar"},
		{"javadoc", "jar.asc", "sdk-4.2.0-javadoc.jar.asc"},
		{"", "pom", "sdk-4.2.0.pom"},
	}

	for _, tt := range tests {
		if got := c.FileName(tt.classifier, tt.extension); got != tt.want {
			t.Errorf("FileName(%q, %q) = %s, want %s", tt.classifier, tt.extension, got, tt.want)
		}
	}

	if got := c.RepositoryPath(); got != "com/hivemq/sdk/4.2.0" {
		t.Errorf("RepositoryPath() = %s", got)
	}
}

func TestCoordinates_IsSnapshot(t *testing.T) {
	if !(Coordinates{Version: "1.0.0-SNAPSHOT"}).IsSnapshot() {
		t.Error("1.0.0-SNAPSHOT should be a snapshot")
	}
	if (Coordinates{Version: "1.0.0"}).IsSnapshot() {
		t.Error("1.0.0 should not be a snapshot")
	}
}

func TestProject_Substitution(t *testing.T) {
	p := &Project{
		IncludedBuilds: []IncludedBuild{
			{Name: "hivemq-extension-sdk", Substitutes: "com.hivemq:hivemq-extension-sdk", Present: true},
			{Name: "absent", Substitutes: "org.slf4j:slf4j-api", Present: false},
		},
	}

	if _, ok := p.Substitution(Dependency{Group: "com.hivemq", Name: "hivemq-extension-sdk"}); !ok {
		t.Error("present included build should substitute the dependency")
	}
	if _, ok := p.Substitution(Dependency{Group: "org.slf4j", Name: "slf4j-api"}); ok {
		t.Error("absent included build must not substitute")
	}
}

func TestPublication_Signable(t *testing.T) {
	pub := &Publication{}
	pub.Add(
		&Artifact{Type: ArtifactTypeBinary},
		&Artifact{Type: ArtifactTypeSources},
		&Artifact{Type: ArtifactTypeJavadoc},
		&Artifact{Type: ArtifactTypePOM},
		&Artifact{Type: ArtifactTypeSignature},
		&Artifact{Type: ArtifactTypeChecksum},
	)

	if got := len(pub.Signable()); got != 4 {
		t.Errorf("Signable() = %d artifacts, want 4", got)
	}
	if got := len(pub.ByType(ArtifactTypeSignature)); got != 1 {
		t.Errorf("ByType(signature) = %d, want 1", got)
	}
}

func TestSigningKey_String(t *testing.T) {
	k := SigningKey{ArmoredKey: "secret", Passphrase: "pw"}
	if k.String() != "SigningKey(present)" {
		t.Errorf("String() leaked or wrong: %s", k.String())
	}
	if !(SigningKey{ArmoredKey: "  \n"}).IsEmpty() {
		t.Error("whitespace-only key should be empty")
	}
}
