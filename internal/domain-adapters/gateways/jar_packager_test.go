package gateways

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

func packagingProject() *entities.Project {
	return &entities.Project{
		Name:        "hivemq-google-cloud-pubsub-extension-customization-sdk",
		Coordinates: entities.Coordinates{Group: "com.hivemq", Artifact: "sdk", Version: "4.9.0"},
		Metadata:    entities.Metadata{Organization: entities.Organization{Name: "HiveMQ GmbH"}},
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRenderManifest(t *testing.T) {
	got := string(RenderManifest(ManifestAttributes(packagingProject())))

	want := "Manifest-Version: 1.0\r\n" +
		"Implementation-Title: hivemq-google-cloud-pubsub-extension-customization\r\n" +
		" -sdk\r\n" +
		"Implementation-Vendor: HiveMQ GmbH\r\n" +
		"Implementation-Version: 4.9.0\r\n" +
		"\r\n"
	if got != want {
		t.Errorf("RenderManifest() =\n%q\nwant\n%q", got, want)
	}

	for _, line := range strings.Split(got, "\r\n") {
		if len(line) > manifestLineLength {
			t.Errorf("manifest line exceeds 72 bytes: %q", line)
		}
	}
}

func TestJarPackager_PackageJar(t *testing.T) {
	dir := t.TempDir()
	classes := filepath.Join(dir, "classes")
	resources := filepath.Join(dir, "resources")
	writeTree(t, classes, map[string]string{
		"com/hivemq/B.class": "b",
		"com/hivemq/A.class": "a",
	})
	writeTree(t, resources, map[string]string{
		"com/hivemq/A.class":        "shadowed",
		"META-INF/services/example": "com.hivemq.A",
	})

	packager := NewJarPackager()
	artifact, err := packager.PackageJar(context.Background(), packagingProject(), "", []string{classes, resources}, filepath.Join(dir, "libs"))
	if err != nil {
		t.Fatalf("PackageJar failed: %v", err)
	}

	if artifact.Name != "sdk-4.9.0.jar" || artifact.Type != entities.ArtifactTypeBinary {
		t.Errorf("unexpected artifact: %+v", artifact)
	}

	names, err := JarEntries(artifact.Path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"META-INF/",
		"META-INF/MANIFEST.MF",
		"META-INF/services/",
		"META-INF/services/example",
		"com/",
		"com/hivemq/",
		"com/hivemq/A.class",
		"com/hivemq/B.class",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("entries = %v\nwant      %v", names, want)
	}

	content, err := ReadJarEntry(artifact.Path, "com/hivemq/A.class")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "a" {
		t.Errorf("first root should win, got %q", content)
	}

	manifest, err := ReadJarEntry(artifact.Path, "META-INF/MANIFEST.MF")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(manifest, []byte("Implementation-Vendor: HiveMQ GmbH\r\n")) {
		t.Errorf("manifest missing vendor: %q", manifest)
	}
}

func TestJarPackager_Reproducible(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeTree(t, src, map[string]string{"com/hivemq/A.java": "class A {}"})

	packager := NewJarPackager()
	first, err := packager.PackageJar(context.Background(), packagingProject(), "sources", []string{src}, filepath.Join(dir, "one"))
	if err != nil {
		t.Fatal(err)
	}

	// Touch the source to change its mtime
	if err := os.WriteFile(filepath.Join(src, "com/hivemq/A.java"), []byte("class A {}"), 0600); err != nil {
		t.Fatal(err)
	}

	second, err := packager.PackageJar(context.Background(), packagingProject(), "sources", []string{src}, filepath.Join(dir, "two"))
	if err != nil {
		t.Fatal(err)
	}

	//nolint:gosec // G304: test output files
	a, _ := os.ReadFile(first.Path)
	//nolint:gosec // G304: test output files
	b, _ := os.ReadFile(second.Path)
	if !bytes.Equal(a, b) {
		t.Error("packaging the same tree twice must produce identical jars")
	}
	if first.Type != entities.ArtifactTypeSources || first.Name != "sdk-4.9.0-sources.jar" {
		t.Errorf("unexpected artifact: %+v", first)
	}
}
