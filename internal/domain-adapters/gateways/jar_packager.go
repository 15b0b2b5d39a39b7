package gateways

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// ReproducibleTimestamp is the modification time of every jar entry
var ReproducibleTimestamp = time.Date(1980, time.February, 1, 0, 0, 0, 0, time.UTC)

// ManifestPath is the manifest entry of every jar
const ManifestPath = "META-INF/MANIFEST.MF"

// JarPackager writes reproducible jar archives
type JarPackager struct{}

// NewJarPackager creates a new jar packager
func NewJarPackager() *JarPackager {
	return &JarPackager{}
}

type jarEntry struct {
	name   string
	source string
	dir    bool
}

// PackageJar archives roots into <artifact>-<version>[-classifier].jar inside outputDir.
// Files from earlier roots win when two roots contain the same path.
func (p *JarPackager) PackageJar(ctx context.Context, project *entities.Project, classifier string, roots []string, outputDir string) (*entities.Artifact, error) {
	entries, err := collectEntries(roots)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := project.Coordinates.FileName(classifier, "jar")
	jarPath := filepath.Join(outputDir, name)
	manifest := RenderManifest(ManifestAttributes(project))

	if err := p.writeJar(ctx, jarPath, manifest, entries); err != nil {
		_ = os.Remove(jarPath)
		return nil, err
	}

	return &entities.Artifact{
		Name:       name,
		Version:    project.Coordinates.Version,
		Classifier: classifier,
		Extension:  "jar",
		Path:       jarPath,
		Type:       artifactTypeFor(classifier),
	}, nil
}

func artifactTypeFor(classifier string) string {
	switch classifier {
	case "sources":
		return entities.ArtifactTypeSources
	case "javadoc":
		return entities.ArtifactTypeJavadoc
	default:
		return entities.ArtifactTypeBinary
	}
}

// collectEntries walks every root and returns the archive entries sorted by name
func collectEntries(roots []string) ([]jarEntry, error) {
	seen := map[string]bool{"META-INF/": true, ManifestPath: true}
	var entries []jarEntry

	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return fmt.Errorf("failed to get relative path: %w", err)
			}
			if rel == "." {
				return nil
			}

			name := filepath.ToSlash(rel)
			if d.IsDir() {
				name += "/"
			} else if !d.Type().IsRegular() {
				return nil
			}
			if seen[name] {
				return nil
			}
			seen[name] = true
			entries = append(entries, jarEntry{name: name, source: path, dir: d.IsDir()})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
	return entries, nil
}

func (p *JarPackager) writeJar(ctx context.Context, jarPath string, manifest []byte, entries []jarEntry) error {
	//nolint:gosec // G304: jarPath is constructed for package output
	file, err := os.Create(jarPath)
	if err != nil {
		return fmt.Errorf("failed to create jar file: %w", err)
	}
	//nolint:errcheck // Defer close, the explicit close below reports errors
	defer file.Close()

	zw := zip.NewWriter(file)

	if _, err := zw.CreateHeader(dirHeader("META-INF/")); err != nil {
		return fmt.Errorf("failed to write META-INF: %w", err)
	}
	w, err := zw.CreateHeader(fileHeader(ManifestPath))
	if err != nil {
		return fmt.Errorf("failed to write manifest header: %w", err)
	}
	if _, err := w.Write(manifest); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.dir {
			if _, err := zw.CreateHeader(dirHeader(entry.name)); err != nil {
				return fmt.Errorf("failed to write %s: %w", entry.name, err)
			}
			continue
		}
		if err := copyEntry(zw, entry); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish jar: %w", err)
	}
	return file.Close()
}

func copyEntry(zw *zip.Writer, entry jarEntry) error {
	//nolint:gosec // G304: source comes from walking the packaged roots
	src, err := os.Open(entry.source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", entry.source, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer src.Close()

	w, err := zw.CreateHeader(fileHeader(entry.name))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", entry.name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", entry.name, err)
	}
	return nil
}

func dirHeader(name string) *zip.FileHeader {
	h := &zip.FileHeader{Name: name, Method: zip.Store, Modified: ReproducibleTimestamp}
	h.SetMode(fs.ModeDir | 0755)
	return h
}

func fileHeader(name string) *zip.FileHeader {
	h := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: ReproducibleTimestamp}
	h.SetMode(0644)
	return h
}

// JarEntries lists the entry names of a jar in archive order
func JarEntries(jarPath string) ([]string, error) {
	r, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", jarPath, err)
	}
	//nolint:errcheck // Defer close on read-only archive
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// ReadJarEntry returns the content of one jar entry
func ReadJarEntry(jarPath, name string) ([]byte, error) {
	r, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", jarPath, err)
	}
	//nolint:errcheck // Defer close on read-only archive
	defer r.Close()

	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		//nolint:errcheck // Defer close on entry reader
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in %s", name, filepath.Base(jarPath))
}
