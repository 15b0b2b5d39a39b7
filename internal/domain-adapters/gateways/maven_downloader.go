package gateways

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hivemq/sdkpub/internal/domain/interfaces"
	"github.com/hivemq/sdkpub/internal/domain/services"
)

// DefaultMavenCentralURL is the remote repository used for external dependencies
const DefaultMavenCentralURL = "https://repo.maven.apache.org/maven2/"

// maxParentDepth bounds parent and BOM import chains
const maxParentDepth = 8

// ErrArtifactNotFound is returned when the remote repository answers 404
var ErrArtifactNotFound = errors.New("artifact not found")

// MavenDownloader fetches jars, POMs and metadata from a Maven repository into a local cache
type MavenDownloader struct {
	baseURL    string
	cacheDir   string
	httpClient *http.Client
	logger     interfaces.Logger
}

// NewMavenDownloader creates a downloader. An empty baseURL selects Maven Central.
func NewMavenDownloader(baseURL, cacheDir string, logger interfaces.Logger) *MavenDownloader {
	if baseURL == "" {
		baseURL = DefaultMavenCentralURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &MavenDownloader{
		baseURL:  baseURL,
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: interfaces.OrNoOp(logger),
	}
}

// ArtifactPath returns the repository-relative path of a file
func ArtifactPath(group, artifact, version, fileName string) string {
	return fmt.Sprintf("%s/%s/%s/%s", strings.ReplaceAll(group, ".", "/"), artifact, version, fileName)
}

// DownloadJar returns the cached path of group:artifact:version, downloading it when needed
func (d *MavenDownloader) DownloadJar(ctx context.Context, group, artifact, version string) (string, error) {
	return d.fetchVerified(ctx, ArtifactPath(group, artifact, version, fmt.Sprintf("%s-%s.jar", artifact, version)))
}

// FetchPOM returns the raw POM of group:artifact:version
func (d *MavenDownloader) FetchPOM(ctx context.Context, group, artifact, version string) (*MavenPOM, error) {
	path, err := d.fetchVerified(ctx, ArtifactPath(group, artifact, version, fmt.Sprintf("%s-%s.pom", artifact, version)))
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G304: path is inside the dependency cache
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read POM: %w", err)
	}

	var pom MavenPOM
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, fmt.Errorf("failed to parse POM of %s:%s:%s: %w", group, artifact, version, err)
	}
	return &pom, nil
}

// FetchEffectivePOM returns the POM with its parent chain merged, imported BOMs applied and properties interpolated
func (d *MavenDownloader) FetchEffectivePOM(ctx context.Context, group, artifact, version string) (*MavenPOM, error) {
	return d.effectivePOM(ctx, group, artifact, version, 0)
}

func (d *MavenDownloader) effectivePOM(ctx context.Context, group, artifact, version string, depth int) (*MavenPOM, error) {
	if depth > maxParentDepth {
		return nil, fmt.Errorf("POM chain of %s:%s:%s is too deep", group, artifact, version)
	}

	pom, err := d.FetchPOM(ctx, group, artifact, version)
	if err != nil {
		return nil, err
	}

	if pom.Parent != nil {
		parent, err := d.effectivePOM(ctx, pom.Parent.GroupID, pom.Parent.ArtifactID, pom.Parent.Version, depth+1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parent of %s:%s: %w", group, artifact, err)
		}
		pom.inheritFrom(parent)
	}
	pom.interpolate()

	var managed []MavenDependency
	for _, m := range pom.DependencyManagement.Dependencies {
		if !m.IsBOMImport() {
			managed = append(managed, m)
			continue
		}
		imported, err := d.effectivePOM(ctx, m.GroupID, m.ArtifactID, m.Version, depth+1)
		if err != nil {
			return nil, fmt.Errorf("failed to import BOM %s: %w", m.Key(), err)
		}
		managed = append(managed, imported.DependencyManagement.Dependencies...)
	}
	pom.DependencyManagement.Dependencies = managed

	return pom, nil
}

// FetchMetadata returns maven-metadata.xml of group:artifact. Metadata is never cached.
func (d *MavenDownloader) FetchMetadata(ctx context.Context, group, artifact string) (*MavenMetadata, error) {
	url := d.baseURL + fmt.Sprintf("%s/%s/maven-metadata.xml", strings.ReplaceAll(group, ".", "/"), artifact)
	body, err := d.get(ctx, url)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer body.Close()

	var meta MavenMetadata
	if err := xml.NewDecoder(body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata of %s:%s: %w", group, artifact, err)
	}
	return &meta, nil
}

// fetchVerified returns the cache path of a repository file. A cached file is reused when it
// matches its stored .sha1; otherwise the file and its .sha1 are downloaded and compared.
func (d *MavenDownloader) fetchVerified(ctx context.Context, relPath string) (string, error) {
	dest := filepath.Join(d.cacheDir, filepath.FromSlash(relPath))
	sumPath := dest + ".sha1"

	if expected, err := readChecksumFile(sumPath); err == nil {
		if actual, err := services.ComputeFile(dest, "sha1"); err == nil && strings.EqualFold(actual, expected) {
			d.logger.Debug("Using cached artifact", interfaces.F("path", relPath))
			return dest, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	url := d.baseURL + relPath
	if err := d.downloadFile(ctx, url+".sha1", sumPath); err != nil {
		return "", fmt.Errorf("failed to download checksum of %s: %w", relPath, err)
	}
	expected, err := readChecksumFile(sumPath)
	if err != nil {
		return "", err
	}

	if err := d.downloadFile(ctx, url, dest); err != nil {
		return "", err
	}

	actual, err := services.ComputeFile(dest, "sha1")
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", relPath, err)
	}
	if !strings.EqualFold(actual, expected) {
		_ = os.Remove(dest)
		return "", fmt.Errorf("checksum mismatch for %s: expected %s, got %s", relPath, expected, actual)
	}

	d.logger.Debug("Downloaded artifact", interfaces.F("url", url))
	return dest, nil
}

// readChecksumFile returns the digest of a .sha1 file. Some repositories append the file name.
func readChecksumFile(path string) (string, error) {
	//nolint:gosec // G304: path is inside the dependency cache
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("empty checksum file: %s", filepath.Base(path))
	}
	return fields[0], nil
}

func (d *MavenDownloader) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "sdkpub/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, url)
	case resp.StatusCode != http.StatusOK:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}

// downloadFile writes url to dest through a temporary file so a failed transfer never leaves a partial cache entry
func (d *MavenDownloader) downloadFile(ctx context.Context, url, dest string) error {
	body, err := d.get(ctx, url)
	if err != nil {
		return err
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer body.Close()

	tmp := dest + ".part"
	//nolint:gosec // G304: dest is inside the dependency cache
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close file: %w", err)
	}
	return os.Rename(tmp, dest)
}
