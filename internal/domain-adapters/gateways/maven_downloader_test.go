package gateways

import (
	"context"
	"crypto/sha1" //nolint:gosec // G505: Maven checksum format
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository serves files from memory and publishes a matching .sha1 for each one
type fakeRepository struct {
	mu       sync.Mutex
	files    map[string]string
	badSums  map[string]bool
	requests map[string]int
	server   *httptest.Server
}

func newFakeRepository(t *testing.T) *fakeRepository {
	t.Helper()
	repo := &fakeRepository{
		files:    map[string]string{},
		badSums:  map[string]bool{},
		requests: map[string]int{},
	}
	repo.server = httptest.NewServer(http.HandlerFunc(repo.serve))
	t.Cleanup(repo.server.Close)
	return repo
}

func (f *fakeRepository) add(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = content
}

func (f *fakeRepository) addArtifact(group, artifact, version, pom string) {
	f.add(ArtifactPath(group, artifact, version, artifact+"-"+version+".jar"), "jar:"+artifact+":"+version)
	f.add(ArtifactPath(group, artifact, version, artifact+"-"+version+".pom"), pom)
}

func (f *fakeRepository) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *fakeRepository) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	f.requests[path]++

	if base, ok := strings.CutSuffix(path, ".sha1"); ok {
		content, exists := f.files[base]
		if !exists {
			http.NotFound(w, r)
			return
		}
		sum := sha1.Sum([]byte(content)) //nolint:gosec // G401: Maven checksum format
		digest := hex.EncodeToString(sum[:])
		if f.badSums[base] {
			digest = strings.Repeat("0", len(digest))
		}
		_, _ = w.Write([]byte(digest + "  " + base))
		return
	}

	content, exists := f.files[path]
	if !exists {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(content))
}

func pomXML(group, artifact, version, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>` + group + `</groupId>
  <artifactId>` + artifact + `</artifactId>
  <version>` + version + `</version>
` + body + `
</project>`
}

func TestMavenDownloader_DownloadJar_VerifiesAndCaches(t *testing.T) {
	repo := newFakeRepository(t)
	repo.addArtifact("com.google.guava", "guava", "31.1-jre", pomXML("com.google.guava", "guava", "31.1-jre", ""))
	d := NewMavenDownloader(repo.server.URL, t.TempDir(), nil)

	path, err := d.DownloadJar(context.Background(), "com.google.guava", "guava", "31.1-jre")
	require.NoError(t, err)

	//nolint:gosec // G304: test reads its own cache
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jar:guava:31.1-jre", string(data))
	assert.True(t, strings.HasSuffix(path, "com/google/guava/guava/31.1-jre/guava-31.1-jre.jar"))

	again, err := d.DownloadJar(context.Background(), "com.google.guava", "guava", "31.1-jre")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, 1, repo.count("com/google/guava/guava/31.1-jre/guava-31.1-jre.jar"), "cached jar must not be fetched twice")
}

func TestMavenDownloader_DownloadJar_ChecksumMismatch(t *testing.T) {
	repo := newFakeRepository(t)
	repo.addArtifact("org.example", "lib", "1.0", pomXML("org.example", "lib", "1.0", ""))
	repo.badSums["org/example/lib/1.0/lib-1.0.jar"] = true
	cache := t.TempDir()
	d := NewMavenDownloader(repo.server.URL, cache, nil)

	_, err := d.DownloadJar(context.Background(), "org.example", "lib", "1.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")

	_, statErr := os.Stat(cache + "/org/example/lib/1.0/lib-1.0.jar")
	assert.True(t, os.IsNotExist(statErr), "corrupt download must not stay in the cache")
}

func TestMavenDownloader_NotFound(t *testing.T) {
	repo := newFakeRepository(t)
	d := NewMavenDownloader(repo.server.URL, t.TempDir(), nil)

	_, err := d.DownloadJar(context.Background(), "org.example", "missing", "1.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArtifactNotFound))
}

func TestMavenDownloader_FetchEffectivePOM(t *testing.T) {
	repo := newFakeRepository(t)
	repo.add(ArtifactPath("org.example", "parent", "3", "parent-3.pom"), pomXML("org.example", "parent", "3", `
  <properties>
    <slf4j.version>2.0.9</slf4j.version>
    <shared.version>1.1</shared.version>
  </properties>
  <dependencyManagement>
    <dependencies>
      <dependency><groupId>org.slf4j</groupId><artifactId>slf4j-api</artifactId><version>${slf4j.version}</version></dependency>
      <dependency><groupId>org.example</groupId><artifactId>bom</artifactId><version>5</version><type>pom</type><scope>import</scope></dependency>
    </dependencies>
  </dependencyManagement>`))
	repo.add(ArtifactPath("org.example", "bom", "5", "bom-5.pom"), pomXML("org.example", "bom", "5", `
  <dependencyManagement>
    <dependencies>
      <dependency><groupId>org.example</groupId><artifactId>imported</artifactId><version>5.5</version></dependency>
    </dependencies>
  </dependencyManagement>`))
	repo.add(ArtifactPath("org.example", "child", "2.0", "child-2.0.pom"), `<?xml version="1.0"?>
<project>
  <parent><groupId>org.example</groupId><artifactId>parent</artifactId><version>3</version></parent>
  <artifactId>child</artifactId>
  <version>2.0</version>
  <properties><shared.version>1.2</shared.version></properties>
  <dependencies>
    <dependency><groupId>org.example</groupId><artifactId>shared</artifactId><version>${shared.version}</version></dependency>
    <dependency><groupId>${project.groupId}</groupId><artifactId>sibling</artifactId><version>${project.version}</version></dependency>
  </dependencies>
</project>`)

	d := NewMavenDownloader(repo.server.URL, t.TempDir(), nil)
	pom, err := d.FetchEffectivePOM(context.Background(), "org.example", "child", "2.0")
	require.NoError(t, err)

	assert.Equal(t, "org.example", pom.GroupID, "groupId inherited from parent")
	require.Len(t, pom.Dependencies, 2)
	assert.Equal(t, "1.2", pom.Dependencies[0].Version, "child property overrides parent")
	assert.Equal(t, "org.example:sibling", pom.Dependencies[1].Key())
	assert.Equal(t, "2.0", pom.Dependencies[1].Version)

	managed := pom.ManagedVersions()
	assert.Equal(t, "2.0.9", managed["org.slf4j:slf4j-api"])
	assert.Equal(t, "5.5", managed["org.example:imported"])
}

func TestInterpolate(t *testing.T) {
	props := map[string]string{"a": "${b}", "b": "1.0", "project.version": "2.0"}

	assert.Equal(t, "1.0", Interpolate("${a}", props))
	assert.Equal(t, "2.0-x", Interpolate("${project.version}-x", props))
	assert.Equal(t, "${missing}", Interpolate("${missing}", props))
}
