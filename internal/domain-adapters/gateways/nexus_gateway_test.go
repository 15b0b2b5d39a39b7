package gateways

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// fakeNexus emulates the staging endpoints used by the gateway
type fakeNexus struct {
	t            *testing.T
	mu           sync.Mutex
	calls        []string
	uploads      map[string]string
	repoType     string
	closeFails   bool
	uploadStatus int
	transitions  int // polls that still report transitioning
	lagPolls     int // polls after a bulk request that still report the previous type
	lag          int
	prevType     string
}

func newFakeNexus(t *testing.T) (*fakeNexus, *httptest.Server) {
	t.Helper()
	f := &fakeNexus{t: t, uploads: map[string]string{}, repoType: "open"}
	server := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeNexus) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, pass, ok := r.BasicAuth()
	if !ok || user != "deployer" || pass != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	path := r.URL.Path
	f.calls = append(f.calls, r.Method+" "+path)

	switch {
	case r.Method == http.MethodGet && path == "/staging/profiles":
		_, _ = w.Write([]byte(`{"data":[{"id":"p-com","name":"com"},{"id":"p-hivemq","name":"com.hivemq"},{"id":"p-other","name":"org.other"}]}`))

	case r.Method == http.MethodPost && strings.HasPrefix(path, "/staging/profiles/") && strings.HasSuffix(path, "/start"):
		var req struct {
			Data struct {
				Description string `json:"description"`
			} `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_, _ = w.Write([]byte(`{"data":{"stagedRepositoryId":"comhivemq-1001","description":"` + req.Data.Description + `"}}`))

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/staging/deployByRepositoryId/comhivemq-1001/"):
		if f.uploadStatus != 0 {
			w.WriteHeader(f.uploadStatus)
			return
		}
		data, _ := io.ReadAll(r.Body)
		f.uploads[strings.TrimPrefix(path, "/staging/deployByRepositoryId/comhivemq-1001/")] = string(data)
		w.WriteHeader(http.StatusCreated)

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/snapshots/"):
		data, _ := io.ReadAll(r.Body)
		f.uploads[strings.TrimPrefix(path, "/snapshots/")] = string(data)
		w.WriteHeader(http.StatusCreated)

	case r.Method == http.MethodPost && path == "/staging/bulk/close":
		f.prevType, f.lag = f.repoType, f.lagPolls
		if f.closeFails {
			f.repoType = "open"
		} else {
			f.repoType = "closed"
		}
		f.transitions = 1
		w.WriteHeader(http.StatusCreated)

	case r.Method == http.MethodPost && path == "/staging/bulk/promote":
		var req struct {
			Data nexusBulkRequest `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Data.AutoDropAfterRelease {
			f.t.Errorf("promote without autoDropAfterRelease")
		}
		f.prevType, f.lag = f.repoType, f.lagPolls
		f.repoType = "released"
		f.transitions = 1
		w.WriteHeader(http.StatusCreated)

	case r.Method == http.MethodPost && path == "/staging/bulk/drop":
		f.repoType = "dropped"
		w.WriteHeader(http.StatusCreated)

	case r.Method == http.MethodGet && path == "/staging/repository/comhivemq-1001":
		if f.lag > 0 {
			f.lag--
			_ = json.NewEncoder(w).Encode(nexusRepository{RepositoryID: "comhivemq-1001", Type: f.prevType})
			return
		}
		transitioning := f.transitions > 0
		if transitioning {
			f.transitions--
		}
		notifications := 0
		if f.closeFails {
			notifications = 2
		}
		_ = json.NewEncoder(w).Encode(nexusRepository{
			RepositoryID:  "comhivemq-1001",
			Type:          f.repoType,
			Transitioning: transitioning,
			Notifications: notifications,
		})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeNexus) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func nexusPublication(t *testing.T, version string) *entities.Publication {
	t.Helper()
	dir := t.TempDir()
	coords := entities.Coordinates{Group: "com.hivemq", Artifact: "hivemq-extension-sdk", Version: version}
	pub := &entities.Publication{Coordinates: coords}
	for _, spec := range []struct{ classifier, ext, typ string }{
		{"", "jar", entities.ArtifactTypeBinary},
		{"", "pom", entities.ArtifactTypePOM},
		{"", "jar.asc", entities.ArtifactTypeSignature},
	} {
		name := coords.FileName(spec.classifier, spec.ext)
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("content of "+name), 0600))
		pub.Add(&entities.Artifact{Name: name, Version: version, Extension: spec.ext, Path: path, Type: spec.typ})
	}
	return pub
}

func newTestNexus(server *httptest.Server) *NexusGateway {
	return NewNexusGateway(NexusConfig{
		BaseURL:      server.URL,
		SnapshotURL:  server.URL + "/snapshots",
		Username:     "deployer",
		Password:     "secret",
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
	}, nil)
}

func TestNexusGateway_PublishRelease(t *testing.T) {
	fake, server := newFakeNexus(t)
	g := newTestNexus(server)

	receipt, err := g.Publish(context.Background(), nexusPublication(t, "4.30.0"), "com.hivemq:hivemq-extension-sdk:4.30.0")
	require.NoError(t, err)

	assert.Equal(t, "comhivemq-1001", receipt.RepositoryID)
	assert.True(t, receipt.Released)
	assert.False(t, receipt.Snapshot)
	assert.Len(t, receipt.Uploaded, 3)
	assert.Equal(t, "content of hivemq-extension-sdk-4.30.0.jar",
		fake.uploads["com/hivemq/hivemq-extension-sdk/4.30.0/hivemq-extension-sdk-4.30.0.jar"])

	assert.True(t, fake.called("POST /staging/profiles/p-hivemq/start"), "longest matching profile is used")
	assert.True(t, fake.called("POST /staging/bulk/close"))
	assert.True(t, fake.called("POST /staging/bulk/promote"))
	assert.False(t, fake.called("POST /staging/bulk/drop"))
}

func TestNexusGateway_ConfiguredProfileSkipsLookup(t *testing.T) {
	fake, server := newFakeNexus(t)
	g := newTestNexus(server)
	g.config.StagingProfileID = "p-fixed"

	_, err := g.Publish(context.Background(), nexusPublication(t, "4.30.0"), "release")
	require.NoError(t, err)
	assert.False(t, fake.called("GET /staging/profiles"))
	assert.True(t, fake.called("POST /staging/profiles/p-fixed/start"))
}

func TestNexusGateway_CloseFailureDrops(t *testing.T) {
	fake, server := newFakeNexus(t)
	fake.closeFails = true
	g := newTestNexus(server)

	receipt, err := g.Publish(context.Background(), nexusPublication(t, "4.30.0"), "release")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule failures")
	assert.False(t, receipt.Released)
	assert.True(t, fake.called("POST /staging/bulk/drop"))
	assert.False(t, fake.called("POST /staging/bulk/promote"))
}

func TestNexusGateway_WaitsForDelayedTransition(t *testing.T) {
	fake, server := newFakeNexus(t)
	fake.lagPolls = 2
	g := newTestNexus(server)

	receipt, err := g.Publish(context.Background(), nexusPublication(t, "4.30.0"), "release")
	require.NoError(t, err)
	assert.True(t, receipt.Released)
	assert.False(t, fake.called("POST /staging/bulk/drop"))

	polls := 0
	for _, c := range fake.calls {
		if c == "GET /staging/repository/comhivemq-1001" {
			polls++
		}
	}
	// two lagging and one transitioning poll per close and release, plus the settled one
	assert.Equal(t, 8, polls)
}

func TestNexusGateway_CloseTimesOutWhenNeverClosed(t *testing.T) {
	fake, server := newFakeNexus(t)
	fake.lagPolls = 1 << 20
	g := newTestNexus(server)
	g.config.PollTimeout = 20 * time.Millisecond

	err := g.Close(context.Background(), "comhivemq-1001", "release")
	require.ErrorIs(t, err, ErrStagingTimeout)
	assert.Contains(t, err.Error(), "repository is open")
}

func TestNexusGateway_UploadFailureDropsWithoutRetry(t *testing.T) {
	fake, server := newFakeNexus(t)
	fake.uploadStatus = http.StatusBadGateway
	g := newTestNexus(server)

	_, err := g.Publish(context.Background(), nexusPublication(t, "4.30.0"), "release")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")

	puts := 0
	for _, c := range fake.calls {
		if strings.HasPrefix(c, "PUT ") {
			puts++
		}
	}
	assert.Equal(t, 1, puts)
	assert.True(t, fake.called("POST /staging/bulk/drop"))
	assert.False(t, fake.called("POST /staging/bulk/close"))
}

func TestNexusGateway_PublishSnapshot(t *testing.T) {
	fake, server := newFakeNexus(t)
	g := newTestNexus(server)

	receipt, err := g.Publish(context.Background(), nexusPublication(t, "4.31.0-SNAPSHOT"), "snapshot")
	require.NoError(t, err)

	assert.True(t, receipt.Snapshot)
	assert.Empty(t, receipt.RepositoryID)
	assert.Contains(t, fake.uploads, "com/hivemq/hivemq-extension-sdk/4.31.0-SNAPSHOT/hivemq-extension-sdk-4.31.0-SNAPSHOT.pom")
	assert.False(t, fake.called("GET /staging/profiles"))
}

func TestNexusGateway_Unauthorized(t *testing.T) {
	_, server := newFakeNexus(t)
	g := newTestNexus(server)
	g.config.Password = "wrong"

	_, err := g.Publish(context.Background(), nexusPublication(t, "4.30.0"), "release")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestNexusGateway_FindProfile_NoMatch(t *testing.T) {
	_, server := newFakeNexus(t)
	g := newTestNexus(server)

	_, err := g.FindProfile(context.Background(), "io.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "io.example")
}
