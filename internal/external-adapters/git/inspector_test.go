package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepository(t *testing.T, remoteURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	if remoteURL != "" {
		_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteURL}})
		require.NoError(t, err)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sdk.yml"), []byte("name: hivemq-extension-sdk\n"), 0600))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("sdk.yml")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "HiveMQ", Email: "dev@hivemq.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir, hash.String()
}

func TestInspector(t *testing.T) {
	dir, hash := initRepository(t, "git@github.com:hivemq/hivemq-extension-sdk.git")

	sub := filepath.Join(dir, "src", "main")
	require.NoError(t, os.MkdirAll(sub, 0750))

	inspector, err := NewInspector(sub)
	require.NoError(t, err)

	rev, err := inspector.Revision()
	require.NoError(t, err)
	assert.Equal(t, hash, rev)

	short, err := inspector.ShortRevision()
	require.NoError(t, err)
	assert.Equal(t, hash[:8], short)

	slug, err := inspector.GitHubSlug()
	require.NoError(t, err)
	assert.Equal(t, "hivemq/hivemq-extension-sdk", slug)
}

func TestInspector_NoRemote(t *testing.T) {
	dir, _ := initRepository(t, "")

	inspector, err := NewInspector(dir)
	require.NoError(t, err)

	_, err = inspector.GitHubSlug()
	assert.Error(t, err)
}

func TestNewInspector_NotARepository(t *testing.T) {
	_, err := NewInspector(t.TempDir())
	assert.Error(t, err)
}

func TestParseGitHubSlug(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://github.com/hivemq/hivemq-extension-sdk.git", "hivemq/hivemq-extension-sdk", false},
		{"https://github.com/hivemq/hivemq-extension-sdk", "hivemq/hivemq-extension-sdk", false},
		{"git@github.com:hivemq/hivemq-extension-sdk.git", "hivemq/hivemq-extension-sdk", false},
		{"ssh://git@github.com/hivemq/hivemq-extension-sdk.git", "hivemq/hivemq-extension-sdk", false},
		{"https://gitlab.com/hivemq/hivemq-extension-sdk.git", "", true},
		{"https://github.com/hivemq", "", true},
		{"https://github.com/hivemq/sdk/tree/master", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseGitHubSlug(tt.url)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNotGitHub))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
