// Package git reads build provenance from the project's working copy.
package git

import (
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// DefaultRemote is the remote the GitHub slug is derived from
const DefaultRemote = "origin"

// ErrNotGitHub is returned when the remote does not point at github.com
var ErrNotGitHub = errors.New("remote is not a GitHub repository")

// Inspector answers questions about the repository containing a project directory
type Inspector struct {
	repo   *gogit.Repository
	remote string
}

// NewInspector opens the repository at dir or any of its parents
func NewInspector(dir string) (*Inspector, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return &Inspector{repo: repo, remote: DefaultRemote}, nil
}

// Revision returns the HEAD commit hash
func (i *Inspector) Revision() (string, error) {
	ref, err := i.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// ShortRevision returns the first 8 characters of the HEAD commit hash
func (i *Inspector) ShortRevision() (string, error) {
	rev, err := i.Revision()
	if err != nil {
		return "", err
	}
	return rev[:8], nil
}

// GitHubSlug returns "owner/repo" of the origin remote
func (i *Inspector) GitHubSlug() (string, error) {
	remote, err := i.repo.Remote(i.remote)
	if err != nil {
		return "", fmt.Errorf("failed to read remote %s: %w", i.remote, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", i.remote)
	}
	return ParseGitHubSlug(urls[0])
}

// ParseGitHubSlug extracts "owner/repo" from an https, ssh or scp-style GitHub URL
func ParseGitHubSlug(url string) (string, error) {
	var path string
	switch {
	case strings.HasPrefix(url, "git@github.com:"):
		path = strings.TrimPrefix(url, "git@github.com:")
	case strings.HasPrefix(url, "ssh://git@github.com/"):
		path = strings.TrimPrefix(url, "ssh://git@github.com/")
	case strings.HasPrefix(url, "https://github.com/"):
		path = strings.TrimPrefix(url, "https://github.com/")
	case strings.HasPrefix(url, "http://github.com/"):
		path = strings.TrimPrefix(url, "http://github.com/")
	default:
		return "", fmt.Errorf("%w: %s", ErrNotGitHub, url)
	}

	path = strings.TrimSuffix(strings.TrimSuffix(path, "/"), ".git")
	owner, repo, ok := strings.Cut(path, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", fmt.Errorf("%w: %s", ErrNotGitHub, url)
	}
	return owner + "/" + repo, nil
}
