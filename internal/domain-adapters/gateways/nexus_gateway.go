package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hivemq/sdkpub/internal/domain/entities"
	"github.com/hivemq/sdkpub/internal/domain/interfaces"
	"github.com/hivemq/sdkpub/internal/domain/interfaces/gateways"
)

// Sonatype OSSRH endpoints
const (
	DefaultNexusURL         = "https://oss.sonatype.org/service/local/"
	DefaultNexusSnapshotURL = "https://oss.sonatype.org/content/repositories/snapshots/"
)

// ErrStagingTimeout is returned when a staging transition does not finish in time
var ErrStagingTimeout = errors.New("staging repository transition timed out")

// NexusConfig configures the staging gateway
type NexusConfig struct {
	BaseURL          string
	SnapshotURL      string
	Username         string
	Password         string
	StagingProfileID string // looked up by group when empty
	PollInterval     time.Duration
	PollTimeout      time.Duration
}

// NexusGateway publishes to a Nexus 2 staging repository (Sonatype OSSRH).
// Releases go through open, upload, close, release; snapshots are uploaded directly.
// Requests are not retried: a failed release drops its staging repository instead.
type NexusGateway struct {
	client    *http.Client
	config    NexusConfig
	userAgent string
	logger    interfaces.Logger
}

// NewNexusGateway creates a new staging gateway
func NewNexusGateway(config NexusConfig, logger interfaces.Logger) *NexusGateway {
	if config.BaseURL == "" {
		config.BaseURL = DefaultNexusURL
	}
	if config.SnapshotURL == "" {
		config.SnapshotURL = DefaultNexusSnapshotURL
	}
	config.BaseURL = withSlash(config.BaseURL)
	config.SnapshotURL = withSlash(config.SnapshotURL)
	if config.PollInterval == 0 {
		config.PollInterval = 10 * time.Second
	}
	if config.PollTimeout == 0 {
		config.PollTimeout = 10 * time.Minute
	}
	return &NexusGateway{
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		config:    config,
		userAgent: "sdkpub/1.0",
		logger:    interfaces.OrNoOp(logger),
	}
}

func withSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

type nexusProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type nexusRepository struct {
	RepositoryID  string `json:"repositoryId"`
	Type          string `json:"type"`
	Transitioning bool   `json:"transitioning"`
	Notifications int    `json:"notifications"`
	Description   string `json:"description"`
}

type nexusBulkRequest struct {
	StagedRepositoryIDs  []string `json:"stagedRepositoryIds"`
	Description          string   `json:"description"`
	AutoDropAfterRelease bool     `json:"autoDropAfterRelease,omitempty"`
}

// Publish uploads the publication. Snapshot versions bypass staging.
func (g *NexusGateway) Publish(ctx context.Context, pub *entities.Publication, description string) (*gateways.PublishReceipt, error) {
	if pub.Coordinates.IsSnapshot() {
		return g.publishSnapshot(ctx, pub)
	}
	return g.publishRelease(ctx, pub, description)
}

func (g *NexusGateway) publishSnapshot(ctx context.Context, pub *entities.Publication) (*gateways.PublishReceipt, error) {
	receipt := &gateways.PublishReceipt{Snapshot: true}
	for _, a := range pub.Artifacts {
		path := pub.Coordinates.RepositoryPath() + "/" + a.Name
		if err := g.upload(ctx, g.config.SnapshotURL+path, a.Path); err != nil {
			return receipt, fmt.Errorf("failed to upload %s: %w", a.Name, err)
		}
		receipt.Uploaded = append(receipt.Uploaded, path)
	}
	g.logger.Info("Snapshot uploaded", interfaces.F("coordinates", pub.Coordinates.String()), interfaces.F("files", len(receipt.Uploaded)))
	return receipt, nil
}

func (g *NexusGateway) publishRelease(ctx context.Context, pub *entities.Publication, description string) (*gateways.PublishReceipt, error) {
	profileID := g.config.StagingProfileID
	if profileID == "" {
		var err error
		profileID, err = g.FindProfile(ctx, pub.Coordinates.Group)
		if err != nil {
			return nil, err
		}
	}

	staging, err := g.Open(ctx, profileID, description)
	if err != nil {
		return nil, err
	}
	receipt := &gateways.PublishReceipt{RepositoryID: staging.ID}
	g.logger.Info("Opened staging repository", interfaces.F("repository", staging.ID))

	fail := func(cause error) (*gateways.PublishReceipt, error) {
		// A cancelled context must not prevent the drop
		dropCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
		defer cancel()
		if dropErr := g.Drop(dropCtx, staging.ID, description); dropErr != nil {
			g.logger.Error("Failed to drop staging repository", interfaces.F("repository", staging.ID), interfaces.F("error", dropErr.Error()))
			return receipt, fmt.Errorf("%w (drop of %s also failed: %v)", cause, staging.ID, dropErr)
		}
		g.logger.Warn("Dropped staging repository", interfaces.F("repository", staging.ID))
		return receipt, cause
	}

	for _, a := range pub.Artifacts {
		path := pub.Coordinates.RepositoryPath() + "/" + a.Name
		url := g.config.BaseURL + "staging/deployByRepositoryId/" + staging.ID + "/" + path
		if err := g.upload(ctx, url, a.Path); err != nil {
			return fail(fmt.Errorf("failed to upload %s: %w", a.Name, err))
		}
		receipt.Uploaded = append(receipt.Uploaded, path)
		g.logger.Debug("Uploaded", interfaces.F("path", path))
	}

	if err := g.Close(ctx, staging.ID, description); err != nil {
		return fail(err)
	}
	if err := g.Release(ctx, staging.ID, description); err != nil {
		return fail(err)
	}

	receipt.Released = true
	g.logger.Info("Released staging repository", interfaces.F("repository", staging.ID))
	return receipt, nil
}

// FindProfile returns the staging profile whose name is the longest prefix of group
func (g *NexusGateway) FindProfile(ctx context.Context, group string) (string, error) {
	var profiles []nexusProfile
	if err := g.doJSON(ctx, http.MethodGet, "staging/profiles", nil, &profiles); err != nil {
		return "", fmt.Errorf("failed to list staging profiles: %w", err)
	}

	best := nexusProfile{}
	for _, p := range profiles {
		if (group == p.Name || strings.HasPrefix(group, p.Name+".")) && len(p.Name) > len(best.Name) {
			best = p
		}
	}
	if best.ID == "" {
		return "", fmt.Errorf("no staging profile matches group %s", group)
	}
	return best.ID, nil
}

// Open starts a new staging repository in the profile
func (g *NexusGateway) Open(ctx context.Context, profileID, description string) (*gateways.StagingRepository, error) {
	var started struct {
		StagedRepositoryID string `json:"stagedRepositoryId"`
		Description        string `json:"description"`
	}
	body := map[string]string{"description": description}
	if err := g.doJSON(ctx, http.MethodPost, "staging/profiles/"+profileID+"/start", body, &started); err != nil {
		return nil, fmt.Errorf("failed to open staging repository: %w", err)
	}
	if started.StagedRepositoryID == "" {
		return nil, fmt.Errorf("failed to open staging repository: empty repository id")
	}
	return &gateways.StagingRepository{
		ID:          started.StagedRepositoryID,
		ProfileID:   profileID,
		Description: description,
		State:       "open",
	}, nil
}

// Close closes the repository and waits until the rule evaluation finishes
func (g *NexusGateway) Close(ctx context.Context, repositoryID, description string) error {
	req := nexusBulkRequest{StagedRepositoryIDs: []string{repositoryID}, Description: description}
	if err := g.doJSON(ctx, http.MethodPost, "staging/bulk/close", req, nil); err != nil {
		return fmt.Errorf("failed to close %s: %w", repositoryID, err)
	}

	repo, err := g.waitForTransition(ctx, repositoryID, "closed", func(r *nexusRepository) bool {
		return r.Notifications > 0
	})
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", repositoryID, err)
	}
	if repo == nil {
		return fmt.Errorf("failed to close %s: repository no longer exists", repositoryID)
	}
	if repo.Type != "closed" {
		return fmt.Errorf("failed to close %s: repository is %s with %d rule failures", repositoryID, repo.Type, repo.Notifications)
	}
	return nil
}

// Release promotes a closed repository to the release repository and lets Nexus drop it afterwards
func (g *NexusGateway) Release(ctx context.Context, repositoryID, description string) error {
	req := nexusBulkRequest{StagedRepositoryIDs: []string{repositoryID}, Description: description, AutoDropAfterRelease: true}
	if err := g.doJSON(ctx, http.MethodPost, "staging/bulk/promote", req, nil); err != nil {
		return fmt.Errorf("failed to release %s: %w", repositoryID, err)
	}

	if _, err := g.waitForTransition(ctx, repositoryID, "released", nil); err != nil {
		return fmt.Errorf("failed to release %s: %w", repositoryID, err)
	}
	return nil
}

// Drop deletes a staging repository
func (g *NexusGateway) Drop(ctx context.Context, repositoryID, description string) error {
	req := nexusBulkRequest{StagedRepositoryIDs: []string{repositoryID}, Description: description}
	return g.doJSON(ctx, http.MethodPost, "staging/bulk/drop", req, nil)
}

// waitForTransition polls the repository until it settles in the target type, or until failed
// reports a settled repository as rejected. Nexus may still report the previous type for a few
// polls after a bulk request, so a settled repository in another type keeps the loop going.
// A nil repository means it no longer exists, which is the expected end state after an
// auto-dropping release.
func (g *NexusGateway) waitForTransition(ctx context.Context, repositoryID, target string, failed func(*nexusRepository) bool) (*nexusRepository, error) {
	deadline := time.Now().Add(g.config.PollTimeout)
	for {
		var repo nexusRepository
		err := g.doJSON(ctx, http.MethodGet, "staging/repository/"+repositoryID, nil, &repo)
		var statusErr *nexusStatusError
		switch {
		case errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound:
			return nil, nil
		case err != nil:
			return nil, err
		case repo.Transitioning:
		case repo.Type == target:
			return &repo, nil
		case failed != nil && failed(&repo):
			return &repo, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w after %s: repository is %s", ErrStagingTimeout, g.config.PollTimeout, repo.Type)
		}
		g.logger.Debug("Waiting for staging repository",
			interfaces.F("repository", repositoryID),
			interfaces.F("type", repo.Type),
			interfaces.F("target", target),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.config.PollInterval):
		}
	}
}

// nexusStatusError reports an unexpected HTTP status
type nexusStatusError struct {
	Status int
	Body   string
}

func (e *nexusStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

// doJSON sends a request with the payload wrapped in {"data": ...} and unwraps the response
func (g *NexusGateway) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(map[string]interface{}{"data": payload})
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	g.authorize(req)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &nexusStatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}
	if out == nil {
		return nil
	}

	// Single-repository lookups are not wrapped in "data"
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// upload PUTs a file to url
func (g *NexusGateway) upload(ctx context.Context, url, filePath string) error {
	//nolint:gosec // G304: filePath is a pipeline artifact
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, f)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	g.authorize(req)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = info.Size()

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &nexusStatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}
	return nil
}

func (g *NexusGateway) authorize(req *http.Request) {
	req.Header.Set("User-Agent", g.userAgent)
	if g.config.Username != "" {
		req.SetBasicAuth(g.config.Username, g.config.Password)
	}
}
