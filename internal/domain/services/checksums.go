package services

import (
	"crypto/md5"  //nolint:gosec // G501: Maven repositories still require .md5 files
	"crypto/sha1" //nolint:gosec // G505: Maven repositories still require .sha1 files
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// ChecksumAlgorithms lists the repository checksum extensions in upload order
var ChecksumAlgorithms = []string{"md5", "sha1", "sha256", "sha512"}

// ChecksumService writes the checksum files a Maven repository expects next to each upload
type ChecksumService struct{}

// NewChecksumService creates a new checksum service
func NewChecksumService() *ChecksumService {
	return &ChecksumService{}
}

// NewHash returns the hash for a checksum extension
func NewHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "md5":
		return md5.New(), nil //nolint:gosec // G401: repository format
	case "sha1":
		return sha1.New(), nil //nolint:gosec // G401: repository format
	case "sha256":
		return sha256.New(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm: %s", algorithm)
	}
}

// ComputeFile returns the hex digest of a file
func ComputeFile(filePath, algorithm string) (string, error) {
	h, err := NewHash(algorithm)
	if err != nil {
		return "", err
	}

	//nolint:gosec // G304: filePath is a pipeline artifact
	f, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Generate writes one checksum file per algorithm for the artifact.
// Repository checksum files contain only the hex digest.
func (s *ChecksumService) Generate(artifact *entities.Artifact) ([]*entities.Artifact, error) {
	var out []*entities.Artifact
	for _, algorithm := range ChecksumAlgorithms {
		digest, err := ComputeFile(artifact.Path, algorithm)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s of %s: %w", algorithm, artifact.Name, err)
		}

		path := artifact.Path + "." + algorithm
		if err := os.WriteFile(path, []byte(digest), 0600); err != nil {
			return nil, fmt.Errorf("failed to write %s file: %w", algorithm, err)
		}

		out = append(out, &entities.Artifact{
			Name:       artifact.Name + "." + algorithm,
			Version:    artifact.Version,
			Classifier: artifact.Classifier,
			Extension:  artifact.Extension + "." + algorithm,
			Path:       path,
			Type:       entities.ArtifactTypeChecksum,
		})
	}
	return out, nil
}

// GenerateAll writes checksums for every non-checksum artifact of the publication
func (s *ChecksumService) GenerateAll(pub *entities.Publication) ([]*entities.Artifact, error) {
	var out []*entities.Artifact
	for _, a := range pub.Artifacts {
		if a.Type == entities.ArtifactTypeChecksum {
			continue
		}
		sums, err := s.Generate(a)
		if err != nil {
			return nil, err
		}
		out = append(out, sums...)
	}
	return out, nil
}
