package gateways

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hivemq/sdkpub/internal/domain/services"
)

// ChecksumResult is the outcome of checking one sidecar file
type ChecksumResult struct {
	Algorithm string
	Expected  string
	Actual    string
	Err       error
}

// OK reports whether the sidecar matched
func (r ChecksumResult) OK() bool {
	return r.Err == nil
}

// checksumVerifier verifies repository checksum sidecars in pure Go
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// VerifyChecksum compares a file's digest with expectedSum
func (v *checksumVerifier) VerifyChecksum(_ context.Context, filePath, algorithm, expectedSum string) error {
	actualSum, err := services.ComputeFile(filePath, algorithm)
	if err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	if !strings.EqualFold(actualSum, strings.TrimSpace(expectedSum)) {
		return fmt.Errorf("%s mismatch: expected %s, got %s", algorithm, expectedSum, actualSum)
	}
	return nil
}

// VerifySidecars checks every <file>.<algorithm> sidecar present next to filePath.
// Missing sidecars are reported as errors only when required is set.
func (v *checksumVerifier) VerifySidecars(ctx context.Context, filePath string, required bool) []ChecksumResult {
	var results []ChecksumResult
	for _, algorithm := range services.ChecksumAlgorithms {
		result := ChecksumResult{Algorithm: algorithm}

		expected, err := readChecksumFile(filePath + "." + algorithm)
		if os.IsNotExist(err) && !required {
			continue
		}
		if err != nil {
			result.Err = fmt.Errorf("missing %s checksum: %w", algorithm, err)
			results = append(results, result)
			continue
		}

		result.Expected = expected
		result.Err = v.VerifyChecksum(ctx, filePath, algorithm, expected)
		if result.Err == nil {
			result.Actual = expected
		}
		results = append(results, result)
	}
	return results
}
