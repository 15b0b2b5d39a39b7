package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

func TestComputeFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.bin")
	if err := os.WriteFile(testFile, []byte("hello"), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	tests := []struct {
		algorithm string
		want      string
	}{
		{"md5", "5d41402abc4b2a76b9719d911017c592"},
		{"sha1", "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		{"sha256", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
	}

	for _, tt := range tests {
		got, err := ComputeFile(testFile, tt.algorithm)
		if err != nil {
			t.Fatalf("ComputeFile(%s) failed: %v", tt.algorithm, err)
		}
		if got != tt.want {
			t.Errorf("ComputeFile(%s) = %s, want %s", tt.algorithm, got, tt.want)
		}
	}

	if _, err := ComputeFile(testFile, "crc32"); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
}

func TestChecksumService_GenerateAll(t *testing.T) {
	tmpDir := t.TempDir()
	jar := filepath.Join(tmpDir, "sdk-1.0.0.jar")
	if err := os.WriteFile(jar, []byte("hello"), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	pub := &entities.Publication{}
	pub.Add(
		&entities.Artifact{Name: "sdk-1.0.0.jar", Extension: "jar", Path: jar, Type: entities.ArtifactTypeBinary},
		&entities.Artifact{Name: "sdk-1.0.0.jar.md5", Path: jar + ".md5", Type: entities.ArtifactTypeChecksum},
	)

	sums, err := NewChecksumService().GenerateAll(pub)
	if err != nil {
		t.Fatalf("GenerateAll failed: %v", err)
	}
	if len(sums) != len(ChecksumAlgorithms) {
		t.Fatalf("got %d checksum artifacts, want %d", len(sums), len(ChecksumAlgorithms))
	}

	//nolint:gosec // G304: test output file
	content, err := os.ReadFile(jar + ".sha1")
	if err != nil {
		t.Fatalf("Failed to read sha1 file: %v", err)
	}
	if string(content) != "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d" {
		t.Errorf("sha1 file should contain only the digest, got %q", content)
	}
	if sums[1].Extension != "jar.sha1" || sums[1].Type != entities.ArtifactTypeChecksum {
		t.Errorf("unexpected checksum artifact: %+v", sums[1])
	}
}
