package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hivemq/sdkpub/internal/domain-adapters/gateways"
	"github.com/hivemq/sdkpub/internal/domain/entities"
	domainGateways "github.com/hivemq/sdkpub/internal/domain/interfaces/gateways"
	"github.com/hivemq/sdkpub/internal/domain/services"
)

const verifyUsage = `Usage: sdkpub verify [options]

Verify a built publication in the output directory:
  - every jar and the POM are present
  - detached signatures (.asc) verify against the given public key
  - checksum sidecars (.md5, .sha1, .sha256, .sha512) match
  - jar manifests carry the project's implementation attributes

Examples:
  # Verify against an exported public key
  sdkpub verify --key hivemq-release.asc

  # Verify with the public half of SIGNING_KEY
  sdkpub verify --signing-key

  # Also require checksum sidecars
  sdkpub verify --key hivemq-release.asc --require-checksums
`

// verifyOptions select the checks of a verify run
type verifyOptions struct {
	keyFile          string
	useSigningKey    bool
	requireChecksums bool
	outputDir        string
}

func runVerify(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("verify", verifyUsage, stdout)
	var (
		common commonFlags
		opts   verifyOptions
	)
	common.register(fs)
	fs.StringVar(&opts.keyFile, "key", "", "ASCII-armored public key file used to verify signatures")
	fs.BoolVar(&opts.useSigningKey, "signing-key", false, "Verify signatures with the public half of SIGNING_KEY")
	fs.BoolVar(&opts.requireChecksums, "require-checksums", false, "Fail when a checksum sidecar is missing")
	fs.StringVar(&opts.outputDir, "output-dir", "", "Output directory to verify (default from descriptor)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	env, err := common.setup("")
	if err != nil {
		return err
	}
	project, err := env.loadProject(ctx, common.descriptor)
	if err != nil {
		return err
	}
	if opts.outputDir == "" {
		opts.outputDir = project.OutputDir
	}

	return executeVerify(ctx, stdout, project, opts)
}

func executeVerify(ctx context.Context, stdout io.Writer, project *entities.Project, opts verifyOptions) error {
	pub, err := gateways.NewArtifactFinder().FindPublication(opts.outputDir, project.Coordinates)
	if err != nil {
		return err
	}

	var verifier domainGateways.SignatureVerifier = gateways.NewGPGVerifier()
	if opts.keyFile != "" {
		if err := verifier.ImportKeyFromFile(opts.keyFile); err != nil {
			return usagef("%v", err)
		}
	}
	if opts.useSigningKey {
		if err := verifier.ImportSigningKey(signingKey()); err != nil {
			return usagef("%v", err)
		}
	}
	checkSignatures := verifier.KeyringSize() > 0

	verified := 0
	failed := 0
	report := func(ok bool, format string, args ...any) {
		if ok {
			verified++
			fmt.Fprintf(stdout, "✅ "+format+"\n", args...)
			return
		}
		failed++
		fmt.Fprintf(stdout, "❌ "+format+"\n", args...)
	}

	fmt.Fprintf(stdout, "🔍 Verifying %s in %s\n\n", project.Coordinates, opts.outputDir)

	// Step 1: Completeness
	validation := services.NewPublicationService().ValidatePublication(pub, checkSignatures)
	if validation.IsReady() {
		report(true, "Publication complete (%d files)", len(validation.Expected))
	} else {
		report(false, "Publication incomplete: %s", validation.ErrorMessage())
	}

	// Step 2: Signatures
	if checkSignatures {
		for _, artifact := range pub.Signable() {
			sigPath := artifact.Path + ".asc"
			if _, err := os.Stat(sigPath); err != nil {
				continue // reported by the completeness check
			}
			keyID, err := verifier.VerifySigner(artifact.Path, sigPath)
			if err == nil {
				report(true, "Signature %s (key %s)", filepath.Base(sigPath), keyID)
				continue
			}
			report(false, "Signature %s%s", filepath.Base(sigPath), errSuffix(err))
		}
	} else {
		fmt.Fprintln(stdout, "⏭️  Signatures skipped (no public key given)")
	}

	// Step 3: Checksums
	checksums := gateways.NewChecksumVerifier()
	for _, artifact := range pub.Artifacts {
		if artifact.Type == entities.ArtifactTypeChecksum {
			continue
		}
		for _, result := range checksums.VerifySidecars(ctx, artifact.Path, opts.requireChecksums) {
			report(result.OK(), "Checksum %s.%s%s", artifact.Name, result.Algorithm, errSuffix(result.Err))
		}
	}

	// Step 4: Manifests
	expected := gateways.RenderManifest(gateways.ManifestAttributes(project))
	for _, artifact := range pub.Artifacts {
		if artifact.Extension != "jar" {
			continue
		}
		manifest, err := gateways.ReadJarEntry(artifact.Path, gateways.ManifestPath)
		if err == nil && !bytes.Equal(manifest, expected) {
			err = fmt.Errorf("manifest does not match %s", project.Coordinates)
		}
		report(err == nil, "Manifest %s%s", artifact.Name, errSuffix(err))
	}

	fmt.Fprintf(stdout, "\nVerified: %d, failed: %d\n", verified, failed)
	if failed > 0 {
		return fmt.Errorf("%d verification checks failed", failed)
	}
	return nil
}

func errSuffix(err error) string {
	if err == nil {
		return ""
	}
	return ": " + err.Error()
}
