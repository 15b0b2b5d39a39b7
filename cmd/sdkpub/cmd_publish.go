package main

import (
	"context"
	"io"
)

const publishUsage = `Usage: sdkpub publish [options]

Run the full pipeline and upload the publication. Release versions are staged,
closed and released through the Nexus staging API and must be signed unless the
descriptor sets repository.require_signing to false. -SNAPSHOT versions are
uploaded directly to the snapshot repository.

Credentials are read from SONATYPE_USERNAME and SONATYPE_PASSWORD, the signing
key from SIGNING_KEY and SIGNING_PASSWORD. A .env file in the project directory
is loaded first; variables already set in the environment take precedence.

Examples:
  sdkpub publish
  sdkpub publish --staging-profile 1a2b3c4d5e6f
  sdkpub publish --version 4.31.0-SNAPSHOT
`

func runPublish(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("publish", publishUsage, stdout)
	var (
		common  commonFlags
		opts    pipelineOptions
		version string
	)
	common.register(fs)
	opts.register(fs, true)
	fs.StringVar(&version, "version", "", "Override the descriptor version")

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	opts.publish = true
	return runPipeline(ctx, stdout, common, opts, version)
}
