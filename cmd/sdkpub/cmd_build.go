package main

import (
	"context"
	"fmt"
	"io"

	orchestrators "github.com/hivemq/sdkpub/internal/domain-orchestrators"
	"github.com/hivemq/sdkpub/internal/domain/interfaces"
)

const buildUsage = `Usage: sdkpub build [options]

Resolve dependencies, compile, generate javadoc and package the main, sources
and javadoc jars plus the POM into the output directory. Artifacts are signed
when SIGNING_KEY is set. License header and metadata findings are reported as
warnings.

Examples:
  sdkpub build
  sdkpub build --descriptor sdk-platform
  sdkpub build -C ../hivemq-extension-sdk --version 4.31.0-SNAPSHOT
`

func runBuild(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("build", buildUsage, stdout)
	var (
		common  commonFlags
		opts    pipelineOptions
		version string
	)
	common.register(fs)
	opts.register(fs, false)
	fs.StringVar(&version, "version", "", "Override the descriptor version")

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	return runPipeline(ctx, stdout, common, opts, version)
}

// runPipeline loads the project, wires the adapters and runs every stage
func runPipeline(ctx context.Context, stdout io.Writer, common commonFlags, opts pipelineOptions, version string) error {
	env, err := common.setup(version)
	if err != nil {
		return err
	}

	project, err := env.loadProject(ctx, common.descriptor)
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(project, opts, env.logger)
	if err != nil {
		return err
	}

	config := orchestrators.PipelineConfig{
		Publish:        opts.publish,
		RequireSigning: opts.publish && !project.Coordinates.IsSnapshot() && project.Repository.RequireSigning,
		SigningKey:     signingKey(),
		StageTimeout:   opts.stageTimeout,
		RunID:          env.runID,
		Revision:       env.revision(),
	}

	action := "Building"
	if opts.publish {
		action = "Publishing"
	}
	fmt.Fprintf(stdout, "📦 %s %s (%s)\n", action, project.Coordinates, project.Variant)
	env.logger.Debug("pipeline configured",
		interfaces.F("run_id", config.RunID),
		interfaces.F("revision", config.Revision),
		interfaces.F("require_signing", config.RequireSigning),
		interfaces.F("signing_key", config.SigningKey.String()),
	)

	result, err := pipeline.Run(ctx, project, config)
	if result != nil {
		if result.Gate != nil {
			fmt.Fprintf(stdout, "\n%s\n", result.Gate.Summary())
		}
		for _, file := range result.UpdatedFiles {
			fmt.Fprintf(stdout, "✏️  Updated version references in %s\n", file)
		}
		if result.DocsPatched {
			fmt.Fprintln(stdout, "🩹 Patched javadoc search script")
		}
		fmt.Fprintf(stdout, "\n%s\n", result.GetSummary())
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "\n✅ Output: %s\n", project.OutputDir)
	return nil
}
