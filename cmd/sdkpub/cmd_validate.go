package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hivemq/sdkpub/internal/domain"
	"github.com/hivemq/sdkpub/internal/domain/services"
)

const validateUsage = `Usage: sdkpub validate [options]

Load every descriptor variant (sdk*.yml) of the project, validate the metadata
that ends up in the published POM and report drift between the variants.
`

func runValidate(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("validate", validateUsage, stdout)
	var common commonFlags
	common.register(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	env, err := common.setup("")
	if err != nil {
		return err
	}

	projects, err := env.repo.ListProjects(ctx)
	if err != nil {
		return &usageError{err: err}
	}

	metadata := services.NewMetadataValidationService()
	violations := 0
	for _, project := range projects {
		found := metadata.ValidateProject(project)
		if len(found) == 0 {
			fmt.Fprintf(stdout, "✅ %s: %s\n", project.Variant, project.Coordinates)
			continue
		}
		fmt.Fprintf(stdout, "❌ %s: %s\n", project.Variant, project.Coordinates)
		for _, v := range found {
			fmt.Fprintf(stdout, "   %s: %s\n", v.Field, v.Message)
		}
		violations += len(found)
	}

	drift := metadata.CompareVariants(projects)
	for _, v := range drift {
		fmt.Fprintf(stdout, "⚠️  %s: %s\n", v.Field, v.Message)
	}
	violations += len(drift)

	if violations > 0 {
		return fmt.Errorf("%w: %d violations in %d variants", domain.ErrInvalidMetadata, violations, len(projects))
	}
	fmt.Fprintf(stdout, "\n✅ %d variants valid and consistent\n", len(projects))
	return nil
}
