package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hivemq/sdkpub/internal/domain/services"
)

const formatUsage = `Usage: sdkpub format [options]

Insert the configured license header into every Java source file that lacks it.
Files that already carry the header are left untouched.
`

func runFormat(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("format", formatUsage, stdout)
	var common commonFlags
	common.register(fs)
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

	changed, err := services.NewLicenseHeaderService().Format(project)
	if err != nil {
		return err
	}

	for _, path := range changed {
		fmt.Fprintf(stdout, "✏️  %s\n", path)
	}
	fmt.Fprintf(stdout, "✅ Formatted %d files\n", len(changed))
	return nil
}
