package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hivemq/sdkpub/internal/domain"
	"github.com/hivemq/sdkpub/internal/domain/services"
)

const checkUsage = `Usage: sdkpub check [options]

Check that every Java source file starts with the configured license header.
Exits with status 1 when a file lacks the header.
`

func runCheck(ctx context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("check", checkUsage, stdout)
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

	report, err := services.NewLicenseHeaderService().Check(project)
	if err != nil {
		return err
	}

	if report.MissingHeader {
		return fmt.Errorf("%w: no license header configured for %d source files",
			domain.ErrLicenseHeaderMismatch, report.Checked)
	}
	for _, m := range report.Mismatches {
		fmt.Fprintf(stdout, "❌ %s: %s\n", m.Path, m.Reason)
	}
	if !report.Passed() {
		return fmt.Errorf("%w: %d of %d source files (run \"sdkpub format\" to fix)",
			domain.ErrLicenseHeaderMismatch, len(report.Mismatches), report.Checked)
	}

	fmt.Fprintf(stdout, "✅ %d source files carry the license header\n", report.Checked)
	return nil
}
