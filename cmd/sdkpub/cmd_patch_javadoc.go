package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hivemq/sdkpub/internal/domain/services"
)

const patchJavadocUsage = `Usage: sdkpub patch-javadoc <javadoc-dir>

Repair search.js of a javadoc tree so that selecting a member whose name
matches a package navigates to the member. Safe to run repeatedly.
`

func runPatchJavadoc(_ context.Context, args []string, stdout io.Writer) error {
	fs := newFlagSet("patch-javadoc", patchJavadocUsage, stdout)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return usagef("javadoc directory is required")
	}

	patched, err := services.PatchJavadocSearch(fs.Arg(0))
	if err != nil {
		return err
	}
	if patched {
		fmt.Fprintln(stdout, "🩹 Patched javadoc search script")
	} else {
		fmt.Fprintln(stdout, "✅ No search script changes needed")
	}
	return nil
}
