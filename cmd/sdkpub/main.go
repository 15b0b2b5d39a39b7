// Package main provides the sdkpub CLI that compiles, documents, packages, signs and publishes
// the HiveMQ extension SDK.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks invalid invocations and configuration problems
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, stdout io.Writer) error
}

var commands = []command{
	{"build", "Compile, document and package the SDK (signs when a key is configured)", runBuild},
	{"publish", "Run the full pipeline and publish to the configured repository", runPublish},
	{"check", "Check license headers of all source files", runCheck},
	{"format", "Add the license header to source files that lack it", runFormat},
	{"verify", "Verify signatures, checksums and manifests of built artifacts", runVerify},
	{"validate", "Validate descriptor metadata across all variants", runValidate},
	{"patch-javadoc", "Repair the javadoc search script in a generated doc tree", runPatchJavadoc},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	name := args[0]
	switch name {
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	}

	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		return exitCode(cmd.run(ctx, args[1:], stdout), stderr)
	}

	fmt.Fprintf(stderr, "Unknown command: %s\n\n", name)
	printUsage(stderr)
	return exitUsage
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var usage *usageError
	if errors.As(err, &usage) {
		return exitUsage
	}
	return exitFailure
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `sdkpub - Build and release pipeline for the HiveMQ extension SDK

Usage:
  sdkpub <command> [options]

Commands:`)
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-14s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(w, `
Environment:
  SIGNING_KEY, SIGNING_PASSWORD          ASCII-armored signing key and its passphrase
  SONATYPE_USERNAME, SONATYPE_PASSWORD   Repository credentials
  SDKPUB_LOG_LEVEL, SDKPUB_LOG_JSON      Log level and JSON log output
  JAVA_HOME                              JDK used for javac and javadoc

Use "sdkpub <command> --help" for more information about a command.`)
}
