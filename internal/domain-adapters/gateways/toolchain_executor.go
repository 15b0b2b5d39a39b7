package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hivemq/sdkpub/internal/domain/interfaces"
)

// ToolchainExecutor runs JDK tools with their arguments passed through an @argfile
type ToolchainExecutor struct {
	javaHome       string
	defaultTimeout time.Duration
	logger         interfaces.Logger
}

// NewToolchainExecutor creates a new executor. An empty javaHome falls back to PATH lookup.
func NewToolchainExecutor(javaHome string, logger interfaces.Logger) *ToolchainExecutor {
	return &ToolchainExecutor{
		javaHome:       javaHome,
		defaultTimeout: 10 * time.Minute,
		logger:         interfaces.OrNoOp(logger),
	}
}

// ToolConfig contains configuration for running one JDK tool
type ToolConfig struct {
	Tool        string
	Args        []string
	WorkingDir  string
	Timeout     time.Duration
	Description string
}

// ExecuteResult contains the result of a tool run
type ExecuteResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// Failure formats a failed run for error reporting
func (r *ExecuteResult) Failure(tool string) error {
	output := strings.TrimSpace(r.Stderr)
	if output == "" {
		output = strings.TrimSpace(r.Stdout)
	}
	if output == "" {
		return fmt.Errorf("%s failed (exit %d): %w", tool, r.ExitCode, r.Error)
	}
	return fmt.Errorf("%s failed (exit %d): %w\n%s", tool, r.ExitCode, r.Error, output)
}

// ToolPath locates a JDK tool in JAVA_HOME/bin, falling back to PATH
func (te *ToolchainExecutor) ToolPath(tool string) (string, error) {
	if te.javaHome != "" {
		path := filepath.Join(te.javaHome, "bin", tool)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%s not found in JAVA_HOME %s: %w", tool, te.javaHome, err)
		}
		return path, nil
	}

	path, err := exec.LookPath(tool)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH and JAVA_HOME is not set: %w", tool, err)
	}
	return path, nil
}

// Run executes the tool with its arguments written to a temporary argfile
func (te *ToolchainExecutor) Run(ctx context.Context, config ToolConfig) *ExecuteResult {
	startTime := time.Now()
	result := &ExecuteResult{ExitCode: -1}

	toolPath, err := te.ToolPath(config.Tool)
	if err != nil {
		result.Error = err
		return result
	}

	argfile, err := writeArgfile(config.Tool, config.Args)
	if err != nil {
		result.Error = err
		return result
	}
	//nolint:errcheck // Best effort cleanup
	defer os.Remove(argfile)

	timeout := config.Timeout
	if timeout == 0 {
		timeout = te.defaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: tool path is resolved from JAVA_HOME or PATH
	cmd := exec.CommandContext(execCtx, toolPath, "@"+argfile)
	if config.WorkingDir != "" {
		cmd.Dir = config.WorkingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	te.logger.Debug("running toolchain",
		interfaces.F("tool", config.Tool),
		interfaces.F("step", config.Description),
		interfaces.F("args", len(config.Args)),
	)

	err = cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		//nolint:gocritic // ifElseChain: checking different error types, not suitable for switch
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			result.Error = fmt.Errorf("%s timed out after %v", config.Tool, timeout)
		} else if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else if ctx.Err() != nil {
			result.Error = ctx.Err()
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}

// writeArgfile writes one quoted argument per line
func writeArgfile(tool string, args []string) (string, error) {
	f, err := os.CreateTemp("", tool+"-*.args")
	if err != nil {
		return "", fmt.Errorf("failed to create argfile: %w", err)
	}

	var b strings.Builder
	for _, arg := range args {
		b.WriteString(QuoteArg(arg))
		b.WriteByte('\n')
	}

	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write argfile: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close argfile: %w", err)
	}
	return f.Name(), nil
}

// QuoteArg quotes an argument for a javac/javadoc argfile
func QuoteArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\r\n\"'\\#") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return `"` + r.Replace(arg) + `"`
}
