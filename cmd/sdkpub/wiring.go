package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/hivemq/sdkpub/internal/domain-adapters/gateways"
	orchestrators "github.com/hivemq/sdkpub/internal/domain-orchestrators"
	"github.com/hivemq/sdkpub/internal/domain/entities"
	"github.com/hivemq/sdkpub/internal/domain/interfaces"
	domainGateways "github.com/hivemq/sdkpub/internal/domain/interfaces/gateways"
	"github.com/hivemq/sdkpub/internal/domain/services"
	"github.com/hivemq/sdkpub/internal/external-adapters/git"
	"github.com/hivemq/sdkpub/internal/external-adapters/logging"
	"github.com/hivemq/sdkpub/internal/external-adapters/toml"
	"github.com/hivemq/sdkpub/internal/external-adapters/yaml"
)

// Environment variables. Credentials also accept the ORG_GRADLE_PROJECT_* names used by Gradle.
const (
	envSigningKey       = "SIGNING_KEY"
	envSigningPassword  = "SIGNING_PASSWORD"
	envSonatypeUsername = "SONATYPE_USERNAME"
	envSonatypePassword = "SONATYPE_PASSWORD"
	envLogLevel         = "SDKPUB_LOG_LEVEL"
	envLogJSON          = "SDKPUB_LOG_JSON"
	envJavaHome         = "JAVA_HOME"
)

var envFallbacks = map[string]string{
	envSigningKey:       "ORG_GRADLE_PROJECT_signingKey",
	envSigningPassword:  "ORG_GRADLE_PROJECT_signingPassword",
	envSonatypeUsername: "ORG_GRADLE_PROJECT_sonatypeUsername",
	envSonatypePassword: "ORG_GRADLE_PROJECT_sonatypePassword",
}

// getenv returns the variable or its Gradle fallback
func getenv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if fallback, ok := envFallbacks[key]; ok {
		return os.Getenv(fallback)
	}
	return ""
}

// commonFlags are shared by every command that loads a project
type commonFlags struct {
	projectDir string
	descriptor string
	envFile    string
	logLevel   string
	logJSON    bool
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.projectDir, "project-dir", "C", ".", "Project directory containing the descriptors")
	fs.StringVarP(&c.descriptor, "descriptor", "d", "sdk", "Descriptor variant (file name without extension)")
	fs.StringVar(&c.envFile, "env-file", ".env", "Environment file relative to the project directory")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error (default $"+envLogLevel+" or info)")
	fs.BoolVar(&c.logJSON, "log-json", false, "Write JSON logs (default $"+envLogJSON+")")
}

// newFlagSet creates a flag set that reports errors instead of exiting.
// --help output goes to out.
func newFlagSet(name, usage string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "%s\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseFlags parses args and classifies flag errors as usage errors
func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return err
		}
		return &usageError{err: err}
	}
	return nil
}

// loadEnv reads the project's .env file. Variables already set in the process win.
func (c *commonFlags) loadEnv() error {
	if c.envFile == "" {
		return nil
	}
	path := c.envFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.projectDir, path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return usagef("failed to load %s: %v", path, err)
	}
	return nil
}

// newLogger builds the slog-backed logger. Flags take precedence over the environment.
func (c *commonFlags) newLogger() (interfaces.Logger, error) {
	level := c.logLevel
	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	jsonLogs := c.logJSON
	if !jsonLogs {
		jsonLogs, _ = strconv.ParseBool(os.Getenv(envLogJSON))
	}

	logger, err := logging.New(os.Stderr, logging.Options{Level: level, JSON: jsonLogs})
	if err != nil {
		return nil, &usageError{err: err}
	}
	return logger, nil
}

// environment is everything a command needs after flag parsing
type environment struct {
	logger    interfaces.Logger
	inspector *git.Inspector
	repo      *yaml.ProjectRepository
	runID     string
}

// setup loads the environment, creates the logger and opens the project repository
func (c *commonFlags) setup(version string) (*environment, error) {
	if err := c.loadEnv(); err != nil {
		return nil, err
	}
	logger, err := c.newLogger()
	if err != nil {
		return nil, err
	}

	projectDir, err := filepath.Abs(c.projectDir)
	if err != nil {
		return nil, usagef("invalid project directory: %v", err)
	}
	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return nil, usagef("project directory does not exist: %s", projectDir)
	}

	env := &environment{
		logger: logger,
		runID:  uuid.NewString(),
	}

	var opts []yaml.ParserOption
	if version != "" {
		opts = append(opts, yaml.WithVersion(version))
	}

	catalog, err := toml.Load(projectDir)
	if err != nil {
		return nil, usagef("%v", err)
	}
	if catalog != nil {
		opts = append(opts, yaml.WithCatalog(catalog))
	}

	if inspector, err := git.NewInspector(projectDir); err == nil {
		env.inspector = inspector
		opts = append(opts, yaml.WithSCM(inspector))
	} else {
		logger.Debug("no git repository found", interfaces.F("dir", projectDir))
	}

	env.repo = yaml.NewProjectRepository(projectDir, opts...)
	return env, nil
}

// revision returns the short HEAD revision, or an empty string outside a git checkout
func (e *environment) revision() string {
	if e.inspector == nil {
		return ""
	}
	rev, err := e.inspector.ShortRevision()
	if err != nil {
		e.logger.Debug("failed to read revision", interfaces.F("error", err))
		return ""
	}
	return rev
}

// loadProject loads the selected descriptor variant. Descriptor errors are configuration errors.
func (e *environment) loadProject(ctx context.Context, variant string) (*entities.Project, error) {
	project, err := e.repo.GetProject(ctx, variant)
	if err != nil {
		return nil, &usageError{err: err}
	}
	return project, nil
}

// pipelineOptions configure the adapters of a pipeline run
type pipelineOptions struct {
	mavenURL     string
	cacheDir     string
	stageTimeout time.Duration
	publish      bool
	nexusURL     string
	snapshotURL  string
	profileID    string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func (o *pipelineOptions) register(fs *pflag.FlagSet, publish bool) {
	fs.StringVar(&o.mavenURL, "maven-url", gateways.DefaultMavenCentralURL, "Maven repository used to resolve dependencies")
	fs.StringVar(&o.cacheDir, "cache-dir", "", "Dependency cache directory (default <user cache>/sdkpub/maven)")
	fs.DurationVar(&o.stageTimeout, "stage-timeout", 10*time.Minute, "Timeout of each toolchain stage")
	if !publish {
		return
	}
	fs.StringVar(&o.nexusURL, "repository-url", "", "Staging API URL (default from descriptor or "+gateways.DefaultNexusURL+")")
	fs.StringVar(&o.snapshotURL, "snapshot-url", "", "Snapshot repository URL (default from descriptor)")
	fs.StringVar(&o.profileID, "staging-profile", "", "Staging profile ID (looked up by group when empty)")
	fs.DurationVar(&o.pollInterval, "poll-interval", 10*time.Second, "Interval between staging status checks")
	fs.DurationVar(&o.pollTimeout, "poll-timeout", 10*time.Minute, "Maximum wait for close and release")
}

func (o *pipelineOptions) resolveCacheDir() (string, error) {
	if o.cacheDir != "" {
		return o.cacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine cache directory: %w", err)
	}
	return filepath.Join(base, "sdkpub", "maven"), nil
}

// signingKey reads the signing key material from the environment
func signingKey() entities.SigningKey {
	return entities.SigningKey{
		ArmoredKey: getenv(envSigningKey),
		Passphrase: getenv(envSigningPassword),
	}
}

// newPipeline wires every adapter into a pipeline orchestrator
func newPipeline(project *entities.Project, opts pipelineOptions, logger interfaces.Logger) (*orchestrators.PipelineOrchestrator, error) {
	cacheDir, err := opts.resolveCacheDir()
	if err != nil {
		return nil, err
	}

	downloader := gateways.NewMavenDownloader(opts.mavenURL, cacheDir, logger)
	resolver := gateways.NewCompositeResolver(
		gateways.NewLocalBuildResolver(),
		gateways.NewRemoteResolver(downloader, logger),
		logger,
	)

	executor := gateways.NewToolchainExecutor(os.Getenv(envJavaHome), logger)
	gate := orchestrators.NewGateOrchestrator(
		services.NewLicenseHeaderService(),
		services.NewMetadataValidationService(),
	)

	var publisher domainGateways.RepositoryGateway
	if opts.publish {
		username, password := getenv(envSonatypeUsername), getenv(envSonatypePassword)
		if username == "" || password == "" {
			return nil, usagef("%s and %s are required to publish", envSonatypeUsername, envSonatypePassword)
		}
		publisher = gateways.NewNexusGateway(gateways.NexusConfig{
			BaseURL:          firstNonEmpty(opts.nexusURL, project.Repository.URL),
			SnapshotURL:      firstNonEmpty(opts.snapshotURL, project.Repository.SnapshotURL),
			Username:         username,
			Password:         password,
			StagingProfileID: firstNonEmpty(opts.profileID, project.Repository.StagingProfileID),
			PollInterval:     opts.pollInterval,
			PollTimeout:      opts.pollTimeout,
		}, logger)
	}

	return orchestrators.NewPipelineOrchestrator(
		resolver,
		gateways.NewJavacCompiler(executor),
		gateways.NewJavadocGenerator(executor),
		gateways.NewJarPackager(),
		gateways.NewGPGSigner(),
		publisher,
		gate,
		logger,
	), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
