// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hivemq/sdkpub/internal/domain"
	"github.com/hivemq/sdkpub/internal/domain/entities"
	"github.com/hivemq/sdkpub/internal/domain/interfaces"
	"github.com/hivemq/sdkpub/internal/domain/interfaces/gateways"
	"github.com/hivemq/sdkpub/internal/domain/services"
)

// DependencyResolver turns declared dependencies into a compile classpath
type DependencyResolver interface {
	Resolve(ctx context.Context, project *entities.Project) ([]entities.ResolvedDependency, error)
}

// Compiler compiles the project sources into a class directory
type Compiler interface {
	Compile(ctx context.Context, project *entities.Project, deps []entities.ResolvedDependency, classesDir string) error
}

// DocGenerator renders API documentation for the project sources
type DocGenerator interface {
	Generate(ctx context.Context, project *entities.Project, deps []entities.ResolvedDependency, docsDir string) error
}

// Packager writes reproducible jar archives
type Packager interface {
	PackageJar(ctx context.Context, project *entities.Project, classifier string, roots []string, outputDir string) (*entities.Artifact, error)
}

// PipelineOrchestrator runs compile -> document -> package -> sign -> publish for one project
type PipelineOrchestrator struct {
	resolver       DependencyResolver
	compiler       Compiler
	docGenerator   DocGenerator
	packager       Packager
	signer         gateways.Signer
	publisher      gateways.RepositoryGateway
	gate           *GateOrchestrator
	versionUpdater *services.VersionUpdaterService
	pomService     *services.PomService
	checksums      *services.ChecksumService
	logger         interfaces.Logger
}

// PipelineConfig holds the per-run options of the pipeline
type PipelineConfig struct {
	Publish        bool
	RequireSigning bool
	SigningKey     entities.SigningKey
	StageTimeout   time.Duration
	RunID          string
	Revision       string
}

// NewPipelineOrchestrator creates a new pipeline orchestrator.
// signer and publisher may be nil for runs that never sign or publish.
func NewPipelineOrchestrator(
	resolver DependencyResolver,
	compiler Compiler,
	docGenerator DocGenerator,
	packager Packager,
	signer gateways.Signer,
	publisher gateways.RepositoryGateway,
	gate *GateOrchestrator,
	logger interfaces.Logger,
) *PipelineOrchestrator {
	return &PipelineOrchestrator{
		resolver:       resolver,
		compiler:       compiler,
		docGenerator:   docGenerator,
		packager:       packager,
		signer:         signer,
		publisher:      publisher,
		gate:           gate,
		versionUpdater: services.NewVersionUpdaterService(),
		pomService:     services.NewPomService(),
		checksums:      services.NewChecksumService(),
		logger:         interfaces.OrNoOp(logger),
	}
}

// PipelineResult contains the outcome of a pipeline run
type PipelineResult struct {
	Project        *entities.Project
	Dependencies   []entities.ResolvedDependency
	Publication    *entities.Publication
	Gate           *GateResult
	Receipt        *gateways.PublishReceipt
	UpdatedFiles   []string
	Completed      []string
	StageDurations map[string]time.Duration
	Signed         bool
	DocsPatched    bool
	TotalDuration  time.Duration
	Success        bool
	Error          error
}

// Run executes every stage in order and stops at the first failure
func (o *PipelineOrchestrator) Run(ctx context.Context, project *entities.Project, config PipelineConfig) (*PipelineResult, error) {
	startTime := time.Now()
	result := &PipelineResult{
		Project:        project,
		Publication:    &entities.Publication{Coordinates: project.Coordinates},
		StageDurations: make(map[string]time.Duration),
	}
	log := o.logger.With(
		interfaces.F("run_id", config.RunID),
		interfaces.F("coordinates", project.Coordinates.String()),
	)

	buildDir := project.OutputDir
	classesDir := filepath.Join(buildDir, "classes")
	docsDir := filepath.Join(buildDir, "docs", "javadoc")
	libsDir := filepath.Join(buildDir, "libs")

	stages := []struct {
		name string
		kind error
		run  func(ctx context.Context) error
	}{
		// Step 1: Resolve the compile classpath
		{domain.StageResolve, domain.ErrResolve, func(ctx context.Context) error {
			deps, err := o.resolver.Resolve(ctx, project)
			if err != nil {
				return err
			}
			result.Dependencies = deps
			return nil
		}},
		// Step 2: Keep documentation snippets on the current version
		{domain.StagePrepare, domain.ErrPrepare, func(_ context.Context) error {
			if !o.versionUpdater.Enabled(project) {
				return nil
			}
			changed, err := o.versionUpdater.Update(project)
			if err != nil {
				return err
			}
			result.UpdatedFiles = changed
			return nil
		}},
		// Step 3: Compile
		{domain.StageCompile, domain.ErrCompile, func(ctx context.Context) error {
			return o.compiler.Compile(ctx, project, result.Dependencies, classesDir)
		}},
		// Step 4: Generate and repair javadoc
		{domain.StageDocument, domain.ErrDocument, func(ctx context.Context) error {
			if err := o.docGenerator.Generate(ctx, project, result.Dependencies, docsDir); err != nil {
				return err
			}
			patched, err := services.PatchJavadocSearch(docsDir)
			if err != nil {
				return err
			}
			result.DocsPatched = patched
			return nil
		}},
		// Step 5: Package jars and the POM
		{domain.StagePackage, domain.ErrPackage, func(ctx context.Context) error {
			return o.packagePublication(ctx, project, result, classesDir, docsDir, libsDir)
		}},
		// Step 6: Release gate
		{domain.StageGate, domain.ErrReleaseGate, func(ctx context.Context) error {
			gate, err := o.gate.PerformGate(ctx, project, result.Publication, config.Publish)
			if err != nil {
				return err
			}
			result.Gate = gate
			if gate.LicenseReport.MissingHeader {
				log.Warn("no license header configured", interfaces.F("files", gate.LicenseReport.Checked))
			} else {
				for _, m := range gate.LicenseReport.Mismatches {
					log.Warn("license header mismatch", interfaces.F("file", m.Path))
				}
			}
			for _, v := range gate.Violations {
				log.Warn("metadata violation", interfaces.F("field", v.Field), interfaces.F("message", v.Message))
			}
			return gate.Err()
		}},
		// Step 7: Sign
		{domain.StageSign, domain.ErrSigning, func(ctx context.Context) error {
			return o.sign(ctx, result, config, log)
		}},
		// Step 8: Publish
		{domain.StagePublish, domain.ErrPublish, func(ctx context.Context) error {
			if !config.Publish {
				return nil
			}
			return o.publish(ctx, result, config)
		}},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return o.fail(result, startTime, domain.NewStageError(stage.name, stage.kind, err))
		}

		log.Info("stage started", interfaces.F("stage", stage.name))
		stageStart := time.Now()

		stageCtx, cancel := o.stageContext(ctx, stage.name, config.StageTimeout)
		err := stage.run(stageCtx)
		cancel()

		result.StageDurations[stage.name] = time.Since(stageStart)
		if err != nil {
			stageErr := domain.NewStageError(stage.name, stage.kind, err,
				goerr.V("coordinates", project.Coordinates.String()),
			)
			log.Error("stage failed", errorFields(stage.name, stageErr)...)
			return o.fail(result, startTime, stageErr)
		}

		result.Completed = append(result.Completed, stage.name)
		log.Info("stage completed",
			interfaces.F("stage", stage.name),
			interfaces.F("duration", result.StageDurations[stage.name].String()),
		)
	}

	result.Success = true
	result.TotalDuration = time.Since(startTime)
	return result, nil
}

// stageContext bounds toolchain stages by the configured timeout.
// Publishing is bounded by the gateway's own HTTP and polling timeouts.
func (o *PipelineOrchestrator) stageContext(ctx context.Context, stage string, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 || stage == domain.StagePublish {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// errorFields turns the values attached along the error chain into log fields
func errorFields(stage string, err error) []interfaces.Field {
	values := goerr.Values(err)
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "stage" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	fields := []interfaces.Field{interfaces.F("stage", stage), interfaces.F("error", err.Error())}
	for _, k := range keys {
		fields = append(fields, interfaces.F(k, values[k]))
	}
	return fields
}

func (o *PipelineOrchestrator) fail(result *PipelineResult, startTime time.Time, err error) (*PipelineResult, error) {
	result.Error = err
	result.TotalDuration = time.Since(startTime)
	return result, err
}

func (o *PipelineOrchestrator) packagePublication(ctx context.Context, project *entities.Project, result *PipelineResult, classesDir, docsDir, libsDir string) error {
	sourceRoots := append(append([]string{}, project.SourceDirs...), project.ResourceDirs...)
	classRoots := append([]string{classesDir}, project.ResourceDirs...)

	jars := []struct {
		classifier string
		roots      []string
	}{
		{"", classRoots},
		{"sources", sourceRoots},
		{"javadoc", []string{docsDir}},
	}

	for _, jar := range jars {
		artifact, err := o.packager.PackageJar(ctx, project, jar.classifier, jar.roots, libsDir)
		if err != nil {
			return fmt.Errorf("failed to package %s jar: %w", classifierLabel(jar.classifier), err)
		}
		result.Publication.Add(artifact)
	}

	pom, err := o.pomService.WritePOM(project, result.Dependencies, filepath.Join(project.OutputDir, "publications"))
	if err != nil {
		return err
	}
	result.Publication.Add(pom)
	return nil
}

func (o *PipelineOrchestrator) sign(ctx context.Context, result *PipelineResult, config PipelineConfig, log interfaces.Logger) error {
	if config.SigningKey.IsEmpty() {
		if config.RequireSigning {
			return goerr.New("signing key is required but SIGNING_KEY is not set")
		}
		log.Info("no signing key configured, skipping signatures")
		return nil
	}
	if o.signer == nil {
		return goerr.New("no signer configured")
	}

	for _, artifact := range result.Publication.Signable() {
		sigPath, err := o.signer.SignDetached(ctx, config.SigningKey, artifact.Path)
		if err != nil {
			return goerr.Wrap(err, "failed to sign artifact", goerr.V("artifact", artifact.Name))
		}
		result.Publication.Add(&entities.Artifact{
			Name:       filepath.Base(sigPath),
			Version:    artifact.Version,
			Classifier: artifact.Classifier,
			Extension:  artifact.Extension + ".asc",
			Path:       sigPath,
			Type:       entities.ArtifactTypeSignature,
		})
	}
	result.Signed = true
	return nil
}

func (o *PipelineOrchestrator) publish(ctx context.Context, result *PipelineResult, config PipelineConfig) error {
	if o.publisher == nil {
		return goerr.New("no repository configured")
	}

	validation := o.gate.publications.ValidatePublication(result.Publication, config.RequireSigning)
	if !validation.IsReady() {
		return goerr.New(validation.ErrorMessage(), goerr.V("status", string(validation.Status)))
	}

	sums, err := o.checksums.GenerateAll(result.Publication)
	if err != nil {
		return err
	}
	result.Publication.Add(sums...)

	receipt, err := o.publisher.Publish(ctx, result.Publication, stagingDescription(result.Project, config))
	if err != nil {
		return err
	}
	result.Receipt = receipt
	return nil
}

func stagingDescription(project *entities.Project, config PipelineConfig) string {
	parts := []string{project.Coordinates.String()}
	if config.Revision != "" {
		parts = append(parts, "rev "+config.Revision)
	}
	if config.RunID != "" {
		parts = append(parts, "run "+config.RunID)
	}
	return strings.Join(parts, " ")
}

func classifierLabel(classifier string) string {
	if classifier == "" {
		return "main"
	}
	return classifier
}

// GetSummary returns a human-readable summary of the run
func (r *PipelineResult) GetSummary() string {
	if !r.Success {
		stage := domain.FailedStage(r.Error)
		if stage == "" {
			return fmt.Sprintf("Pipeline failed: %v", r.Error)
		}
		return fmt.Sprintf("Pipeline failed in %s stage: %v", stage, r.Error)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pipeline successful!\nCoordinates: %s\n", r.Project.Coordinates)
	for _, stage := range r.Completed {
		fmt.Fprintf(&b, "%-9s %v\n", stage+":", r.StageDurations[stage].Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "Artifacts: %d", len(r.Publication.Artifacts))
	if r.Signed {
		fmt.Fprintf(&b, " (%d signatures)", len(r.Publication.ByType(entities.ArtifactTypeSignature)))
	}
	fmt.Fprintf(&b, "\nTotal: %v", r.TotalDuration.Round(time.Millisecond))

	if r.Receipt != nil {
		if r.Receipt.Snapshot {
			fmt.Fprintf(&b, "\nPublished snapshot: %d files", len(r.Receipt.Uploaded))
		} else {
			fmt.Fprintf(&b, "\nPublished via staging repository %s: %d files", r.Receipt.RepositoryID, len(r.Receipt.Uploaded))
		}
	}
	return b.String()
}
