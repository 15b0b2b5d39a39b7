// Package domain holds the error taxonomy shared by every pipeline stage.
package domain

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Pipeline error kinds. Use errors.Is to classify a failure.
var (
	ErrResolve               = errors.New("dependency resolution failed")
	ErrPrepare               = errors.New("source preparation failed")
	ErrCompile               = errors.New("compilation failed")
	ErrDocument              = errors.New("documentation generation failed")
	ErrPackage               = errors.New("packaging failed")
	ErrSigning               = errors.New("signing failed")
	ErrPublish               = errors.New("publishing failed")
	ErrReleaseGate           = errors.New("release gate failed")
	ErrLicenseHeaderMismatch = errors.New("license header mismatch")
	ErrInvalidMetadata       = errors.New("invalid project metadata")

	// ErrDocGenDefect marks the javadoc search.js defect. It is repaired in place and never returned.
	ErrDocGenDefect = errors.New("javadoc search defect")
)

// Stage names, in execution order
const (
	StageResolve  = "resolve"
	StagePrepare  = "prepare"
	StageCompile  = "compile"
	StageDocument = "document"
	StagePackage  = "package"
	StageGate     = "gate"
	StageSign     = "sign"
	StagePublish  = "publish"
)

// Stages lists every stage in execution order
var Stages = []string{
	StageResolve, StagePrepare, StageCompile, StageDocument,
	StagePackage, StageGate, StageSign, StagePublish,
}

// StageError reports the stage a pipeline run failed in
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError classifies cause under kind and attaches the stage name
func NewStageError(stage string, kind, cause error, values ...goerr.Option) *StageError {
	var err error
	if cause == nil {
		err = kind
	} else if errors.Is(cause, kind) {
		err = cause
	} else {
		err = fmt.Errorf("%w: %w", kind, cause)
	}

	opts := append([]goerr.Option{goerr.V("stage", stage)}, values...)
	return &StageError{Stage: stage, Err: goerr.Wrap(err, stage+" stage failed", opts...)}
}

// FailedStage returns the stage name carried by err, or an empty string
func FailedStage(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}
