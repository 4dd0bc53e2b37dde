// Package pipeline implements the fixed deployment sequence for the
// library backend: verify tooling, ensure and authenticate the registry,
// build and push the image, refresh kubeconfig, apply the manifest, wait
// for the rollout, and report workload status.
package pipeline

import (
	"context"
	"time"

	apperrors "github.com/fproject/eks-deployer/internal/errors"
	"github.com/fproject/eks-deployer/internal/manifest"
	"github.com/rs/zerolog"
	"github.com/savaki/gox/slicex"
)

// State is the transient record for one pipeline run. Steps fill it in as
// they complete; nothing survives past the run.
type State struct {
	AccountID    string
	RegistryHost string
	Manifest     *manifest.Info
}

// NamespaceOr returns the manifest's namespace when it declares one,
// otherwise the fallback.
func (s *State) NamespaceOr(fallback string) string {
	if s.Manifest != nil && s.Manifest.Namespace != "" {
		return s.Manifest.Namespace
	}
	return fallback
}

// Step is one unit of the deployment sequence.
type Step interface {
	// Name identifies the step in status output.
	Name() string

	// Informational steps are read-only queries; their failures are
	// logged and never fail the pipeline.
	Informational() bool

	// Run executes the step, recording results in state for later steps.
	Run(ctx context.Context, state *State) error
}

type step struct {
	name          string
	informational bool
	run           func(ctx context.Context, state *State) error
}

func (s step) Name() string        { return s.name }
func (s step) Informational() bool { return s.informational }

func (s step) Run(ctx context.Context, state *State) error {
	return s.run(ctx, state)
}

// Pipeline executes steps strictly in order, halting on the first fatal
// error. There is no retry and no rollback: a failed run leaves remote
// systems in whatever state the last completed step produced.
type Pipeline struct {
	steps []Step
}

func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Plan returns the ordered step names without executing anything.
func (p *Pipeline) Plan() []string {
	return slicex.Map(p.steps, Step.Name)
}

// Run executes the sequence. The returned error is a StepError naming the
// step that failed; informational step failures are logged at warn level
// and do not stop the run.
func (p *Pipeline) Run(ctx context.Context, state *State) (err error) {
	logger := zerolog.Ctx(ctx)

	defer func(begin time.Time) {
		logger.Info().
			Interface("error", err).
			Dur("duration", time.Since(begin)).
			Msg("Pipeline completed")
	}(time.Now())

	total := len(p.steps)
	for i, s := range p.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &apperrors.StepError{Step: s.Name(), Err: ctxErr}
		}

		logger.Info().Msgf("Step %d/%d: %s", i+1, total, s.Name())

		if runErr := s.Run(ctx, state); runErr != nil {
			if s.Informational() {
				logger.Warn().Err(runErr).Str("step", s.Name()).Msg("Informational step failed")
				continue
			}
			return &apperrors.StepError{Step: s.Name(), Err: runErr}
		}
	}
	return nil
}
