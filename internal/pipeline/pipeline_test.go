package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fproject/eks-deployer/internal/config"
	apperrors "github.com/fproject/eks-deployer/internal/errors"
	"github.com/fproject/eks-deployer/internal/runner"
	"github.com/fproject/eks-deployer/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	accountCalls int
	ensureCalls  int
	tokenCalls   int
	ensureErr    error
	tokenErr     error
}

func (f *fakeRegistry) AccountID(ctx context.Context) (string, error) {
	f.accountCalls++
	return "123456789012", nil
}

func (f *fakeRegistry) EnsureRepository(ctx context.Context, name string) (*services.RepositoryInfo, bool, error) {
	f.ensureCalls++
	if f.ensureErr != nil {
		return nil, false, f.ensureErr
	}
	return &services.RepositoryInfo{
		Name: name,
		URI:  "123456789012.dkr.ecr.ap-northeast-2.amazonaws.com/" + name,
	}, false, nil
}

func (f *fakeRegistry) AuthorizationToken(ctx context.Context) (*services.RegistryAuth, error) {
	f.tokenCalls++
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	return &services.RegistryAuth{
		Username: "AWS",
		Password: "token-pw",
		Host:     "123456789012.dkr.ecr.ap-northeast-2.amazonaws.com",
	}, nil
}

func setup(t *testing.T) (Deps, *runner.FakeRunner, *fakeRegistry) {
	t.Helper()

	fake := &runner.FakeRunner{
		Errs:    map[string]error{},
		Missing: map[string]bool{},
	}
	registry := &fakeRegistry{}
	deps := Deps{
		Config: config.Config{
			Region:       "ap-northeast-2",
			Repository:   "library-backend",
			Cluster:      "library-cluster",
			ImageTag:     "latest",
			ManifestPath: filepath.Join("testdata", "deployment.yaml"),
			Namespace:    "default",
			DBSecretName: "database",
		},
		Registry: registry,
		Runner:   fake,
		Docker:   runner.NewDockerRunner(fake),
		Kube:     runner.NewKubeRunner(fake),
		AWSCLI:   runner.NewAWSRunner(fake),
	}
	return deps, fake, registry
}

func TestPipeline_FullRun(t *testing.T) {
	deps, fake, registry := setup(t)
	p := New(Steps(deps)...)

	err := p.Run(context.Background(), &State{})
	require.NoError(t, err)

	remote := "123456789012.dkr.ecr.ap-northeast-2.amazonaws.com/library-backend:latest"
	assert.Equal(t, []string{
		"docker login --username AWS --password-stdin 123456789012.dkr.ecr.ap-northeast-2.amazonaws.com",
		"docker build -t library-backend:latest .",
		"docker tag library-backend:latest " + remote,
		"docker push " + remote,
		"aws eks update-kubeconfig --name library-cluster --region ap-northeast-2",
		"kubectl apply -f " + filepath.Join("testdata", "deployment.yaml"),
		"kubectl rollout status deployment/library-backend -n default",
		"kubectl get pods -n default -l app=library-backend",
		"kubectl describe service library-backend-svc -n default",
	}, fake.Calls)
	assert.Equal(t, []string{"token-pw"}, fake.Inputs)
	assert.Equal(t, 1, registry.accountCalls)
	assert.Equal(t, 1, registry.ensureCalls)
	assert.Equal(t, 1, registry.tokenCalls)
}

func TestPipeline_MissingDockerHaltsBeforeAnyRemoteCall(t *testing.T) {
	deps, fake, registry := setup(t)
	fake.Missing[runner.ToolDocker] = true
	p := New(Steps(deps)...)

	err := p.Run(context.Background(), &State{})
	require.Error(t, err)
	assert.True(t, apperrors.IsToolNotFound(err))
	assert.ErrorContains(t, err, "docker")

	var stepErr *apperrors.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "preflight", stepErr.Step)

	assert.Empty(t, fake.Calls)
	assert.Zero(t, registry.accountCalls)
	assert.Zero(t, registry.ensureCalls)
	assert.Zero(t, registry.tokenCalls)
	assert.Equal(t, 1, apperrors.ExitCode(err))
}

func TestPipeline_BuildFailureHaltsBeforePush(t *testing.T) {
	deps, fake, _ := setup(t)
	fake.Errs["docker build"] = &apperrors.CommandError{Command: "docker build", ExitCode: 2}
	p := New(Steps(deps)...)

	err := p.Run(context.Background(), &State{})
	require.Error(t, err)

	var stepErr *apperrors.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "build-image", stepErr.Step)

	assert.False(t, fake.CalledWithPrefix("docker tag"))
	assert.False(t, fake.CalledWithPrefix("docker push"))
	assert.Equal(t, 2, apperrors.ExitCode(err))
}

func TestPipeline_RolloutFailureHaltsBeforeStatusQueries(t *testing.T) {
	deps, fake, _ := setup(t)
	fake.Errs["kubectl rollout status"] = &apperrors.CommandError{Command: "kubectl rollout status", ExitCode: 1}
	p := New(Steps(deps)...)

	err := p.Run(context.Background(), &State{})
	require.Error(t, err)

	var stepErr *apperrors.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "rollout-status", stepErr.Step)

	assert.False(t, fake.CalledWithPrefix("kubectl get pods"))
	assert.False(t, fake.CalledWithPrefix("kubectl describe service"))
}

func TestPipeline_InformationalFailuresDoNotChangeOutcome(t *testing.T) {
	deps, fake, _ := setup(t)
	fake.Errs["kubectl get pods"] = &apperrors.CommandError{Command: "kubectl get pods", ExitCode: 1}
	fake.Errs["kubectl describe service"] = &apperrors.CommandError{Command: "kubectl describe service", ExitCode: 1}
	p := New(Steps(deps)...)

	err := p.Run(context.Background(), &State{})
	assert.NoError(t, err)
	assert.True(t, fake.CalledWithPrefix("kubectl get pods"))
	assert.True(t, fake.CalledWithPrefix("kubectl describe service"))
}

func TestPipeline_ManifestProblemsFailAtApply(t *testing.T) {
	deps, fake, _ := setup(t)
	deps.Config.ManifestPath = filepath.Join("testdata", "no-deployment.yaml")
	p := New(Steps(deps)...)

	err := p.Run(context.Background(), &State{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoDeployment)

	var stepErr *apperrors.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "apply-manifest", stepErr.Step)

	// Earlier steps ran; the apply itself never did.
	assert.True(t, fake.CalledWithPrefix("docker push"))
	assert.True(t, fake.CalledWithPrefix("aws eks update-kubeconfig"))
	assert.False(t, fake.CalledWithPrefix("kubectl apply"))
}

func TestPipeline_RolloutTimeoutPassesThrough(t *testing.T) {
	deps, fake, _ := setup(t)
	deps.Config.RolloutTimeout = 90 * time.Second
	p := New(Steps(deps)...)

	err := p.Run(context.Background(), &State{})
	require.NoError(t, err)
	assert.True(t, fake.CalledWithPrefix("kubectl rollout status deployment/library-backend -n default --timeout=1m30s"))
}

func TestPipeline_ConfiguredAccountSkipsLookup(t *testing.T) {
	deps, _, registry := setup(t)
	deps.Config.AccountID = "999999999999"
	p := New(Steps(deps)...)

	state := &State{}
	err := p.Run(context.Background(), state)
	require.NoError(t, err)
	assert.Zero(t, registry.accountCalls)
	assert.Equal(t, "999999999999", state.AccountID)
}

func TestPipeline_CanceledContext(t *testing.T) {
	deps, fake, _ := setup(t)
	p := New(Steps(deps)...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx, &State{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.Calls)
}

func TestPipeline_Plan(t *testing.T) {
	deps, _, _ := setup(t)
	p := New(Steps(deps)...)

	assert.Equal(t, []string{
		"preflight",
		"ensure-repository",
		"registry-login",
		"build-image",
		"push-image",
		"update-kubeconfig",
		"apply-manifest",
		"rollout-status",
		"pod-status",
		"service-status",
	}, p.Plan())
}
