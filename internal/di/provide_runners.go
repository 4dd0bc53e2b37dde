package di

import (
	"github.com/fproject/eks-deployer/internal/config"
	"github.com/fproject/eks-deployer/internal/pipeline"
	"github.com/fproject/eks-deployer/internal/runner"
	"github.com/fproject/eks-deployer/internal/services"
)

func ProvideCommandRunner() runner.CommandRunner {
	return &runner.ExecRunner{}
}

func ProvideDockerRunner(commandRunner runner.CommandRunner) *runner.DockerRunner {
	return runner.NewDockerRunner(commandRunner)
}

func ProvideKubeRunner(commandRunner runner.CommandRunner) *runner.KubeRunner {
	return runner.NewKubeRunner(commandRunner)
}

func ProvideAWSRunner(commandRunner runner.CommandRunner) *runner.AWSRunner {
	return runner.NewAWSRunner(commandRunner)
}

// ProvidePipelineDeps assembles the dependency set consumed by the deployment steps.
func ProvidePipelineDeps(
	cfg config.Config,
	ecrService *services.ECRService,
	commandRunner runner.CommandRunner,
	docker *runner.DockerRunner,
	kube *runner.KubeRunner,
	awsCLI *runner.AWSRunner,
) pipeline.Deps {
	return pipeline.Deps{
		Config:   cfg,
		Registry: ecrService,
		Runner:   commandRunner,
		Docker:   docker,
		Kube:     kube,
		AWSCLI:   awsCLI,
	}
}
