package pipeline

import (
	"context"

	"github.com/fproject/eks-deployer/internal/config"
	"github.com/fproject/eks-deployer/internal/manifest"
	"github.com/fproject/eks-deployer/internal/runner"
	"github.com/fproject/eks-deployer/internal/services"
	"github.com/rs/zerolog"
)

// RegistryService is the control-plane surface the registry steps use.
type RegistryService interface {
	EnsureRepository(ctx context.Context, name string) (*services.RepositoryInfo, bool, error)
	AuthorizationToken(ctx context.Context) (*services.RegistryAuth, error)
	AccountID(ctx context.Context) (string, error)
}

// Deps carries what the standard steps need. The di container wires it in
// production; tests wire fakes.
type Deps struct {
	Config   config.Config
	Registry RegistryService
	Runner   runner.CommandRunner
	Docker   *runner.DockerRunner
	Kube     *runner.KubeRunner
	AWSCLI   *runner.AWSRunner
}

// Steps assembles the standard ten-step deployment sequence, in order.
func Steps(deps Deps) []Step {
	return []Step{
		Preflight(deps),
		EnsureRepository(deps),
		RegistryLogin(deps),
		BuildImage(deps),
		PushImage(deps),
		UpdateKubeconfig(deps),
		ApplyManifest(deps),
		RolloutStatus(deps),
		PodStatus(deps),
		ServiceStatus(deps),
	}
}

// Preflight verifies the aws, docker, and kubectl executables resolve on
// PATH before anything touches a remote system.
func Preflight(deps Deps) Step {
	return step{
		name: "preflight",
		run: func(ctx context.Context, state *State) error {
			logger := zerolog.Ctx(ctx)
			for _, tool := range runner.RequiredTools() {
				path, err := deps.Runner.LookPath(tool)
				if err != nil {
					return err
				}
				logger.Info().Str("tool", tool).Str("path", path).Msg("Tool resolved")
			}
			return nil
		},
	}
}

// EnsureRepository resolves the account and makes sure the image
// repository exists, creating it only when the registry reports it
// missing. This is the pipeline's single branch.
func EnsureRepository(deps Deps) Step {
	return step{
		name: "ensure-repository",
		run: func(ctx context.Context, state *State) error {
			logger := zerolog.Ctx(ctx)

			state.AccountID = deps.Config.AccountID
			if state.AccountID == "" {
				account, err := deps.Registry.AccountID(ctx)
				if err != nil {
					return err
				}
				state.AccountID = account
			}

			info, created, err := deps.Registry.EnsureRepository(ctx, deps.Config.Repository)
			if err != nil {
				return err
			}
			state.RegistryHost = info.RegistryHost()

			logger.Info().
				Str("account", state.AccountID).
				Str("repository", info.Name).
				Bool("created", created).
				Str("registry", state.RegistryHost).
				Msg("Repository ready")
			return nil
		},
	}
}

// RegistryLogin obtains a short-lived registry token and pipes it into the
// container engine's login over stdin.
func RegistryLogin(deps Deps) Step {
	return step{
		name: "registry-login",
		run: func(ctx context.Context, state *State) error {
			auth, err := deps.Registry.AuthorizationToken(ctx)
			if err != nil {
				return err
			}
			host := auth.Host
			if host == "" {
				host = state.RegistryHost
			}
			return deps.Docker.Login(ctx, host, auth.Username, auth.Password)
		},
	}
}

// BuildImage builds the image from the working directory's build context.
func BuildImage(deps Deps) Step {
	return step{
		name: "build-image",
		run: func(ctx context.Context, state *State) error {
			return deps.Docker.Build(ctx, deps.Config.LocalImage())
		},
	}
}

// PushImage applies the fully qualified remote tag and pushes it.
func PushImage(deps Deps) Step {
	return step{
		name: "push-image",
		run: func(ctx context.Context, state *State) error {
			remote := deps.Config.RemoteImage(state.RegistryHost)
			if err := deps.Docker.Tag(ctx, deps.Config.LocalImage(), remote); err != nil {
				return err
			}
			return deps.Docker.Push(ctx, remote)
		},
	}
}

// UpdateKubeconfig points the local kubeconfig at the target cluster.
func UpdateKubeconfig(deps Deps) Step {
	return step{
		name: "update-kubeconfig",
		run: func(ctx context.Context, state *State) error {
			return deps.AWSCLI.UpdateKubeconfig(ctx, deps.Config.Cluster, deps.Config.Region)
		},
	}
}

// ApplyManifest loads the manifest, records what later steps need from it,
// and submits it to the cluster. A missing or malformed manifest fails
// here, not at startup.
func ApplyManifest(deps Deps) Step {
	return step{
		name: "apply-manifest",
		run: func(ctx context.Context, state *State) error {
			info, err := manifest.Load(deps.Config.ManifestPath)
			if err != nil {
				return err
			}
			state.Manifest = info
			return deps.Kube.Apply(ctx, deps.Config.ManifestPath)
		},
	}
}

// RolloutStatus blocks until the deployment reaches steady state or the
// cluster's own deadline expires; the orchestrator's message passes
// through verbatim on failure.
func RolloutStatus(deps Deps) Step {
	return step{
		name: "rollout-status",
		run: func(ctx context.Context, state *State) error {
			return deps.Kube.RolloutStatus(ctx,
				state.Manifest.DeploymentName,
				state.NamespaceOr(deps.Config.Namespace),
				deps.Config.RolloutTimeout)
		},
	}
}

// PodStatus lists the workload's pods for operator visibility.
func PodStatus(deps Deps) Step {
	return step{
		name:          "pod-status",
		informational: true,
		run: func(ctx context.Context, state *State) error {
			selector := ""
			if state.Manifest != nil {
				selector = state.Manifest.Selector()
			}
			return deps.Kube.GetPods(ctx, state.NamespaceOr(deps.Config.Namespace), selector)
		},
	}
}

// ServiceStatus prints the service description for operator visibility.
func ServiceStatus(deps Deps) Step {
	return step{
		name:          "service-status",
		informational: true,
		run: func(ctx context.Context, state *State) error {
			name := deps.Config.Repository
			if state.Manifest != nil {
				name = state.Manifest.ServiceName
			}
			return deps.Kube.DescribeService(ctx, name, state.NamespaceOr(deps.Config.Namespace))
		},
	}
}
