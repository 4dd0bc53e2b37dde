package runner

import (
	"context"
	"time"
)

// KubeRunner wraps the kubectl operations the pipeline performs.
type KubeRunner struct {
	runner CommandRunner
}

func NewKubeRunner(runner CommandRunner) *KubeRunner {
	return &KubeRunner{runner: runner}
}

// Apply submits a manifest file to the cluster's control plane.
func (k *KubeRunner) Apply(ctx context.Context, manifestPath string) error {
	return k.runner.Run(ctx, ToolKubectl, "apply", "-f", manifestPath)
}

// RolloutStatus blocks until the deployment's rollout reaches steady state.
// A zero timeout leaves the watch on the cluster's own progress deadline.
func (k *KubeRunner) RolloutStatus(ctx context.Context, deployment, namespace string, timeout time.Duration) error {
	args := []string{"rollout", "status", "deployment/" + deployment, "-n", namespace}
	if timeout > 0 {
		args = append(args, "--timeout="+timeout.String())
	}
	return k.runner.Run(ctx, ToolKubectl, args...)
}

// GetPods lists pods, optionally narrowed by a label selector.
func (k *KubeRunner) GetPods(ctx context.Context, namespace, labelSelector string) error {
	args := []string{"get", "pods", "-n", namespace}
	if labelSelector != "" {
		args = append(args, "-l", labelSelector)
	}
	return k.runner.Run(ctx, ToolKubectl, args...)
}

// DescribeService prints the service object's description.
func (k *KubeRunner) DescribeService(ctx context.Context, name, namespace string) error {
	return k.runner.Run(ctx, ToolKubectl, "describe", "service", name, "-n", namespace)
}

// Version reports the client version, for the preflight report.
func (k *KubeRunner) Version(ctx context.Context) (string, error) {
	return k.runner.Output(ctx, ToolKubectl, "version", "--client")
}
