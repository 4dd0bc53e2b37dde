package runner

import "context"

// AWSRunner wraps the AWS CLI operations that stay subprocess-based.
// Control-plane API calls go through the SDK; kubeconfig updates stay on
// the CLI because it owns the kubeconfig file format.
type AWSRunner struct {
	runner CommandRunner
}

func NewAWSRunner(runner CommandRunner) *AWSRunner {
	return &AWSRunner{runner: runner}
}

// UpdateKubeconfig points the local kubeconfig at the named EKS cluster.
func (a *AWSRunner) UpdateKubeconfig(ctx context.Context, cluster, region string) error {
	return a.runner.Run(ctx, ToolAWS, "eks", "update-kubeconfig", "--name", cluster, "--region", region)
}

// Version reports the CLI version, for the preflight report.
func (a *AWSRunner) Version(ctx context.Context) (string, error) {
	return a.runner.Output(ctx, ToolAWS, "--version")
}
