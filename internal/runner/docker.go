package runner

import "context"

// DockerRunner wraps the Docker CLI operations the pipeline performs.
type DockerRunner struct {
	runner CommandRunner
}

func NewDockerRunner(runner CommandRunner) *DockerRunner {
	return &DockerRunner{runner: runner}
}

// Login authenticates the local engine against a registry. The password
// travels over stdin so it never appears in the process table.
func (d *DockerRunner) Login(ctx context.Context, registryHost, username, password string) error {
	return d.runner.RunWithInput(ctx, password,
		ToolDocker, "login", "--username", username, "--password-stdin", registryHost)
}

// Build builds an image from the working directory's build context.
func (d *DockerRunner) Build(ctx context.Context, ref string) error {
	return d.runner.Run(ctx, ToolDocker, "build", "-t", ref, ".")
}

// Tag applies the fully qualified remote reference to a local image.
func (d *DockerRunner) Tag(ctx context.Context, localRef, remoteRef string) error {
	return d.runner.Run(ctx, ToolDocker, "tag", localRef, remoteRef)
}

// Push uploads the tagged image to the remote registry.
func (d *DockerRunner) Push(ctx context.Context, remoteRef string) error {
	return d.runner.Run(ctx, ToolDocker, "push", remoteRef)
}

// Version reports the client version, for the preflight report.
func (d *DockerRunner) Version(ctx context.Context) (string, error) {
	return d.runner.Output(ctx, ToolDocker, "version", "--format", "{{.Client.Version}}")
}
