package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDockerRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("login pipes the password via stdin", func(t *testing.T) {
		fake := &FakeRunner{}
		docker := NewDockerRunner(fake)

		err := docker.Login(ctx, "123456789012.dkr.ecr.ap-northeast-2.amazonaws.com", "AWS", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"docker login --username AWS --password-stdin 123456789012.dkr.ecr.ap-northeast-2.amazonaws.com",
		}, fake.Calls)
		assert.Equal(t, []string{"s3cret"}, fake.Inputs)
	})

	t.Run("build uses the working directory as context", func(t *testing.T) {
		fake := &FakeRunner{}
		docker := NewDockerRunner(fake)

		require.NoError(t, docker.Build(ctx, "library-backend:latest"))
		assert.Equal(t, []string{"docker build -t library-backend:latest ."}, fake.Calls)
	})

	t.Run("tag then push", func(t *testing.T) {
		fake := &FakeRunner{}
		docker := NewDockerRunner(fake)
		remote := "123456789012.dkr.ecr.ap-northeast-2.amazonaws.com/library-backend:latest"

		require.NoError(t, docker.Tag(ctx, "library-backend:latest", remote))
		require.NoError(t, docker.Push(ctx, remote))
		assert.Equal(t, []string{
			"docker tag library-backend:latest " + remote,
			"docker push " + remote,
		}, fake.Calls)
	})
}

func TestKubeRunner_RolloutStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("zero timeout defers to the cluster's deadline", func(t *testing.T) {
		fake := &FakeRunner{}
		kube := NewKubeRunner(fake)

		require.NoError(t, kube.RolloutStatus(ctx, "library-backend", "default", 0))
		assert.Equal(t, []string{
			"kubectl rollout status deployment/library-backend -n default",
		}, fake.Calls)
	})

	t.Run("non-zero timeout passes through", func(t *testing.T) {
		fake := &FakeRunner{}
		kube := NewKubeRunner(fake)

		require.NoError(t, kube.RolloutStatus(ctx, "library-backend", "default", 5*time.Minute))
		assert.Equal(t, []string{
			"kubectl rollout status deployment/library-backend -n default --timeout=5m0s",
		}, fake.Calls)
	})
}

func TestKubeRunner_GetPods(t *testing.T) {
	ctx := context.Background()

	t.Run("with label selector", func(t *testing.T) {
		fake := &FakeRunner{}
		kube := NewKubeRunner(fake)

		require.NoError(t, kube.GetPods(ctx, "default", "app=library-backend"))
		assert.Equal(t, []string{"kubectl get pods -n default -l app=library-backend"}, fake.Calls)
	})

	t.Run("without label selector", func(t *testing.T) {
		fake := &FakeRunner{}
		kube := NewKubeRunner(fake)

		require.NoError(t, kube.GetPods(ctx, "default", ""))
		assert.Equal(t, []string{"kubectl get pods -n default"}, fake.Calls)
	})
}

func TestKubeRunner_Apply(t *testing.T) {
	fake := &FakeRunner{}
	kube := NewKubeRunner(fake)

	require.NoError(t, kube.Apply(context.Background(), "k8s/deployment.yaml"))
	assert.Equal(t, []string{"kubectl apply -f k8s/deployment.yaml"}, fake.Calls)
}

func TestKubeRunner_DescribeService(t *testing.T) {
	fake := &FakeRunner{}
	kube := NewKubeRunner(fake)

	require.NoError(t, kube.DescribeService(context.Background(), "library-backend", "default"))
	assert.Equal(t, []string{"kubectl describe service library-backend -n default"}, fake.Calls)
}

func TestAWSRunner_UpdateKubeconfig(t *testing.T) {
	fake := &FakeRunner{}
	awscli := NewAWSRunner(fake)

	require.NoError(t, awscli.UpdateKubeconfig(context.Background(), "library-cluster", "ap-northeast-2"))
	assert.Equal(t, []string{
		"aws eks update-kubeconfig --name library-cluster --region ap-northeast-2",
	}, fake.Calls)
}
