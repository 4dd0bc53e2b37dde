package commands

import (
	"github.com/fproject/eks-deployer/internal/config"
	"github.com/fproject/eks-deployer/internal/constants"
	"github.com/urfave/cli/v2"
)

// configFlags returns the flag set shared by the commands that address the
// registry and the cluster. Every flag has a working default, so a bare
// invocation from the repository root is a complete deployment.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region for the registry and cluster",
			Value:   constants.DefaultRegion,
			EnvVars: []string{"AWS_REGION"},
		},
		&cli.StringFlag{
			Name:    "account",
			Usage:   "AWS account ID (resolved via STS when omitted)",
			EnvVars: []string{"AWS_ACCOUNT_ID"},
		},
		&cli.StringFlag{
			Name:    "repository",
			Aliases: []string{"r"},
			Usage:   "ECR repository name",
			Value:   constants.DefaultRepository,
			EnvVars: []string{"ECR_REPOSITORY"},
		},
		&cli.StringFlag{
			Name:    "cluster",
			Usage:   "EKS cluster name",
			Value:   constants.DefaultCluster,
			EnvVars: []string{"EKS_CLUSTER"},
		},
		&cli.StringFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "Image tag to build and deploy",
			Value:   constants.DefaultImageTag,
			EnvVars: []string{"IMAGE_TAG"},
		},
		&cli.StringFlag{
			Name:    "manifest",
			Usage:   "Path to the Kubernetes deployment manifest",
			Value:   constants.DefaultManifestPath,
			EnvVars: []string{"K8S_MANIFEST"},
		},
		&cli.StringFlag{
			Name:    "namespace",
			Aliases: []string{"n"},
			Usage:   "Kubernetes namespace",
			Value:   constants.DefaultNamespace,
			EnvVars: []string{"K8S_NAMESPACE"},
		},
		&cli.DurationFlag{
			Name:    "rollout-timeout",
			Usage:   "How long to wait for the rollout (0 defers to the cluster's own deadline)",
			EnvVars: []string{"ROLLOUT_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "db-secret",
			Usage:   "Secrets Manager secret holding the database connection fields",
			Value:   constants.DefaultDBSecretName,
			EnvVars: []string{"DB_SECRET_NAME"},
		},
	}
}

func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Config{
		Region:         c.String("region"),
		AccountID:      c.String("account"),
		Repository:     c.String("repository"),
		Cluster:        c.String("cluster"),
		ImageTag:       c.String("tag"),
		ManifestPath:   c.String("manifest"),
		Namespace:      c.String("namespace"),
		RolloutTimeout: c.Duration("rollout-timeout"),
		DBSecretName:   c.String("db-secret"),
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
