package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/fproject/eks-deployer/internal/config"
	"github.com/fproject/eks-deployer/internal/services"
)

func ProvideAWSConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
}

func ProvideECRService(awsConfig aws.Config) *services.ECRService {
	return services.NewECRService(awsConfig)
}

func ProvideSecretsManagerService(awsConfig aws.Config) *services.SecretsManagerService {
	return services.NewSecretsManagerService(awsConfig)
}
