package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// ECRClient defines the ECR operations needed for the registry steps
type ECRClient interface {
	DescribeRepositories(ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options)) (*ecr.DescribeRepositoriesOutput, error)
	CreateRepository(ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options)) (*ecr.CreateRepositoryOutput, error)
	GetAuthorizationToken(ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options)) (*ecr.GetAuthorizationTokenOutput, error)
}

// STSClient defines the STS operations needed for account resolution
type STSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type ECRService struct {
	client    ECRClient
	stsClient STSClient
}

func NewECRService(cfg aws.Config) *ECRService {
	return &ECRService{
		client:    ecr.NewFromConfig(cfg),
		stsClient: sts.NewFromConfig(cfg),
	}
}

// NewECRServiceWithClients wires explicit clients, for tests.
func NewECRServiceWithClients(client ECRClient, stsClient STSClient) *ECRService {
	return &ECRService{
		client:    client,
		stsClient: stsClient,
	}
}

type RepositoryInfo struct {
	Name string
	ARN  string
	URI  string
}

// RegistryHost returns the registry hostname portion of the repository URI.
func (r *RepositoryInfo) RegistryHost() string {
	if i := strings.Index(r.URI, "/"); i > 0 {
		return r.URI[:i]
	}
	return r.URI
}

// RegistryAuth carries a decoded short-lived registry credential.
type RegistryAuth struct {
	Username string
	Password string
	Host     string
}

// EnsureRepository returns the repository, creating it when absent. The
// describe runs first; the create call is only issued after the API
// reports the repository missing. The bool result is true when a create
// happened.
func (s *ECRService) EnsureRepository(ctx context.Context, name string) (*RepositoryInfo, bool, error) {
	logger := zerolog.Ctx(ctx)

	existing, err := s.describeRepository(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		logger.Info().Str("repository", name).Msg("Repository already exists")
		return existing, false, nil
	}

	logger.Info().Str("repository", name).Msg("Creating repository")
	output, err := s.client.CreateRepository(ctx, &ecr.CreateRepositoryInput{
		RepositoryName: aws.String(name),
		ImageScanningConfiguration: &types.ImageScanningConfiguration{
			ScanOnPush: true,
		},
		Tags: []types.Tag{
			{
				Key:   aws.String("ManagedBy"),
				Value: aws.String("eks-deployer"),
			},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create repository %s: %w", name, err)
	}

	return repositoryInfo(output.Repository), true, nil
}

func (s *ECRService) describeRepository(ctx context.Context, name string) (*RepositoryInfo, error) {
	output, err := s.client.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{name},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "RepositoryNotFoundException" {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe repository %s: %w", name, err)
	}
	if len(output.Repositories) == 0 {
		return nil, nil
	}
	return repositoryInfo(&output.Repositories[0]), nil
}

func repositoryInfo(repo *types.Repository) *RepositoryInfo {
	return &RepositoryInfo{
		Name: aws.ToString(repo.RepositoryName),
		ARN:  aws.ToString(repo.RepositoryArn),
		URI:  aws.ToString(repo.RepositoryUri),
	}
}

// AuthorizationToken fetches and decodes a short-lived registry credential.
// The token is base64 "user:password"; the username is "AWS" for ECR.
func (s *ECRService) AuthorizationToken(ctx context.Context) (*RegistryAuth, error) {
	output, err := s.client.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization token: %w", err)
	}
	if len(output.AuthorizationData) == 0 {
		return nil, fmt.Errorf("authorization token response was empty")
	}

	data := output.AuthorizationData[0]
	decoded, err := base64.StdEncoding.DecodeString(aws.ToString(data.AuthorizationToken))
	if err != nil {
		return nil, fmt.Errorf("failed to decode authorization token: %w", err)
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, fmt.Errorf("authorization token is not in user:password form")
	}

	return &RegistryAuth{
		Username: username,
		Password: password,
		Host:     strings.TrimPrefix(aws.ToString(data.ProxyEndpoint), "https://"),
	}, nil
}

// AccountID retrieves the caller's AWS account ID
func (s *ECRService) AccountID(ctx context.Context) (string, error) {
	output, err := s.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	return aws.ToString(output.Account), nil
}
