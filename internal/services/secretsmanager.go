package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	apperrors "github.com/fproject/eks-deployer/internal/errors"
)

// SecretsManagerClient defines the operations needed for secret lookups
type SecretsManagerClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type SecretsManagerService struct {
	client SecretsManagerClient
}

func NewSecretsManagerService(cfg aws.Config) *SecretsManagerService {
	return &SecretsManagerService{
		client: secretsmanager.NewFromConfig(cfg),
	}
}

// NewSecretsManagerServiceWithClient wires an explicit client, for tests.
func NewSecretsManagerServiceWithClient(client SecretsManagerClient) *SecretsManagerService {
	return &SecretsManagerService{client: client}
}

// Port accepts both JSON number and string forms, matching how the
// database secret has been stored over time.
type Port int

func (p *Port) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid port %s: %w", string(data), err)
	}
	*p = Port(n)
	return nil
}

// DatabaseSecret is the connection document the backend keeps in Secrets
// Manager under the configured secret name.
type DatabaseSecret struct {
	Host     string `json:"host"`
	Port     Port   `json:"port"`
	DBName   string `json:"dbname"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// URL renders the synchronous connection string the migration tooling
// consumes. A missing port falls back to the Postgres default.
func (s *DatabaseSecret) URL() string {
	port := s.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s", s.Username, s.Password, s.Host, port, s.DBName)
}

// GetDatabaseSecret retrieves and decodes the database connection secret
func (s *SecretsManagerService) GetDatabaseSecret(ctx context.Context, name string) (*DatabaseSecret, error) {
	result, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s: %w", name, err)
	}

	if result.SecretString == nil {
		return nil, fmt.Errorf("secret %s: %w", name, apperrors.ErrSecretNotString)
	}

	var secret DatabaseSecret
	if err := json.Unmarshal([]byte(*result.SecretString), &secret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal secret %s: %w", name, err)
	}
	return &secret, nil
}
