// Package config holds the deployment scalars for a pipeline run. Values
// are bound once from flags and environment variables at startup and are
// not modified afterwards.
package config

import (
	"fmt"
	"regexp"
	"time"
)

// Config carries every value the pipeline substitutes into external-tool
// invocations. AccountID may be empty; it is then resolved once via STS
// when the registry step runs.
type Config struct {
	Region         string
	AccountID      string
	Repository     string
	Cluster        string
	ImageTag       string
	ManifestPath   string
	Namespace      string
	RolloutTimeout time.Duration
	DBSecretName   string
}

var (
	regionPattern     = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-[0-9]$`)
	accountPattern    = regexp.MustCompile(`^[0-9]{12}$`)
	repositoryPattern = regexp.MustCompile(`^[a-z0-9]+(?:[._/-][a-z0-9]+)*$`)
	tagPattern        = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]{0,127}$`)
	clusterPattern    = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z_-]{0,99}$`)
	namespacePattern  = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
)

// Validate checks that every scalar is a well-formed identifier for the
// tool that consumes it. It runs before any external call is made.
func (c Config) Validate() error {
	if !regionPattern.MatchString(c.Region) {
		return fmt.Errorf("invalid region %q", c.Region)
	}
	if c.AccountID != "" && !accountPattern.MatchString(c.AccountID) {
		return fmt.Errorf("invalid account id %q (expected 12 digits)", c.AccountID)
	}
	if !repositoryPattern.MatchString(c.Repository) {
		return fmt.Errorf("invalid repository name %q", c.Repository)
	}
	if !tagPattern.MatchString(c.ImageTag) {
		return fmt.Errorf("invalid image tag %q", c.ImageTag)
	}
	if !clusterPattern.MatchString(c.Cluster) {
		return fmt.Errorf("invalid cluster name %q", c.Cluster)
	}
	if !namespacePattern.MatchString(c.Namespace) {
		return fmt.Errorf("invalid namespace %q", c.Namespace)
	}
	if c.ManifestPath == "" {
		return fmt.Errorf("manifest path must not be empty")
	}
	if c.RolloutTimeout < 0 {
		return fmt.Errorf("rollout timeout must not be negative")
	}
	return nil
}

// LocalImage returns the repository:tag reference produced by the build step.
func (c Config) LocalImage() string {
	return c.Repository + ":" + c.ImageTag
}

// RemoteImage returns the fully qualified reference pushed to the registry.
func (c Config) RemoteImage(registryHost string) string {
	return registryHost + "/" + c.LocalImage()
}

// RegistryHost returns the ECR registry hostname for an account in a region.
func RegistryHost(accountID, region string) string {
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", accountID, region)
}
