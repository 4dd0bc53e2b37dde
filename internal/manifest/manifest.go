// Package manifest inspects Kubernetes manifest files so the pipeline can
// name the deployment, its pod selector, and its service without asking
// the operator for them.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	apperrors "github.com/fproject/eks-deployer/internal/errors"
	"github.com/savaki/gox/slicex"
	"gopkg.in/yaml.v3"
)

// Info summarizes the manifest documents the pipeline consumes: the first
// Deployment and the first Service. ServiceName falls back to the
// deployment name when the manifest carries no Service document.
type Info struct {
	DeploymentName string
	Namespace      string
	MatchLabels    map[string]string
	ServiceName    string
}

type document struct {
	Kind     string `yaml:"kind"`
	Metadata struct {
		Name      string `yaml:"name"`
		Namespace string `yaml:"namespace"`
	} `yaml:"metadata"`
	Spec struct {
		Selector struct {
			MatchLabels map[string]string `yaml:"matchLabels"`
		} `yaml:"selector"`
	} `yaml:"spec"`
}

// Load reads and inspects a multi-document manifest file.
func Load(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()

	info, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return info, nil
}

func parse(r io.Reader) (*Info, error) {
	var info Info

	decoder := yaml.NewDecoder(r)
	for {
		var doc document
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		switch doc.Kind {
		case "Deployment":
			if info.DeploymentName == "" {
				info.DeploymentName = doc.Metadata.Name
				info.Namespace = doc.Metadata.Namespace
				info.MatchLabels = doc.Spec.Selector.MatchLabels
			}
		case "Service":
			if info.ServiceName == "" {
				info.ServiceName = doc.Metadata.Name
			}
		}
	}

	if info.DeploymentName == "" {
		return nil, apperrors.ErrNoDeployment
	}
	if info.ServiceName == "" {
		info.ServiceName = info.DeploymentName
	}
	return &info, nil
}

// Selector renders matchLabels as a kubectl label selector, keys sorted
// for a stable argument.
func (i *Info) Selector() string {
	keys := make([]string, 0, len(i.MatchLabels))
	for k := range i.MatchLabels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := slicex.Map(keys, func(k string) string {
		return k + "=" + i.MatchLabels[k]
	})
	return strings.Join(pairs, ",")
}
