package constants

// Deployment defaults for the library backend. Flags and environment
// variables override these; an argument-less invocation uses them as-is.
const (
	// DefaultRegion is the home region of the library platform.
	DefaultRegion = "ap-northeast-2"

	// DefaultRepository is the ECR repository that receives backend images.
	DefaultRepository = "library-backend"

	// DefaultCluster is the EKS cluster the backend deploys to.
	DefaultCluster = "library-cluster"

	// DefaultImageTag is applied to locally built images and their remote copies.
	DefaultImageTag = "latest"

	// DefaultManifestPath is the deployment manifest submitted to the cluster,
	// relative to the working directory.
	DefaultManifestPath = "k8s/deployment.yaml"

	// DefaultNamespace is the namespace the backend workload runs in.
	DefaultNamespace = "default"

	// DefaultDBSecretName is the Secrets Manager secret holding the database
	// connection fields (host, port, dbname, username, password).
	DefaultDBSecretName = "database"

	// MigrationsDir is where revision files are scaffolded and listed.
	MigrationsDir = "migrations"
)
