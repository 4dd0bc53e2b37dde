package commands

import (
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/fproject/eks-deployer/internal/constants"
	"github.com/fproject/eks-deployer/internal/migrate"
	"github.com/fproject/eks-deployer/internal/services"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func MigrateCommand(logger *zerolog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database schema revision files",
		Description: `Work with the SQL revision files under the migrations directory.

Each revision file carries a header identifying the revision, the
revision it revises, and optional branch labels and dependencies,
followed by empty "migrate:up" and "migrate:down" sections for the
schema change and its reversal. This command only scaffolds and lists
the files; executing them against the database is left to the
migration tool of your choice.`,
		Subcommands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "Scaffold the next revision file",
				ArgsUsage: "<message>",
				Flags:     []cli.Flag{dirFlag()},
				Action: func(c *cli.Context) error {
					return migrateNewAction(c, logger)
				},
			},
			{
				Name:  "list",
				Usage: "List revisions, oldest first",
				Flags: []cli.Flag{dirFlag()},
				Action: func(c *cli.Context) error {
					return migrateListAction(c, logger)
				},
			},
			{
				Name:  "db-url",
				Usage: "Print the database URL resolved from Secrets Manager",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "region",
						Usage:   "AWS region for Secrets Manager",
						Value:   constants.DefaultRegion,
						EnvVars: []string{"AWS_REGION"},
					},
					&cli.StringFlag{
						Name:    "db-secret",
						Usage:   "Secrets Manager secret holding the database connection fields",
						Value:   constants.DefaultDBSecretName,
						EnvVars: []string{"DB_SECRET_NAME"},
					},
				},
				Action: func(c *cli.Context) error {
					return migrateDBURLAction(c, logger)
				},
			},
		},
	}
}

func dirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "dir",
		Usage:   "Migrations directory",
		Value:   constants.MigrationsDir,
		EnvVars: []string{"MIGRATIONS_DIR"},
	}
}

func migrateNewAction(c *cli.Context, logger *zerolog.Logger) error {
	message := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if message == "" {
		return fmt.Errorf("revision message is required")
	}

	path, err := migrate.New(c.String("dir"), message)
	if err != nil {
		return err
	}

	logger.Info().Str("path", path).Msg("Revision created")
	return nil
}

func migrateListAction(c *cli.Context, logger *zerolog.Logger) error {
	revisions, err := migrate.List(c.String("dir"))
	if err != nil {
		return err
	}
	if len(revisions) == 0 {
		logger.Info().Msg("No revisions found")
		return nil
	}

	head := revisions[len(revisions)-1].ID
	for _, rev := range revisions {
		event := logger.Info().
			Str("revision", rev.ID).
			Str("message", rev.Message)
		if rev.Revises != "" {
			event = event.Str("revises", rev.Revises)
		}
		if rev.ID == head {
			event = event.Bool("head", true)
		}
		event.Msg(rev.Filename)
	}
	return nil
}

func migrateDBURLAction(c *cli.Context, logger *zerolog.Logger) error {
	ctx := logger.WithContext(c.Context)

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.String("region")))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	secret, err := services.NewSecretsManagerService(awsConfig).GetDatabaseSecret(ctx, c.String("db-secret"))
	if err != nil {
		return err
	}

	// Plain line on stdout so the output can be piped into other tools
	fmt.Fprintln(c.App.Writer, secret.URL())
	return nil
}
