package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/minorchanges/internal/infrastructure/database/postgres"
	"github.com/turtacn/minorchanges/pkg/errors"
)

// NewMigrateCmd creates the migrate command group for the variant store
// schema.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the variant store schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cc, err := GetCLIContext(cmd)
				if err != nil {
					return err
				}
				return postgres.RunMigrations(postgres.ConnString(cc.Config.Postgres), cc.Logger)
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default one step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cc, err := GetCLIContext(cmd)
				if err != nil {
					return err
				}
				steps := 1
				if len(args) == 1 {
					if steps, err = strconv.Atoi(args[0]); err != nil {
						return errors.New(errors.ErrCodeBadRequest, "steps must be an integer").WithDetail(args[0])
					}
				}
				return postgres.RollbackMigration(postgres.ConnString(cc.Config.Postgres), steps)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cc, err := GetCLIContext(cmd)
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationStatus(postgres.ConnString(cc.Config.Postgres))
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "version %d, dirty %t\n", version, dirty)
				return err
			},
		},
	)
	return cmd
}

//Personal.AI order the ending
