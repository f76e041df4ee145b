package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/minorchanges/internal/application/variants"
)

// NewRulesCmd creates the rules command.
func NewRulesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the transformation rules",
		Long: "Lists every rule with its number, whether it needs a fragment or\n" +
			"reaction library, and whether the current configuration enables it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			opts, err := variants.BuildOptions(cc.Config.Engine)
			if err != nil {
				return err
			}
			rules := variants.DescribeRules(opts)
			if asJSON {
				return printJSON(cmd, rules)
			}
			rows := make([][]string, len(rules))
			for i, r := range rules {
				rows[i] = []string{strconv.Itoa(r.ID), r.Name, yesNo(r.NeedsLibrary), yesNo(r.EnabledDefault)}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), FormatTable([]string{"ID", "NAME", "LIBRARY", "ENABLED"}, rows))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

//Personal.AI order the ending
