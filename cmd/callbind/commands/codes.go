package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"martianoff/callbind/binderr"
)

var codesCategory string

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List the diagnostic codes",
	Long: `List every diagnostic code the binder can report, with its category
and default severity.

Examples:
  callbind codes
  callbind codes --category DynamicArgumentError`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		n := 0
		for _, c := range binderr.All() {
			if codesCategory != "" && string(c.Category()) != codesCategory {
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c, c.Category(), c.Severity())
			n++
		}
		if n == 0 {
			return fmt.Errorf("no codes in category %q", codesCategory)
		}
		return tw.Flush()
	},
}

func init() {
	codesCmd.Flags().StringVarP(&codesCategory, "category", "c", "", "Only list codes of this category")
}
