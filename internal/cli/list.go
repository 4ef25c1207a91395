package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listJSON bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents available to the current user",
	Long: `List prints the metadata of every document the gateway exposes:
id, grade, source file name, finalized flag and assignment.

Example:
  normalia list
  normalia list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}

	docs, err := gw.ListDocuments(cmd.Context())
	if err != nil {
		return err
	}

	if listJSON {
		return writeJSON(cmd.OutOrStdout(), docs)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGRADE\tFINALIZED\tASSIGNED\tTITLE")
	for _, d := range docs {
		grade := "-"
		if d.Grade != nil {
			grade = strconv.Itoa(*d.Grade)
		}
		fmt.Fprintf(tw, "%d\t%s\t%v\t%v\t%s\n", d.ID, grade, d.Finalized, d.AssignedToUser, d.Title)
	}
	return tw.Flush()
}
