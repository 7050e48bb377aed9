package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockie/pkg/cli/internal/output"
	"github.com/getmockd/mockie/pkg/route"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the routes registered on a running server",
		Example: `  mockie list
  mockie list -o json
  mockie list --server http://remote:3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := output.CheckFormat(format); err != nil {
				return err
			}
			client, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			routes, err := client.ListRoutes(cmd.Context())
			if err != nil {
				return connectionError(err)
			}

			w := cmd.OutOrStdout()
			switch format {
			case output.FormatJSON:
				return output.JSON(w, routes)
			case output.FormatYAML:
				return output.YAML(w, routes)
			default:
				return writeRoutesTable(cmd, routes)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", output.FormatTable, "Output format: table, json, yaml")
	return cmd
}

func writeRoutesTable(cmd *cobra.Command, routes []route.Summary) error {
	if len(routes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No routes registered")
		return nil
	}
	tw := output.Table(cmd.OutOrStdout())
	fmt.Fprintln(tw, "METHOD\tPATH\tSTATUS\tDELAY")
	for _, r := range routes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%dms\n", r.Method, r.Path, r.Status, r.DelayMs)
	}
	return tw.Flush()
}
