package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShutdownCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Stop a running server gracefully",
		Long: `Stop a running server gracefully. In-flight requests finish and changed
routes are saved unless the server runs with --save-on-shutdown=false.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			if err := client.Shutdown(cmd.Context()); err != nil {
				return connectionError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Server shutting down")
			return nil
		},
	}
}
