package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSaveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the server's routes to its storage file now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.newClient(cmd)
			if err != nil {
				return err
			}
			n, err := client.Save(cmd.Context())
			if err != nil {
				return connectionError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d routes\n", n)
			return nil
		},
	}
}
