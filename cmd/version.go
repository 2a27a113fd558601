package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(version string, commit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of pasajes",
		Run: func(cmd *cobra.Command, args []string) {
			out := fmt.Sprintf("%s %s", appName, version)
			if commit != "none" && commit != "" {
				out += fmt.Sprintf(" (%s)", commit)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
		},
	}
}
