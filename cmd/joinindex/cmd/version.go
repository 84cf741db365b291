package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/joinindex/internal/ui"
	"github.com/Aman-CERP/joinindex/pkg/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOutput, shortOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the joinindex build",
		Long: `Show which joinindex build is running. Release builds carry the
version, commit and date set at link time; local builds fall back to the
VCS revision recorded by the Go toolchain and are marked +dirty when the
working tree had changes. Attach this output to bench results you share.`,
		Example: `  joinindex version
  joinindex version --short
  joinindex version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd.OutOrStdout(), jsonOutput, shortOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the build info as JSON")
	cmd.Flags().BoolVar(&shortOutput, "short", false, "Print the bare version, for scripts")
	cmd.MarkFlagsMutuallyExclusive("json", "short")

	return cmd
}

func runVersion(w io.Writer, jsonOutput, shortOutput bool) error {
	switch {
	case shortOutput:
		_, err := fmt.Fprintln(w, version.Short())
		return err
	case jsonOutput:
		return ui.NewReportRenderer(w, true).RenderJSON(version.GetInfo())
	default:
		_, err := fmt.Fprintln(w, version.String())
		return err
	}
}
