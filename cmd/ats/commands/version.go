package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/ats/version"
)

var verbose bool

// VersionCmd ...
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version info",
	Run: func(cmd *cobra.Command, args []string) {
		if verbose {
			values, _ := json.MarshalIndent(struct {
				Contract  string `json:"contract"`
				Version   string `json:"version"`
				GitCommit string `json:"git_commit,omitempty"`
			}{
				Contract:  version.Definition,
				Version:   version.ATSSemVer,
				GitCommit: version.GitCommit,
			}, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(values))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
		}
	},
}

func init() {
	VersionCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show contract definition and build info")
}
