package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pysymtab/engine/output"
)

var (
	verboseFlag bool
	Version     = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "pysym",
	Short: "Symbolic analysis engine for Python source trees",
	Long: `pysym builds a symbol table over a Python source tree: modules,
classes, functions, and their resolved members, following imports and
inheritance without running the code.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verboseFlag, _ = cmd.Flags().GetBool("verbose") //nolint:all
	},
}

// Execute runs the root command; main.go's only job is to call this and
// translate a non-nil error into a process exit code.
func Execute() error {
	return rootCmd.Execute()
}

func verbosity() output.VerbosityLevel {
	if verboseFlag {
		return output.VerbosityVerbose
	}
	return output.VerbosityDefault
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose diagnostic output")
	rootCmd.AddCommand(analyzeCmd)
}
