package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pasvm",
	Short: "Pascal-dialect compiler targeting a stack-based VM",
	Long: `pasvm compiles an ISO-7185-like Pascal dialect to a textual
assembly language for a small stack-based virtual machine.

The pipeline is lexer -> parser -> semantic analyzer -> code generator;
there is no back-edge, and a failure at any stage aborts compilation.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
