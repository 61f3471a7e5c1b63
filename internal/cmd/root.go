// Package cmd wires the orienta commands together
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "orienta",
	Short: "Find your study pathway after matric",
	Long: `orienta helps South African learners find accredited study pathways.

Answer a short questionnaire about your grade, subjects, interests and
budget, and orienta matches you with programmes at universities, TVET
colleges and accredited providers. The first matching pathway is free;
the full ranked list is available after payment.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellable context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
