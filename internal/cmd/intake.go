package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orienta-za/orienta/internal/errors"
	"github.com/orienta-za/orienta/internal/intake"
	"github.com/orienta-za/orienta/internal/tui"
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Answer the pathway questionnaire",
	Long: `Answer the questionnaire that matches you with study pathways.

The questionnaire asks about your grade, subjects, marks, interests,
province and budget. Progress is saved after every answer, so you can
stop at any time and pick up where you left off.

Examples:
  orienta intake`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		if err := app.requireLogin(); err != nil {
			return err
		}

		machine := intake.NewMachine(app.client,
			intake.WithSubmitTimeout(app.cfg.SubmitTimeout),
			intake.WithLogger(app.logger))

		result, err := tui.RunIntake(cmd.Context(), machine)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeAuthTokenRejected) {
				return app.handleAuthFailure(cmd.OutOrStdout(), err)
			}
			return err
		}

		out := cmd.OutOrStdout()

		if !result.Completed {
			fmt.Fprintln(out, "Intake paused. Run 'orienta intake' to continue where you left off.")
			return nil
		}

		// completion navigates straight to the pathway preview
		if result.Navigate == intake.RoutePathwayPreview {
			fmt.Fprintln(out, "Questionnaire complete! Here is your free pathway preview:")
			fmt.Fprintln(out)
			return showPathwayPreview(cmd)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(intakeCmd)
}
