package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/orienta-za/orienta/internal/api"
	"github.com/orienta-za/orienta/internal/errors"
)

var pathwayCmd = &cobra.Command{
	Use:   "pathway",
	Short: "Show your free pathway preview",
	Long: `Show the first pathway Orienta matched for you.

The preview is free. The full ranked list of pathways, with deadlines
and funding options, unlocks after payment ('orienta checkout').

Examples:
  orienta pathway`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		if err := app.requireLogin(); err != nil {
			return err
		}

		return fetchAndRenderPreview(cmd, app)
	},
}

// showPathwayPreview is the post-intake navigation target
func showPathwayPreview(cmd *cobra.Command) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	return fetchAndRenderPreview(cmd, app)
}

func fetchAndRenderPreview(cmd *cobra.Command, app *app) error {
	out := cmd.OutOrStdout()

	preview, err := app.client.PathwayPreview(cmd.Context())
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeAuthTokenRejected) {
			return app.handleAuthFailure(out, err)
		}
		if errors.IsCode(err, errors.ErrCodeSessionRejected) {
			fmt.Fprintln(out, "Your pathway preview is not ready yet.")
			fmt.Fprintln(out, "Run 'orienta intake' to finish the questionnaire first.")
			return err
		}
		return err
	}

	renderPreview(cmd, preview)
	return nil
}

func renderPreview(cmd *cobra.Command, preview *api.PathwayPreview) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s\n", preview.Programme.Title)
	fmt.Fprintf(out, "  %s — %s, %s\n", preview.Institution.Name, preview.Institution.City, preview.Institution.Province)
	if preview.Programme.Faculty != "" {
		fmt.Fprintf(out, "  Faculty:    %s\n", preview.Programme.Faculty)
	}
	fmt.Fprintf(out, "  Type:       %s\n", preview.Programme.QualificationType)
	if preview.Programme.DurationMonths > 0 {
		fmt.Fprintf(out, "  Duration:   %d months\n", preview.Programme.DurationMonths)
	}
	if preview.Programme.TotalEstimatedCost > 0 {
		fmt.Fprintf(out, "  Est. cost:  R%.0f\n", preview.Programme.TotalEstimatedCost)
	}
	if reqs := preview.Programme.EntryRequirements; !reqs.Empty() {
		fmt.Fprintln(out, "  Entry requirements:")
		if reqs.APSMin > 0 {
			fmt.Fprintf(out, "    • APS of at least %d\n", reqs.APSMin)
		}
		subjects := make([]string, 0, len(reqs.SubjectMinima))
		for subject := range reqs.SubjectMinima {
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)
		for _, subject := range subjects {
			fmt.Fprintf(out, "    • %s: level %d or higher\n", subject, reqs.SubjectMinima[subject])
		}
	}
	if preview.Institution.ApplicationPortalURL != "" {
		fmt.Fprintf(out, "  Apply at:   %s\n", preview.Institution.ApplicationPortalURL)
	}

	fmt.Fprintln(out)
	if preview.Message != "" {
		fmt.Fprintln(out, preview.Message)
	}
	if preview.PreviewOnly {
		fmt.Fprintln(out, "This is your free preview. Run 'orienta checkout' to unlock the full ranked list.")
	}
}

func init() {
	rootCmd.AddCommand(pathwayCmd)
}
