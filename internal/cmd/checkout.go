package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orienta-za/orienta/internal/api"
	"github.com/orienta-za/orienta/internal/errors"
	"github.com/orienta-za/orienta/internal/tui"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Unlock the full pathway list",
	Long: `Start a payment to unlock the full ranked list of pathways.

Orienta creates a hosted checkout session and prints its URL; open it
in a browser to pay. No payment details ever pass through this tool.

Plans:
  learner  full pathway matching (R79)
  premium  pathway matching plus funding and deadline tracking (R129)

Examples:
  orienta checkout
  orienta checkout --plan premium`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		if err := app.requireLogin(); err != nil {
			return err
		}

		plan, _ := cmd.Flags().GetString("plan")
		if plan == "" {
			if tui.IsInteractive() {
				plan, err = tui.PromptForSelect("Choose a plan", []string{api.PlanLearner, api.PlanPremium})
				if err != nil {
					return err
				}
			} else {
				plan = api.PlanLearner
			}
		}

		if plan != api.PlanLearner && plan != api.PlanPremium {
			return fmt.Errorf("unknown plan %q: use %q or %q", plan, api.PlanLearner, api.PlanPremium)
		}

		out := cmd.OutOrStdout()

		checkout, err := app.client.CreateCheckout(cmd.Context(), plan)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeAuthTokenRejected) {
				return app.handleAuthFailure(out, err)
			}
			return err
		}

		fmt.Fprintln(out, "Checkout session created. Open this link in your browser to pay:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  %s\n", checkout.CheckoutURL)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Once payment completes, your full pathway list unlocks automatically.")
		return nil
	},
}

func init() {
	checkoutCmd.Flags().String("plan", "", "payment plan: learner or premium")
	rootCmd.AddCommand(checkoutCmd)
}
