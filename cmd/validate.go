package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dealdesk/dealdesk/internal/model"
)

var validatePhase string

var validateCmd = &cobra.Command{
	Use:   "validate <deal-id>",
	Short: "Validate extracted fields against live market data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dealID, err := uuid.Parse(args[0])
		if err != nil {
			return eris.Wrap(err, "parse deal id")
		}

		phase := model.ValidationPhase(validatePhase)
		if phase != model.PhaseQuick && phase != model.PhaseDeep {
			return eris.Errorf("phase must be quick or deep, got %q", validatePhase)
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		results, err := env.Validations.ValidateFields(cmd.Context(), dealID, phase)
		if err != nil {
			return err
		}

		for _, r := range results {
			fmt.Printf("%-20s %-18s confidence %.2f\n", r.FieldKey, r.Status, r.Confidence)
			if r.Explanation != "" {
				fmt.Printf("  %s\n", r.Explanation)
			}
			for _, src := range r.Sources {
				fmt.Printf("  - %s\n", src.URL)
			}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validatePhase, "phase", "quick", "validation phase (quick or deep)")
	rootCmd.AddCommand(validateCmd)
}
