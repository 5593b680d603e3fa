package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var proformaSet string

var proformaCmd = &cobra.Command{
	Use:   "proforma <deal-id>",
	Short: "Compute the proforma model for a deal's assumption set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dealID, err := uuid.Parse(args[0])
		if err != nil {
			return eris.Wrap(err, "parse deal id")
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		setID, err := resolveSetID(cmd, env, dealID, proformaSet)
		if err != nil {
			return err
		}

		result, err := env.Proforma.Compute(cmd.Context(), setID)
		if err != nil {
			return err
		}

		fmt.Printf("stabilized NOI    %14.2f\n", result.NOIStabilized)
		fmt.Printf("exit value        %14.2f\n", result.ExitValue)
		fmt.Printf("total cost        %14.2f\n", result.TotalCost)
		fmt.Printf("profit            %14.2f\n", result.Profit)
		fmt.Printf("profit margin     %13.2f%%\n", result.ProfitMarginPct)
		return nil
	},
}

// resolveSetID picks the assumption set: an explicit --set flag wins,
// otherwise the deal's most recent set is used.
func resolveSetID(cmd *cobra.Command, env *appEnv, dealID uuid.UUID, flag string) (uuid.UUID, error) {
	if flag != "" {
		setID, err := uuid.Parse(flag)
		if err != nil {
			return uuid.Nil, eris.Wrap(err, "parse set id")
		}
		return setID, nil
	}

	sets, err := env.Store.ListAssumptionSets(cmd.Context(), dealID)
	if err != nil {
		return uuid.Nil, err
	}
	if len(sets) == 0 {
		return uuid.Nil, eris.Errorf("deal %s has no assumption sets", dealID)
	}
	return sets[0].ID, nil
}

func init() {
	proformaCmd.Flags().StringVar(&proformaSet, "set", "", "assumption set id (defaults to the deal's latest set)")
	rootCmd.AddCommand(proformaCmd)
}
