package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark <deal-id>",
	Short: "Generate AI market benchmarks for a deal's base assumption set",
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

		assumptions, err := env.Benchmarks.Generate(cmd.Context(), dealID)
		if err != nil {
			return err
		}

		for _, a := range assumptions {
			line := fmt.Sprintf("%-20s", a.Key)
			if a.ValueNumber != nil {
				line += fmt.Sprintf(" %.4g", *a.ValueNumber)
			}
			if a.Unit != nil {
				line += " " + *a.Unit
			}
			if a.RangeMin != nil && a.RangeMax != nil {
				line += fmt.Sprintf(" (range %.4g to %.4g)", *a.RangeMin, *a.RangeMax)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)
}
