package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var exportSet string

var exportCmd = &cobra.Command{
	Use:   "export <deal-id>",
	Short: "Export the underwriting workbook for a deal",
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

		setID, err := resolveSetID(cmd, env, dealID, exportSet)
		if err != nil {
			return err
		}

		exp, err := env.Exports.Export(cmd.Context(), dealID, setID)
		if err != nil {
			return err
		}

		path, err := env.Exports.Resolve(exp.FilePath)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportSet, "set", "", "assumption set id (defaults to the deal's latest set)")
	rootCmd.AddCommand(exportCmd)
}
