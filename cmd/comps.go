package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dealdesk/dealdesk/internal/model"
)

var compsRefresh bool

var compsCmd = &cobra.Command{
	Use:   "comps <deal-id>",
	Short: "List or refresh comparable properties for a deal",
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

		var found []model.Comp
		if compsRefresh {
			found, err = env.Comps.Refresh(cmd.Context(), dealID)
		} else {
			found, err = env.Comps.List(cmd.Context(), dealID)
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ADDRESS\tCITY\tSOURCE\tSALE PRICE\tCAP RATE")
		for _, c := range found {
			price, capRate := "-", "-"
			if c.SalePrice != nil {
				price = fmt.Sprintf("%.0f", *c.SalePrice)
			}
			if c.CapRate != nil {
				capRate = fmt.Sprintf("%.2f%%", *c.CapRate*100)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Address, c.City, c.Source, price, capRate)
		}
		return w.Flush()
	},
}

func init() {
	compsCmd.Flags().BoolVar(&compsRefresh, "refresh", false, "run a fresh comp search before listing")
	rootCmd.AddCommand(compsCmd)
}
