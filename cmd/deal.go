package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dealdesk/dealdesk/internal/model"
)

var (
	dealName    string
	dealAddress string
	dealCity    string
	dealState   string
	dealType    string
	dealSqft    float64
	listType    string
	listCity    string
)

var dealCmd = &cobra.Command{
	Use:   "deal",
	Short: "Manage deals",
}

var dealCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a deal with a base assumption set",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		deal := model.Deal{
			Name:         dealName,
			Address:      dealAddress,
			City:         dealCity,
			State:        dealState,
			PropertyType: model.ParsePropertyType(dealType, model.PropertyOther),
		}
		if dealSqft > 0 {
			deal.SquareFeet = &dealSqft
		}

		created, err := env.Deals.Create(cmd.Context(), deal)
		if err != nil {
			return err
		}

		fmt.Printf("created deal %s (%s)\n", created.ID, created.Name)
		return nil
	},
}

var dealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deals",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		deals, err := env.Deals.List(cmd.Context(), model.DealFilter{
			PropertyType: model.PropertyType(listType),
			City:         listCity,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCITY\tSTATE\tTYPE")
		for _, d := range deals {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Name, d.City, d.State, d.PropertyType)
		}
		return w.Flush()
	},
}

var dealGetCmd = &cobra.Command{
	Use:   "get <deal-id>",
	Short: "Show a deal as JSON",
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

		deal, err := env.Deals.Get(cmd.Context(), dealID)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(deal, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal deal")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	dealCreateCmd.Flags().StringVar(&dealName, "name", "", "deal name (required)")
	dealCreateCmd.Flags().StringVar(&dealAddress, "address", "", "street address")
	dealCreateCmd.Flags().StringVar(&dealCity, "city", "", "city")
	dealCreateCmd.Flags().StringVar(&dealState, "state", "", "two-letter state code")
	dealCreateCmd.Flags().StringVar(&dealType, "type", "other", "property type (multifamily, office, retail, industrial, mixed_use, other)")
	dealCreateCmd.Flags().Float64Var(&dealSqft, "sqft", 0, "rentable square feet")
	_ = dealCreateCmd.MarkFlagRequired("name")

	dealListCmd.Flags().StringVar(&listType, "type", "", "filter by property type")
	dealListCmd.Flags().StringVar(&listCity, "city", "", "filter by city")

	dealCmd.AddCommand(dealCreateCmd, dealListCmd, dealGetCmd)
	rootCmd.AddCommand(dealCmd)
}
