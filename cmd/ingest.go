package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dealdesk/dealdesk/internal/model"
)

var ingestDocType string

var ingestCmd = &cobra.Command{
	Use:   "ingest <deal-id> <pdf-path>",
	Short: "Upload and process a document for a deal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dealID, err := uuid.Parse(args[0])
		if err != nil {
			return eris.Wrap(err, "parse deal id")
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[1])
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		docType := model.DocumentType(ingestDocType)
		doc, err := env.Documents.Upload(cmd.Context(), dealID, docType, filepath.Base(args[1]), data)
		if err != nil {
			return err
		}
		fmt.Printf("uploaded document %s\n", doc.ID)

		if err := env.Documents.Process(cmd.Context(), doc.ID); err != nil {
			return err
		}

		processed, err := env.Documents.Get(cmd.Context(), doc.ID)
		if err != nil {
			return err
		}
		fmt.Printf("processing %s\n", processed.ProcessingStatus)
		for _, step := range processed.ProcessingSteps {
			fmt.Printf("  %-16s %s", step.Name, step.Status)
			if step.Detail != "" {
				fmt.Printf(" (%s)", step.Detail)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDocType, "type", string(model.DocOfferingMemorandum), "document type")
	rootCmd.AddCommand(ingestCmd)
}
