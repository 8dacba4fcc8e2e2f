package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"elevatr.app/predictor/internal/http/handler"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a student record",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(handler.StudentSchema())
	},
}
