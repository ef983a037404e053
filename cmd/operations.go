/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/moamenhredeen/oasgen/internal/config"
	"github.com/moamenhredeen/oasgen/internal/extractor"
	"github.com/moamenhredeen/oasgen/internal/output"
)

var (
	opsFormat     string
	opsOutputFile string
)

// operationsCmd represents the operations command
var operationsCmd = &cobra.Command{
	Use:   "operations [spec-file-or-url]",
	Short: "List the operations extracted from a description",
	Long: `Extract the operation table from an OpenAPI description and print it,
or export it as JSON or CSV.

Examples:
  oasgen operations api-spec.json
  oasgen operations https://petstore.example.com/openapi.json --format json --output-file ops.json`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runOperations,
	SilenceUsage: true,
}

func runOperations(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		applySpecArg(args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	result, err := buildSource(cfg).Fetch(cmd.Context())
	if err != nil {
		return err
	}

	records, err := extractor.New(slog.Default()).Extract(result.Bytes)
	if err != nil {
		return err
	}

	if opsFormat != "" {
		format, err := output.ParseFormat(opsFormat)
		if err != nil {
			return err
		}
		return output.ExportOperations(records, format, opsOutputFile)
	}

	for _, record := range records {
		op := record.Op
		line := fmt.Sprintf("%-6s %-40s %s", op.Method, op.PathTemplate, cyan(op.OperationID))
		if op.Summary != "" {
			line += "  " + yellow(op.Summary)
		}
		fmt.Println(line)
	}
	fmt.Printf("\n%d operations\n", len(records))

	return nil
}

func init() {
	operationsCmd.Flags().StringVar(&opsFormat, "format", "", "Export format: json or csv")
	operationsCmd.Flags().StringVar(&opsOutputFile, "output-file", "", "Export destination (default stdout)")
	rootCmd.AddCommand(operationsCmd)
}
