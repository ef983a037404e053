/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moamenhredeen/oasgen/internal/codegen"
	"github.com/moamenhredeen/oasgen/internal/config"
	"github.com/moamenhredeen/oasgen/internal/extractor"
	"github.com/moamenhredeen/oasgen/internal/specsource"
)

var green = color.New(color.FgGreen, color.Bold).SprintFunc()

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [spec-file-or-url]",
	Short: "Generate the client surface once",
	Long: `Generate the typed client surface from an OpenAPI description.

The description is read from the given argument, or from the spec_url /
spec_file configuration when no argument is given. Fetch and parse failures
are fatal.

Examples:
  oasgen generate api-spec.json
  oasgen generate https://petstore.example.com/openapi.json -o gen/client.gen.go -p petstore`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runGenerate,
	SilenceUsage: true,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		applySpecArg(args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	source := buildSource(cfg)
	result, err := source.Fetch(cmd.Context())
	if err != nil {
		return err
	}

	count, err := generateFromBytes(result.Bytes, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("%s %d operations -> %s\n", green("Generated"), count, cfg.Output)
	return nil
}

// buildSource picks the spec source: URL when configured, local file
// otherwise.
func buildSource(cfg *config.Config) specsource.Source {
	if cfg.SpecURL != "" {
		return specsource.NewHTTPSource(cfg.SpecURL, cfg.FetchTimeout)
	}
	return specsource.NewFileSource(cfg.SpecFile)
}

// generateFromBytes runs extraction and generation on raw description bytes
// and writes the artifact. It returns the number of generated bindings.
func generateFromBytes(specBytes []byte, cfg *config.Config) (int, error) {
	records, err := extractor.New(slog.Default()).Extract(specBytes)
	if err != nil {
		return 0, err
	}

	artifact, err := codegen.New(cfg.Package).Generate(records)
	if err != nil {
		return 0, err
	}

	sink := codegen.NewFilesystemSink(filepath.Dir(cfg.Output))
	if err := sink.WriteFile(filepath.Base(cfg.Output), artifact); err != nil {
		return 0, err
	}

	return len(records), nil
}

// applySpecArg lets a positional argument stand in for the spec_url or
// spec_file configuration key.
func applySpecArg(arg string) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		viper.Set("spec_url", arg)
	} else {
		viper.Set("spec_file", arg)
		viper.Set("spec_url", "")
	}
}

// regenerate reads the spec from its on-disk location and reruns the
// pipeline; the watch command uses it as the in-process regenerator.
func regenerate(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := specsource.NewFileSource(cfg.SpecPath).Fetch(ctx)
	if err != nil {
		return err
	}

	_, err = generateFromBytes(result.Bytes, cfg)
	return err
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
