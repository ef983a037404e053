/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oasgen",
	Short: "Generate and refresh typed API clients from an OpenAPI Specification",
	Long: `oasgen turns an OpenAPI description into a callable Go client surface
and keeps it fresh as the API evolves.

Use "oasgen generate" for a one-shot generation from a local file or URL,
or "oasgen watch" to poll the description and regenerate whenever its
content changes.`,
	SilenceUsage: true,
}

func Execute() {
	cobra.OnInitialize(func() {
		viper.SetConfigName("oasgen")
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				slog.Error("failed to read config file", "error", err)
				os.Exit(1)
			}
		}

		if viper.GetBool("verbose") {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	})

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("spec-url", "", "HTTP location of the OpenAPI description")
	rootCmd.PersistentFlags().String("spec-file", "", "Local OpenAPI description file")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Path of the generated artifact")
	rootCmd.PersistentFlags().StringP("package", "p", "", "Package name of the generated artifact")
	rootCmd.PersistentFlags().Duration("interval", 0, "Poll interval for watch mode")
	rootCmd.PersistentFlags().Duration("fetch-timeout", 0, "Timeout for each spec fetch")
	rootCmd.PersistentFlags().String("cache-file", "", "Path of the change-detection cache record")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	viper.BindPFlag("spec_url", rootCmd.PersistentFlags().Lookup("spec-url"))
	viper.BindPFlag("spec_file", rootCmd.PersistentFlags().Lookup("spec-file"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("package", rootCmd.PersistentFlags().Lookup("package"))
	viper.BindPFlag("interval", rootCmd.PersistentFlags().Lookup("interval"))
	viper.BindPFlag("fetch_timeout", rootCmd.PersistentFlags().Lookup("fetch-timeout"))
	viper.BindPFlag("cache_file", rootCmd.PersistentFlags().Lookup("cache-file"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
