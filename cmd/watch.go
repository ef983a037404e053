/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moamenhredeen/oasgen/internal/config"
	"github.com/moamenhredeen/oasgen/internal/watcher"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the description and regenerate on change",
	Long: `Poll the configured spec_url, hash the content and regenerate the client
surface whenever the hash differs from the persisted cache record. Cycles
never overlap: the next poll only starts after the previous cycle, including
any regeneration it triggered, has fully completed.

The loop runs until interrupted. The cache record survives restarts, so an
unchanged description is not regenerated after a restart.

Examples:
  oasgen watch --spec-url https://petstore.example.com/openapi.json --interval 1m
  oasgen watch --regen-command "make,generate"`,
	Args:         cobra.NoArgs,
	RunE:         runWatch,
	SilenceUsage: true,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.SpecURL == "" {
		return fmt.Errorf("watch requires spec_url to be set")
	}

	for _, dir := range []string{filepath.Dir(cfg.SpecPath), filepath.Dir(cfg.CacheFile), filepath.Dir(cfg.Output)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	var regen watcher.Regenerator
	if len(cfg.RegenCommand) > 0 {
		regen = watcher.NewCommandRegenerator(cfg.RegenCommand[0], cfg.RegenCommand[1:]...)
	} else {
		regen = watcher.NewFuncRegenerator(func(ctx context.Context) error {
			return regenerate(ctx, cfg)
		})
	}

	scheduler := watcher.New(watcher.Config{
		Source:      buildSource(cfg),
		Regenerator: regen,
		Cache:       watcher.NewCacheStore(cfg.CacheFile),
		Interval:    cfg.Interval,
		SpecPath:    cfg.SpecPath,
		Logger:      slog.Default(),
		OnEvent:     newWatchPrinter(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("%s %s every %s\n", cyan("Watching"), cfg.SpecURL, cfg.Interval)

	err = scheduler.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Printf("\n%s\n", yellow("Watch stopped"))
		return nil
	}
	return err
}

// newWatchPrinter renders scheduler events as terminal status lines, with a
// spinner while a cycle is in flight.
func newWatchPrinter() watcher.OnEvent {
	var s *spinner.Spinner

	stopSpinner := func() {
		if s != nil {
			s.Stop()
			s = nil
		}
	}

	return func(e watcher.Event) {
		switch e.Type {
		case watcher.EventCycleStarted:
			s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Suffix = fmt.Sprintf(" cycle %d: polling spec...", e.Cycle)
			s.Start()
		case watcher.EventFetchFailed:
			stopSpinner()
			fmt.Printf("%s fetch failed: %v (regenerating fail-open)\n", red("✗"), e.Err)
		case watcher.EventUnchanged:
			stopSpinner()
			fmt.Printf("%s unchanged (%s)\n", yellow("−"), shortHash(e.Hash))
		case watcher.EventChanged:
			stopSpinner()
			fmt.Printf("%s change detected (%s)\n", cyan("●"), shortHash(e.Hash))
		case watcher.EventRegenerated:
			fmt.Printf("%s regenerated\n", green("✓"))
		case watcher.EventRegenerationFailed:
			fmt.Printf("%s regeneration failed: %v\n", red("✗"), e.Err)
		case watcher.EventCycleCompleted:
			stopSpinner()
		}
	}
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func init() {
	watchCmd.Flags().StringSlice("regen-command", nil, "External command to run per regeneration instead of the in-process pipeline")
	watchCmd.Flags().String("spec-path", "", "Where fetched spec bytes are written before regeneration")

	viper.BindPFlag("regen_command", watchCmd.Flags().Lookup("regen-command"))
	viper.BindPFlag("spec_path", watchCmd.Flags().Lookup("spec-path"))

	rootCmd.AddCommand(watchCmd)
}
