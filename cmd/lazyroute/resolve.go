package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
	"github.com/vango-dev/lazyroute/pkg/navigation"
	"github.com/vango-dev/lazyroute/pkg/server"
)

func resolveCmd(configPath *string) *cobra.Command {
	var (
		asJSON  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <path>...",
		Short: "Resolve paths against the route configuration",
		Long: `Navigate to each path in order, loading bundles as needed, and
print the view each one resolves to.

Paths are navigated by one controller, so bundles loaded for an earlier
path are cached for later ones.

Examples:
  lazyroute resolve /
  lazyroute resolve /account /account/detail /nonexistent
  lazyroute resolve --json /loan`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logOut := io.Discard
			if verbose {
				logOut = os.Stderr
			}
			return runResolve(cmd.Context(), cmd.OutOrStdout(), logOut, *configPath, args, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON outcome per line")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log navigation events to stderr")

	return cmd
}

func runResolve(ctx context.Context, out, logOut io.Writer, configPath string, paths []string, asJSON bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	loader, err := newLoader(cfg, logger)
	if err != nil {
		return err
	}
	store, closeStore, err := newScrollStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	ctrl, err := navigation.New(table, loader, controllerOptions(cfg, logger, store)...)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	failed := 0
	for _, p := range paths {
		o := ctrl.Navigate(ctx, p)
		if o.Status != navigation.Committed {
			failed++
		}
		if asJSON {
			if err := enc.Encode(server.NewOutcomeResponse(o)); err != nil {
				return err
			}
			continue
		}
		printOutcome(out, p, o)
	}

	if !asJSON {
		stats := loader.Stats()
		info(out, "bundles: %d fetched, %d cache hits", stats.Fetches, stats.Hits)
	}
	if failed > 0 {
		return lrerrors.Newf(lrerrors.CategoryCLI, "%d of %d paths failed to resolve", failed, len(paths))
	}
	return nil
}

func printOutcome(out io.Writer, requested string, o navigation.Outcome) {
	if o.Status != navigation.Committed {
		errorMsg(out, "%s: %s: %v", requested, o.Status, o.Err)
		return
	}
	target := requested
	if o.Path != requested {
		target = fmt.Sprintf("%s -> %s", requested, o.Path)
	}
	success(out, "%s  %s  [%s, %d redirects, %s]",
		target, describeView(o.View), o.MatchedBy, o.Redirects, o.Duration.Round(time.Microsecond))
}
