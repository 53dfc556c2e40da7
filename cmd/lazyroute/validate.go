package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
	"github.com/vango-dev/lazyroute/pkg/router"
	"github.com/vango-dev/lazyroute/pkg/routetable"
)

func validateCmd(configPath *string) *cobra.Command {
	var withBundles bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the route configuration",
		Long: `Validate lazyroute.json and print the route tree.

With --bundles, every bundle reachable from the root table is fetched
and its routes are validated too.

Examples:
  lazyroute validate
  lazyroute validate -c examples/bank --bundles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), *configPath, withBundles)
		},
	}

	cmd.Flags().BoolVarP(&withBundles, "bundles", "b", false, "Fetch and validate every reachable bundle")

	return cmd
}

func runValidate(ctx context.Context, out io.Writer, configPath string, withBundles bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	if err := router.ValidateRedirects(table); err != nil {
		return err
	}

	success(out, "%s is valid", cfg.Path())
	printTree(out, table, "  ")
	for _, w := range routetable.Lint(table) {
		warn(out, "%s: %s", w.Path, w.Message)
	}

	if !withBundles {
		return nil
	}

	logger, err := newLogger(cfg.Log, io.Discard)
	if err != nil {
		return err
	}
	loader, err := newLoader(cfg, logger)
	if err != nil {
		return err
	}

	failed := 0
	seen := make(map[string]bool)
	var visit func(t *routetable.Table)
	visit = func(t *routetable.Table) {
		for _, id := range lazyIDs(t) {
			if seen[id] {
				continue
			}
			seen[id] = true

			b, err := loader.Load(ctx, id)
			if err != nil {
				failed++
				errorMsg(out, "bundle %s: %s", id, lrerrors.FromError(err, lrerrors.CodeBundleLoad).FormatCompact())
				continue
			}
			success(out, "bundle %s (%d routes)", id, b.Routes.Len())
			printTree(out, b.Routes, "    ")
			visit(b.Routes)
		}
	}
	visit(table)

	if failed > 0 {
		return lrerrors.Newf(lrerrors.CategoryCLI, "%d of %d bundles failed validation", failed, len(seen))
	}
	return nil
}

// lazyIDs returns the loader IDs referenced by t, in declared order.
func lazyIDs(t *routetable.Table) []string {
	var ids []string
	t.Walk(func(_ []string, e routetable.Entry) bool {
		if h, ok := e.Handler.(routetable.LazyBundle); ok {
			ids = append(ids, h.LoaderID)
		}
		return true
	})
	return ids
}

func printTree(out io.Writer, t *routetable.Table, indent string) {
	t.Walk(func(base []string, e routetable.Entry) bool {
		info(out, "%s%-24s %s", indent+strings.Repeat("  ", len(base)), "/"+strings.Join(append(append([]string(nil), base...), e.Pattern), "/"), describeHandler(e))
		return true
	})
}

func describeHandler(e routetable.Entry) string {
	s := fmt.Sprint(e.Handler)
	if e.Match == routetable.MatchExact {
		s += " [full]"
	}
	return s
}
