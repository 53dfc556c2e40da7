package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe error codes",
		Long: `Print the category and description of an error code such as R003.
Without a code, every registered code is listed.

Examples:
  lazyroute explain
  lazyroute explain R002`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listCodes(cmd.OutOrStdout())
				return nil
			}
			return explainCode(cmd.OutOrStdout(), args[0])
		},
	}
}

func listCodes(out io.Writer) {
	codes := lrerrors.GetAllCodes()
	slices.Sort(codes)
	for _, code := range codes {
		t, _ := lrerrors.GetTemplate(code)
		info(out, "%s  %-10s %s", code, t.Category, t.Message)
	}
}

func explainCode(out io.Writer, code string) error {
	code = strings.ToUpper(code)
	t, ok := lrerrors.GetTemplate(code)
	if !ok {
		return lrerrors.Newf(lrerrors.CategoryCLI, "unknown error code %q", code).
			WithSuggestion("Run lazyroute explain to list the registered codes")
	}
	fmt.Fprintf(out, "%s: %s (%s)\n\n%s\n", code, t.Message, t.Category, t.Detail)
	return nil
}
