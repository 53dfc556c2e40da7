package router

import (
	"errors"
	"strings"
	"testing"

	lrerrors "github.com/vango-dev/lazyroute/internal/errors"
	"github.com/vango-dev/lazyroute/pkg/routetable"
)

func TestValidateRedirects(t *testing.T) {
	tests := []struct {
		name    string
		table   *routetable.Table
		wantErr error
	}{
		{
			name:  "bank routes",
			table: bankRoutes(),
		},
		{
			name: "two entry cycle",
			table: routetable.New(
				entry{Pattern: "a", Match: exact, Handler: redirect("/b")},
				entry{Pattern: "b", Match: exact, Handler: redirect("/a")},
			),
			wantErr: ErrRedirectCycle,
		},
		{
			name: "wildcard to itself",
			table: routetable.New(
				entry{Pattern: "home", Match: exact, Handler: view("home")},
				entry{Pattern: "**", Handler: redirect("/missing")},
			),
			wantErr: ErrRedirectCycle,
		},
		{
			name: "relative chain ending at a view",
			table: routetable.New(
				entry{Pattern: "old", Match: exact, Handler: redirect("new")},
				entry{Pattern: "new", Match: exact, Handler: redirect("/newer")},
				entry{Pattern: "newer", Match: exact, Handler: view("newer")},
			),
		},
		{
			name: "nested relative redirect",
			table: routetable.New(
				entry{Pattern: "s", Children: routetable.New(
					entry{Pattern: "", Match: exact, Handler: view("s")},
					entry{Pattern: "old", Match: exact, Handler: redirect("")},
				)},
			),
		},
		{
			name: "param source is skipped",
			table: routetable.New(
				entry{Pattern: ":x", Match: exact, Handler: redirect("/y")},
				entry{Pattern: "y", Match: exact, Handler: view("y")},
			),
		},
		{
			name: "chain into lazy entry stops",
			table: routetable.New(
				entry{Pattern: "go", Match: exact, Handler: redirect("/account/x")},
				entry{Pattern: "account", Handler: lazy("account")},
			),
		},
		{
			name: "target escaping root",
			table: routetable.New(
				entry{Pattern: "a", Match: exact, Handler: redirect("../..")},
			),
			wantErr: routetable.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRedirects(tt.table)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateRedirects() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateRedirects() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedirectCycleErrorDetail(t *testing.T) {
	err := RedirectCycleError([]string{"/a", "/b", "/a"})
	if !errors.Is(err, ErrRedirectCycle) {
		t.Fatal("expected ErrRedirectCycle")
	}
	var re *lrerrors.RouteError
	if !errors.As(err, &re) {
		t.Fatal("expected RouteError")
	}
	if !strings.Contains(re.Detail, "/a → /b → /a") {
		t.Errorf("Detail = %q", re.Detail)
	}
}

func TestResolveTargetRequiresRedirect(t *testing.T) {
	res, err := Match(bankRoutes(), "/account")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveTarget(res); err == nil {
		t.Error("expected error for non-redirect handler")
	}
}
