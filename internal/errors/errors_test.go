package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "no match",
			code:    CodeNoMatch,
			wantMsg: "No route matches path",
			wantCat: CategoryRouting,
		},
		{
			name:    "bundle load",
			code:    CodeBundleLoad,
			wantMsg: "Bundle load failed",
			wantCat: CategoryBundle,
		},
		{
			name:    "invalid route",
			code:    CodeInvalidRoute,
			wantMsg: "Invalid route configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "R999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "routes.json")
	if err.Message != `file "routes.json" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "routes.json" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestRouteError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RouteError
		want string
	}{
		{"code only", New(CodeNoMatch), "R001: No route matches path"},
		{"with path", New(CodeNoMatch).WithPath("/x"), `R001: No route matches path: "/x"`},
		{"with cause", New(CodeBundleLoad).WithPath("account").Wrap(fmt.Errorf("boom")), `R003: Bundle load failed: "account": boom`},
		{"without code", &RouteError{Message: "test error"}, "test error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouteError_IsComparesCodes(t *testing.T) {
	sentinel := New(CodeRedirectCycle)
	err := fmt.Errorf("navigate: %w", New(CodeRedirectCycle).WithPath("/a"))

	if !stderrors.Is(err, sentinel) {
		t.Error("expected wrapped error with same code to match sentinel")
	}
	if stderrors.Is(err, New(CodeNoMatch)) {
		t.Error("expected different code not to match")
	}
	if stderrors.Is(err, &RouteError{Message: "no code"}) {
		t.Error("expected code-less target never to match")
	}
}

func TestRouteError_WithLocation(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "lazyroute.json")
	content := `{
  "routes": [
    {"path": "", "viewId": "home", "loaderId": "home"}
  ]
}
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New(CodeInvalidRoute).WithLocation(tmpFile, 3, 5)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.File != tmpFile {
		t.Errorf("Location.File = %q, want %q", err.Location.File, tmpFile)
	}
	if err.Location.Line != 3 {
		t.Errorf("Location.Line = %d, want %d", err.Location.Line, 3)
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
}

func TestRouteError_Wrap(t *testing.T) {
	inner := fmt.Errorf("network down")
	err := New(CodeBundleLoad).Wrap(inner)

	if err.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeNoMatch) != nil {
		t.Error("FromError(nil) should return nil")
	}

	existing := New(CodeRedirectCycle)
	wrapped := fmt.Errorf("outer: %w", existing)
	if got := FromError(wrapped, CodeNoMatch); got != existing {
		t.Error("FromError should return the RouteError already in the chain")
	}

	plain := fmt.Errorf("plain")
	got := FromError(plain, CodeConfigFile)
	if got.Code != CodeConfigFile {
		t.Errorf("Code = %q, want %q", got.Code, CodeConfigFile)
	}
	if got.Wrapped != plain {
		t.Error("FromError should wrap the plain error")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("x: %w", New(CodeTooManyRedirect))); got != CodeTooManyRedirect {
		t.Errorf("CodeOf() = %q, want %q", got, CodeTooManyRedirect)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"nil location", nil, ""},
		{"with column", &Location{File: "routes.json", Line: 10, Column: 5}, "routes.json:10:5"},
		{"without column", &Location{File: "routes.json", Line: 10}, "routes.json:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "lazyroute.json")
	content := "{\n  \"routes\": [\n    {\"path\": \"**\", \"redirectTo\": \"/missing\"}\n  ]\n}\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New(CodeRedirectCycle).
		WithPath("/missing").
		WithLocation(tmpFile, 3, 5).
		WithSuggestion("Point the wildcard at a view route")

	formatted := err.Format()

	for _, want := range []string{"R002", "Redirect cycle detected", "/missing", tmpFile, "Hint:", "→"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeNoMatch).WithPath("/x")
	err.Location = &Location{File: "routes.json", Line: 10, Column: 5}

	want := `routes.json:10:5: R001: No route matches path: "/x"`
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, fmt.Errorf("wrapped: %w", New(CodeBundleLoad)))
	if !strings.Contains(buf.String(), "ERROR R003") {
		t.Errorf("PrintError output = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, fmt.Errorf("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("PrintError output = %q", buf.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	found := false
	for _, c := range codes {
		if c == CodeRedirectCycle {
			found = true
		}
	}
	if !found {
		t.Error("GetAllCodes() should include R002")
	}
}

func TestGetTemplate(t *testing.T) {
	tmpl, ok := GetTemplate(CodeBundleLoad)
	if !ok {
		t.Fatal("GetTemplate(R003) should exist")
	}
	if tmpl.Category != CategoryBundle {
		t.Errorf("Category = %q, want %q", tmpl.Category, CategoryBundle)
	}
	if _, ok := GetTemplate("R999"); ok {
		t.Error("GetTemplate(R999) should not exist")
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("", 10); got != nil {
		t.Errorf("wrapText(\"\") = %v, want nil", got)
	}
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}
