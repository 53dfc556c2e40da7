package routepath

import (
	"reflect"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantPath     string
		wantQuery    string
		wantFragment string
		wantChanged  bool
	}{
		{
			name:        "root",
			input:       "/",
			wantPath:    "/",
			wantChanged: false,
		},
		{
			name:        "empty string",
			input:       "",
			wantPath:    "/",
			wantChanged: true,
		},
		{
			name:        "no leading slash",
			input:       "account",
			wantPath:    "/account",
			wantChanged: true,
		},
		{
			name:        "trailing slash",
			input:       "/account/",
			wantPath:    "/account",
			wantChanged: true,
		},
		{
			name:        "collapse slashes",
			input:       "/loan//list",
			wantPath:    "/loan/list",
			wantChanged: true,
		},
		{
			name:        "single dot",
			input:       "/loan/./list",
			wantPath:    "/loan/list",
			wantChanged: true,
		},
		{
			name:        "double dot",
			input:       "/loan/list/../detail",
			wantPath:    "/loan/detail",
			wantChanged: true,
		},
		{
			name:        "double dot to root",
			input:       "/loan/../",
			wantPath:    "/",
			wantChanged: true,
		},
		{
			name:        "query preserved",
			input:       "/account/detail?id=7",
			wantPath:    "/account/detail",
			wantQuery:   "id=7",
			wantChanged: false,
		},
		{
			name:         "fragment split off",
			input:        "/account/detail#history",
			wantPath:     "/account/detail",
			wantFragment: "history",
			wantChanged:  false,
		},
		{
			name:         "query and fragment",
			input:        "/account/?id=7#history",
			wantPath:     "/account",
			wantQuery:    "id=7",
			wantFragment: "history",
			wantChanged:  true,
		},
		{
			name:        "query percent escapes not validated",
			input:       "/loan?bad=%GG",
			wantPath:    "/loan",
			wantQuery:   "bad=%GG",
			wantChanged: false,
		},
		{
			name:        "valid percent escapes",
			input:       "/path/%2Fok",
			wantPath:    "/path/%2Fok",
			wantChanged: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := CanonicalizePath(tc.input)
			if err != nil {
				t.Fatalf("CanonicalizePath(%q) unexpected error = %v", tc.input, err)
			}
			if result.Path != tc.wantPath {
				t.Errorf("CanonicalizePath(%q).Path = %q, want %q", tc.input, result.Path, tc.wantPath)
			}
			if result.Query != tc.wantQuery {
				t.Errorf("CanonicalizePath(%q).Query = %q, want %q", tc.input, result.Query, tc.wantQuery)
			}
			if result.Fragment != tc.wantFragment {
				t.Errorf("CanonicalizePath(%q).Fragment = %q, want %q", tc.input, result.Fragment, tc.wantFragment)
			}
			if result.Changed != tc.wantChanged {
				t.Errorf("CanonicalizePath(%q).Changed = %v, want %v", tc.input, result.Changed, tc.wantChanged)
			}
		})
	}
}

func TestCanonicalizePathErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"backslash", "/path\\with\\backslash", ErrBackslashInPath},
		{"null byte literal", "/path/\x00/null", ErrNullByteInPath},
		{"null byte encoded", "/path/%00/null", ErrNullByteInPath},
		{"invalid percent escape incomplete", "/path/%2", ErrInvalidPercentEscape},
		{"invalid percent escape bad chars", "/path/%GG", ErrInvalidPercentEscape},
		{"invalid percent literal", "/path/100%", ErrInvalidPercentEscape},
		{"escape root", "/../secret", ErrPathEscapesRoot},
		{"deep escape root", "/a/../../secret", ErrPathEscapesRoot},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CanonicalizePath(tc.input)
			if err != tc.wantErr {
				t.Errorf("CanonicalizePath(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Location
		wantErr error
	}{
		{name: "simple path", input: "/account", want: Location{Path: "/account"}},
		{name: "root", input: "/", want: Location{Path: "/"}},
		{name: "needs canonicalization", input: "/account/detail/", want: Location{Path: "/account/detail"}},
		{name: "anchor", input: "/loan#rates", want: Location{Path: "/loan", Fragment: "rates"}},
		{name: "query kept verbatim", input: "/loan?x=1", want: Location{Path: "/loan", Query: "x=1"}},
		{name: "missing leading slash", input: "account", wantErr: ErrInvalidPath},
		{name: "http URL", input: "http://evil.com/path", wantErr: ErrInvalidPath},
		{name: "https URL", input: "https://evil.com/path", wantErr: ErrInvalidPath},
		{name: "protocol-relative URL", input: "//evil.com/path", wantErr: ErrInvalidPath},
		{name: "triple slash URL", input: "///evil.com/path", wantErr: ErrInvalidPath},
		{name: "canonicalization failure", input: "/path\\x", wantErr: ErrBackslashInPath},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.wantErr != nil {
				if err != tc.wantErr {
					t.Errorf("Parse(%q) error = %v, want %v", tc.input, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error = %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{Location{}, "/"},
		{Location{Path: "/loan"}, "/loan"},
		{Location{Path: "/loan", Query: "a=1"}, "/loan?a=1"},
		{Location{Path: "/loan", Fragment: "top"}, "/loan#top"},
		{Location{Path: "/loan", Query: "a=1", Fragment: "top"}, "/loan?a=1#top"},
	}
	for _, tc := range tests {
		if got := tc.loc.String(); got != tc.want {
			t.Errorf("%+v.String() = %q, want %q", tc.loc, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, target string
		want         string
	}{
		{"/", "", "/"},
		{"", "", "/"},
		{"/account", "", "/account"},
		{"/account", "detail", "/account/detail"},
		{"/account/", "detail", "/account/detail"},
		{"/account", "/loan", "/loan"},
		{"/account/detail", "..", "/account"},
		{"/", "account#summary", "/account"},
	}
	for _, tc := range tests {
		got, err := Resolve(tc.base, tc.target)
		if err != nil {
			t.Errorf("Resolve(%q, %q) unexpected error = %v", tc.base, tc.target, err)
			continue
		}
		if got.Path != tc.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tc.base, tc.target, got.Path, tc.want)
		}
	}

	if _, err := Resolve("/", "../.."); err != ErrPathEscapesRoot {
		t.Errorf("Resolve escaping root error = %v, want %v", err, ErrPathEscapesRoot)
	}
}

func TestDecodeSegment(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr error
	}{
		{"hello", "hello", nil},
		{"hello%20world", "hello world", nil},
		{"caf%C3%A9", "café", nil},
		{"a%2Fb", "", ErrInvalidPath},
		{"%ZZ", "", ErrInvalidPercentEscape},
	}
	for _, tc := range tests {
		got, err := DecodeSegment(tc.input)
		if err != tc.wantErr {
			t.Errorf("DecodeSegment(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("DecodeSegment(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", nil},
		{"", nil},
		{"/account", []string{"account"}},
		{"/account/detail", []string{"account", "detail"}},
	}
	for _, tc := range tests {
		got := Segments(tc.path)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Segments(%q) = %v, want %v", tc.path, got, tc.want)
		}
		if back := FromSegments(got); tc.path != "" && back != tc.path {
			t.Errorf("FromSegments(Segments(%q)) = %q", tc.path, back)
		}
	}
}
