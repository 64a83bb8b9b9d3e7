package errors

import (
	"encoding/json"
	"errors"
	"fmt"
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
			name:    "config error",
			code:    "E101",
			wantMsg: "Invalid port number",
			wantCat: CategoryConfig,
		},
		{
			name:    "bundle error",
			code:    "E201",
			wantMsg: "Page template has no outlet",
			wantCat: CategoryBundle,
		},
		{
			name:    "hydration error",
			code:    "E302",
			wantMsg: "Hydration mismatch",
			wantCat: CategoryHydration,
		},
		{
			name:    "unknown error code",
			code:    "E999",
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
	err := Newf(CategoryCLI, "unknown command %q", "frobnicate")
	if err.Message != `unknown command "frobnicate"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New("E101"), "E101: Invalid port number"},
		{New("E101").WithField("server.port"), "E101: Invalid port number (server.port)"},
		{New("E200").Wrap(fmt.Errorf("open x: no such file")), "E200: Page template not found: open x: no such file"},
		{&Error{Message: "plain"}, "plain"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapAndIs(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("serve: %w", New("E300").Wrap(cause))

	if !errors.Is(err, cause) {
		t.Error("errors.Is(cause) = false")
	}
	if !errors.Is(err, New("E300")) {
		t.Error("errors.Is(E300) = false")
	}
	if errors.Is(err, New("E301")) {
		t.Error("errors.Is(E301) = true")
	}
	if errors.Is(err, &Error{}) {
		t.Error("uncoded target matched")
	}
	if got := Code(err); got != "E300" {
		t.Errorf("Code = %q, want E300", got)
	}
	if got := Code(cause); got != "" {
		t.Errorf("Code(plain) = %q", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E300") != nil {
		t.Error("FromError(nil) != nil")
	}

	plain := errors.New("plain")
	wrapped := FromError(plain, "E303")
	if wrapped.Code != "E303" || wrapped.Wrapped != plain {
		t.Errorf("FromError = %+v", wrapped)
	}

	coded := New("E101")
	if got := FromError(fmt.Errorf("ctx: %w", coded), "E300"); got != coded {
		t.Errorf("FromError re-wrapped a coded error: %+v", got)
	}
}

func TestBuilders(t *testing.T) {
	err := New("E102").WithField("source.bucket").WithSuggestion("set SSR_SOURCE_BUCKET").WithDetail("custom")
	if err.Field != "source.bucket" || err.Suggestion != "set SSR_SOURCE_BUCKET" || err.Detail != "custom" {
		t.Errorf("builders = %+v", err)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E101").
		WithField("server.port").
		WithSuggestion("Use a port between 1 and 65535").
		Wrap(errors.New("port 70000"))

	got := err.Format()
	for _, want := range []string{
		"ERROR E101: Invalid port number",
		"  server.port\n",
		"  The configured port is outside the valid TCP range.\n",
		"  Cause: port 70000\n",
		"  Hint: Use a port between 1 and 65535\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\033[") {
		t.Error("Format() contains color codes with colors disabled")
	}
}

func TestFormatColors(t *testing.T) {
	EnableColors()
	if got := New("E101").Format(); !strings.Contains(got, colorRed) {
		t.Errorf("Format() without color codes: %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E103").WithField("source.kind").Wrap(errors.New(`"ftp"`))

	var got map[string]string
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &got); jerr != nil {
		t.Fatalf("FormatJSON is not JSON: %v", jerr)
	}
	want := map[string]string{
		"code":     "E103",
		"category": "config",
		"message":  "Unknown item source",
		"detail":   "The item source must be one of memory, http or s3.",
		"field":    "source.kind",
		"cause":    `"ftp"`,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
	if _, ok := got["suggestion"]; ok {
		t.Error("empty suggestion serialized")
	}
}

func TestCodes(t *testing.T) {
	codes := Codes()
	if len(codes) == 0 {
		t.Fatal("no codes registered")
	}
	for i, code := range codes {
		if i > 0 && codes[i-1] >= code {
			t.Errorf("codes not sorted at %d: %v", i, codes)
		}
		tmpl, ok := Lookup(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("incomplete template %s: %+v", code, tmpl)
		}
		var want Category
		switch code[1] {
		case '1':
			want = CategoryConfig
		case '2':
			want = CategoryBundle
		}
		if want != "" && tmpl.Category != want {
			t.Errorf("%s category = %q, want %q", code, tmpl.Category, want)
		}
	}
	if _, ok := Lookup("E999"); ok {
		t.Error("Lookup(E999) = ok")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, nil},
		{"short", 10, []string{"short"}},
		{"one two three four", 9, []string{"one two", "three", "four"}},
	}
	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	Print(&b, fmt.Errorf("run: %w", New("E303")))
	if !strings.Contains(b.String(), "ERROR E303: Server unreachable") {
		t.Errorf("Print(coded) = %q", b.String())
	}

	b.Reset()
	Print(&b, errors.New("plain failure"))
	if !strings.Contains(b.String(), "ERROR: plain failure") {
		t.Errorf("Print(plain) = %q", b.String())
	}
}
