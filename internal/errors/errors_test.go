package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
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
			name:    "discovery error",
			code:    "E200",
			wantMsg: "Component scan failed",
			wantCat: CategoryDiscovery,
		},
		{
			name:    "load error",
			code:    "E211",
			wantMsg: "Session workspace missing",
			wantCat: CategoryLoad,
		},
		{
			name:    "mount error",
			code:    "E231",
			wantMsg: "Unmount failed",
			wantCat: CategoryMount,
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
	err := Newf(CategoryDrop, "zone %q not found", "phone")
	if err.Message != `zone "phone" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Category != CategoryDrop {
		t.Errorf("Category = %q, want %q", err.Category, CategoryDrop)
	}
}

func TestStudioError_Error(t *testing.T) {
	err := New("E212")
	if got, want := err.Error(), "E212: Original package missing"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E240").Wrap(fmt.Errorf("connection refused"))
	if got, want := wrapped.Error(), "E240: Build server request failed: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &StudioError{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestStudioError_Wrap(t *testing.T) {
	inner := New("E211")
	outer := New("E210").Wrap(inner)

	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !HasCode(outer, "E211") {
		t.Error("HasCode should find the inner code")
	}
	if !HasCode(outer, "E210") {
		t.Error("HasCode should find the outer code")
	}
	if HasCode(outer, "E212") {
		t.Error("HasCode reported a code that is not in the chain")
	}
	if Code(outer) != "E210" {
		t.Errorf("Code() = %q, want E210", Code(outer))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E200") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	se := New("E200")
	if FromError(se, "E201") != se {
		t.Error("FromError should return StudioError as-is")
	}

	wrapped := fmt.Errorf("context: %w", se)
	if FromError(wrapped, "E201") != se {
		t.Error("FromError should unwrap to the inner StudioError")
	}

	std := stderrors.New("boom")
	result := FromError(std, "E200")
	if result.Wrapped != std {
		t.Error("Standard error should be wrapped")
	}
	if result.Code != "E200" {
		t.Errorf("Code = %q, want E200", result.Code)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E212").
		WithSource("s3://bucket/app/App.js").
		WithSuggestion("Check loader.original in studio.json").
		Wrap(stderrors.New("NoSuchKey"))

	out := err.Format()
	for _, want := range []string{
		"ERROR E212: Original package missing",
		"s3://bucket/app/App.js",
		"Cause: NoSuchKey",
		"Hint: Check loader.original in studio.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E213").WithSource("App.js")
	if got, want := err.FormatCompact(), "App.js: E213: Source parse failure"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New("E230").WithDetail("renderer panicked").Wrap(stderrors.New("nil map"))
	data, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatal(jerr)
	}

	var got map[string]string
	if jerr := json.Unmarshal(data, &got); jerr != nil {
		t.Fatal(jerr)
	}
	if got["code"] != "E230" || got["category"] != "mount" || got["cause"] != "nil map" {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("outer: %w", New("E261")))
	if !strings.Contains(buf.String(), "E261: Configuration file not found") {
		t.Errorf("Fprint output = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Fprint output = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 9)
	if len(lines) < 3 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	for _, l := range lines {
		if len(l) > 9 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
}
