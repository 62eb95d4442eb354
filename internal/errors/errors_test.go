package errors

import (
	"bytes"
	stderrors "errors"
	"io/fs"
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
		{"config read", "J100", "Configuration file could not be read", CategoryConfig},
		{"unknown driver", "J120", "Unknown driver", CategoryCLI},
		{"publish", "J141", "Snapshot could not be published", CategoryPublish},
		{"unknown code", "J999", "Unknown error", ""},
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

func TestWrapUnwrap(t *testing.T) {
	err := New("J100").Wrap(fs.ErrNotExist)
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is does not see the wrapped error")
	}
	if !strings.Contains(err.Error(), "J100") || !strings.Contains(err.Error(), "not exist") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "J160") != nil {
		t.Error("FromError(nil) != nil")
	}
	coded := New("J121")
	if got := FromError(coded, "J160"); got != coded {
		t.Errorf("FromError(*Error) = %v, want unchanged", got)
	}
	got := FromError(stderrors.New("boom"), "J160")
	if got.Code != "J160" || got.Wrapped == nil {
		t.Errorf("FromError() = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("J120").WithDetail("driver \"gtk\" is not available")
	out := err.Format()
	for _, want := range []string{"ERROR J120: Unknown driver", `driver "gtk"`, "Hint: Use --driver"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Fprint(plain) = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, Newf(CategoryCLI, "bad flag %s", "--x"))
	if !strings.Contains(buf.String(), "bad flag --x") {
		t.Errorf("Fprint(*Error) = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") != nil")
	}
}
