package errors

import (
	stderrors "errors"
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
		wantSev Severity
	}{
		{"unknown key", "S001", "Unknown configuration key", CategoryConfig, SeverityWarning},
		{"custom element", "S004", "Could not create custom element", CategoryCreate, SeverityWarning},
		{"mount", "S006", "Mount target not found", CategoryMount, SeverityWarning},
		{"descriptor", "S050", "Invalid descriptor document", CategoryParse, SeverityError},
		{"unknown code", "S999", "Unknown error", "", SeverityError},
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
			if err.Severity != tt.wantSev {
				t.Errorf("Severity = %q, want %q", err.Severity, tt.wantSev)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestSpawnError_Error(t *testing.T) {
	err := New("S001").WithDetail(`unknown key "bogus"`)
	want := `S001: Unknown configuration key: unknown key "bogus"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := Newf(CategoryCLI, "file %q not found", "page.yaml")
	if plain.Error() != `file "page.yaml" not found` {
		t.Errorf("Error() = %q", plain.Error())
	}
}

func TestSpawnError_Wrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := New("S061").Wrap(cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.HasSuffix(err.Error(), ": boom") {
		t.Errorf("Error() = %q, want cause suffix", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "S050") != nil {
		t.Error("FromError(nil) should be nil")
	}
	orig := New("S051")
	if FromError(orig, "S050") != orig {
		t.Error("FromError should return an existing SpawnError unchanged")
	}
	wrapped := FromError(stderrors.New("x"), "S050")
	if wrapped.Code != "S050" {
		t.Errorf("Code = %q, want S050", wrapped.Code)
	}
}

func TestWithLocation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.yaml")
	content := "- div#app\n- attr:\n    title: x\n- bogus: 1\n- [p, hello]\n"
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("S001").WithLocation(file, 4, 3)
	if err.Location == nil || err.Location.Line != 4 || err.Location.Column != 3 {
		t.Fatalf("Location = %+v", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
	if got := err.FormatCompact(); !strings.HasPrefix(got, file+":4:3: S001") {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("S001").WithDetail("unknown key bogus").WithSuggestion("check the key")
	out := err.Format()
	for _, want := range []string{"WARNING S001: Unknown configuration key", "unknown key bogus", "Hint: check the key"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}

	var b strings.Builder
	Fprint(&b, stderrors.New("plain"))
	if !strings.Contains(b.String(), "ERROR: plain") {
		t.Errorf("Fprint() = %q", b.String())
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
		t.Error("empty text should wrap to nil")
	}
}
