package sheet_test

import (
	"strings"
	"testing"

	"cssengine/selector"
	"cssengine/sheet"
)

const base = "https://example.com/css/style.css"

func parseSheet(t *testing.T, text string) *sheet.Stylesheet {
	t.Helper()
	s, err := sheet.NewParser(nil).Parse(text, base)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return s
}

func TestParser_Rules(t *testing.T) {
	s := parseSheet(t, `body { color: red; font-size: 16px; }`)

	if len(s.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(s.Rules))
	}
	r := s.Rules[0]
	if len(r.Selectors) != 1 || r.Selectors[0].String() != "body" {
		t.Errorf("selectors = %+v, want [body]", r.Selectors)
	}
	if len(r.Declarations) != 2 {
		t.Fatalf("got %d declarations, want 2", len(r.Declarations))
	}
	if r.Declarations[0].Property != "color" || r.Declarations[0].Value.Keyword != "red" {
		t.Errorf("declaration 0 = %+v", r.Declarations[0])
	}
	if d := r.Declarations[1]; d.Property != "font-size" || d.Value.Value != 16 || d.Value.Unit != "px" {
		t.Errorf("declaration 1 = %+v", d)
	}
	if len(s.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", s.Warnings)
	}
}

func TestParser_SelectorGroups(t *testing.T) {
	s := parseSheet(t, `h1, h2, div > p.note { margin: 0; }`)

	if len(s.Rules) != 1 {
		t.Fatalf("got %d rules, want 1", len(s.Rules))
	}
	sels := s.Rules[0].Selectors
	if len(sels) != 3 {
		t.Fatalf("got %d selectors, want 3", len(sels))
	}
	if sels[2].String() != "div > p.note" {
		t.Errorf("selector 2 = %q", sels[2].String())
	}
}

func TestParser_BadSelectorDegradesToWarning(t *testing.T) {
	s := parseSheet(t, `a[href] { color: blue; }
p { color: green; }`)

	if len(s.Rules) != 1 {
		t.Fatalf("got %d rules, want 1 (attribute selector dropped)", len(s.Rules))
	}
	if s.Rules[0].Selectors[0].String() != "p" {
		t.Errorf("surviving rule = %q", s.Rules[0].Selectors[0].String())
	}
	if len(s.Warnings) == 0 {
		t.Error("dropped selector should be reported as a warning")
	}
}

func TestParser_MediaBlock(t *testing.T) {
	s := parseSheet(t, `
@media screen and (min-width: 768px) {
  nav { display: none; }
}
p { color: black; }`)

	if len(s.MediaBlocks) != 1 {
		t.Fatalf("got %d media blocks, want 1", len(s.MediaBlocks))
	}
	mb := s.MediaBlocks[0]
	if mb.Query.Type != "screen" {
		t.Errorf("media type = %q, want screen", mb.Query.Type)
	}
	if len(mb.Query.Features) != 1 {
		t.Fatalf("got %d features, want 1", len(mb.Query.Features))
	}
	f := mb.Query.Features[0]
	if f.Name != "min-width" || f.Value.Value != 768 || f.Value.Unit != "px" {
		t.Errorf("feature = %+v", f)
	}
	if len(mb.Rules) != 1 || mb.Rules[0].Selectors[0].String() != "nav" {
		t.Errorf("media rules = %+v", mb.Rules)
	}
	// The rule after the block still lands at the top level.
	if len(s.Rules) != 1 || s.Rules[0].Selectors[0].String() != "p" {
		t.Errorf("top-level rules = %+v", s.Rules)
	}
}

func TestParser_Imports(t *testing.T) {
	s := parseSheet(t, `
@import "reset.css";
@import url(/theme/dark.css);
body { margin: 0; }`)

	want := []string{
		"https://example.com/css/reset.css",
		"https://example.com/theme/dark.css",
	}
	if len(s.Imports) != len(want) {
		t.Fatalf("imports = %v, want %v", s.Imports, want)
	}
	for i, u := range want {
		if s.Imports[i] != u {
			t.Errorf("import %d = %q, want %q", i, s.Imports[i], u)
		}
	}
}

func TestParser_SkipsUnknownAtRules(t *testing.T) {
	s := parseSheet(t, `
@supports (display: grid) {
  main { display: grid; }
}
p { color: red; }`)

	if len(s.Rules) != 1 || s.Rules[0].Selectors[0].String() != "p" {
		t.Errorf("rules = %+v, want only the p rule", s.Rules)
	}
}

func TestParser_InvalidBaseURL(t *testing.T) {
	for _, bad := range []string{"not a url", "relative/path.css", ""} {
		if _, err := sheet.NewParser(nil).Parse("body { color: red; }", bad); err == nil {
			t.Errorf("Parse with base %q should have failed", bad)
		}
	}
}

func TestParseMediaQuery(t *testing.T) {
	p := sheet.NewParser(nil)

	tests := []struct {
		input    string
		mediaT   string
		negated  bool
		features int
	}{
		{"screen", "screen", false, 0},
		{"not print", "print", true, 0},
		{"only screen", "screen", false, 0},
		{"(min-width: 768px)", "all", false, 1},
		{"screen and (min-width: 768px)", "screen", false, 1},
		{"screen and (orientation: portrait) and (monochrome)", "screen", false, 2},
		{"all and (min-width: 20em)", "all", false, 1},
	}
	for _, tt := range tests {
		mq, err := p.ParseMediaQuery(tt.input)
		if err != nil {
			t.Fatalf("ParseMediaQuery(%q) failed: %v", tt.input, err)
		}
		if mq.Type != tt.mediaT || mq.Negated != tt.negated || len(mq.Features) != tt.features {
			t.Errorf("ParseMediaQuery(%q) = type %q negated %v features %d, want %q/%v/%d",
				tt.input, mq.Type, mq.Negated, len(mq.Features), tt.mediaT, tt.negated, tt.features)
		}
	}

	mq, err := p.ParseMediaQuery("screen and (min-width: 20em)")
	if err != nil {
		t.Fatalf("ParseMediaQuery failed: %v", err)
	}
	if f := mq.Features[0]; f.Value.Value != 20 || f.Value.Unit != "em" {
		t.Errorf("em feature value = %+v", f.Value)
	}
}

func TestParseMediaQuery_Errors(t *testing.T) {
	p := sheet.NewParser(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "empty"},
		{"leading_and", "and (min-width: 768px)", "media type"},
		{"missing_colon_value", "(min-width 768px)", "unterminated"},
		{"missing_value", "(min-width:)", "value"},
		{"unterminated_feature", "(min-width: 768px", "unterminated"},
		{"dangling_and", "screen and", "media feature"},
		{"garbage_join", "screen or print", "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseMediaQuery(tt.input)
			if err == nil {
				t.Fatalf("ParseMediaQuery(%q) should have failed", tt.input)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseMediaQuery(%q) error %q does not mention %q", tt.input, err, tt.want)
			}
		})
	}
}

func TestParser_MediaRulesMatchable(t *testing.T) {
	s := parseSheet(t, `@media print { div.wide { width: 100%; } }`)

	if len(s.MediaBlocks) != 1 || len(s.MediaBlocks[0].Rules) != 1 {
		t.Fatalf("media blocks = %+v", s.MediaBlocks)
	}
	sel := s.MediaBlocks[0].Rules[0].Selectors[0]
	if sel.String() != "div.wide" {
		t.Errorf("selector = %q", sel.String())
	}
	// Parsed selectors are the same AST the matcher consumes.
	if sel.Compounds[0].Parts[0].Kind != selector.KindType {
		t.Errorf("unexpected AST %+v", sel.Compounds[0])
	}
}
