package preprocess

import (
	"strings"
	"testing"
)

func TestPreprocess_QuotesLabelWithParens(t *testing.T) {
	got := Preprocess("flowchart TD\nA(say (hi))\n")
	want := "flowchart TD\nA(\"say (hi)\")\n"
	if got != want {
		t.Errorf("Preprocess = %q, want %q", got, want)
	}
}

func TestPreprocess_PlainLabelUntouched(t *testing.T) {
	in := "flowchart TD\nA[plain]\n"
	if got := Preprocess(in); got != in {
		t.Errorf("Preprocess = %q, want unchanged", got)
	}
}

func TestPreprocess_NonFlowDiagramVerbatim(t *testing.T) {
	inputs := []string{
		"sequenceDiagram\n  Alice->>Bob: Hello (world)\n",
		"classDiagram\n  class Animal\n",
		"pie title Pets\n  \"Dogs\": 42\n",
		"erDiagram\n  A ||--o{ B : has\n",
	}
	for _, in := range inputs {
		if got := Preprocess(in); got != in {
			t.Errorf("Preprocess(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestPreprocess_Idempotent(t *testing.T) {
	inputs := []string{
		"flowchart TD\nA(say (hi))\nB[has \"quotes\"]\nC{a & b}\n",
		"flowchart LR\nA((round (x)))\nB[[sub; routine]]\n",
		"graph TD\nA>flag (x)]\n",
		"flowchart TD\nA[\"already quoted (fine)\"]\n",
	}
	for _, in := range inputs {
		once := Preprocess(in)
		twice := Preprocess(once)
		if once != twice {
			t.Errorf("not idempotent:\n in: %q\nonce: %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestPreprocess_LineCountPreserved(t *testing.T) {
	inputs := []string{
		"flowchart TD\n\nA(x (y))\n%% comment\n\nB[ok]\n",
		"graph LR\nA-->B\n",
		"sequenceDiagram\nfoo\n",
		"",
		"\n\n\n",
	}
	for _, in := range inputs {
		out := Preprocess(in)
		if got, want := strings.Count(out, "\n"), strings.Count(in, "\n"); got != want {
			t.Errorf("line count changed for %q: got %d newlines, want %d", in, got, want)
		}
	}
}

func TestPreprocess_AlreadyQuotedUntouched(t *testing.T) {
	in := "flowchart TD\nA[\"say (hi)\"]\n"
	if got := Preprocess(in); got != in {
		t.Errorf("Preprocess = %q, want unchanged", got)
	}
}

func TestPreprocess_EscapesEmbeddedQuotes(t *testing.T) {
	got := Preprocess("flowchart TD\nA[say \"hi\" now]\n")
	want := "flowchart TD\nA[\"say &quot;hi&quot; now\"]\n"
	if got != want {
		t.Errorf("Preprocess = %q, want %q", got, want)
	}
}

func TestPreprocess_DoubleShapesBeforeSingle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"flowchart TD\nA((x & y))\n", "flowchart TD\nA((\"x & y\"))\n"},
		{"flowchart TD\nA[[x; y]]\n", "flowchart TD\nA[[\"x; y\"]]\n"},
		{"flowchart TD\nA{{x # y}}\n", "flowchart TD\nA{{\"x # y\"}}\n"},
		{"flowchart TD\nA>x 'y']\n", "flowchart TD\nA>\"x 'y'\"]\n"},
		{"flowchart TD\nA{x & y}\n", "flowchart TD\nA{\"x & y\"}\n"},
	}
	for _, tt := range tests {
		if got := Preprocess(tt.in); got != tt.want {
			t.Errorf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreprocess_MultipleNodesOneLine(t *testing.T) {
	got := Preprocess("flowchart LR\nA(one (1)) --> B[two & three]\n")
	want := "flowchart LR\nA(\"one (1)\") --> B[\"two & three\"]\n"
	if got != want {
		t.Errorf("Preprocess = %q, want %q", got, want)
	}
}

func TestPreprocess_StructuralLinesSkipped(t *testing.T) {
	in := strings.Join([]string{
		"flowchart TD",
		"subgraph cluster (one)",
		"direction LR",
		"A[inner & node]",
		"end",
		"classDef warn fill:#f96;",
		"style A fill:#ccc;",
		"linkStyle 0 stroke:#f00;",
		"click A callback(\"arg\")",
		"class A warn;",
		"",
	}, "\n")
	got := Preprocess(in)

	lines := strings.Split(got, "\n")
	if lines[1] != "subgraph cluster (one)" {
		t.Errorf("subgraph line rewritten: %q", lines[1])
	}
	if lines[3] != "A[\"inner & node\"]" {
		t.Errorf("node line not rewritten: %q", lines[3])
	}
	if lines[5] != "classDef warn fill:#f96;" {
		t.Errorf("classDef line rewritten: %q", lines[5])
	}
	if lines[8] != "click A callback(\"arg\")" {
		t.Errorf("click line rewritten: %q", lines[8])
	}
}

func TestPreprocess_HeaderAfterCommentsAndBlanks(t *testing.T) {
	got := Preprocess("\n%% a comment\n\nflowchart TD\nA(x (y))\n")
	if !strings.Contains(got, "A(\"x (y)\")") {
		t.Errorf("header not detected through comments: %q", got)
	}
}

func TestPreprocess_UnicodeLabels(t *testing.T) {
	// Unicode content passes through; quoting only wraps it.
	got := Preprocess("flowchart TD\nA[héllo & wörld 日本]\n")
	want := "flowchart TD\nA[\"héllo & wörld 日本\"]\n"
	if got != want {
		t.Errorf("Preprocess = %q, want %q", got, want)
	}

	in := "flowchart TD\nB[héllo wörld]\n"
	if got := Preprocess(in); got != in {
		t.Errorf("plain unicode label changed: %q", got)
	}
}

func TestPreprocess_CRLFPreserved(t *testing.T) {
	got := Preprocess("flowchart TD\r\nA(x (y))\r\n")
	want := "flowchart TD\r\nA(\"x (y)\")\r\n"
	if got != want {
		t.Errorf("Preprocess = %q, want %q", got, want)
	}
}

func TestQuoteLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"plain", "plain"},
		{"", ""},
		{`"quoted (ok)"`, `"quoted (ok)"`},
		{"with (parens)", `"with (parens)"`},
		{"semi;colon", `"semi;colon"`},
		{"amp & hash #", `"amp & hash #"`},
		{"it's", `"it's"`},
		{`say "hi"`, `"say &quot;hi&quot;"`},
	}
	for _, tt := range tests {
		if got := quoteLabel(tt.label); got != tt.want {
			t.Errorf("quoteLabel(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}
