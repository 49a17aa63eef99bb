package preprocess

import (
	"strings"
	"testing"
	"time"
)

func TestScript_Transform(t *testing.T) {
	s := NewScript(`
function transform(markup)
	return string.gsub(markup, "LR", "TD")
end
`)

	got := s.Transform("flowchart LR\nA[start]\n")
	if !strings.Contains(got, "flowchart TD") {
		t.Errorf("Transform = %q, want direction rewritten", got)
	}
}

func TestScript_CompileErrorReturnsInput(t *testing.T) {
	s := NewScript(`this is not lua (`)

	in := "flowchart TD\nA[x]\n"
	if got := s.Transform(in); got != in {
		t.Errorf("Transform = %q, want input unchanged on compile error", got)
	}
}

func TestScript_MissingTransformReturnsInput(t *testing.T) {
	s := NewScript(`x = 1`)

	in := "flowchart TD\n"
	if got := s.Transform(in); got != in {
		t.Errorf("Transform = %q, want input unchanged", got)
	}
}

func TestScript_RuntimeErrorReturnsInput(t *testing.T) {
	s := NewScript(`
function transform(markup)
	error("boom")
end
`)

	in := "flowchart TD\n"
	if got := s.Transform(in); got != in {
		t.Errorf("Transform = %q, want input unchanged on runtime error", got)
	}
}

func TestScript_NonStringResultReturnsInput(t *testing.T) {
	s := NewScript(`
function transform(markup)
	return 42
end
`)

	in := "flowchart TD\n"
	if got := s.Transform(in); got != in {
		t.Errorf("Transform = %q, want input unchanged on non-string result", got)
	}
}

func TestScript_SandboxBlocksLoaders(t *testing.T) {
	s := NewScript(`
function transform(markup)
	if dofile == nil and loadfile == nil and load == nil then
		return "sandboxed"
	end
	return "leaky"
end
`)

	if got := s.Transform("x"); got != "sandboxed" {
		t.Errorf("Transform = %q, want %q", got, "sandboxed")
	}
}

func TestScript_TimeoutReturnsInput(t *testing.T) {
	s := NewScript(`
function transform(markup)
	while true do end
end
`).WithTimeout(50 * time.Millisecond)

	in := "flowchart TD\n"
	done := make(chan string, 1)
	go func() { done <- s.Transform(in) }()

	select {
	case got := <-done:
		if got != in {
			t.Errorf("Transform = %q, want input unchanged on timeout", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Transform did not return after timeout")
	}
}
