package render

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultCommand is the mermaid CLI binary used when none is
// configured.
const DefaultCommand = "mmdc"

// CLIRenderer renders markup by invoking an mmdc-compatible command.
// It satisfies the Renderer interface for batch rendering and for
// hosts without an embedded engine.
type CLIRenderer struct {
	command string
}

// NewCLIRenderer creates a CLI renderer. An empty command selects
// DefaultCommand from PATH.
func NewCLIRenderer(command string) *CLIRenderer {
	if command == "" {
		command = DefaultCommand
	}
	return &CLIRenderer{command: command}
}

// Ensure CLIRenderer implements Renderer.
var _ Renderer = (*CLIRenderer)(nil)

// Render writes the markup to a temporary file, runs the CLI and
// returns the produced SVG.
func (r *CLIRenderer) Render(ctx context.Context, markup string, opts Options) (string, error) {
	dir, err := os.MkdirTemp("", "glyphpad-render-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "diagram.mmd")
	outPath := filepath.Join(dir, "diagram.svg")

	if err := os.WriteFile(inPath, []byte(markup), 0600); err != nil {
		return "", err
	}

	theme := "default"
	if opts.Theme == ThemeDark {
		theme = "dark"
	}

	cmd := exec.CommandContext(ctx, r.command,
		"--input", inPath,
		"--output", outPath,
		"--theme", theme,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", &Error{Message: msg}
	}

	svg, err := os.ReadFile(outPath)
	if err != nil {
		return "", err
	}
	return string(svg), nil
}
