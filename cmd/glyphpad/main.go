// Package main is the entry point for the glyphpad diagram editor
// core. Without -export it runs headless: files are opened into the
// session, the workspace is watched, and the process serves until
// interrupted.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dshills/glyphpad/internal/app"
	"github.com/dshills/glyphpad/internal/render"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type cliOptions struct {
	app        app.Options
	workspace  string
	files      []string
	exportPath string
	dark       bool
	rendererMD string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	application, err := app.New(opts.app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	application.SetDarkMode(opts.dark)

	if opts.workspace != "" {
		if err := application.OpenWorkspace(opts.workspace); err != nil {
			fmt.Fprintf(os.Stderr, "Error: workspace: %v\n", err)
			return 1
		}
	}

	for _, file := range opts.files {
		if err := application.OpenFile(file); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.exportPath != "" {
		return runExport(application, opts.exportPath)
	}

	// Headless serve: keep the session alive until interrupted.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	return 0
}

// runExport renders the active document synchronously and writes the
// result to the given path.
func runExport(application *app.App, path string) int {
	application.Scheduler().Flush()

	deadline := time.Now().Add(2 * time.Minute)
	for {
		svg, errMsg := application.Scheduler().Snapshot()
		if errMsg != "" {
			fmt.Fprintf(os.Stderr, "Error: render: %s\n", errMsg)
			return 1
		}
		if svg != "" {
			if err := application.Exporter().SaveSVG(svg, path); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
			return 0
		}
		if time.Now().After(deadline) {
			fmt.Fprintln(os.Stderr, "Error: render timed out")
			return 1
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func parseFlags() cliOptions {
	var opts cliOptions
	var logLevel string
	var statePath string
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.app.ConfigPath, "config", "", "Path to preferences file")
	flag.StringVar(&opts.app.ConfigPath, "c", "", "Path to preferences file (shorthand)")
	flag.StringVar(&opts.workspace, "workspace", "", "Workspace directory to load into the file tree")
	flag.StringVar(&opts.workspace, "w", "", "Workspace directory (shorthand)")
	flag.StringVar(&statePath, "state", "", "Path to the session state database")
	flag.StringVar(&opts.exportPath, "export", "", "Render the opened file to SVG at this path and exit")
	flag.StringVar(&opts.rendererMD, "renderer", "", "Mermaid CLI command (defaults to mmdc from PATH)")
	flag.BoolVar(&opts.dark, "dark", false, "Render with the dark theme")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Glyphpad - mermaid diagram editor core\n\n")
		fmt.Fprintf(os.Stderr, "Usage: glyphpad [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  glyphpad                          Start with an empty diagram\n")
		fmt.Fprintf(os.Stderr, "  glyphpad flow.mmd                 Open a diagram\n")
		fmt.Fprintf(os.Stderr, "  glyphpad -w ./diagrams            Open a workspace\n")
		fmt.Fprintf(os.Stderr, "  glyphpad -export out.svg flow.mmd Render a file and exit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Glyphpad %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", logLevel)
		os.Exit(1)
	}
	opts.app.Logger = app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(logLevel),
		Output: os.Stderr,
		Prefix: "glyphpad",
	})

	if statePath == "" {
		statePath = defaultStatePath()
	}
	opts.app.StatePath = statePath
	opts.app.Renderer = render.NewCLIRenderer(opts.rendererMD)

	opts.files = flag.Args()

	if opts.workspace == "" {
		opts.workspace = os.Getenv("GLYPHPAD_WORKSPACE")
	}

	// If no workspace was given, use the directory of the first file.
	if opts.workspace == "" && len(opts.files) > 0 {
		absPath, err := filepath.Abs(opts.files[0])
		if err == nil {
			opts.workspace = filepath.Dir(absPath)
		}
	}

	return opts
}

// defaultStatePath places the state database in the user config
// directory, or disables durable persistence when that is unknown.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "glyphpad")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}
	return filepath.Join(dir, "state.db")
}
