package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, `usage: cast2gif <command> [flags] [args]

Commands:
  render      convert an asciicast recording to an animated GIF
  screenshot  render the final screen of a recording to a PNG
  record      record a command's terminal session to an asciicast file
  serve       preview a recording in the browser
  watch       re-render a GIF whenever the recording changes
  colors      show the builtin themes' palettes

Run 'cast2gif <command> -h' for the flags of each command.
`)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "render":
		handleRender()
	case "screenshot":
		handleScreenshot()
	case "record":
		handleRecord()
	case "serve":
		handleServe()
	case "watch":
		handleWatch()
	case "colors":
		handleColors()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// renderConfig carries the flags shared by the commands that run the
// conversion pipeline.
type renderConfig struct {
	width      int
	height     int
	autosize   bool
	fps        float64
	maxFPS     float64
	idleLimit  float64
	loop       int
	themeName  string
	fontSize   float64
	padding    int
	quiet      bool
	force      bool
	screenshot bool
}

func addRenderFlags(fs *flag.FlagSet, cfg *renderConfig) {
	fs.IntVar(&cfg.width, "width", 0, "grid width in columns (0 = recording header, or 80)")
	fs.IntVar(&cfg.height, "height", 0, "grid height in rows (0 = recording header, or 24)")
	fs.BoolVar(&cfg.autosize, "autosize", false, "size the grid to fit the recording's content")
	fs.Float64Var(&cfg.idleLimit, "idle-time-limit", -1, "cap gaps between events in seconds (-1 = recording header, 0 = no cap)")
	fs.StringVar(&cfg.themeName, "theme", "cga", "builtin theme name or YAML theme file")
	fs.Float64Var(&cfg.fontSize, "font-size", DefaultFontSize, "font size in points")
	fs.IntVar(&cfg.padding, "padding", DefaultPadding, "pixel padding around the grid")
	fs.BoolVar(&cfg.quiet, "quiet", false, "suppress progress and log output")
	fs.BoolVar(&cfg.force, "force", false, "overwrite the output file if it exists")
}

func addAnimationFlags(fs *flag.FlagSet, cfg *renderConfig) {
	fs.Float64Var(&cfg.fps, "fps", 0, "frames per second (0 = choose automatically)")
	fs.Float64Var(&cfg.maxFPS, "max-fps", DefaultMaxFPS, "cap for automatically chosen fps")
	fs.IntVar(&cfg.loop, "loop", 0, "extra GIF repeats (0 = loop forever, -1 = play once)")
}

// validateRenderConfig surfaces configuration conflicts before any
// processing starts; these are the only fatal conditions in a run.
func validateRenderConfig(cfg *renderConfig) error {
	if cfg.autosize && (cfg.width > 0 || cfg.height > 0) {
		return fmt.Errorf("-autosize conflicts with explicit -width/-height")
	}
	if cfg.width < 0 || cfg.height < 0 {
		return fmt.Errorf("-width and -height must be positive")
	}
	if cfg.screenshot && cfg.fps != 0 {
		return fmt.Errorf("-fps has no effect on a screenshot")
	}
	if cfg.screenshot && cfg.loop != 0 {
		return fmt.Errorf("-loop has no effect on a screenshot")
	}
	if cfg.fps < 0 {
		return fmt.Errorf("-fps must be positive")
	}
	if !cfg.screenshot && cfg.maxFPS < 1 {
		return fmt.Errorf("-max-fps must be at least 1")
	}
	if cfg.loop < -1 {
		return fmt.Errorf("-loop must be -1, 0, or a positive count")
	}
	if cfg.fontSize <= 0 {
		return fmt.Errorf("-font-size must be positive")
	}
	if cfg.padding < 0 {
		return fmt.Errorf("-padding must not be negative")
	}
	return nil
}

func handleRender() {
	var cfg renderConfig
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	addRenderFlags(fs, &cfg)
	addAnimationFlags(fs, &cfg)
	fs.Parse(os.Args[2:])

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: cast2gif render [flags] <input.cast> <output.gif>")
		os.Exit(1)
	}
	if err := runConvert(&cfg, fs.Arg(0), fs.Arg(1)); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
}

func handleScreenshot() {
	cfg := renderConfig{screenshot: true}
	fs := flag.NewFlagSet("screenshot", flag.ExitOnError)
	addRenderFlags(fs, &cfg)
	fs.Parse(os.Args[2:])

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: cast2gif screenshot [flags] <input.cast> <output.png>")
		os.Exit(1)
	}
	if err := runConvert(&cfg, fs.Arg(0), fs.Arg(1)); err != nil {
		log.Fatalf("Failed to render screenshot: %v", err)
	}
}

// buildFrames runs the front of the pipeline: read the cast, size the
// grid, build the timeline, sample frames. The renderer comes back with
// them so callers can rasterize.
func buildFrames(cfg *renderConfig, inPath string) ([]Frame, *Renderer, error) {
	if err := validateRenderConfig(cfg); err != nil {
		return nil, nil, err
	}

	theme, err := lookupTheme(cfg.themeName)
	if err != nil {
		return nil, nil, err
	}
	cast, err := readCastInput(inPath)
	if err != nil {
		return nil, nil, err
	}

	cols, rows := resolveSize(cfg, cast)
	idleLimit := cfg.idleLimit
	if idleLimit < 0 {
		idleLimit = cast.Header.IdleTimeLimit
	}

	parser := NewParser(log.Printf)
	screen := NewScreen(cols, rows)
	timeline := BuildTimeline(cast.Events, parser, screen, idleLimit)

	renderer, err := NewRenderer(theme, cfg.fontSize, cfg.padding)
	if err != nil {
		return nil, nil, err
	}

	if cfg.screenshot {
		return []Frame{Screenshot(timeline)}, renderer, nil
	}
	fps := cfg.fps
	if fps == 0 {
		fps = OptimalFPS(timeline, cfg.maxFPS, DefaultFPS)
		log.Printf("using %g fps", fps)
	}
	return SampleAnimation(timeline, fps), renderer, nil
}

func runConvert(cfg *renderConfig, inPath, outPath string) error {
	if cfg.quiet {
		log.SetOutput(io.Discard)
	}
	frames, renderer, err := buildFrames(cfg, inPath)
	if err != nil {
		return err
	}

	if !cfg.force {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("%s already exists (use -force to overwrite)", outPath)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	if cfg.screenshot {
		err = EncodePNG(out, frames[0], renderer)
	} else {
		log.Printf("rendering %d frames", len(frames))
		err = EncodeGIF(out, frames, renderer, cfg.loop, stderrProgress(cfg.quiet, "rendering frame"))
	}
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	log.Printf("wrote %s", outPath)
	return nil
}

// readCastInput opens and decodes the input recording; "-" reads stdin.
func readCastInput(path string) (*Cast, error) {
	if path == "-" {
		return ReadCast(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()
	cast, err := ReadCast(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cast, nil
}

// resolveSize picks the grid dimensions: auto-sizing pre-pass, explicit
// flags, the recording header, then 80x24.
func resolveSize(cfg *renderConfig, cast *Cast) (cols, rows int) {
	if cfg.autosize {
		cols, rows = MeasureSize(NewParser(nil), cast.Events)
		log.Printf("auto-sized grid to %dx%d", cols, rows)
		return cols, rows
	}
	cols = cfg.width
	if cols == 0 {
		cols = cast.Header.Width
	}
	if cols == 0 {
		cols = 80
	}
	rows = cfg.height
	if rows == 0 {
		rows = cast.Header.Height
	}
	if rows == 0 {
		rows = 24
	}
	return cols, rows
}

// splitAtDoubleDash splits args at the first "--", so commands can take
// their own flags before it and a subprocess command line after it.
func splitAtDoubleDash(args []string) (before, after []string) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}
