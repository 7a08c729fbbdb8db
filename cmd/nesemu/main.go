// Package main implements the nesemu NES emulator executable.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"nesemu/internal/app"
	"nesemu/internal/logger"
	"nesemu/internal/statsview"
	"nesemu/internal/version"
)

// breakpointList collects -break flags.
type breakpointList []uint16

func (b *breakpointList) String() string {
	parts := make([]string, len(*b))
	for i, address := range *b {
		parts[i] = fmt.Sprintf("$%04X", address)
	}
	return strings.Join(parts, ",")
}

func (b *breakpointList) Set(value string) error {
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(field), "$"), "0x")
		address, err := strconv.ParseUint(field, 16, 16)
		if err != nil {
			return fmt.Errorf("bad breakpoint address %q", field)
		}
		*b = append(*b, uint16(address))
	}
	return nil
}

func main() {
	var breakpoints breakpointList

	var (
		romFile     = flag.String("rom", "", "Path to NES ROM file (or give it as the first argument)")
		configFile  = flag.String("config", app.GetDefaultConfigPath(), "Path to configuration file")
		debug       = flag.Bool("debug", false, "Echo the log to stderr and show FPS")
		nogui       = flag.Bool("nogui", false, "Run without a window")
		backend     = flag.String("backend", "", "Graphics backend: ebitengine, headless or terminal")
		frames      = flag.Int("frames", 0, "Frames to run without a window (0 runs until interrupted)")
		screenshot  = flag.String("screenshot", "", "Write the last frame to this file on exit (.png or .ppm)")
		wavFile     = flag.String("wav", "", "Record audio to this WAV file")
		traceFile   = flag.String("trace", "", "Write a CPU trace to this file")
		stats       = flag.Bool("statsview", false, "Serve runtime statistics over HTTP (statsview builds only)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Var(&breakpoints, "break", "Pause before the instruction at this hex address (repeatable)")
	flag.Usage = printUsage
	flag.Parse()

	if *showVersion {
		version.Print(os.Stdout)
		return
	}

	if *romFile == "" && flag.NArg() > 0 {
		*romFile = flag.Arg(0)
	}
	if *romFile == "" {
		printUsage()
		os.Exit(2)
	}

	config := app.NewConfig()
	if err := config.LoadFromFile(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "nesemu: %v\n", err)
		os.Exit(1)
	}
	if *backend != "" {
		config.Video.Backend = *backend
	}
	if *debug {
		config.Debug.EnableLogging = true
		config.Debug.ShowFPS = true
	}
	if *traceFile != "" {
		config.Debug.TraceFile = *traceFile
	}
	config.Debug.Breakpoints = append(config.Debug.Breakpoints, breakpoints...)

	if *stats || config.Debug.StatsView {
		if statsview.Available() {
			statsview.Launch(os.Stdout)
		} else {
			fmt.Fprintln(os.Stderr, "nesemu: statsview not available in this build")
		}
	}

	if err := run(config, *romFile, *nogui, *frames, *screenshot, *wavFile); err != nil {
		fmt.Fprintf(os.Stderr, "nesemu: %v\n", err)
		if *debug {
			logger.Tail(os.Stderr, 20)
		}
		os.Exit(1)
	}
}

func run(config *app.Config, romFile string, nogui bool, frames int, screenshot, wavFile string) (rerr error) {
	application, err := app.NewApplication(config, nogui)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Cleanup(); err != nil && rerr == nil {
			rerr = err
		}
	}()

	if wavFile != "" {
		if err := application.EnableWAVCapture(wavFile); err != nil {
			return err
		}
	}

	if err := application.LoadROM(romFile); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		application.Stop()
	}()

	if config.Video.Backend == "ebitengine" {
		if err := application.Run(); err != nil {
			return err
		}
	} else {
		if err := runHeadless(ctx, application, frames); err != nil {
			return err
		}
	}

	if screenshot != "" {
		if err := application.Screenshot(screenshot); err != nil {
			return err
		}
	}

	fmt.Printf("%d frames in %v\n", application.GetFrameCount(), application.GetUptime().Round(time.Millisecond))
	return nil
}

// runHeadless runs frames without pacing until the count is reached or
// the context is cancelled.
func runHeadless(ctx context.Context, application *app.Application, frames int) error {
	for i := 0; frames == 0 || i < frames; i++ {
		if ctx.Err() != nil {
			return nil
		}
		if err := application.RunFrames(1); err != nil {
			return err
		}
		if application.IsPaused() {
			return nil
		}
	}
	return nil
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "nesemu - NES emulator")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "USAGE:")
	fmt.Fprintln(out, "  nesemu [options] <rom.nes>")
	fmt.Fprintln(out, "  nesemu -nogui -frames 600 -screenshot out.png <rom.nes>")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "OPTIONS:")
	flag.PrintDefaults()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "CONTROLS (default):")
	fmt.Fprintln(out, "  Player 1: WASD d-pad, J = A, K = B, Enter = Start, Space = Select")
	fmt.Fprintln(out, "  Player 2: arrows d-pad, N = A, M = B, Right Shift = Start, Right Ctrl = Select")
	fmt.Fprintln(out, "  P pause, R reset, F12 screenshot, Esc quit")
}
