package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/cairobind/cairo"
	"github.com/wippyai/cairobind/dispatch"
	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/keepalive"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/native/sim"
	"github.com/wippyai/cairobind/native/wasmlib"
	"github.com/wippyai/cairobind/path"
	"github.com/wippyai/cairobind/stream"
)

func main() {
	var (
		backend     = flag.String("backend", "sim", "Engine backend: sim or wasm")
		wasmFile    = flag.String("wasm", "", "Path to the wasm32 cairo build (with -backend wasm)")
		pathStr     = flag.String("path", "", "Path to encode and round-trip, e.g. \"M 10 20 L 30 40 Z\"")
		pngOut      = flag.String("png", "", "Write a test image to this file (- for stdout)")
		width       = flag.Int("width", 64, "Image width for -png")
		height      = flag.Int("height", 64, "Image height for -png")
		pngIn       = flag.String("readpng", "", "Load a PNG through the stream reader and describe it")
		interactive = flag.Bool("i", false, "Interactive handle inspector")
		verbose     = flag.Bool("v", false, "Development logging to stderr")
	)
	flag.Parse()

	if *pathStr == "" && *pngOut == "" && *pngIn == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: cairoctl [-backend sim|wasm -wasm cairo.wasm] -path \"M 0 0 L 1 1\"")
		fmt.Fprintln(os.Stderr, "       cairoctl -png out.png [-width 64 -height 64]")
		fmt.Fprintln(os.Stderr, "       cairoctl -readpng in.png")
		fmt.Fprintln(os.Stderr, "       cairoctl -i  (interactive inspector)")
		os.Exit(1)
	}

	if err := checkTerminal(*pngOut, *interactive, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := zap.NewNop()
	if *verbose {
		var err error
		if log, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
	}
	setLoggers(log)

	lib, err := openLibrary(*backend, *wasmFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := cairo.DefaultOptions()
	opts.Logger = log
	var events *eventLog
	if *interactive {
		events = &eventLog{}
		opts.KeepAlive = events
	}
	b := cairo.New(lib, opts)

	if *interactive {
		err = runInteractive(b, lib, events)
	} else {
		err = run(b, actions{
			path:   *pathStr,
			pngOut: *pngOut,
			pngIn:  *pngIn,
			width:  *width,
			height: *height,
		}, os.Stdout, os.Stderr)
	}
	if cerr := b.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setLoggers(l *zap.Logger) {
	cairo.SetLogger(l)
	dispatch.SetLogger(l)
	handle.SetLogger(l)
	keepalive.SetLogger(l)
	stream.SetLogger(l)
	wasmlib.SetLogger(l)
}

func openLibrary(backend, wasmFile string) (native.Library, error) {
	switch backend {
	case "sim":
		return sim.New(), nil
	case "wasm":
		if wasmFile == "" {
			return nil, fmt.Errorf("-backend wasm requires -wasm")
		}
		return wasmlib.LoadFile(context.Background(), wasmFile, wasmlib.DefaultConfig())
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// checkTerminal refuses to stream binary PNG data into a terminal and to
// start the inspector without one.
func checkTerminal(pngOut string, interactive bool, stdin, stdout *os.File) error {
	if pngOut == "-" && term.IsTerminal(int(stdout.Fd())) {
		return fmt.Errorf("refusing to write PNG data to a terminal; redirect stdout")
	}
	if interactive && !term.IsTerminal(int(stdin.Fd())) {
		return fmt.Errorf("-i needs an interactive terminal")
	}
	return nil
}

type actions struct {
	path   string
	pngOut string
	pngIn  string
	width  int
	height int
}

// run performs the requested actions. Text goes to stdout unless the PNG
// itself is streamed there, in which case it goes to stderr.
func run(b *cairo.Binding, a actions, stdout, stderr io.Writer) error {
	text := stdout
	if a.pngOut == "-" {
		text = stderr
	}
	fmt.Fprintf(text, "Engine: cairo %s\n", b.Version())

	if a.path != "" {
		if err := showPath(text, b, a.path); err != nil {
			return fmt.Errorf("path: %w", err)
		}
	}
	if a.pngOut != "" {
		if err := writePNG(text, stdout, b, a.pngOut, a.width, a.height); err != nil {
			return fmt.Errorf("png: %w", err)
		}
	}
	if a.pngIn != "" {
		if err := readPNG(text, b, a.pngIn); err != nil {
			return fmt.Errorf("readpng: %w", err)
		}
	}
	return nil
}

func showPath(w io.Writer, b *cairo.Binding, s string) error {
	ops, err := path.Parse(s)
	if err != nil {
		return err
	}
	buf, n, err := path.Encode(ops)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nRecords (%d slots):\n", n)
	for i := 0; i < n; i++ {
		slot := buf[i*path.SlotSize : (i+1)*path.SlotSize]
		fmt.Fprintf(w, "  %3d  % x\n", i, slot)
	}
	decoded, err := path.Decode(buf, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nDecoded: %s\n", path.Format(decoded))

	img, err := b.NewImageSurface(native.FormatARGB32, 1, 1)
	if err != nil {
		return err
	}
	defer img.Close()
	cr, err := b.NewContext(img)
	if err != nil {
		return err
	}
	defer cr.Close()
	if err := cr.AppendPath(ops); err != nil {
		return err
	}
	back, err := cr.CopyPath()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Engine:  %s\n", path.Format(back))
	return nil
}

// writePNG paints a gradient and writes it to out, or to stdout for "-".
func writePNG(text, stdout io.Writer, b *cairo.Binding, out string, width, height int) error {
	img, err := b.NewImageSurface(native.FormatARGB32, width, height)
	if err != nil {
		return err
	}
	defer img.Close()

	cr, err := b.NewContext(img)
	if err != nil {
		return err
	}
	defer cr.Close()

	grad, err := b.NewLinearGradient(0, 0, float64(width), float64(height))
	if err != nil {
		return err
	}
	defer grad.Close()
	if err := grad.AddColorStopRGB(0, 0.49, 0.34, 0.96); err != nil {
		return err
	}
	if err := grad.AddColorStopRGB(1, 0.98, 0.98, 0.98); err != nil {
		return err
	}
	if err := cr.SetSource(grad); err != nil {
		return err
	}
	if err := cr.Paint(); err != nil {
		return err
	}

	if out == "-" {
		return img.WriteToPNGStream(stdout)
	}
	if err := img.WriteToPNG(cairo.File(out)); err != nil {
		return err
	}
	fmt.Fprintf(text, "\nWrote %dx%d image to %s\n", width, height, out)
	return nil
}

func readPNG(w io.Writer, b *cairo.Binding, in string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := b.ImageSurfaceFromPNGStream(f)
	if err != nil {
		return err
	}
	defer img.Close()

	format, err := img.Format()
	if err != nil {
		return err
	}
	width, err := img.Width()
	if err != nil {
		return err
	}
	height, err := img.Height()
	if err != nil {
		return err
	}
	stride, err := img.Stride()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s: %s %dx%d, stride %d\n", in, format, width, height, stride)
	return nil
}
