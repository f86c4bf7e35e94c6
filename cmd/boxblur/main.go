// Command boxblur applies an iterated 3x3 box blur to a grayscale image.
//
// Usage:
//
//	boxblur [flags] input output
//
// The input may be a plain PGM (P2) file or a PNG, GIF, JPEG, BMP or TIFF
// raster. The output is written as PNG when its name ends in .png and as P2
// otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/gogpu/boxblur"
	"github.com/gogpu/boxblur/internal/pgm"
	"github.com/gogpu/boxblur/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("boxblur: %v", err)
	}
}

// run parses args, blurs the input file and writes the output file.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("boxblur", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		iterations = fs.Int("iterations", boxblur.DefaultIterations, "number of blur passes")
		workers    = fs.Int("workers", runtime.GOMAXPROCS(0), "goroutines (shared) or ranks (distributed)")
		model      = fs.String("model", "shared", "parallel model: shared, distributed or both")
		verbose    = fs.Bool("v", false, "log progress to stderr")
		histogram  = fs.String("histogram", "", "write before/after intensity histograms to PREFIX_before.png and PREFIX_after.png")
		stats      = fs.Bool("stats", false, "print intensity statistics before and after")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: boxblur [flags] input output")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return fmt.Errorf("expected input and output paths, got %d arguments", fs.NArg())
	}
	input, output := fs.Arg(0), fs.Arg(1)

	if *verbose {
		boxblur.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		defer boxblur.SetLogger(nil)
	}

	img, err := pgm.Load(input)
	if err != nil {
		return err
	}
	g := &boxblur.Grid{Width: img.Width, Height: img.Height, MaxVal: img.MaxVal, Pixels: img.Pixels}

	opts := []boxblur.Option{
		boxblur.WithIterations(*iterations),
		boxblur.WithWorkers(*workers),
	}

	var out *boxblur.Grid
	if *model == "both" {
		out, err = boxblur.BlurBoth(ctx, g, opts...)
	} else {
		m, perr := boxblur.ParseModel(*model)
		if perr != nil {
			return perr
		}
		out, err = boxblur.Blur(ctx, g, append(opts, boxblur.WithModel(m))...)
	}
	if err != nil {
		return err
	}

	if err := pgm.Save(output, &pgm.Image{Width: out.Width, Height: out.Height, MaxVal: out.MaxVal, Pixels: out.Pixels}); err != nil {
		return err
	}

	if *stats {
		if err := report.Print(stdout, report.Summarize(g.Pixels), report.Summarize(out.Pixels)); err != nil {
			return err
		}
	}
	if *histogram != "" {
		if err := report.Histogram(*histogram+"_before.png", "Before", g.Pixels, g.MaxVal); err != nil {
			return err
		}
		if err := report.Histogram(*histogram+"_after.png", fmt.Sprintf("After %d passes", *iterations), out.Pixels, out.MaxVal); err != nil {
			return err
		}
	}

	if *verbose {
		fmt.Fprintf(stderr, "Blurred %s to %s (%dx%d, %d passes)\n", input, output, out.Width, out.Height, *iterations)
	}
	return nil
}
