// Bmpblend blends two 24-bit bitmaps into a third one.
//
//	bmpblend [-config blend.yml] [-preview] [-write-config out.yml] <image1.bmp> <image2.bmp> <ratio> <output.bmp>
//	bmpblend [-config blend.yml] [-preview] -write-config out.yml
//
// The smaller image is resampled onto the larger one's pixel grid and every
// pixel becomes image1*ratio + image2*(1-ratio). Flags are only recognised
// before the first file argument.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/anas-shakeel/go-bmp-blend/internal/blend"
	"github.com/anas-shakeel/go-bmp-blend/internal/bmp"
	"github.com/anas-shakeel/go-bmp-blend/internal/config"
	"github.com/anas-shakeel/go-bmp-blend/internal/utils"
)

var errUsage = errors.New("expected exactly four arguments")

func main() {
	log.SetFlags(0)
	log.SetPrefix("bmpblend: ")

	if err := run(os.Args[1:], os.Stdout, os.Stderr, log.Default()); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// Print the usage of the command
func printManual(w io.Writer, flags *flag.FlagSet) {
	fmt.Fprintln(w, "Please include the following parameters:")
	fmt.Fprintln(w, "bmpblend [flags] [image file 1] [image file 2] [ratio] [output file]")
	fmt.Fprintln(w, "Flags must come before the file arguments.")
	flags.SetOutput(w)
	flags.PrintDefaults()
}

// Parses args, blends the two inputs and writes the output file.
// Any returned error has already been followed by the usage text on stderr.
func run(args []string, stdout, stderr io.Writer, logger *log.Logger) (err error) {
	flags := flag.NewFlagSet("bmpblend", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("config", "", "YAML file with sampler, workers and preview settings")
	preview := flags.Bool("preview", false, "print the blended image in the terminal (small images only)")
	writeConfig := flags.String("write-config", "", "write the effective settings as YAML to this file; with no file arguments, stop there")

	defer func() {
		if err != nil {
			printManual(stderr, flags)
		}
	}()

	if err := flags.Parse(args); err != nil {
		return err
	}
	configOnly := *writeConfig != "" && flags.NArg() == 0
	if !configOnly && flags.NArg() != 4 {
		return fmt.Errorf("%w, got %d", errUsage, flags.NArg())
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	cfg.Preview = cfg.Preview || *preview
	opts, err := cfg.BlendOptions()
	if err != nil {
		return err
	}

	if *writeConfig != "" {
		if err := config.SaveConfig(*writeConfig, cfg); err != nil {
			return err
		}
		logger.Printf("Wrote settings to %s", *writeConfig)
		if configOnly {
			return nil
		}
	}
	inputOne, inputTwo, ratioArg, output := flags.Arg(0), flags.Arg(1), flags.Arg(2), flags.Arg(3)

	// Validate the arguments before touching any file
	for _, input := range []string{inputOne, inputTwo} {
		if err := utils.CheckBMPExtension(input); err != nil {
			return err
		}
	}
	ratio, err := utils.ParseRatio(ratioArg)
	if err != nil {
		return err
	}
	if err := utils.CheckDistinctOutput(output, inputOne, inputTwo); err != nil {
		return err
	}

	imageOne, err := bmp.ReadBitmap(inputOne)
	if err != nil {
		return err
	}
	imageTwo, err := bmp.ReadBitmap(inputTwo)
	if err != nil {
		return err
	}

	logger.Printf("Blending %s (%dx%d) with %s (%dx%d) at ratio %v using %v sampling",
		inputOne, imageOne.Width(), imageOne.Height(),
		inputTwo, imageTwo.Width(), imageTwo.Height(), ratio, opts.Sampler)

	combined, err := blend.Combine(imageOne, imageTwo, ratio, opts)
	if err != nil {
		return err
	}

	if err := combined.Save(output); err != nil {
		return fmt.Errorf("cannot write file %q: %w", output, err)
	}
	combined.Filename = output
	logger.Printf("Wrote %s (%dx%d)", output, combined.Width(), combined.Height())

	if cfg.Preview {
		combined.PrintMetadata(stdout)
		combined.PrintBitmap(stdout)
	}
	return nil
}
