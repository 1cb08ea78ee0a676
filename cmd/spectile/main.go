// Command spectile renders spectrogram images of audio files and finds
// speech boundaries.
package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/spectile"
)

var Version = "dev"

// Command-line configuration shared by all subcommands.
var config struct {
	workers   int
	fft       int
	frequency int
	zoom      float64
	width     int
	height    int
	precision int
	cache     int
	verbose   bool

	// render
	start   float64
	output  string
	timeout time.Duration

	// silence
	at float64
}

var printer = message.NewPrinter(language.English)

var rootCmd = &cobra.Command{
	Use:   "spectile",
	Short: "Render spectrogram tiles of audio files",
	Long: `spectile renders the spectrogram of an audio file into a PNG image,
one viewport at a time, using the same tile cache an interactive viewer uses.

WAV files in 16-bit PCM are read directly; other formats are decoded with
ffmpeg, which must then be on PATH.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Render one viewport of FILE to a PNG image",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var silenceCmd = &cobra.Command{
	Use:   "silence FILE",
	Short: "Find the speech boundary closest to a position",
	Args:  cobra.ExactArgs(1),
	RunE:  runSilence,
}

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print length, sample rate and duration of FILE",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&config.workers, "workers", "w", spectile.DefaultWorkers,
		"Number of render workers (at least 2)")
	pf.IntVar(&config.fft, "fft", int(spectile.DefaultTransformSize),
		"FFT window size: 512, 1024, 2048, 4096 or 8192")
	pf.IntVarP(&config.frequency, "frequency", "f", spectile.DefaultFrequencyHz,
		"Highest displayed frequency in Hz")
	pf.Float64VarP(&config.zoom, "zoom", "z", spectile.DefaultZoomSeconds,
		"Seconds shown across the image width")
	pf.IntVar(&config.width, "width", spectile.DefaultWidth, "Image width in pixels")
	pf.IntVar(&config.height, "height", spectile.DefaultHeight, "Image height in pixels")
	pf.IntVar(&config.precision, "precision", spectile.DefaultColorPrecision,
		"Color palette precision, 0 to 3")
	pf.IntVar(&config.cache, "cache", 0,
		"Spectra kept in memory across re-renders (0 disables)")
	pf.BoolVarP(&config.verbose, "verbose", "v", false, "Log engine activity to stderr")

	renderCmd.Flags().Float64VarP(&config.start, "start", "s", 0, "Viewport start in seconds")
	renderCmd.Flags().StringVarP(&config.output, "output", "o", "spectrogram.png", "Output PNG file")
	renderCmd.Flags().DurationVar(&config.timeout, "timeout", time.Minute,
		"Give up when rendering takes longer")

	silenceCmd.Flags().Float64Var(&config.at, "at", 0, "Position in seconds to search from")

	rootCmd.AddCommand(renderCmd, silenceCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "spectile:", err)
		os.Exit(1)
	}
}

// newEngine opens path with the configured options.
func newEngine(path string) (*spectile.Engine, error) {
	if config.verbose {
		spectile.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	return spectile.NewEngine(spectile.OpenFile(path),
		spectile.WithWorkers(config.workers),
		spectile.WithTransformSize(spectile.TransformSize(config.fft)),
		spectile.WithFrequencyRange(config.frequency),
		spectile.WithZoomSeconds(config.zoom),
		spectile.WithSize(config.width, config.height),
		spectile.WithColorPrecision(config.precision),
		spectile.WithSpectrumCache(config.cache),
	)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, config.timeout)
	defer cancel()

	e, err := newEngine(args[0])
	if err != nil {
		return err
	}
	defer e.Close()

	start, err := e.SecondsToBytes(config.start)
	if err != nil {
		return err
	}
	view, err := e.Viewport(start)
	if err != nil {
		return err
	}

	began := time.Now()
	e.Enqueue(spectile.ByteRange{From: view.Start, To: view.End()})
	if err := e.Wait(ctx); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, view.Width, view.Height))
	if err := e.Compose(view, dst); err != nil {
		return err
	}
	if err := writePNG(config.output, dst); err != nil {
		return err
	}

	st := e.Stats()
	printer.Fprintf(cmd.OutOrStdout(), "%s: %d tiles, %d failed, %v\n",
		config.output, st.Rendered, st.Failed, time.Since(began).Round(time.Millisecond))
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func runSilence(cmd *cobra.Command, args []string) error {
	e, err := newEngine(args[0])
	if err != nil {
		return err
	}
	defer e.Close()

	pos, err := e.SecondsToBytes(config.at)
	if err != nil {
		return err
	}
	found, err := e.ClosestSilence(pos)
	if err != nil {
		return err
	}
	sec, err := e.BytesToSeconds(found)
	if err != nil {
		return err
	}

	printer.Fprintf(cmd.OutOrStdout(), "%.3f s (byte %d)\n", sec, found)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	e, err := newEngine(args[0])
	if err != nil {
		return err
	}
	defer e.Close()

	info, err := e.Info()
	if err != nil {
		return err
	}

	d := time.Duration(info.Seconds * float64(time.Second)).Round(time.Millisecond)
	printer.Fprintf(cmd.OutOrStdout(), "%s\n  length:      %d bytes\n  sample rate: %d Hz\n  duration:    %v\n",
		args[0], info.Length, info.SampleRate, d)
	return nil
}
