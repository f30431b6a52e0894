package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aerogramlab/aerogram/pkg/pipeline"
)

// renderCommand creates the render command for computing diagram documents.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		configPath string
		noCache    bool
	)
	var flagOpts pipeline.Options

	cmd := &cobra.Command{
		Use:   "render [sounding.csv]",
		Short: "Compute a skew-T diagram document from a sounding CSV",
		Long: `Compute a skew-T diagram document from a sounding CSV.

The render command reads a sounding CSV file, runs the full geometry
pipeline (coordinate transform, isopleths, lifted parcel, CAPE/CIN,
wind barbs, hodograph), and writes a renderer-ready JSON document.

Results are cached locally for faster subsequent runs. Use --refresh
to recompute, or --no-cache to bypass the cache entirely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			opts := cfg.Render
			applyRenderFlags(&opts, flagOpts, cmd)
			return c.runRender(withLogger(cmd.Context(), c.Logger), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input base name with .json, '-' for stdout)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./aerogram.toml, then XDG config dir)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	cmd.Flags().StringVar(&flagOpts.Station, "station", "", "station identifier stored in the document")
	cmd.Flags().StringVar(&flagOpts.MissingPolicy, "missing", "", "missing data policy: skip (default), fail")
	cmd.Flags().Float64Var(&flagOpts.RotationDegrees, "rotation", 0, "isotherm skew angle in degrees (default 45)")
	cmd.Flags().Float64Var(&flagOpts.PTop, "p-top", 0, "top pressure bound in hPa (default 100)")
	cmd.Flags().Float64Var(&flagOpts.PBottom, "p-bottom", 0, "bottom pressure bound in hPa (default 1050)")
	cmd.Flags().Float64Var(&flagOpts.Height, "height", 0, "diagram height in screen units (default 100)")
	cmd.Flags().IntVar(&flagOpts.Samples, "samples", 0, "sample count per isopleth (default 80)")
	cmd.Flags().IntVar(&flagOpts.BarbStride, "barb-stride", 0, "plot every Nth wind barb (default 2)")
	cmd.Flags().Float64Var(&flagOpts.BarbMinPressure, "barb-min-pressure", 0, "omit barbs above this pressure level in hPa")
	cmd.Flags().Float64Var(&flagOpts.RingIncrement, "ring-increment", 0, "hodograph speed ring increment in m/s (default 10)")
	cmd.Flags().BoolVar(&flagOpts.EmbedSounding, "embed-sounding", false, "embed the parsed sounding in the document")
	cmd.Flags().BoolVar(&flagOpts.Compact, "compact", false, "emit compact JSON instead of indented")
	cmd.Flags().BoolVar(&flagOpts.Refresh, "refresh", false, "recompute even when a cached document exists")

	return cmd
}

// applyRenderFlags overlays flag values onto opts for every flag the user
// actually set, so flags beat the config file.
func applyRenderFlags(opts *pipeline.Options, flagOpts pipeline.Options, cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("station") {
		opts.Station = flagOpts.Station
	}
	if f.Changed("missing") {
		opts.MissingPolicy = flagOpts.MissingPolicy
	}
	if f.Changed("rotation") {
		opts.RotationDegrees = flagOpts.RotationDegrees
	}
	if f.Changed("p-top") {
		opts.PTop = flagOpts.PTop
	}
	if f.Changed("p-bottom") {
		opts.PBottom = flagOpts.PBottom
	}
	if f.Changed("height") {
		opts.Height = flagOpts.Height
	}
	if f.Changed("samples") {
		opts.Samples = flagOpts.Samples
	}
	if f.Changed("barb-stride") {
		opts.BarbStride = flagOpts.BarbStride
	}
	if f.Changed("barb-min-pressure") {
		opts.BarbMinPressure = flagOpts.BarbMinPressure
	}
	if f.Changed("ring-increment") {
		opts.RingIncrement = flagOpts.RingIncrement
	}
	if f.Changed("embed-sounding") {
		opts.EmbedSounding = flagOpts.EmbedSounding
	}
	if f.Changed("compact") {
		opts.Compact = flagOpts.Compact
	}
	if f.Changed("refresh") {
		opts.Refresh = flagOpts.Refresh
	}
}

// runRender executes the pipeline on the input file and writes the document.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read sounding %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	opts.Logger = logger
	prog := newProgress(logger)

	sp := newSpinner(ctx, fmt.Sprintf("Computing diagram from %s...", filepath.Base(input)))
	sp.Start()

	res, err := runner.ExecuteCSV(ctx, raw, opts)
	if err != nil {
		sp.StopWithError("Diagram computation failed")
		return fmt.Errorf("render: %w", err)
	}
	sp.Stop()

	if output == "-" {
		fmt.Println(string(res.Document))
		return nil
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".json"
	}
	if err := os.WriteFile(output, res.Document, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", output, err)
	}
	prog.done("document written")

	printSuccess("Diagram computed")
	printFile(output)
	printStats(res.Stats.Levels, res.Stats.Isopleths, res.CacheInfo.DiagramHit)
	printNewline()
	printNextStep("Inspect derived indices", fmt.Sprintf("%s inspect %s", appName, input))
	return nil
}
