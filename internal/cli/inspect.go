package cli

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/aerogramlab/aerogram/pkg/convective"
	"github.com/aerogramlab/aerogram/pkg/ingest"
	"github.com/aerogramlab/aerogram/pkg/parcel"
	"github.com/aerogramlab/aerogram/pkg/skewt"
	"github.com/aerogramlab/aerogram/pkg/sounding"
	"github.com/aerogramlab/aerogram/pkg/wind"
)

// inspectCommand creates the inspect command for printing derived indices.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		station string
		missing string
	)

	cmd := &cobra.Command{
		Use:   "inspect [sounding.csv]",
		Short: "Print derived indices for a sounding",
		Long: `Print derived indices for a sounding.

The inspect command parses a sounding CSV and prints the lifted
condensation level, level of free convection, equilibrium level,
CAPE, CIN, and 0-6 km bulk shear without producing a full diagram
document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], station, missing)
		},
	}

	cmd.Flags().StringVar(&station, "station", "", "station identifier")
	cmd.Flags().StringVar(&missing, "missing", "", "missing data policy: skip (default), fail")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, station, missing string) error {
	policy, err := sounding.ParseMissingPolicy(missing)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open sounding %s: %w", input, err)
	}
	defer f.Close()

	snd, err := ingest.ReadCSV(f, ingest.ImportOptions{Station: station, Policy: policy})
	if err != nil {
		return fmt.Errorf("parse sounding %s: %w", input, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	par, err := parcel.ComputeProfile(snd)
	if err != nil {
		return fmt.Errorf("lift parcel: %w", err)
	}
	conv, err := convective.Compute(snd, par)
	if err != nil {
		return fmt.Errorf("integrate buoyancy: %w", err)
	}

	sfc := snd.Surface()

	printNewline()
	if snd.Station != "" {
		printKeyValue("Station", snd.Station)
	}
	printKeyValue("Levels", fmt.Sprintf("%d", len(snd.Levels)))
	printKeyValue("Surface", fmt.Sprintf("%.1f hPa  %.1f °C / %.1f °C", sfc.Pressure, sfc.Temperature, sfc.Dewpoint))
	printKeyValue("LCL", fmt.Sprintf("%.1f hPa  %.1f °C", par.LCL.Pressure, par.LCL.Temperature))
	printKeyValue("LFC", formatLevel(conv.LFC))
	printKeyValue("EL", formatLevel(conv.EL))
	printKeyValue("CAPE", fmt.Sprintf("%.0f J/kg", conv.CAPE))
	printKeyValue("CIN", fmt.Sprintf("%.0f J/kg", conv.CIN))
	printKeyValue("0-6 km shear", formatShear(snd))
	printNewline()

	return nil
}

func formatLevel(pt *skewt.PhysicalPoint) string {
	if pt == nil {
		return "none"
	}
	return fmt.Sprintf("%.1f hPa  %.1f °C", pt.Pressure, pt.Temperature)
}

func formatShear(snd *sounding.Profile) string {
	u, v, err := wind.BulkShear(snd, 6000)
	if err != nil {
		return "unavailable"
	}
	speed := math.Hypot(u, v)
	return fmt.Sprintf("%.1f m/s", speed)
}
