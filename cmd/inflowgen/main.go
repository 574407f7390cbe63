package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/spf13/cobra"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/app"
)

var (
	configPath  string
	inflowStats bool
	outputPath  string

	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "inflowgen",
	Short: "Generate turbulent inflow fields for OpenFOAM from a precursor simulation",
	Long: `inflowgen rescales velocity sampled in a precursor boundary layer simulation
onto the face centres of an inflow patch using Lund's method, and writes one
field per time step in the format read by timeVaryingMappedFixedValue or
timeVaryingMappedHDF5FixedValue.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(configPath)
		if err != nil {
			return err
		}
		application = a
		return nil
	},
}

var rescaleCmd = &cobra.Command{
	Use:   "rescale",
	Short: "Generate inflow fields with Lund rescaling",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := application.Rescale(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d time steps (%d skipped) to %s\n",
			summary.Steps-summary.Skipped, summary.Skipped, summary.OutputPath)
		return nil
	},
}

var interpolateCmd = &cobra.Command{
	Use:   "interpolate",
	Short: "Generate inflow fields by interpolating the precursor without rescaling",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := application.Interpolate(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d time steps (%d skipped) to %s\n",
			summary.Steps-summary.Skipped, summary.Skipped, summary.OutputPath)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print mean velocity and RMS profiles of the precursor or the generated inflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		var w io.Writer = cmd.OutOrStdout()
		if outputPath != "" {
			f, err := os.Create(outputPath) // #nosec G304
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			w = f
		}
		return application.Stats(cmd.Context(), inflowStats, w)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a foamFile precursor database into an HDF5 database",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := application.Convert(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Converted %d samples (%dx%d points) to %s\n",
			summary.Samples, summary.Rows, summary.Columns, summary.Target)
		return nil
	},
}

var bcdictCmd = &cobra.Command{
	Use:   "bcdict",
	Short: "Print the boundary condition entry for the inflow patch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.BoundaryDict(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	statsCmd.Flags().BoolVar(&inflowStats, "inflow", false, "Read the generated inflow instead of the precursor")
	statsCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the profile to this file instead of stdout")

	rootCmd.AddCommand(rescaleCmd, interpolateCmd, statsCmd, convertCmd, bcdictCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Errorw("Command failed", "error", err.Error())
		stop()
		os.Exit(1)
	}
}
