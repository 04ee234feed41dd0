package main

import (
	"fmt"
	"os"
	"path/filepath"

	ntfp "github.com/Observarun/geo-ntfp"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ntfp",
		Short:         "Per-country NTFP economic value from land cover and access corridors",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(newRunCmd(), newCleanCmd())
	return rootCmd
}

// addPipelineFlags registers the run parameters; flag names in
// kebab-case map onto the snake_case config keys.
func addPipelineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "config file (defaults to ntfp.yaml in the current dir)")
	f.String("work-dir", "", "working directory for stage artifacts")
	f.String("lulc", "", "land-cover raster path")
	f.String("roads", "", "roads vector path")
	f.String("rivers", "", "rivers vector path")
	f.String("countries", "", "country polygons vector path")
	f.String("value-table", "", "per-country value CSV path")
	f.Float64("pixel-size", ntfp.DefaultPixelSize, "target pixel size in projection units")
	f.Float64("buffer-distance", ntfp.DefaultBufferDistance, "corridor buffer distance in projection units")
	f.String("year", ntfp.DefaultColumns.Year, "value table year column to price")
	f.Bool("force", false, "re-run all stages, ignoring the stage cache")
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the valuation pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(cmd.Flags(), cfgFile)
			if err != nil {
				return err
			}
			p, err := ntfp.New(cfg)
			if err != nil {
				return err
			}
			res, err := p.Run()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", res.ValueTable)
			return nil
		},
	}
	addPipelineFlags(cmd)
	return cmd
}

func newCleanCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Drop the stage cache (and with --all, the stage artifacts)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, _ := cmd.Flags().GetString("work-dir")
			if workDir == "" {
				return fmt.Errorf("--work-dir is required")
			}
			if err := removeIfExists(filepath.Join(workDir, ntfp.StageCacheFile)); err != nil {
				return err
			}
			if !all {
				return nil
			}
			artifacts := []string{
				ntfp.ForestMaskTif, ntfp.ForestProjTif,
				ntfp.RoadsProjGpkg, ntfp.RiversProjGpkg, ntfp.CountriesProjGpkg,
				ntfp.RoadsBufferGpkg, ntfp.RiversBufferGpkg, ntfp.UnionBuffersGpkg,
				ntfp.MaskedForestTif, ntfp.OutputValueCsv,
			}
			for _, name := range artifacts {
				if err := removeIfExists(filepath.Join(workDir, name)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().String("work-dir", "", "working directory to clean")
	cmd.Flags().BoolVar(&all, "all", false, "also remove stage artifacts")
	return cmd
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
