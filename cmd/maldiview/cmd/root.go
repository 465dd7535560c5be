// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/MALDIView/internal/config"
	"github.com/ChrisMcGann/MALDIView/pkg/params"
)

var (
	// Global flags
	configFile string
	logLevel   string

	// Flags shared by render and watch
	inputFormat string
	outputFile  string
	exportDB    string
	lowerLimit  float64
	upperLimit  float64
	useFilter   bool
	filterSigma int
	plotWidth   int
	plotHeight  int

	// Set by the root pre-run hook
	cfgLoader *config.Loader
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "maldiview",
	Short: "MALDIView - MALDI spectrum viewer",
	Long: `MALDIView loads MALDI text files (one "m/z intensity" pair per line),
sums intensity per m/z, optionally smooths the spectrum with a Gaussian
filter and draws all loaded spectra as a vertical stack of line plots.

Settings come from built-in defaults, maldiview.toml (in . or ./config),
.env and MALDIVIEW_* environment variables, and finally command-line flags.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: maldiview.toml in . or ./config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&inputFormat, "from", "f", "", "Input format: txt or msp (auto-detect from extension if not specified)")

	for _, c := range []*cobra.Command{renderCmd, watchCmd} {
		c.Flags().StringVarP(&outputFile, "out", "o", "spectrum.png", "Output PNG file")
		c.Flags().StringVar(&exportDB, "db", "", "Also export each render to this SQLite database")
		c.Flags().Float64Var(&lowerLimit, "lower", params.DefaultLowerLimit, "Lower m/z limit")
		c.Flags().Float64Var(&upperLimit, "upper", params.DefaultUpperLimit, "Upper m/z limit")
		c.Flags().BoolVar(&useFilter, "filter", params.DefaultUseFilter, "Smooth intensities with a Gaussian filter")
		c.Flags().IntVar(&filterSigma, "sigma", params.DefaultFilterSigma, "Gaussian filter sigma in samples")
		c.Flags().IntVar(&plotWidth, "width", 0, "Plot width in pixels (0 = config)")
		c.Flags().IntVar(&plotHeight, "height", 0, "Height of each plot in pixels (0 = config)")
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	cfgLoader = config.NewLoader(configFile)

	c, err := cfgLoader.Load()
	if err != nil {
		return err
	}
	useConfig(c)

	return nil
}

// useConfig makes c the active configuration after applying the --log-level,
// --width and --height flags on top of it.
func useConfig(c *config.Config) {
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	c.ApplyLogging()

	if plotWidth > 0 {
		c.PlotWidth = plotWidth
	}
	if plotHeight > 0 {
		c.PlotHeight = plotHeight
	}

	cfg = c
}

// applyFlagOverrides stores every explicitly set parameter flag in ps
// without committing.
func applyFlagOverrides(cmd *cobra.Command, ps *params.Set) {
	flags := cmd.Flags()
	if flags.Changed("lower") {
		ps.SetLowerLimit(lowerLimit)
	}
	if flags.Changed("upper") {
		ps.SetUpperLimit(upperLimit)
	}
	if flags.Changed("filter") {
		ps.SetUseFilter(useFilter)
	}
	if flags.Changed("sigma") {
		ps.SetFilterSigma(filterSigma)
	}
}

// initialParams builds the committed parameter set from config and flags.
func initialParams(cmd *cobra.Command) *params.Set {
	ps := params.NewFrom(cfg.Params())
	applyFlagOverrides(cmd, ps)
	ps.Commit()

	snap := ps.Committed()
	if snap.LowerLimit > snap.UpperLimit {
		log.WithField("params", snap.String()).Warn("Lower limit is above upper limit, plots will be empty")
	}
	return ps
}

func printParams(p params.Snapshot) {
	fmt.Printf("m/z range: %g - %g\n", p.LowerLimit, p.UpperLimit)
	if p.UseFilter {
		fmt.Printf("Gaussian filter: sigma %d\n", p.FilterSigma)
	} else {
		fmt.Printf("Gaussian filter: off\n")
	}
}
