package cmd

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/MALDIView/pkg/render"
	"github.com/ChrisMcGann/MALDIView/pkg/writer/figure"
	"github.com/ChrisMcGann/MALDIView/pkg/writer/sqlite"
)

var renderCmd = &cobra.Command{
	Use:   "render FILE...",
	Short: "Render spectra to a stacked PNG figure",
	Long: `Load one or more MALDI text files (or MSP libraries), aggregate and
process them with the current parameters and draw one plot per spectrum,
stacked top to bottom in the order given.

Examples:
  # Render two runs with default settings
  maldiview render run1.txt run2.txt --out spectrum.png

  # Zoom into 1000-3000 m/z with smoothing
  maldiview render run1.txt --lower 1000 --upper 3000 --filter --sigma 7

  # Also keep the processed curves in an SQLite file
  maldiview render run1.txt --db renders.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	datasets, err := loadDatasets(args, inputFormat)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}
	fmt.Printf("Loaded %d spectra from %d files\n", len(datasets), len(args))

	ps := initialParams(cmd)
	printParams(ps.Committed())

	draw, closeDraw, err := newDrawer()
	if err != nil {
		return err
	}
	defer closeDraw()

	session := render.NewSession(ps, draw)
	if _, _, err := session.Handle(render.LoadRequested{Datasets: datasets}); err != nil {
		return err
	}

	return nil
}

// newDrawer returns the drawer used by render and watch: it writes the PNG
// figure and, with --db, appends the pass to the SQLite export. The
// returned close function releases the database.
func newDrawer() (render.Drawer, func(), error) {
	var db *sqlite.Writer
	if exportDB != "" {
		var err error
		db, err = sqlite.NewWriter(exportDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create export database: %w", err)
		}
	}

	draw := func(pass render.Pass) error {
		err := figure.WriteFile(outputFile, pass, cfg.FigureOptions())
		switch {
		case errors.Is(err, figure.ErrNoPlots):
			fmt.Printf("Nothing to draw: no spectra loaded\n")
		case err != nil:
			return err
		default:
			fmt.Printf("Wrote %d plots to %s\n", len(pass.Plots), outputFile)
		}

		if db != nil {
			if err := db.WritePass(pass); err != nil {
				return fmt.Errorf("failed to export render: %w", err)
			}
			log.WithFields(log.Fields{"pass": pass.ID, "db": exportDB}).Debug("Render exported")
		}
		return nil
	}

	closeDraw := func() {
		if db != nil {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("Failed to close export database")
			}
		}
	}

	return draw, closeDraw, nil
}
