package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/MALDIView/pkg/core"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Validate input file format and contents",
	Long: `Validate that each input file parses as a MALDI text file (or MSP library)
and that every sample holds a finite, non-negative m/z and intensity.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize FILE...",
	Short: "Summarize spectrum contents",
	Long:  `Print sample counts, unique m/z count, m/z range, total intensity and base peak for each spectrum.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSummarize,
}

func runValidate(cmd *cobra.Command, args []string) error {
	failed := 0

	for _, path := range args {
		datasets, err := loadDatasets([]string{path}, inputFormat)
		if err == nil {
			for _, d := range datasets {
				if err = d.Validate(); err != nil {
					break
				}
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}

		samples := 0
		for _, d := range datasets {
			samples += len(d.Samples)
		}
		fmt.Printf("OK   %s (%d spectra, %d samples)\n", path, len(datasets), samples)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	datasets, err := loadDatasets(args, inputFormat)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	for _, d := range datasets {
		fmt.Println(core.Summarize(d).String())
	}
	return nil
}
