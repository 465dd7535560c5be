package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/MALDIView/pkg/core"
	"github.com/ChrisMcGann/MALDIView/pkg/reader/maldi"
	"github.com/ChrisMcGann/MALDIView/pkg/reader/msp"
)

// detectFormat resolves the input format for path, honoring --from.
func detectFormat(path, format string) (string, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".msp":
			return "msp", nil
		default:
			return "txt", nil
		}
	}

	format = strings.ToLower(format)
	if format != "txt" && format != "msp" {
		return "", fmt.Errorf("invalid input format '%s', must be txt or msp", format)
	}
	return format, nil
}

// loadDatasets reads every path in order. Text files yield one dataset
// each; MSP files yield one per entry. Any error aborts the whole load.
func loadDatasets(paths []string, format string) ([]*core.Dataset, error) {
	var datasets []*core.Dataset

	for _, path := range paths {
		f, err := detectFormat(path, format)
		if err != nil {
			return nil, err
		}

		switch f {
		case "msp":
			entries, err := msp.ReadFile(path)
			if err != nil {
				return nil, err
			}
			datasets = append(datasets, entries...)
		default:
			d, err := maldi.ReadFile(path)
			if err != nil {
				return nil, err
			}
			datasets = append(datasets, d)
		}
	}

	return datasets, nil
}
