package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/MALDIView/internal/config"
	"github.com/ChrisMcGann/MALDIView/pkg/params"
	"github.com/ChrisMcGann/MALDIView/pkg/render"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path, format, want string
		wantErr            bool
	}{
		{"run.txt", "", "txt", false},
		{"run.dat", "", "txt", false},
		{"lib.MSP", "", "msp", false},
		{"lib.msp", "TXT", "txt", false},
		{"run.txt", "mzml", "", true},
	}
	for _, tt := range tests {
		got, err := detectFormat(tt.path, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("detectFormat(%q, %q) error = %v, wantErr %v", tt.path, tt.format, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("detectFormat(%q, %q) = %q, want %q", tt.path, tt.format, got, tt.want)
		}
	}
}

func TestLoadDatasetsKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "100 1\n")
	lib := writeFile(t, dir, "lib.msp", "Name: X/1\nNum peaks: 1\n10 1\n\nName: Y/2\nNum peaks: 1\n20 2\n")
	b := writeFile(t, dir, "b.txt", "200 2\n")

	datasets, err := loadDatasets([]string{a, lib, b}, "")
	if err != nil {
		t.Fatalf("loadDatasets failed: %v", err)
	}

	var names []string
	for _, d := range datasets {
		names = append(names, d.Name)
	}
	want := []string{"a", "X/1", "Y/2", "b"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Dataset %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestLoadDatasetsAbortsOnError(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "100 1\n")
	bad := writeFile(t, dir, "bad.txt", "100 one\n")

	if _, err := loadDatasets([]string{good, bad}, ""); err == nil {
		t.Error("Expected error when one file is malformed")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	run := writeFile(t, dir, "run.txt", "100.0 5\n100.0 3\n200.0 2\n")
	out := filepath.Join(dir, "out.png")
	db := filepath.Join(dir, "out.db")

	rootCmd.SetArgs([]string{"render", run, "--out", out, "--db", db, "--upper", "150", "--width", "300", "--height", "120"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, path := range []string{out, db} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Expected %s to exist: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("Expected %s to be non-empty", path)
		}
	}
}

// newParamCommand returns a command carrying the parameter flags, with the
// given flags set as if typed on the command line.
func newParamCommand(t *testing.T, set map[string]string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "watch"}
	c.Flags().Float64Var(&lowerLimit, "lower", params.DefaultLowerLimit, "")
	c.Flags().Float64Var(&upperLimit, "upper", params.DefaultUpperLimit, "")
	c.Flags().BoolVar(&useFilter, "filter", params.DefaultUseFilter, "")
	c.Flags().IntVar(&filterSigma, "sigma", params.DefaultFilterSigma, "")
	for name, value := range set {
		if err := c.Flags().Set(name, value); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func defaultConfig() *config.Config {
	return &config.Config{
		LowerLimit:  params.DefaultLowerLimit,
		UpperLimit:  params.DefaultUpperLimit,
		UseFilter:   params.DefaultUseFilter,
		FilterSigma: params.DefaultFilterSigma,
		LogLevel:    "info",
	}
}

func TestHandleTrigger(t *testing.T) {
	tests := []struct {
		name        string
		cfg         func(c *config.Config)
		newInput    string
		wantRender  bool
		wantParams  params.Snapshot
		wantSamples int
	}{
		{
			name:        "config edits pinned field only",
			cfg:         func(c *config.Config) { c.UpperLimit = 3000 },
			wantRender:  false,
			wantParams:  params.Snapshot{LowerLimit: 0, UpperLimit: 150, FilterSigma: 15},
			wantSamples: 2,
		},
		{
			name:        "config toggles filter",
			cfg:         func(c *config.Config) { c.UseFilter = true },
			wantRender:  true,
			wantParams:  params.Snapshot{LowerLimit: 0, UpperLimit: 150, UseFilter: true, FilterSigma: 15},
			wantSamples: 2,
		},
		{
			name:        "input file changed",
			newInput:    "100 5\n120 3\n140 1\n",
			wantRender:  true,
			wantParams:  params.Snapshot{LowerLimit: 0, UpperLimit: 150, FilterSigma: 15},
			wantSamples: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "run.txt", "100 5\n120 3\n")
			cmd := newParamCommand(t, map[string]string{"upper": "150"})

			ps := params.New()
			applyFlagOverrides(cmd, ps)
			ps.Commit()

			draws := 0
			session := render.NewSession(ps, func(render.Pass) error {
				draws++
				return nil
			})
			datasets, err := loadDatasets([]string{path}, "")
			if err != nil {
				t.Fatal(err)
			}
			if _, _, err := session.Handle(render.LoadRequested{Datasets: datasets}); err != nil {
				t.Fatal(err)
			}
			draws = 0

			trigger := watchTrigger{path: path}
			if tt.cfg != nil {
				c := defaultConfig()
				tt.cfg(c)
				trigger = watchTrigger{cfg: c}
			}
			if tt.newInput != "" {
				writeFile(t, dir, "run.txt", tt.newInput)
			}

			handleTrigger(cmd, session, []string{path}, trigger)

			if rendered := draws > 0; rendered != tt.wantRender {
				t.Errorf("Expected rendered=%t, got %d draws", tt.wantRender, draws)
			}
			if got := session.Params().Committed(); got != tt.wantParams {
				t.Errorf("Expected committed %v, got %v", tt.wantParams, got)
			}
			if got := len(session.Datasets()[0].Samples); got != tt.wantSamples {
				t.Errorf("Expected %d samples, got %d", tt.wantSamples, got)
			}
		})
	}
}

func TestHandleTriggerKeepsDataOnReloadError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "run.txt", "100 5\n")
	cmd := newParamCommand(t, nil)

	session := render.NewSession(params.New(), nil)
	datasets, err := loadDatasets([]string{path}, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := session.Handle(render.LoadRequested{Datasets: datasets}); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "run.txt", "100 five\n")
	handleTrigger(cmd, session, []string{path}, watchTrigger{path: path})

	if got := session.Datasets(); len(got) != 1 || len(got[0].Samples) != 1 {
		t.Errorf("Expected previous dataset to be kept, got %v", got)
	}
}

func TestUseConfigAppliesFlags(t *testing.T) {
	savedWidth, savedHeight, savedLevel, savedCfg := plotWidth, plotHeight, logLevel, cfg
	t.Cleanup(func() {
		plotWidth, plotHeight, logLevel, cfg = savedWidth, savedHeight, savedLevel, savedCfg
	})

	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"config values", 0, 0, 640, 200},
		{"flags override", 800, 100, 800, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plotWidth, plotHeight, logLevel = tt.width, tt.height, ""

			c := defaultConfig()
			c.PlotWidth, c.PlotHeight = 640, 200
			useConfig(c)

			opts := cfg.FigureOptions()
			if opts.Width != tt.wantW || opts.Height != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, opts.Width, opts.Height)
			}
		})
	}
}

func TestSendTrigger(t *testing.T) {
	triggers := make(chan watchTrigger, 1)
	if !sendTrigger(context.Background(), triggers, watchTrigger{path: "a.txt"}) {
		t.Fatal("Expected send to succeed with room in the channel")
	}
	if got := <-triggers; got.path != "a.txt" {
		t.Errorf("Expected a.txt, got %q", got.path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := make(chan watchTrigger)
	done := make(chan bool)
	go func() { done <- sendTrigger(ctx, blocked, watchTrigger{path: "b.txt"}) }()

	select {
	case ok := <-done:
		if ok {
			t.Error("Expected send to report false after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("sendTrigger blocked after context was cancelled")
	}
}
