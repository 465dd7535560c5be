package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/MALDIView/internal/config"
	"github.com/ChrisMcGann/MALDIView/pkg/render"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE...",
	Short: "Re-render whenever input files or the config file change",
	Long: `Render once, then keep running: when an input file changes all files are
reloaded and redrawn; when the config file changes its parameters are
committed and the figure is redrawn only if they differ from the current
ones. Parameters given as flags stay fixed across config changes. New plot
size and log level settings take effect immediately and are used from the
next redraw.

Stop with Ctrl-C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

// watchTrigger is what the watch loop receives: either a file change or a
// re-read config.
type watchTrigger struct {
	path string
	cfg  *config.Config
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	datasets, err := loadDatasets(args, inputFormat)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	draw, closeDraw, err := newDrawer()
	if err != nil {
		return err
	}
	defer closeDraw()

	session := render.NewSession(initialParams(cmd), draw)
	printParams(session.Params().Committed())
	if _, _, err := session.Handle(render.LoadRequested{Datasets: datasets}); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories so editors that replace files are still seen.
	watched := make(map[string]bool)
	for _, path := range args {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		watched[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	triggers := make(chan watchTrigger, 16)
	if cfgLoader.File() != "" {
		cfgLoader.Watch(func(c *config.Config) {
			sendTrigger(ctx, triggers, watchTrigger{cfg: c})
		})
		fmt.Printf("Watching config %s\n", cfgLoader.File())
	}
	fmt.Printf("Watching %d files, press Ctrl-C to stop\n", len(args))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !watched[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if !sendTrigger(ctx, triggers, watchTrigger{path: ev.Name}) {
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("File watcher error")
			}
		}
	}()

	// Only this loop touches the session and cfg.
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\nStopped\n")
			return nil
		case t := <-triggers:
			handleTrigger(cmd, session, args, t)
		}
	}
}

// sendTrigger queues t for the watch loop. It gives up and returns false
// once ctx is done, since the loop no longer receives.
func sendTrigger(ctx context.Context, triggers chan<- watchTrigger, t watchTrigger) bool {
	select {
	case triggers <- t:
		return true
	case <-ctx.Done():
		return false
	}
}

func handleTrigger(cmd *cobra.Command, session *render.Session, args []string, t watchTrigger) {
	var ev render.Event

	if t.cfg != nil {
		useConfig(t.cfg)
		session.Params().Apply(t.cfg.Params())
		applyFlagOverrides(cmd, session.Params())
		ev = render.CommitRequested{}
	} else {
		log.WithField("file", t.path).Info("Input changed, reloading")
		datasets, err := loadDatasets(args, inputFormat)
		if err != nil {
			log.WithError(err).Error("Reload failed, keeping previous spectra")
			return
		}
		ev = render.LoadRequested{Datasets: datasets}
	}

	pass, rendered, err := session.Handle(ev)
	if err != nil {
		log.WithError(err).Error("Render failed")
		return
	}
	if !rendered {
		log.Debug("Parameters unchanged, figure kept")
		return
	}
	log.WithFields(log.Fields{"pass": pass.ID, "plots": len(pass.Plots)}).Info("Figure updated")
}
