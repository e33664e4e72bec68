package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gogpu/aurora"
	"github.com/gogpu/aurora/host"
)

var (
	watchOut      string
	watchEvery    time.Duration
	watchDuration time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Animate in real time and apply preset edits live",
	Long: `Runs the renderer on a fixed-rate ticker and watches the --config file.
Saved edits are applied with SetParameters and viewport resizes, without
remounting. Invalid edits are logged and ignored. The latest frame is
written to --out periodically.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "aurora-latest.png", "snapshot path")
	watchCmd.Flags().DurationVar(&watchEvery, "every", time.Second, "snapshot interval")
	watchCmd.Flags().DurationVar(&watchDuration, "duration", 0, "stop after this long (default: until interrupted)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return errors.New("watch requires --config")
	}
	if watchEvery <= 0 {
		return fmt.Errorf("--every must be positive")
	}
	target, err := filepath.Abs(configPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme, params, err := cfg.Active()
	if err != nil {
		return err
	}
	palette, err := cfg.Palette()
	if err != nil {
		return err
	}
	opts, release, err := rendererOptions(cfg)
	if err != nil {
		return err
	}
	defer release()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if watchDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchDuration)
		defer cancel()
	}

	sched := host.NewTickScheduler(time.Second / time.Duration(cfg.Render.FPS))
	sched.Start()
	defer sched.Stop()

	vp := host.NewViewport(cfg.Render.Width, cfg.Render.Height)
	r := aurora.NewRenderer(vp, sched, opts...)
	if err := r.Mount(host.NewContainer(), params); err != nil {
		return err
	}
	defer func() { _ = r.Unmount() }()

	state := aurora.NewThemeState(theme)
	unbind := aurora.BindTheme(r, state, palette)
	defer func() { unbind() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	log := aurora.Logger().With("config", target)
	log.Info("watching", "backend", r.Backend().Name(), "fps", cfg.Render.FPS)

	reload := func() {
		next, err := loadConfig()
		if err != nil {
			log.Warn("config rejected", "err", err)
			return
		}
		nextTheme, _, err := next.Active()
		if err != nil {
			log.Warn("config rejected", "err", err)
			return
		}
		nextPalette, err := next.Palette()
		if err != nil {
			log.Warn("config rejected", "err", err)
			return
		}

		unbind()
		unbind = aurora.BindTheme(r, state, nextPalette)
		state.Set(nextTheme)
		vp.SetSize(next.Render.Width, next.Render.Height)
		log.Info("config applied", "theme", nextTheme.String(),
			"width", next.Render.Width, "height", next.Render.Height)
	}

	ticker := time.NewTicker(watchEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				reload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)

		case <-ticker.C:
			if err := r.Err(); err != nil {
				return err
			}
			if r.Frames() == 0 {
				continue
			}
			pm := aurora.NewPixmap(1, 1)
			if err := r.Snapshot(pm); err != nil {
				return err
			}
			if err := writeFrame(watchOut, pm, pm.Width(), pm.Height()); err != nil {
				return err
			}
			log.Debug("snapshot written", "path", watchOut, "frames", r.Frames())
		}
	}
}
