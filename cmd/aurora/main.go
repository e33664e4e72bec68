// Command aurora renders the animated aurora background headlessly.
//
// Usage:
//
//	aurora render --frames 60 --out frames/aurora-%03d.png
//	aurora watch --config aurora.yaml --out latest.png
//	aurora shader --print   (not in nogpu builds)
//	aurora backends
//	aurora config init aurora.yaml
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/aurora"
	"github.com/gogpu/aurora/config"
)

var (
	configPath  string
	backendName string
	themeName   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "aurora",
	Short: "Render the procedural aurora background",
	Long: `aurora drives the aurora renderer on a headless host.

It renders frames to PNG, watches a preset file and applies edits live,
and validates the WGSL program.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		aurora.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "preset file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "", "backend name (default: config, then gpu, then software)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "theme override: dark or light")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(backendsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the preset file and applies the theme flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if themeName != "" {
		if _, err := aurora.ParseTheme(themeName); err != nil {
			return nil, err
		}
		cfg.Theme = themeName
	}
	return cfg, nil
}

// rendererOptions selects the backend from the flag or the config. The
// returned release closes a backend looked up here; without a name the
// renderer resolves and owns its backend and release does nothing.
func rendererOptions(cfg *config.Config) (opts []aurora.Option, release func(), err error) {
	name := backendName
	if name == "" {
		name = cfg.Backend
	}
	if name == "" {
		return nil, func() {}, nil
	}
	b, err := aurora.LookupBackend(name)
	if err != nil {
		return nil, nil, fmt.Errorf("backend %q: %w", name, err)
	}
	return []aurora.Option{aurora.WithBackend(b)}, func() { closeBackend(b) }, nil
}

// closeBackend closes b if it owns a device.
func closeBackend(b aurora.Backend) {
	c, ok := b.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		aurora.Logger().Warn("close backend", "backend", b.Name(), "err", err)
	}
}
