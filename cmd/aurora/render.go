package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/aurora"
	"github.com/gogpu/aurora/host"
)

var (
	renderFrames   int
	renderStart    time.Duration
	renderInterval time.Duration
	renderOut      string
	renderWidth    int
	renderHeight   int
	renderScale    float64
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render frames to PNG files",
	Long: `Mounts the renderer on a headless host, steps the frame scheduler
and writes every frame as a PNG. --out may hold one printf verb for the
frame index.

With --scale below 1 frames are shaded at reduced resolution and upscaled
bilinearly. The band is smooth, so little detail is lost.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().IntVarP(&renderFrames, "frames", "n", 1, "number of frames")
	renderCmd.Flags().DurationVar(&renderStart, "start", 0, "timestamp of the first frame")
	renderCmd.Flags().DurationVar(&renderInterval, "interval", 0, "time between frames (default 1/fps)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "aurora-%03d.png", "output path")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "output width (default from config)")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "output height (default from config)")
	renderCmd.Flags().Float64Var(&renderScale, "scale", 1, "shading scale in (0, 1]")
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderFrames <= 0 {
		return fmt.Errorf("--frames must be positive")
	}
	if renderScale <= 0 || renderScale > 1 {
		return fmt.Errorf("--scale must be in (0, 1], got %v", renderScale)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	_, params, err := cfg.Active()
	if err != nil {
		return err
	}
	opts, release, err := rendererOptions(cfg)
	if err != nil {
		return err
	}
	defer release()

	outW, outH := cfg.Render.Width, cfg.Render.Height
	if renderWidth > 0 {
		outW = renderWidth
	}
	if renderHeight > 0 {
		outH = renderHeight
	}
	interval := renderInterval
	if interval <= 0 {
		interval = time.Second / time.Duration(cfg.Render.FPS)
	}
	shadeW := max(1, int(float64(outW)*renderScale))
	shadeH := max(1, int(float64(outH)*renderScale))

	sched := host.NewManualScheduler()
	r := aurora.NewRenderer(host.NewViewport(shadeW, shadeH), sched, opts...)
	if err := r.Mount(host.NewContainer(), params); err != nil {
		return err
	}
	defer func() { _ = r.Unmount() }()

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < renderFrames; i++ {
		sched.Step(renderStart + time.Duration(i)*interval)
		if err := r.Err(); err != nil {
			return err
		}
		pm := aurora.NewPixmap(1, 1)
		if err := r.Snapshot(pm); err != nil {
			return err
		}
		path := framePath(renderOut, i)
		g.Go(func() error {
			return writeFrame(path, pm, outW, outH)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rendered %d frame(s) at %dx%d with %s backend\n",
		renderFrames, outW, outH, r.Backend().Name())
	return nil
}

// framePath formats pattern with index i when it holds a verb.
func framePath(pattern string, i int) string {
	if strings.Contains(pattern, "%") {
		return fmt.Sprintf(pattern, i)
	}
	return pattern
}

// writeFrame encodes pm as PNG, upscaling it to w x h when sizes differ.
// Bilinear weights are convex, so premultiplied pixels stay valid.
func writeFrame(path string, pm *aurora.Pixmap, w, h int) error {
	var img image.Image = pm.ToImage()
	if pm.Width() != w || pm.Height() != h {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
