package aurora_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/aurora"
	"github.com/gogpu/aurora/host"
)

type harness struct {
	vp    *host.Viewport
	sched *host.ManualScheduler
	c     *host.Container
	r     *aurora.Renderer
}

func newHarness(t *testing.T, w, h int) *harness {
	t.Helper()
	hs := &harness{
		vp:    host.NewViewport(w, h),
		sched: host.NewManualScheduler(),
		c:     host.NewContainer(),
	}
	hs.r = aurora.NewRenderer(hs.vp, hs.sched,
		aurora.WithBackend(&aurora.SoftwareBackend{Workers: 2}),
		aurora.WithLabel(t.Name()))
	t.Cleanup(func() { _ = hs.r.Unmount() })
	return hs
}

func (hs *harness) mount(t *testing.T, p aurora.Parameters) {
	t.Helper()
	if err := hs.r.Mount(hs.c, p); err != nil {
		t.Fatalf("Mount: %v", err)
	}
}

func (hs *harness) snapshot(t *testing.T) *aurora.Pixmap {
	t.Helper()
	pm := aurora.NewPixmap(1, 1)
	if err := hs.r.Snapshot(pm); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return pm
}

func TestMountAttachesAndStartsLoop(t *testing.T) {
	hs := newHarness(t, 32, 16)
	hs.mount(t, aurora.DefaultParameters())

	if hs.c.Len() != 1 || !hs.c.Contains(hs.r.Surface()) {
		t.Fatal("surface not attached to container")
	}
	if w, h := hs.r.Surface().Size(); w != 32 || h != 16 {
		t.Errorf("surface size = %dx%d, want 32x16", w, h)
	}
	if !hs.r.Running() || hs.sched.Pending() != 1 {
		t.Fatalf("loop not started: running=%v pending=%d", hs.r.Running(), hs.sched.Pending())
	}

	for i := 0; i < 3; i++ {
		hs.sched.Advance(16 * time.Millisecond)
	}
	if hs.r.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", hs.r.Frames())
	}
	if hs.sched.Pending() != 1 {
		t.Errorf("pending = %d, want 1 re-armed frame", hs.sched.Pending())
	}
}

func TestMountTwice(t *testing.T) {
	hs := newHarness(t, 8, 8)
	hs.mount(t, aurora.DefaultParameters())
	if err := hs.r.Mount(hs.c, aurora.DefaultParameters()); !errors.Is(err, aurora.ErrAlreadyMounted) {
		t.Errorf("second Mount = %v, want ErrAlreadyMounted", err)
	}
	if hs.c.Len() != 1 {
		t.Errorf("container has %d surfaces", hs.c.Len())
	}
}

func TestTimeOriginAndSpeed(t *testing.T) {
	hs := newHarness(t, 8, 8)
	hs.mount(t, aurora.DefaultParameters().Apply(aurora.WithSpeed(2)))

	hs.sched.Step(5 * time.Second)
	if got := hs.r.Uniforms().Time; got != 0 {
		t.Errorf("first frame time = %v, want 0", got)
	}
	hs.sched.Step(5*time.Second + 500*time.Millisecond)
	if got := hs.r.Uniforms().Time; got != 1 {
		t.Errorf("time after 500ms at speed 2 = %v, want 1", got)
	}
}

func TestSpeedZeroFreezes(t *testing.T) {
	hs := newHarness(t, 16, 16)
	hs.mount(t, aurora.DefaultParameters().Apply(aurora.WithSpeed(0)))

	hs.sched.Step(0)
	first := hs.snapshot(t)
	hs.sched.Step(3 * time.Second)
	if !hs.snapshot(t).Equal(first) {
		t.Error("frames differ with speed 0")
	}
}

func TestBottomTransparentTopOpaque(t *testing.T) {
	hs := newHarness(t, 20, 20)
	hs.mount(t, aurora.DefaultParameters().Apply(aurora.WithBlend(0)))

	for _, ts := range []time.Duration{0, time.Second, 7 * time.Second} {
		hs.sched.Step(ts)
		pm := hs.snapshot(t)
		for x := 0; x < 20; x++ {
			if a := pm.Pixel(x, 19).A; a != 0 {
				t.Fatalf("ts=%v: bottom pixel %d alpha = %d, want 0", ts, x, a)
			}
			if a := pm.Pixel(x, 0).A; a != 255 {
				t.Fatalf("ts=%v: top pixel %d alpha = %d, want 255", ts, x, a)
			}
		}
	}
}

func TestSetParametersBeforeMount(t *testing.T) {
	hs := newHarness(t, 8, 8)
	if err := hs.r.SetParameters(aurora.WithAmplitude(2)); !errors.Is(err, aurora.ErrNotMounted) {
		t.Errorf("SetParameters = %v, want ErrNotMounted", err)
	}
}

func TestSetParametersAppliesNextFrame(t *testing.T) {
	hs := newHarness(t, 16, 16)
	hs.mount(t, aurora.DefaultParameters())
	hs.sched.Step(0)
	before := hs.snapshot(t)

	stops := aurora.MustParseColorStops("#ff0000", "#ff0000", "#ff0000")
	if err := hs.r.SetParameters(aurora.WithColorStops(stops), aurora.WithAmplitude(0)); err != nil {
		t.Fatal(err)
	}
	if got := hs.r.Parameters(); got.Amplitude != 0 || got.ColorStops != stops {
		t.Errorf("Parameters() = %+v", got)
	}
	if got := hs.r.Uniforms().Amplitude; got != 0 {
		t.Errorf("uniform amplitude = %v, want 0", got)
	}

	hs.sched.Step(0)
	after := hs.snapshot(t)
	if after.Equal(before) {
		t.Fatal("frame unchanged after SetParameters")
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if c := after.Pixel(x, y); c.G != 0 || c.B != 0 {
				t.Fatalf("pixel (%d, %d) = %v, want pure red", x, y, c)
			}
		}
	}
}

func TestSetParametersAllOrNothing(t *testing.T) {
	hs := newHarness(t, 8, 8)
	p := aurora.DefaultParameters()
	hs.mount(t, p)

	bad := aurora.ColorStops{{2, 0, 0}}
	err := hs.r.SetParameters(aurora.WithAmplitude(5), aurora.WithColorStops(bad))
	if !errors.Is(err, aurora.ErrInvalidColorStops) {
		t.Fatalf("SetParameters = %v, want ErrInvalidColorStops", err)
	}
	if hs.r.Parameters() != p {
		t.Errorf("rejected update changed parameters: %+v", hs.r.Parameters())
	}
	if hs.r.Uniforms().Amplitude != 1 {
		t.Errorf("rejected update changed uniforms")
	}
}

func TestResizeUpdatesSurfaceAndResolution(t *testing.T) {
	hs := newHarness(t, 10, 10)
	hs.mount(t, aurora.DefaultParameters())

	hs.vp.SetSize(30, 12)
	if w, h := hs.r.Surface().Size(); w != 30 || h != 12 {
		t.Errorf("surface = %dx%d, want 30x12", w, h)
	}
	if res := hs.r.Uniforms().Resolution; res[0] != 30 || res[1] != 12 {
		t.Errorf("resolution = %v, want [30 12]", res)
	}

	hs.sched.Step(0)
	if pm := hs.snapshot(t); pm.Width() != 30 || pm.Height() != 12 {
		t.Errorf("snapshot = %dx%d", pm.Width(), pm.Height())
	}
}

func TestUnmountTearsDown(t *testing.T) {
	hs := newHarness(t, 8, 8)
	hs.mount(t, aurora.DefaultParameters())
	s := hs.r.Surface().(*aurora.SoftwareSurface)
	hs.sched.Step(0)

	if err := hs.r.Unmount(); err != nil {
		t.Fatal(err)
	}
	if hs.c.Len() != 0 {
		t.Error("surface still attached")
	}
	if !s.Released() {
		t.Error("surface not released")
	}
	if hs.sched.Pending() != 0 {
		t.Errorf("pending frames = %d after Unmount", hs.sched.Pending())
	}
	if hs.vp.Observers() != 0 {
		t.Errorf("resize observers = %d after Unmount", hs.vp.Observers())
	}
	if hs.r.Mounted() || hs.r.Running() {
		t.Error("renderer still mounted")
	}

	frames := s.Frames()
	hs.sched.Step(time.Second)
	hs.vp.SetSize(100, 100)
	if s.Frames() != frames {
		t.Error("frame drawn after Unmount")
	}
	if err := hs.r.SetParameters(aurora.WithSpeed(3)); !errors.Is(err, aurora.ErrNotMounted) {
		t.Errorf("SetParameters after Unmount = %v, want ErrNotMounted", err)
	}

	if err := hs.r.Unmount(); err != nil {
		t.Errorf("second Unmount = %v", err)
	}
}

func TestUnmountWithoutMount(t *testing.T) {
	hs := newHarness(t, 8, 8)
	if err := hs.r.Unmount(); err != nil {
		t.Errorf("Unmount before Mount = %v", err)
	}
}

func TestUnmountSurfaceAlreadyDetached(t *testing.T) {
	hs := newHarness(t, 8, 8)
	hs.mount(t, aurora.DefaultParameters())
	hs.c.Detach(hs.r.Surface())
	if err := hs.r.Unmount(); err != nil {
		t.Errorf("Unmount = %v", err)
	}
}

func TestRemountResetsTimeOrigin(t *testing.T) {
	hs := newHarness(t, 8, 8)
	hs.mount(t, aurora.DefaultParameters())
	hs.sched.Step(0)
	hs.sched.Step(2 * time.Second)
	if err := hs.r.Unmount(); err != nil {
		t.Fatal(err)
	}

	hs.mount(t, aurora.DefaultParameters())
	hs.sched.Step(10 * time.Second)
	if got := hs.r.Uniforms().Time; got != 0 {
		t.Errorf("time after remount = %v, want 0", got)
	}
	if hs.c.Len() != 1 {
		t.Errorf("container has %d surfaces", hs.c.Len())
	}
}

func TestContextLossStopsLoop(t *testing.T) {
	hs := newHarness(t, 8, 8)
	hs.mount(t, aurora.DefaultParameters())
	hs.sched.Step(0)

	hs.r.Surface().(aurora.ContextLoser).Lose()
	hs.sched.Step(16 * time.Millisecond)

	if !errors.Is(hs.r.Err(), aurora.ErrContextLost) {
		t.Fatalf("Err() = %v, want ErrContextLost", hs.r.Err())
	}
	if hs.r.Running() {
		t.Error("loop still running after context loss")
	}
	if hs.sched.Pending() != 0 {
		t.Errorf("pending = %d, want 0", hs.sched.Pending())
	}
	if hs.sched.Step(time.Second) != 0 {
		t.Error("frame fired after context loss")
	}

	// Still mounted; teardown stays clean and a fresh mount recovers.
	if !hs.r.Mounted() {
		t.Error("context loss unmounted the renderer")
	}
	if err := hs.r.Unmount(); err != nil {
		t.Fatal(err)
	}
	hs.mount(t, aurora.DefaultParameters())
	if hs.r.Err() != nil || !hs.r.Running() {
		t.Errorf("remount: err=%v running=%v", hs.r.Err(), hs.r.Running())
	}
}

func TestMountInitErrors(t *testing.T) {
	t.Run("zero viewport", func(t *testing.T) {
		hs := newHarness(t, 0, 0)
		err := hs.r.Mount(hs.c, aurora.DefaultParameters())
		if !errors.Is(err, aurora.ErrRenderInitialization) || !errors.Is(err, aurora.ErrInvalidDimensions) {
			t.Errorf("Mount = %v", err)
		}
		if hs.c.Len() != 0 || hs.r.Mounted() || hs.sched.Pending() != 0 {
			t.Error("failed mount left state behind")
		}
	})

	t.Run("invalid parameters", func(t *testing.T) {
		hs := newHarness(t, 8, 8)
		p := aurora.DefaultParameters()
		p.ColorStops[0].R = -1
		err := hs.r.Mount(hs.c, p)
		var ie *aurora.InitError
		if !errors.As(err, &ie) || ie.Stage != aurora.StageParameters {
			t.Errorf("Mount = %v, want parameters stage", err)
		}
		if !errors.Is(err, aurora.ErrInvalidColorStops) {
			t.Errorf("Mount = %v, want ErrInvalidColorStops", err)
		}
	})

	t.Run("attach fails", func(t *testing.T) {
		hs := newHarness(t, 8, 8)
		backend := &recordingBackend{}
		hs.r = aurora.NewRenderer(hs.vp, hs.sched, aurora.WithBackend(backend))
		hs.c.FailAttach(errors.New("container gone"))

		err := hs.r.Mount(hs.c, aurora.DefaultParameters())
		var ie *aurora.InitError
		if !errors.As(err, &ie) || ie.Stage != aurora.StageAttach {
			t.Fatalf("Mount = %v, want attach stage", err)
		}
		if !backend.last.Released() {
			t.Error("surface leaked after failed attach")
		}
		if hs.vp.Observers() != 0 || hs.sched.Pending() != 0 {
			t.Error("failed mount left observers or frames")
		}
		if err := hs.r.Unmount(); err != nil {
			t.Errorf("Unmount after failed Mount = %v", err)
		}
	})

	t.Run("program stage passes through", func(t *testing.T) {
		hs := newHarness(t, 8, 8)
		compileErr := &aurora.InitError{Stage: aurora.StageProgram, Err: errors.New("compile")}
		hs.r = aurora.NewRenderer(hs.vp, hs.sched, aurora.WithBackend(failingBackend{compileErr}))

		err := hs.r.Mount(hs.c, aurora.DefaultParameters())
		var ie *aurora.InitError
		if !errors.As(err, &ie) || ie.Stage != aurora.StageProgram {
			t.Errorf("Mount = %v, want program stage", err)
		}
	})

	t.Run("nil container", func(t *testing.T) {
		hs := newHarness(t, 8, 8)
		if err := hs.r.Mount(nil, aurora.DefaultParameters()); !errors.Is(err, aurora.ErrRenderInitialization) {
			t.Errorf("Mount(nil) = %v", err)
		}
	})
}

func TestSnapshotNotMounted(t *testing.T) {
	hs := newHarness(t, 8, 8)
	if err := hs.r.Snapshot(aurora.NewPixmap(1, 1)); !errors.Is(err, aurora.ErrNotMounted) {
		t.Errorf("Snapshot = %v, want ErrNotMounted", err)
	}
}

func TestConcurrentUpdatesWithTicker(t *testing.T) {
	vp := host.NewViewport(32, 32)
	sched := host.NewTickScheduler(time.Millisecond)
	sched.Start()
	defer sched.Stop()

	r := aurora.NewRenderer(vp, sched, aurora.WithBackend(&aurora.SoftwareBackend{Workers: 2}))
	c := host.NewContainer()
	if err := r.Mount(c, aurora.DefaultParameters()); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = r.SetParameters(aurora.WithAmplitude(float64(i%3)), aurora.WithBlend(0.1*float64(i%5)))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			vp.SetSize(16+i%8, 16+i%5)
		}
	}()
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for r.Frames() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if r.Frames() == 0 {
		t.Error("no frames drawn")
	}

	if err := r.Unmount(); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 || r.Err() != nil {
		t.Errorf("after Unmount: attached=%d err=%v", c.Len(), r.Err())
	}
}

// recordingBackend remembers the last surface it created.
type recordingBackend struct {
	last *aurora.SoftwareSurface
}

func (b *recordingBackend) Name() string { return "recording" }

func (b *recordingBackend) NewSurface(cfg aurora.SurfaceConfig) (aurora.Surface, error) {
	s, err := aurora.NewSoftwareBackend().NewSurface(cfg)
	if err != nil {
		return nil, err
	}
	b.last = s.(*aurora.SoftwareSurface)
	return s, nil
}

type failingBackend struct{ err error }

func (b failingBackend) Name() string { return "failing" }

func (b failingBackend) NewSurface(aurora.SurfaceConfig) (aurora.Surface, error) {
	return nil, b.err
}

func TestEndToEndTwoFrames(t *testing.T) {
	hs := newHarness(t, 32, 32)
	hs.mount(t, aurora.Parameters{
		ColorStops: aurora.MustParseColorStops("#ff0000", "#00ff00", "#0000ff"),
		Amplitude:  1,
		Blend:      0.5,
		Speed:      1,
	})

	hs.sched.Step(0)
	first := hs.snapshot(t)
	hs.sched.Step(1000 * time.Millisecond)
	if got := hs.r.Uniforms().Time; got != 1 {
		t.Errorf("time at 1000ms = %v, want 1", got)
	}
	second := hs.snapshot(t)

	if first.Equal(second) {
		t.Error("frames at 0ms and 1000ms are identical")
	}
	for _, pm := range []*aurora.Pixmap{first, second} {
		var opaque, clear int
		for y := 0; y < pm.Height(); y++ {
			for x := 0; x < pm.Width(); x++ {
				c := pm.Pixel(x, y)
				if c.R > c.A || c.G > c.A || c.B > c.A {
					t.Fatalf("pixel (%d, %d) = %v is not premultiplied", x, y, c)
				}
				switch c.A {
				case 255:
					opaque++
				case 0:
					clear++
				}
			}
		}
		if opaque == 0 || clear == 0 {
			t.Errorf("expected a band over a transparent floor: opaque=%d clear=%d", opaque, clear)
		}
	}
}

func TestZeroAmplitudeIsTimeInvariantLive(t *testing.T) {
	hs := newHarness(t, 24, 24)
	hs.mount(t, aurora.DefaultParameters())
	hs.sched.Step(0)

	if err := hs.r.SetParameters(aurora.WithAmplitude(0)); err != nil {
		t.Fatal(err)
	}
	hs.sched.Step(time.Second)
	a := hs.snapshot(t)
	hs.sched.Step(9 * time.Second)
	b := hs.snapshot(t)

	if !a.Equal(b) {
		t.Error("frames differ over time with amplitude 0")
	}
	for y := 0; y < a.Height(); y++ {
		want := a.Pixel(0, y).A
		for x := 1; x < a.Width(); x++ {
			if got := a.Pixel(x, y).A; got != want {
				t.Fatalf("row %d: alpha %d at x=%d, want %d", y, got, x, want)
			}
		}
	}
}

// resizingViewport changes size once while an observer is being registered,
// as a host resize racing Mount would.
type resizingViewport struct {
	*host.Viewport
	w, h int
	once sync.Once
}

func (v *resizingViewport) OnResize(fn func(width, height int)) func() {
	v.once.Do(func() { v.SetSize(v.w, v.h) })
	return v.Viewport.OnResize(fn)
}

func TestMountPicksUpResizeDuringRegistration(t *testing.T) {
	vp := &resizingViewport{Viewport: host.NewViewport(10, 10), w: 40, h: 20}
	sched := host.NewManualScheduler()
	r := aurora.NewRenderer(vp, sched, aurora.WithBackend(&aurora.SoftwareBackend{Workers: 1}))
	if err := r.Mount(host.NewContainer(), aurora.DefaultParameters()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = r.Unmount() }()

	if w, h := r.Surface().Size(); w != 40 || h != 20 {
		t.Errorf("surface = %dx%d, want 40x20", w, h)
	}
	if res := r.Uniforms().Resolution; res[0] != 40 || res[1] != 20 {
		t.Errorf("resolution = %v, want [40 20]", res)
	}
}

// closingBackend is a software backend registered as "gpu" that counts
// Close calls.
type closingBackend struct {
	*aurora.SoftwareBackend
	closes int
}

func (b *closingBackend) Name() string { return aurora.BackendGPU }

func (b *closingBackend) Close() error {
	b.closes++
	return nil
}

func registerClosingGPU(t *testing.T) *[]*closingBackend {
	t.Helper()
	var created []*closingBackend
	aurora.RegisterBackend(aurora.BackendGPU, func() (aurora.Backend, error) {
		b := &closingBackend{SoftwareBackend: &aurora.SoftwareBackend{Workers: 1}}
		created = append(created, b)
		return b, nil
	})
	t.Cleanup(func() { aurora.UnregisterBackend(aurora.BackendGPU) })
	return &created
}

func TestUnmountClosesOwnedBackend(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []aurora.Option
	}{
		{"default", nil},
		{"by name", []aurora.Option{aurora.WithBackendName(aurora.BackendGPU)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			created := registerClosingGPU(t)
			vp, sched, c := host.NewViewport(8, 8), host.NewManualScheduler(), host.NewContainer()
			r := aurora.NewRenderer(vp, sched, tc.opts...)
			if len(*created) != 1 || r.Backend() != (*created)[0] {
				t.Fatalf("renderer did not resolve the registered gpu backend")
			}

			if err := r.Mount(c, aurora.DefaultParameters()); err != nil {
				t.Fatal(err)
			}
			if err := r.Unmount(); err != nil {
				t.Fatal(err)
			}
			if err := r.Unmount(); err != nil {
				t.Fatal(err)
			}
			if got := (*created)[0].closes; got != 1 {
				t.Errorf("backend closed %d times, want 1", got)
			}

			// Remounting resolves a fresh backend.
			if err := r.Mount(c, aurora.DefaultParameters()); err != nil {
				t.Fatal(err)
			}
			if len(*created) != 2 || r.Backend() != (*created)[1] {
				t.Fatalf("remount did not resolve a new backend")
			}
			if err := r.Unmount(); err != nil {
				t.Fatal(err)
			}
			if got := (*created)[1].closes; got != 1 {
				t.Errorf("second backend closed %d times, want 1", got)
			}
		})
	}
}

func TestUnmountLeavesCallerBackendOpen(t *testing.T) {
	b := &closingBackend{SoftwareBackend: &aurora.SoftwareBackend{Workers: 1}}
	r := aurora.NewRenderer(host.NewViewport(8, 8), host.NewManualScheduler(), aurora.WithBackend(b))
	if err := r.Mount(host.NewContainer(), aurora.DefaultParameters()); err != nil {
		t.Fatal(err)
	}
	if err := r.Unmount(); err != nil {
		t.Fatal(err)
	}
	if b.closes != 0 {
		t.Errorf("caller-owned backend closed %d times", b.closes)
	}
}
