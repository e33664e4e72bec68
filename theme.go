package aurora

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Theme is the page color scheme the aurora is tinted for.
type Theme uint8

// Themes.
const (
	ThemeDark Theme = iota
	ThemeLight
)

// String returns "dark" or "light".
func (t Theme) String() string {
	switch t {
	case ThemeDark:
		return "dark"
	case ThemeLight:
		return "light"
	default:
		return fmt.Sprintf("Theme(%d)", uint8(t))
	}
}

// ParseTheme parses "dark" or "light", ignoring case and surrounding space.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dark":
		return ThemeDark, nil
	case "light":
		return ThemeLight, nil
	}
	return ThemeDark, fmt.Errorf("aurora: unknown theme %q", s)
}

// ResolveTheme picks the initial theme: a saved preference wins, otherwise
// the system preference decides.
func ResolveTheme(saved string, systemPrefersDark bool) Theme {
	if t, err := ParseTheme(saved); err == nil {
		return t
	}
	if systemPrefersDark {
		return ThemeDark
	}
	return ThemeLight
}

// ThemeState holds the current theme and notifies subscribers on change.
// It is safe for concurrent use.
type ThemeState struct {
	mu     sync.Mutex
	theme  Theme
	nextID int
	subs   map[int]func(Theme)
}

// NewThemeState returns a state starting at initial.
func NewThemeState(initial Theme) *ThemeState {
	return &ThemeState{theme: initial, subs: make(map[int]func(Theme))}
}

// Current returns the current theme.
func (s *ThemeState) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Set changes the theme. Subscribers are notified only when it differs
// from the current one.
func (s *ThemeState) Set(t Theme) {
	s.mu.Lock()
	if s.theme == t {
		s.mu.Unlock()
		return
	}
	s.theme = t
	subs := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(t)
	}
}

// Toggle flips between dark and light and returns the new theme.
func (s *ThemeState) Toggle() Theme {
	next := ThemeLight
	if s.Current() == ThemeLight {
		next = ThemeDark
	}
	s.Set(next)
	return next
}

// Subscribe registers fn for theme changes. fn runs on the goroutine
// calling Set, outside the state's lock. The returned function removes it.
func (s *ThemeState) Subscribe(fn func(Theme)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(Theme))
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *ThemeState) snapshotLocked() []func(Theme) {
	out := make([]func(Theme), 0, len(s.subs))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

// Palette holds the parameters used for each theme.
type Palette struct {
	Dark  Parameters
	Light Parameters
}

// DefaultPalette returns the muted slate and lavender palettes used behind
// the landing page.
func DefaultPalette() Palette {
	return Palette{
		Dark: Parameters{
			ColorStops: MustParseColorStops("#abb6ca", "#44484e", "#32373f"),
			Amplitude:  1.2,
			Blend:      0.6,
			Speed:      0.8,
		},
		Light: Parameters{
			ColorStops: MustParseColorStops("#cddaff", "#d2d4e4", "#dac8f0"),
			Amplitude:  1.2,
			Blend:      0.6,
			Speed:      0.8,
		},
	}
}

// For returns the parameters for t.
func (p Palette) For(t Theme) Parameters {
	if t == ThemeLight {
		return p.Light
	}
	return p.Dark
}

// Validate checks both palettes.
func (p Palette) Validate() error {
	if err := p.Dark.Validate(); err != nil {
		return fmt.Errorf("dark palette: %w", err)
	}
	if err := p.Light.Validate(); err != nil {
		return fmt.Errorf("light palette: %w", err)
	}
	return nil
}

// BindTheme keeps r's parameters in step with state. The current theme's
// parameters are applied immediately if r is mounted, and again on every
// change. Changes while r is unmounted are skipped; the caller mounts with
// palette.For(state.Current()).
func BindTheme(r *Renderer, state *ThemeState, palette Palette) (unbind func()) {
	apply := func(t Theme) {
		err := r.SetParameters(WithParameters(palette.For(t)))
		switch {
		case err == nil:
			r.log.Debug("theme applied", "theme", t.String())
		case errors.Is(err, ErrNotMounted):
		default:
			r.log.Warn("theme parameters rejected", "theme", t.String(), "err", err)
		}
	}
	apply(state.Current())
	return state.Subscribe(apply)
}
