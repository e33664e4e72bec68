package aurora

// Option configures a Renderer during creation.
//
// Example:
//
//	// Default backend (GPU when registered, software otherwise)
//	r := aurora.NewRenderer(viewport, scheduler)
//
//	// Explicit backend
//	r := aurora.NewRenderer(viewport, scheduler, aurora.WithBackend(aurora.NewSoftwareBackend()))
type Option func(*options)

// options holds optional configuration for Renderer creation. Exactly one
// of backend and resolve is set; a resolved backend is owned by the
// renderer.
type options struct {
	backend Backend
	resolve func() Backend
	label   string
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		resolve: DefaultBackend,
	}
}

// WithBackend sets the backend that creates the renderer's surfaces.
// The caller keeps ownership of b and closes it when done.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
		o.resolve = nil
	}
}

// WithBackendName selects a registered backend by name. Unknown names fall
// back to DefaultBackend with a warning. The renderer owns the backend it
// creates and closes it on Unmount.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backend = nil
		o.resolve = func() Backend {
			b, err := LookupBackend(name)
			if err != nil {
				Logger().Warn("backend lookup failed, using default", "backend", name, "err", err)
				return DefaultBackend()
			}
			return b
		}
	}
}

// WithLabel sets the debug label used for surface resources and logs.
// The default label is the renderer's id.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
