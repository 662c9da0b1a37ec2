package orbital

// Option configures an Engine during creation.
//
// Example:
//
//	// Default 600x600 orbital viewer
//	eng, err := orbital.New(atlases)
//
//	// Turnstile viewer on a shared device
//	eng, err := orbital.New(atlases,
//		orbital.WithRenderMode(orbital.ModeTurnstile),
//		orbital.WithDeviceProvider(app))
type Option func(*engineOptions)

type engineOptions struct {
	width          int
	height         int
	sensitivity    float64
	pitchSens      float64
	friction       float64
	lumaThreshold  float32
	mode           RenderMode
	productLabel   string
	deviceProvider any
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		width:         600,
		height:        600,
		sensitivity:   DefaultSensitivity,
		pitchSens:     DefaultPitchSensitivity,
		friction:      DefaultFriction,
		lumaThreshold: DefaultLumaThreshold,
		mode:          ModeOrbital,
	}
}

// WithSize sets the render target size in pixels. Non-positive values
// are ignored.
func WithSize(width, height int) Option {
	return func(o *engineOptions) {
		if width > 0 && height > 0 {
			o.width = width
			o.height = height
		}
	}
}

// WithSensitivity sets the horizontal drag sensitivity in radians per
// pixel.
func WithSensitivity(radiansPerPixel float64) Option {
	return func(o *engineOptions) {
		o.sensitivity = radiansPerPixel
	}
}

// WithPitchSensitivity sets the vertical drag sensitivity in degrees
// per pixel.
func WithPitchSensitivity(degreesPerPixel float64) Option {
	return func(o *engineOptions) {
		o.pitchSens = degreesPerPixel
	}
}

// WithFriction sets the per-step coast damping factor in (0, 1).
func WithFriction(friction float64) Option {
	return func(o *engineOptions) {
		o.friction = friction
	}
}

// WithLumaThreshold sets the background key cutoff. Pixels whose
// luminance exceeds the threshold become fully transparent.
func WithLumaThreshold(threshold float32) Option {
	return func(o *engineOptions) {
		if threshold > 0 && threshold <= 1 {
			o.lumaThreshold = threshold
		}
	}
}

// WithRenderMode selects the initial render mode.
func WithRenderMode(mode RenderMode) Option {
	return func(o *engineOptions) {
		o.mode = mode
	}
}

// WithProductLabel attaches a display label carried through to
// snapshots. Purely informational.
func WithProductLabel(label string) Option {
	return func(o *engineOptions) {
		o.productLabel = label
	}
}

// WithDeviceProvider makes the engine render on a shared GPU device
// instead of acquiring its own. The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue, the convention used by gogpu applications. Providers
// that do not expose HAL types are ignored and the engine falls back
// to its own device.
func WithDeviceProvider(provider any) Option {
	return func(o *engineOptions) {
		o.deviceProvider = provider
	}
}
