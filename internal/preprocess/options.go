package preprocess

// Stage names the pipeline step a failure originated from.
type Stage string

const (
	StageDecode    Stage = "decode"
	StageGrayscale Stage = "grayscale"
	StageResize    Stage = "resize"
	StageEnhance   Stage = "enhance"
	StageNormalize Stage = "normalize"
)

// Options configures the preprocessing pipeline. Each field gates or tunes
// exactly one stage; zero-value fields take the documented defaults via
// DefaultOptions.
type Options struct {
	TargetWidth  int
	TargetHeight int

	Grayscale       bool
	EnhanceContrast bool

	CLAHEClipLimit float64
	CLAHETileX     int
	CLAHETileY     int
}

// DefaultOptions returns the settings the training material was authored
// against: 1024x1024 output, CLAHE clip limit 2.0 on an 8x8 tile grid,
// grayscale and enhancement enabled.
func DefaultOptions() Options {
	return Options{
		TargetWidth:     1024,
		TargetHeight:    1024,
		Grayscale:       true,
		EnhanceContrast: true,
		CLAHEClipLimit:  2.0,
		CLAHETileX:      8,
		CLAHETileY:      8,
	}
}

// WithTarget returns options resized to the given output dimensions.
func (o Options) WithTarget(width, height int) Options {
	o.TargetWidth = width
	o.TargetHeight = height
	return o
}

// WithoutEnhancement disables the CLAHE stage.
func (o Options) WithoutEnhancement() Options {
	o.EnhanceContrast = false
	return o
}

// WithColor keeps all three channels through the pipeline.
func (o Options) WithColor() Options {
	o.Grayscale = false
	return o
}
