package preprocess

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	apperrors "github.com/shivesh2334-ai/cxr-learning-app-2/internal/apperrors"
)

// Preprocessor runs the deterministic transform chain that turns a raw,
// validated buffer into normalized pixel grids:
//
//	decode -> grayscale (optional) -> resize -> CLAHE (optional) -> normalize
//
// Every invocation is independent; the type holds no state and is safe for
// concurrent use.
type Preprocessor struct{}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Result carries the two grids a pipeline invocation produces. Image is
// the fully processed output handed to the model. Film is the post-resize,
// pre-enhancement grid on a fixed 1/255 scale: quality prechecks read it,
// because min-max normalization always stretches Image to span [0,1] and
// would mask penetration and contrast problems.
type Result struct {
	Image *NormalizedImage
	Film  *NormalizedImage
}

// Run executes the pipeline. Any stage failure surfaces as a typed error
// naming the stage; a partial grid is never returned.
func (p *Preprocessor) Run(data []byte, opts Options) (*Result, error) {
	if opts.TargetWidth <= 0 || opts.TargetHeight <= 0 {
		return nil, apperrors.NewConfigurationError("resize target must have positive area", nil).
			WithDetails("stage=%s target=%dx%d", StageResize, opts.TargetWidth, opts.TargetHeight)
	}
	if opts.EnhanceContrast && (opts.CLAHEClipLimit <= 0 || opts.CLAHETileX <= 0 || opts.CLAHETileY <= 0) {
		return nil, apperrors.NewConfigurationError("CLAHE settings must be positive", nil).
			WithDetails("stage=%s clip=%g tiles=%dx%d", StageEnhance,
				opts.CLAHEClipLimit, opts.CLAHETileX, opts.CLAHETileY)
	}

	img, err := p.Decode(data)
	if err != nil {
		return nil, err
	}

	if opts.Grayscale {
		img = Grayscale(img)
	}

	img = Resize(img, opts.TargetWidth, opts.TargetHeight)

	film := scaleToUnit(Rasterize(img))

	if opts.EnhanceContrast {
		img = Enhance(img, opts.CLAHEClipLimit, opts.CLAHETileX, opts.CLAHETileY)
	}

	return &Result{
		Image: Normalize(Rasterize(img)),
		Film:  film,
	}, nil
}

// scaleToUnit maps 0..255 intensities onto [0,1] with a fixed divisor,
// preserving absolute brightness (unlike Normalize, which stretches).
func scaleToUnit(n *NormalizedImage) *NormalizedImage {
	for i, v := range n.Pix {
		n.Pix[i] = v / 255
	}
	return n
}

// Decode parses raw bytes into a pixel grid, honoring EXIF orientation.
// The buffer is decoded again even when upload validation already did,
// so callers that bypass validation get the same typed error.
func (p *Preprocessor) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperrors.NewDecodeError("image buffer cannot be parsed", err).
			WithDetails("stage=%s bytes=%d", StageDecode, len(data))
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, apperrors.NewDecodeError("decoded image has zero area", nil).
			WithDetails("stage=%s bounds=%v", StageDecode, bounds)
	}
	return img, nil
}

// Grayscale reduces the image to a single luminance channel using the
// ITU-R BT.601 weights (299, 587, 114 per mille). Integer arithmetic makes
// the conversion exact on already-gray input, so applying it twice yields
// the same pixels as applying it once.
func Grayscale(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		out := image.NewGray(gray.Bounds())
		copy(out.Pix, gray.Pix)
		return out
	}

	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			r8 := uint32(r >> 8)
			g8 := uint32(g >> 8)
			b8 := uint32(b >> 8)
			lum := (299*r8 + 587*g8 + 114*b8 + 500) / 1000
			out.Pix[out.PixOffset(x, y)] = uint8(lum)
		}
	}
	return out
}

// Resize scales to exactly width x height with bilinear interpolation. The
// contract is fixed output size, not fixed aspect ratio; callers wanting
// aspect preservation pad before or after. Output type follows the input
// channel count so a grayscale image stays single-channel.
func Resize(img image.Image, width, height int) image.Image {
	rect := image.Rect(0, 0, width, height)
	if _, ok := img.(*image.Gray); ok {
		dst := image.NewGray(rect)
		xdraw.BiLinear.Scale(dst, rect, img, img.Bounds(), xdraw.Src, nil)
		return dst
	}
	dst := image.NewNRGBA(rect)
	xdraw.BiLinear.Scale(dst, rect, img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Normalize min-max rescales intensities into [0,1]. The mapping is linear
// and monotonic, and because the output already spans [0,1], applying it
// again is a no-op up to floating-point rounding. A flat image maps to all
// zeros.
func Normalize(n *NormalizedImage) *NormalizedImage {
	min, max := n.Pix[0], n.Pix[0]
	for _, v := range n.Pix {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := &NormalizedImage{
		Width:    n.Width,
		Height:   n.Height,
		Channels: n.Channels,
		Pix:      make([]float64, len(n.Pix)),
	}
	if max == min {
		return out
	}
	scale := 1 / (max - min)
	for i, v := range n.Pix {
		out.Pix[i] = (v - min) * scale
	}
	return out
}
