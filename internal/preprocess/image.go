package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

// NormalizedImage is the canonical pixel grid handed to downstream
// consumers: fixed dimensions, 1 or 3 channels, intensities in [0,1].
// It is owned by the invocation that produced it and never mutated after.
type NormalizedImage struct {
	Width    int
	Height   int
	Channels int
	// Pix is row-major and channel-interleaved, len = Width*Height*Channels.
	Pix []float64
}

// At returns the intensity of channel c at (x, y).
func (n *NormalizedImage) At(x, y, c int) float64 {
	return n.Pix[(y*n.Width+x)*n.Channels+c]
}

// Clone returns a deep copy.
func (n *NormalizedImage) Clone() *NormalizedImage {
	pix := make([]float64, len(n.Pix))
	copy(pix, n.Pix)
	return &NormalizedImage{Width: n.Width, Height: n.Height, Channels: n.Channels, Pix: pix}
}

// Equal reports whether two grids match within tol on every sample.
func (n *NormalizedImage) Equal(other *NormalizedImage, tol float64) bool {
	if other == nil || n.Width != other.Width || n.Height != other.Height ||
		n.Channels != other.Channels || len(n.Pix) != len(other.Pix) {
		return false
	}
	for i := range n.Pix {
		if math.Abs(n.Pix[i]-other.Pix[i]) > tol {
			return false
		}
	}
	return true
}

// EncodePNG renders the grid back to an 8-bit PNG, the wire form the
// analysis gateway sends to the hosted model.
func (n *NormalizedImage) EncodePNG() ([]byte, error) {
	var img image.Image
	if n.Channels == 1 {
		gray := image.NewGray(image.Rect(0, 0, n.Width, n.Height))
		for y := 0; y < n.Height; y++ {
			for x := 0; x < n.Width; x++ {
				gray.SetGray(x, y, color.Gray{Y: toByte(n.At(x, y, 0))})
			}
		}
		img = gray
	} else {
		rgba := image.NewNRGBA(image.Rect(0, 0, n.Width, n.Height))
		for y := 0; y < n.Height; y++ {
			for x := 0; x < n.Width; x++ {
				rgba.SetNRGBA(x, y, color.NRGBA{
					R: toByte(n.At(x, y, 0)),
					G: toByte(n.At(x, y, 1)),
					B: toByte(n.At(x, y, 2)),
					A: 255,
				})
			}
		}
		img = rgba
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toByte(v float64) uint8 {
	scaled := math.Round(v * 255)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}

// Rasterize converts a decoded image into an un-normalized float grid with
// intensities still on the 0..255 scale. Grayscale sources map to a single
// channel, everything else to three.
func Rasterize(img image.Image) *NormalizedImage {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if gray, ok := img.(*image.Gray); ok {
		pix := make([]float64, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				pix[y*w+x] = float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
		return &NormalizedImage{Width: w, Height: h, Channels: 1, Pix: pix}
	}

	pix := make([]float64, w*h*3)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pix[i] = float64(r >> 8)
			pix[i+1] = float64(g >> 8)
			pix[i+2] = float64(b >> 8)
			i += 3
		}
	}
	return &NormalizedImage{Width: w, Height: h, Channels: 3, Pix: pix}
}
