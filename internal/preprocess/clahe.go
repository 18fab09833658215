package preprocess

import (
	"image"
	"image/color"
	"math"
)

// Enhance applies contrast-limited adaptive histogram equalization. The
// luminance plane is equalized tile by tile with the clipped histogram
// excess redistributed, then per-pixel values are bilinearly interpolated
// between the surrounding tile mappings to avoid tile seams.
//
// Dimensions and channel count are preserved: a three-channel input comes
// back as three channels carrying the equalized luminance, matching how
// radiographs are enhanced before review.
func Enhance(img image.Image, clipLimit float64, tilesX, tilesY int) image.Image {
	gray, wasGray := img.(*image.Gray)
	if !wasGray {
		gray = Grayscale(img)
	}

	enhanced := claheGray(gray, clipLimit, tilesX, tilesY)
	if wasGray {
		return enhanced
	}

	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := enhanced.GrayAt(x, y).Y
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

func claheGray(src *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if tilesX > w {
		tilesX = w
	}
	if tilesY > h {
		tilesY = h
	}

	tileW := (w + tilesX - 1) / tilesX
	tileH := (h + tilesY - 1) / tilesY

	// One remapping table per tile, built from its clipped histogram.
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := minInt(x0+tileW, w), minInt(y0+tileH, h)
			luts[ty*tilesX+tx] = tileLUT(src, bounds, x0, y0, x1, y1, clipLimit)
		}
	}

	out := image.NewGray(bounds)
	for y := 0; y < h; y++ {
		// Position in tile-center coordinates for vertical interpolation.
		gy := (float64(y)+0.5)/float64(tileH) - 0.5
		iy := int(math.Floor(gy))
		fy := gy - float64(iy)
		y0 := clampInt(iy, 0, tilesY-1)
		y1 := clampInt(iy+1, 0, tilesY-1)

		for x := 0; x < w; x++ {
			gx := (float64(x)+0.5)/float64(tileW) - 0.5
			ix := int(math.Floor(gx))
			fx := gx - float64(ix)
			x0 := clampInt(ix, 0, tilesX-1)
			x1 := clampInt(ix+1, 0, tilesX-1)

			v := src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y
			tl := float64(luts[y0*tilesX+x0][v])
			tr := float64(luts[y0*tilesX+x1][v])
			bl := float64(luts[y1*tilesX+x0][v])
			br := float64(luts[y1*tilesX+x1][v])

			top := tl + (tr-tl)*fx
			bottom := bl + (br-bl)*fx
			out.Pix[y*out.Stride+x] = uint8(math.Round(top + (bottom-top)*fy))
		}
	}
	return out
}

// tileLUT builds the equalization mapping for one tile: histogram, clip at
// clipLimit times the uniform bin height, spread the excess evenly, then
// turn the CDF into a 0..255 mapping.
func tileLUT(src *image.Gray, bounds image.Rectangle, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y]++
		}
	}

	count := (x1 - x0) * (y1 - y0)
	var lut [256]uint8
	if count == 0 {
		return lut
	}

	clip := int(clipLimit * float64(count) / 256)
	if clip < 1 {
		clip = 1
	}

	excess := 0
	for i := range hist {
		if hist[i] > clip {
			excess += hist[i] - clip
			hist[i] = clip
		}
	}

	bonus := excess / 256
	residual := excess % 256
	for i := range hist {
		hist[i] += bonus
		if i < residual {
			hist[i]++
		}
	}

	cdf := 0
	for i := range hist {
		cdf += hist[i]
		lut[i] = uint8(math.Round(float64(cdf) * 255 / float64(count)))
	}
	return lut
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
