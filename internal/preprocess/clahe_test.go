package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func narrowBandGray(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(100 + (x*3+y*5)%40)})
		}
	}
	return img
}

func grayRange(img *image.Gray) (uint8, uint8) {
	min, max := img.Pix[0], img.Pix[0]
	for _, p := range img.Pix {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max
}

func TestEnhance_PreservesShapeAndChannelCount(t *testing.T) {
	graySrc := narrowBandGray(64, 48)
	grayOut := Enhance(graySrc, 2.0, 8, 8)
	if _, ok := grayOut.(*image.Gray); !ok {
		t.Errorf("Expected *image.Gray out for gray input, got %T", grayOut)
	}
	if b := grayOut.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("Expected 64x48 bounds, got %v", b)
	}

	colorSrc := gradientColor(64, 48)
	colorOut := Enhance(colorSrc, 2.0, 8, 8)
	if _, ok := colorOut.(*image.NRGBA); !ok {
		t.Errorf("Expected *image.NRGBA out for color input, got %T", colorOut)
	}
	if b := colorOut.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("Expected 64x48 bounds, got %v", b)
	}
}

func TestEnhance_SpreadsNarrowHistogram(t *testing.T) {
	src := narrowBandGray(128, 128)
	srcMin, srcMax := grayRange(src)

	out := Enhance(src, 2.0, 8, 8).(*image.Gray)
	outMin, outMax := grayRange(out)

	if int(outMax)-int(outMin) <= int(srcMax)-int(srcMin) {
		t.Errorf("Expected equalization to widen the intensity range: src [%d,%d], out [%d,%d]",
			srcMin, srcMax, outMin, outMax)
	}
}

func TestEnhance_Deterministic(t *testing.T) {
	src := narrowBandGray(96, 96)

	a := Enhance(src, 2.0, 8, 8).(*image.Gray)
	b := Enhance(src, 2.0, 8, 8).(*image.Gray)

	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("Expected identical output across runs")
	}
}

func TestEnhance_SingleTileDegradesToGlobalEqualization(t *testing.T) {
	src := narrowBandGray(32, 32)

	out := Enhance(src, 4.0, 1, 1).(*image.Gray)

	if b := out.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("Expected bounds preserved with a 1x1 tile grid, got %v", b)
	}
}
