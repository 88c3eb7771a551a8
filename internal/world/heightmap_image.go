package world

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

// DecodeHeightmap reads a 16-bit single-channel grayscale PNG and decodes it
// into a dense meters grid using the build-time Hmin/Hmax contract shared
// with the baker (spec.md 6.2): v decodes to Hmin + v/65535*(Hmax-Hmin).
//
// Grounded on chunk-server/internal/world/preview.go, which is the teacher's
// own precedent for producing/consuming PNGs with the standard image
// package; no third-party image codec appears anywhere in the retrieval
// pack, so this is the one ambient I/O concern intentionally left on the
// standard library (see DESIGN.md).
func DecodeHeightmap(r io.Reader, hmin, hmax float32) (width, height int, heights []float32, err error) {
	img, err := png.Decode(r)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: decode heightmap png: %v", ErrIoMalformed, err)
	}
	gray, ok := img.(*image.Gray16)
	if !ok {
		bounds := img.Bounds()
		gray = image.NewGray16(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				gray.Set(x, y, color.Gray16Model.Convert(img.At(x, y)))
			}
		}
	}

	bounds := gray.Bounds()
	width = bounds.Dx()
	height = bounds.Dy()
	heights = make([]float32, width*height)

	scale := (hmax - hmin) / 65535
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := gray.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y
			heights[y*width+x] = hmin + float32(v)*scale
		}
	}
	return width, height, heights, nil
}

// EncodeHeightmap writes a dense meters grid as a 16-bit grayscale PNG,
// inverting DecodeHeightmap's mapping exactly (spec.md 6.2, 4.8).
func EncodeHeightmap(w io.Writer, width, height int, heights []float32, hmin, hmax float32) error {
	if len(heights) != width*height {
		return fmt.Errorf("heights length %d does not match %dx%d", len(heights), width, height)
	}
	img := image.NewGray16(image.Rect(0, 0, width, height))
	span := hmax - hmin
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			h := heights[y*width+x]
			u := encodeHeightSample(h, hmin, span)
			img.SetGray16(x, y, color.Gray16{Y: u})
		}
	}
	return png.Encode(w, img)
}

func encodeHeightSample(h, hmin, span float32) uint16 {
	if span <= 0 {
		return 0
	}
	frac := float64((h - hmin) / span)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return uint16(math.Round(frac * 65535))
}

// DecodeWalkmask reads an 8-bit single-channel grayscale PNG into a dense
// byte grid (spec.md 6.3); texel value > 127 means walkable.
func DecodeWalkmask(r io.Reader) (width, height int, mask []byte, err error) {
	img, err := png.Decode(r)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: decode walkmask png: %v", ErrIoMalformed, err)
	}
	bounds := img.Bounds()
	width = bounds.Dx()
	height = bounds.Dy()
	mask = make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			mask[y*width+x] = gray.Y
		}
	}
	return width, height, mask, nil
}

// EncodeWalkmask writes a dense byte grid as an 8-bit grayscale PNG.
func EncodeWalkmask(w io.Writer, width, height int, mask []byte) error {
	if len(mask) != width*height {
		return fmt.Errorf("mask length %d does not match %dx%d", len(mask), width, height)
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: mask[y*width+x]})
		}
	}
	return png.Encode(w, img)
}
