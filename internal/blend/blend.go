// Package blend resamples one bitmap onto another's pixel grid and
// linearly mixes their colours.
package blend

import (
	"math"
	"sync"

	"github.com/anas-shakeel/go-bmp-blend/internal/bmp"
	"github.com/anas-shakeel/go-bmp-blend/internal/utils"
)

// ErrInvalidRatio is returned when the ratio lies outside [0, 1].
var ErrInvalidRatio = utils.ErrInvalidRatio

type Options struct {
	Sampler Sampler

	// Output rows are split into this many bands evaluated concurrently.
	// Zero or one evaluates every row in order on the calling goroutine.
	Workers int
}

// Combine blends two bitmaps into a new one shaped like the wider of them.
// ratio is the weight of one's colours, whichever image is larger; two gets 1-ratio.
func Combine(one, two *bmp.BitmapImage, ratio float64, opts Options) (*bmp.BitmapImage, error) {
	if err := utils.ValidateRatio(ratio); err != nil {
		return nil, err
	}

	if one.Width() >= two.Width() {
		return combineImageData(one, two, ratio, false, opts), nil
	}
	return combineImageData(two, one, ratio, true, opts), nil
}

// large defines the output grid. ratio is the weight of the first caller-supplied
// image; swapped means that image is small, so large's own weight is 1-ratio.
func combineImageData(large, small *bmp.BitmapImage, ratio float64, swapped bool, opts Options) *bmp.BitmapImage {
	combined := large.Blank()
	width, height := large.Width(), large.Height()

	var blendPixel func(x, y int) bmp.Pixel
	switch opts.Sampler {
	case Legacy:
		largeRatio := float32(ratio)
		if swapped {
			largeRatio = 1 - largeRatio
		}
		blendPixel = legacyBlender(large, small, largeRatio)
	default:
		largeRatio := ratio
		if swapped {
			largeRatio = 1 - ratio
		}
		blendPixel = bilinearBlender(large, small, largeRatio)
	}

	blendRows := func(start, end int) {
		for y := start; y < end; y++ {
			for x := range width {
				combined.SetPixelAt(x, y, blendPixel(x, y))
			}
		}
	}

	workers := min(opts.Workers, height)
	if workers <= 1 {
		blendRows(0, height)
		return combined
	}

	// Every band writes its own rows of the output buffer
	band := (height + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < height; start += band {
		end := min(start+band, height)
		wg.Go(func() { blendRows(start, end) })
	}
	wg.Wait()

	return combined
}

// Samples small bilinearly at each output pixel and mixes in float64
func bilinearBlender(large, small *bmp.BitmapImage, ratio float64) func(x, y int) bmp.Pixel {
	widthRatio := float64(small.Width()) / float64(large.Width())
	heightRatio := float64(small.Height()) / float64(large.Height())

	return func(x, y int) bmp.Pixel {
		thisColor := toRGB(large.PixelAt(x, y))
		otherColor := bilinear(small, float64(x)*widthRatio, float64(y)*heightRatio)
		return mixColors(thisColor, otherColor, ratio)
	}
}

// this*ratio + other*(1-ratio) per channel, truncated to 8 bits
func mixColors(this, other rgb, ratio float64) bmp.Pixel {
	mixed := lerp(other, this, ratio)
	return bmp.Pixel{
		B: toByte(mixed.b),
		G: toByte(mixed.g),
		R: toByte(mixed.r),
	}
}

// Truncates toward zero; the clamp only absorbs float error around 255
func toByte(v float64) byte {
	return byte(math.Min(math.Max(v, 0), 255))
}
