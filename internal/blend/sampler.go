package blend

import (
	"fmt"
	"math"

	"github.com/anas-shakeel/go-bmp-blend/internal/bmp"
)

// Sampler selects how the smaller image is sampled at fractional coordinates
type Sampler int

const (
	// Bilinear blends the four integer neighbours, first along y, then along x.
	Bilinear Sampler = iota

	// Legacy reproduces the output of the first bmpblend releases: float32
	// arithmetic throughout, and a colour mixer that always returned its first
	// argument, so every sample is the neighbour at (floor(x), ceil(y)).
	Legacy
)

func (s Sampler) String() string {
	switch s {
	case Bilinear:
		return "bilinear"
	case Legacy:
		return "legacy"
	default:
		return fmt.Sprintf("Sampler(%d)", int(s))
	}
}

// ParseSampler maps a configuration name onto a Sampler
func ParseSampler(name string) (Sampler, error) {
	switch name {
	case "", "bilinear":
		return Bilinear, nil
	case "legacy":
		return Legacy, nil
	default:
		return 0, fmt.Errorf("unknown sampler %q", name)
	}
}

// Channel values kept as floats until the final truncation
type rgb struct {
	b, g, r float64
}

func toRGB(p bmp.Pixel) rgb {
	return rgb{b: float64(p.B), g: float64(p.G), r: float64(p.R)}
}

// a*(1-t) + b*t per channel
func lerp(a, b rgb, t float64) rgb {
	return rgb{
		b: a.b*(1-t) + b.b*t,
		g: a.g*(1-t) + b.g*t,
		r: a.r*(1-t) + b.r*t,
	}
}

// Reads a neighbour, pulling a coordinate that landed on width or height
// back onto the last column or row.
func clampedPixel(img *bmp.BitmapImage, x, y int) bmp.Pixel {
	if y >= img.Height() {
		y = img.Height() - 1
	}
	if x >= img.Width() {
		x = img.Width() - 1
	}
	return img.PixelAt(x, y)
}

// Samples img bilinearly at the fractional storage coordinate (x, y); both are >= 0
func bilinear(img *bmp.BitmapImage, x, y float64) rgb {
	x1, y1 := int(math.Floor(x)), int(math.Floor(y))
	x2, y2 := int(math.Ceil(x)), int(math.Ceil(y))
	dx, dy := x-float64(x1), y-float64(y1)

	left := lerp(toRGB(clampedPixel(img, x1, y1)), toRGB(clampedPixel(img, x1, y2)), dy)
	right := lerp(toRGB(clampedPixel(img, x2, y1)), toRGB(clampedPixel(img, x2, y2)), dy)
	return lerp(left, right, dx)
}
