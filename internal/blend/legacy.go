package blend

import (
	"math"

	"github.com/anas-shakeel/go-bmp-blend/internal/bmp"
)

// Blends in float32 the way the first releases of bmpblend did. Every product
// is converted explicitly so the compiler cannot fuse it into a multiply-add.
func legacyBlender(large, small *bmp.BitmapImage, ratio float32) func(x, y int) bmp.Pixel {
	widthRatio := float32(small.Width()) / float32(large.Width())
	heightRatio := float32(small.Height()) / float32(large.Height())

	return func(x, y int) bmp.Pixel {
		this := large.PixelAt(x, y)
		other := legacySample(small, float32(float32(x)*widthRatio), float32(float32(y)*heightRatio))
		return bmp.Pixel{
			B: mix32(this.B, other.B, ratio),
			G: mix32(this.G, other.G, ratio),
			R: mix32(this.R, other.R, ratio),
		}
	}
}

// The neighbour at (floor x, ceil y), passed twice through a mixer that
// weighs a colour against itself
func legacySample(img *bmp.BitmapImage, x, y float32) bmp.Pixel {
	x1 := float32(math.Floor(float64(x)))
	y1 := float32(math.Floor(float64(y)))
	y2 := float32(math.Ceil(float64(y)))
	dx, dy := x-x1, y-y1

	p := clampedPixel(img, int(x1), int(y2))
	p = bmp.Pixel{B: mixSelf(p.B, dy), G: mixSelf(p.G, dy), R: mixSelf(p.R, dy)}
	return bmp.Pixel{B: mixSelf(p.B, dx), G: mixSelf(p.G, dx), R: mixSelf(p.R, dx)}
}

// c*(1-ratio) + c*ratio in float32, truncated
func mixSelf(c byte, ratio float32) byte {
	return toByte(float64(float32(float32(c)*(1-ratio)) + float32(float32(c)*ratio)))
}

// this*ratio + other*(1-ratio) in float32, truncated
func mix32(this, other byte, ratio float32) byte {
	return toByte(float64(float32(float32(this)*ratio) + float32(float32(other)*(1-ratio))))
}
