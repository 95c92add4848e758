package blend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anas-shakeel/go-bmp-blend/internal/bmp"
)

func newBitmap(t *testing.T, width, height int, fill func(x, y int) bmp.Pixel) *bmp.BitmapImage {
	t.Helper()
	b, err := bmp.CreateBitmap(width, height)
	require.NoError(t, err)
	for y := range height {
		for x := range width {
			b.SetPixelAt(x, y, fill(x, y))
		}
	}
	return b
}

func solid(p bmp.Pixel) func(x, y int) bmp.Pixel {
	return func(x, y int) bmp.Pixel { return p }
}

func pattern(x, y int) bmp.Pixel {
	return bmp.Pixel{B: byte(x*37 + y*11), G: byte(x*5 + y*61), R: byte(x * y * 13)}
}

func TestCombineRatioOneKeepsFirstImage(t *testing.T) {
	large := newBitmap(t, 7, 5, pattern)
	small := newBitmap(t, 3, 2, solid(bmp.Pixel{B: 9, G: 99, R: 199}))

	combined, err := Combine(large, small, 1.0, Options{})
	require.NoError(t, err)

	assert.Equal(t, large.BFHeader, combined.BFHeader)
	assert.Equal(t, large.BIHeader, combined.BIHeader)
	assert.Equal(t, large.Pix(), combined.Pix())
}

func TestCombineRatioZeroResamplesSmallImage(t *testing.T) {
	small := newBitmap(t, 2, 2, func(x, y int) bmp.Pixel {
		return bmp.Pixel{B: byte(x * 100), G: byte(y * 200)}
	})
	large := newBitmap(t, 4, 4, solid(bmp.Pixel{B: 255, G: 255, R: 255}))

	combined, err := Combine(large, small, 0.0, Options{})
	require.NoError(t, err)

	// Columns sample at 0, 0.5, 1, 1.5; the last one needs column 2 and is clamped
	wantB := []byte{0, 50, 100, 100}
	// Rows sample at 0, 0.5, 1, 1.5; the last one needs row 2 and falls back to row 1
	wantG := []byte{0, 100, 200, 200}

	for y := range 4 {
		for x := range 4 {
			assert.Equal(t, bmp.Pixel{B: wantB[x], G: wantG[y]}, combined.PixelAt(x, y), "pixel (%d, %d)", x, y)
		}
	}
}

func TestCombineOrderInvariance(t *testing.T) {
	narrow := newBitmap(t, 3, 4, pattern)
	wide := newBitmap(t, 8, 6, func(x, y int) bmp.Pixel { return pattern(y, x) })

	for _, r := range []float64{0, 0.1, 0.3, 0.5, 0.77, 1} {
		one, err := Combine(narrow, wide, r, Options{})
		require.NoError(t, err)
		two, err := Combine(wide, narrow, 1-r, Options{})
		require.NoError(t, err)

		assert.Equal(t, two.Pix(), one.Pix(), "ratio %v", r)
		assert.Equal(t, wide.BIHeader, one.BIHeader)
	}
}

func TestCombineRatioWeighsFirstArgument(t *testing.T) {
	narrow := newBitmap(t, 2, 2, solid(bmp.Pixel{B: 200, G: 200, R: 200}))
	wide := newBitmap(t, 4, 4, solid(bmp.Pixel{B: 100, G: 100, R: 100}))

	// 200*0.25 + 100*0.75 whichever image is wider
	combined, err := Combine(narrow, wide, 0.25, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, combined.Width())
	assert.Equal(t, bmp.Pixel{B: 125, G: 125, R: 125}, combined.PixelAt(2, 3))

	combined, err = Combine(wide, narrow, 0.75, Options{})
	require.NoError(t, err)
	assert.Equal(t, bmp.Pixel{B: 125, G: 125, R: 125}, combined.PixelAt(2, 3))
}

func TestCombineIdenticalSizeIsWeightedAverage(t *testing.T) {
	one := newBitmap(t, 5, 3, pattern)
	two := newBitmap(t, 5, 3, func(x, y int) bmp.Pixel { return pattern(y+2, x+1) })
	ratio := 0.3

	combined, err := Combine(one, two, ratio, Options{})
	require.NoError(t, err)

	weigh := func(a, b byte) byte {
		return byte(float64(a)*ratio + float64(b)*(1-ratio))
	}
	for y := range 3 {
		for x := range 5 {
			a, b := one.PixelAt(x, y), two.PixelAt(x, y)
			want := bmp.Pixel{B: weigh(a.B, b.B), G: weigh(a.G, b.G), R: weigh(a.R, b.R)}
			assert.Equal(t, want, combined.PixelAt(x, y), "pixel (%d, %d)", x, y)
		}
	}
}

func TestCombineTruncates(t *testing.T) {
	one := newBitmap(t, 1, 1, solid(bmp.Pixel{B: 10, G: 255, R: 1}))
	two := newBitmap(t, 1, 1, solid(bmp.Pixel{B: 3, G: 254, R: 0}))

	combined, err := Combine(one, two, 0.5, Options{})
	require.NoError(t, err)
	// 6.5, 254.5, 0.5
	assert.Equal(t, bmp.Pixel{B: 6, G: 254, R: 0}, combined.PixelAt(0, 0))
}

func TestCombineDoesNotAliasInputs(t *testing.T) {
	large := newBitmap(t, 4, 2, pattern)
	small := newBitmap(t, 2, 1, pattern)
	largePix := append([]byte(nil), large.Pix()...)
	smallPix := append([]byte(nil), small.Pix()...)

	combined, err := Combine(large, small, 0.5, Options{})
	require.NoError(t, err)
	combined.SetPixelAt(0, 0, bmp.Pixel{B: 1, G: 1, R: 1})

	assert.Equal(t, largePix, large.Pix())
	assert.Equal(t, smallPix, small.Pix())
}

func TestCombinePaddingIsZeroed(t *testing.T) {
	large := newBitmap(t, 5, 2, solid(bmp.Pixel{B: 1, G: 2, R: 3}))
	// Dirty the padding byte of each row
	large.Pix()[15] = 0xff
	large.Pix()[31] = 0xff
	small := newBitmap(t, 1, 1, solid(bmp.Pixel{}))

	combined, err := Combine(large, small, 1, Options{})
	require.NoError(t, err)
	assert.Equal(t, byte(0), combined.Pix()[15])
	assert.Equal(t, byte(0), combined.Pix()[31])
}

func TestCombineInvalidRatio(t *testing.T) {
	one := newBitmap(t, 2, 2, pattern)
	two := newBitmap(t, 1, 1, pattern)

	for _, r := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		_, err := Combine(one, two, r, Options{})
		assert.ErrorIs(t, err, ErrInvalidRatio, "ratio %v", r)
	}
}

func TestCombineWorkersMatchSequential(t *testing.T) {
	large := newBitmap(t, 13, 11, pattern)
	small := newBitmap(t, 5, 4, func(x, y int) bmp.Pixel { return pattern(y*3, x+7) })

	want, err := Combine(large, small, 0.4, Options{})
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 2, 3, 4, 11, 64} {
		got, err := Combine(large, small, 0.4, Options{Workers: workers})
		require.NoError(t, err)
		assert.Equal(t, want.Pix(), got.Pix(), "workers %d", workers)
	}
}

func TestCombineLegacySampler(t *testing.T) {
	small := newBitmap(t, 2, 2, func(x, y int) bmp.Pixel {
		return bmp.Pixel{B: byte(10 + x), G: byte(20 + y)}
	})
	large := newBitmap(t, 4, 4, solid(bmp.Pixel{}))

	combined, err := Combine(large, small, 0, Options{Sampler: Legacy})
	require.NoError(t, err)

	// Every output pixel copies small's (floor(sx), ceil(sy)) neighbour
	columns := []int{0, 0, 1, 1} // floor of 0, 0.5, 1, 1.5
	rows := []int{0, 1, 1, 1}    // ceil of 0, 0.5, 1, 1.5 (2 falls back to 1)
	for y := range 4 {
		for x := range 4 {
			assert.Equal(t, small.PixelAt(columns[x], rows[y]), combined.PixelAt(x, y), "pixel (%d, %d)", x, y)
		}
	}

	smooth, err := Combine(large, small, 0, Options{Sampler: Bilinear})
	require.NoError(t, err)
	assert.NotEqual(t, smooth.Pix(), combined.Pix())
}

func TestCombineLegacyUsesFloat32Coordinates(t *testing.T) {
	levels := []byte{10, 60, 110, 160, 210}
	small := newBitmap(t, 1, 5, func(x, y int) bmp.Pixel {
		return bmp.Pixel{B: levels[y], G: levels[y]}
	})
	large := newBitmap(t, 1, 35, solid(bmp.Pixel{}))

	combined, err := Combine(large, small, 0, Options{Sampler: Legacy})
	require.NoError(t, err)

	// 21 * (5/35) is 3.0000002 in float32, so row 21 already reads row 4
	want := func(y int) byte {
		switch {
		case y == 0:
			return 10
		case y <= 7:
			return 60
		case y <= 14:
			return 110
		case y <= 20:
			return 160
		default:
			return 210
		}
	}
	for y := range 35 {
		assert.Equal(t, want(y), combined.PixelAt(0, y).B, "row %d", y)
	}

	smooth, err := Combine(large, small, 0, Options{Sampler: Bilinear})
	require.NoError(t, err)
	assert.Equal(t, byte(160), smooth.PixelAt(0, 21).B)
}

func TestCombineLegacyMixesInFloat32(t *testing.T) {
	one := newBitmap(t, 1, 1, solid(bmp.Pixel{}))
	two := newBitmap(t, 1, 1, solid(bmp.Pixel{B: 90, G: 170, R: 85}))

	legacy, err := Combine(one, two, 0.3, Options{Sampler: Legacy})
	require.NoError(t, err)
	assert.Equal(t, bmp.Pixel{B: 63, G: 119, R: 59}, legacy.PixelAt(0, 0))

	smooth, err := Combine(one, two, 0.3, Options{})
	require.NoError(t, err)
	assert.Equal(t, bmp.Pixel{B: 62, G: 118, R: 59}, smooth.PixelAt(0, 0))
}
