// bmp package implements a 24-bit bitmap reader and writer
package bmp

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/anas-shakeel/go-bmp-blend/internal/utils"
)

const (
	BlueOffset  = 0 // Channel offsets inside a stored pixel (BGR)
	GreenOffset = 1
	RedOffset   = 2

	bytesPerPixel = 3

	// Refuse headers that would make us allocate more than this for pixels
	maxPixelBytes = 1 << 30

	// Larger DIB headers and colour tables fit in far less than this
	maxGapBytes = 1 << 16
)

type Pixel struct {
	B, G, R byte
}

// BitmapImage owns the headers and the raw (padded) pixel buffer of a
// 24-bit bitmap. Rows are kept in storage order: for a positive height
// row 0 is the bottom row of the picture.
type BitmapImage struct {
	Filename string
	BFHeader BitmapFileHeader
	BIHeader BitmapInfoHeader

	gap    []byte // bytes between the headers and OffBits, kept verbatim
	stride int
	pixels []byte
}

// Checks that the info header describes something we can hold
func validateInfoHeader(biHeader *BitmapInfoHeader) error {
	// Support only 24bit uncompressed Bitmaps (common)
	if biHeader.BitCount != 24 || biHeader.Compression != 0 {
		return fmt.Errorf("%w (bit count %d, compression %d)", ErrUnsupportedFormat, biHeader.BitCount, biHeader.Compression)
	}
	if biHeader.Width <= 0 || biHeader.Height == 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedFormat, biHeader.Width, biHeader.Height)
	}
	stride := RowStride(int(biHeader.BitCount), int(biHeader.Width))
	if int64(stride)*absInt64(int64(biHeader.Height)) > maxPixelBytes {
		return fmt.Errorf("%w: %dx%d is too large", ErrUnsupportedFormat, biHeader.Width, biHeader.Height)
	}
	return nil
}

// Bytes between the end of the info header and OffBits
func gapLength(bfHeader *BitmapFileHeader) (int, error) {
	gapLen := int64(bfHeader.OffBits) - FileHeaderSize - InfoHeaderSize
	if gapLen > maxGapBytes {
		return 0, fmt.Errorf("%w: pixel data offset %d is too far past the headers", ErrUnsupportedFormat, bfHeader.OffBits)
	}
	return int(max(gapLen, 0)), nil
}

// Creates an image with the given headers and a zeroed pixel buffer sized from them
func NewFromHeaders(bfHeader BitmapFileHeader, biHeader BitmapInfoHeader) (*BitmapImage, error) {
	if err := validateInfoHeader(&biHeader); err != nil {
		return nil, err
	}
	gapLen, err := gapLength(&bfHeader)
	if err != nil {
		return nil, err
	}

	stride := RowStride(int(biHeader.BitCount), int(biHeader.Width))
	height := int(absInt64(int64(biHeader.Height)))

	b := &BitmapImage{
		BFHeader: bfHeader,
		BIHeader: biHeader,
		stride:   stride,
		pixels:   make([]byte, stride*height),
	}
	if gapLen > 0 {
		b.gap = make([]byte, gapLen)
	}
	return b, nil
}

// Creates and returns a bitmap image (24 bit uncompressed)
func CreateBitmap(width, height int) (*BitmapImage, error) {
	if width <= 0 {
		return nil, errors.New("width must be greater than 0")
	} else if height <= 0 {
		return nil, errors.New("height must be greater than 0")
	}

	stride := RowStride(24, width)
	biSizeImage := uint32(stride * height)
	fileSize := (FileHeaderSize + InfoHeaderSize + biSizeImage) // Size of the whole bitmap file

	// NewBitmap Headers
	bfh := BitmapFileHeader{Type: TypeBM, OffBits: FileHeaderSize + InfoHeaderSize, Size: fileSize}
	bih := BitmapInfoHeader{
		Size:        InfoHeaderSize,
		Width:       int32(width),
		Height:      int32(height),
		Planes:      1,
		BitCount:    24,
		SizeImage:   biSizeImage,
		XPixelsPerM: 2835, // ~72 DPI
		YPixelsPerM: 2835,
	}

	return NewFromHeaders(bfh, bih)
}

// Decodes a bitmap from r: file header, info header, then exactly stride*height pixel bytes
func Decode(r io.Reader) (*BitmapImage, error) {
	// Read File Header
	var bfHeader BitmapFileHeader
	if err := bfHeader.Read(r); err != nil {
		return nil, readError("file header", err)
	}

	// Read Info Header
	var biHeader BitmapInfoHeader
	if err := biHeader.Read(r); err != nil {
		return nil, readError("info header", err)
	}

	b, err := NewFromHeaders(bfHeader, biHeader)
	if err != nil {
		return nil, err
	}

	// Anything between the headers and the pixel array (bigger DIB headers, masks)
	if _, err := io.ReadFull(r, b.gap); err != nil {
		return nil, readError("header gap", err)
	}

	if _, err := io.ReadFull(r, b.pixels); err != nil {
		return nil, readError("pixel data", err)
	}

	return b, nil
}

// Reads a Bitmap file
func ReadBitmap(filename string) (*BitmapImage, error) {
	// Open the file
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableSource, err)
	}
	defer file.Close()

	b, err := Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	b.Filename = filename

	return b, nil
}

// Encodes the bitmap to w exactly as it was read: file header, info header, gap, pixels
func (b *BitmapImage) Encode(w io.Writer) error {
	// Write File Header
	if err := b.BFHeader.Write(w); err != nil {
		return err
	}
	// Write Info Header
	if err := b.BIHeader.Write(w); err != nil {
		return err
	}

	if _, err := w.Write(b.gap); err != nil {
		return err
	}

	// Pixel rows already carry their padding
	_, err := w.Write(b.pixels)
	return err
}

// Saves the bitmap image onto local disk. The file only appears under
// filename once it has been written completely.
func (b *BitmapImage) Save(filename string) error {
	return writeFileAtomic(filename, b.Encode)
}

// Writes through a temporary file in the target directory and renames it
// into place; on error the temporary file is removed and filename is untouched.
func writeFileAtomic(filename string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".bmpblend-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	// Create a buffer (to reduce syscalls)
	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil { // Write buffer to disk
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filename)
}

// Returns an image with the same headers (and gap bytes) as b and a zeroed pixel buffer
func (b *BitmapImage) Blank() *BitmapImage {
	return &BitmapImage{
		BFHeader: b.BFHeader,
		BIHeader: b.BIHeader,
		gap:      append([]byte(nil), b.gap...),
		stride:   b.stride,
		pixels:   make([]byte, len(b.pixels)),
	}
}

// Returns a Copy of the bitmap image
func (b *BitmapImage) Copy() *BitmapImage {
	newBitmap := *b

	// Copy over the buffers too
	newBitmap.gap = append([]byte(nil), b.gap...)
	newBitmap.pixels = append([]byte(nil), b.pixels...)

	return &newBitmap
}

func (b *BitmapImage) Width() int {
	return int(b.BIHeader.Width)
}

// Height in rows, regardless of row order
func (b *BitmapImage) Height() int {
	return int(absInt64(int64(b.BIHeader.Height)))
}

// Rows are stored top row first
func (b *BitmapImage) TopDown() bool {
	return b.BIHeader.Height < 0
}

// Bytes per row, padding included
func (b *BitmapImage) Stride() int {
	return b.stride
}

// Pix returns the raw pixel buffer. It is not a copy.
func (b *BitmapImage) Pix() []byte {
	return b.pixels
}

// Returns the pixel at column x of storage row y.
// x and y must lie inside the image; callers clamp first.
func (b *BitmapImage) PixelAt(x, y int) Pixel {
	i := b.stride*y + bytesPerPixel*x
	return Pixel{
		B: b.pixels[i+BlueOffset],
		G: b.pixels[i+GreenOffset],
		R: b.pixels[i+RedOffset],
	}
}

// Writes the pixel at column x of storage row y
func (b *BitmapImage) SetPixelAt(x, y int, p Pixel) {
	i := b.stride*y + bytesPerPixel*x
	b.pixels[i+BlueOffset] = p.B
	b.pixels[i+GreenOffset] = p.G
	b.pixels[i+RedOffset] = p.R
}

// Maps a top-down image row onto its storage row
func (b *BitmapImage) storageRow(y int) int {
	if b.TopDown() {
		return y
	}
	return b.Height() - 1 - y
}

func (b *BitmapImage) ColorModel() color.Model {
	return color.RGBAModel
}

func (b *BitmapImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width(), b.Height())
}

// At implements image.Image; (0, 0) is the top-left corner of the picture.
func (b *BitmapImage) At(x, y int) color.Color {
	if !image.Pt(x, y).In(b.Bounds()) {
		return color.RGBA{}
	}
	p := b.PixelAt(x, b.storageRow(y))
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}
}

// Print the bitmap in terminal. Use for small images only
func (b *BitmapImage) PrintBitmap(w io.Writer) {
	for y := range b.Height() {
		row := b.storageRow(y)
		for x := range b.Width() {
			pixel := b.PixelAt(x, row)
			fmt.Fprint(w, utils.ColoredBlock("  ", int(pixel.R), int(pixel.G), int(pixel.B)))
		}
		fmt.Fprintln(w)
	}
}

// Print the Metadata bitmap in terminal. (in human-readable format)
func (b *BitmapImage) PrintMetadata(w io.Writer) {
	fmt.Fprintf(w, "Filename: \t%v\n", b.Filename)
	fmt.Fprintf(w, "Filesize: \t%v bytes\n", b.BFHeader.Size)
	fmt.Fprintf(w, "Width: \t\t%v px\n", b.Width())
	fmt.Fprintf(w, "Height: \t%v px\n", b.Height())
	fmt.Fprintf(w, "BitCount: \t%vbits\n", b.BIHeader.BitCount)
	fmt.Fprintf(w, "PixelOffset: \t%v bytes\n", b.BFHeader.OffBits)
	fmt.Fprintf(w, "PixelCount: \t%v pixels\n", b.Width()*b.Height())
	fmt.Fprintf(w, "Stride: \t%v bytes\n", b.stride)
	fmt.Fprintf(w, "Padding: \t%v bytes\n", b.stride-b.Width()*bytesPerPixel)
}

// Classifies a failed read: running out of bytes is truncation, anything else is an I/O failure
func readError(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s: %v", ErrTruncatedInput, what, err)
	}
	return fmt.Errorf("%w: reading %s: %w", ErrUnreadableSource, what, err)
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
