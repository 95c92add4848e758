// BMP-specific structs and types
package bmp

import (
	"encoding/binary"
	"io"
)

const (
	FileHeaderSize = 14 // Size of BitmapFileHeader on disk
	InfoHeaderSize = 40 // Size of BitmapInfoHeader on disk

	// The file type tag "BM" read as a little-endian uint16
	TypeBM uint16 = 0x4d42
)

// The BitmapFileHeader structure contains information about the type, size,
// and layout of a file that contains a DIB [device-independent bitmap].
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapfileheader

type BitmapFileHeader struct {
	Type      uint16 // The file type: must be 0x4d42 (ASCII string "BM").
	Size      uint32 // The size, in bytes, of the bitmap file.
	Reserved1 uint16 // Reserved; must be zero.
	Reserved2 uint16 // Reserved; must be zero.
	OffBits   uint32 // Bitmap File Offset (In bytes) to Pixel Arrays
}

// The BitmapInfoHeader structure contains information about the
// dimensions and color format of DIB [device-independent bitmap].

type BitmapInfoHeader struct {
	Size            uint32 // The number of bytes required by the structure.
	Width           int32  // The width of the bitmap, in pixels.
	Height          int32  // The height of the bitmap, in pixels (positive = bottom-up)
	Planes          uint16 // The number of planes for the target device.
	BitCount        uint16 // The number of bits-per-pixel.
	Compression     uint32 // The type of compression
	SizeImage       uint32 // The size of the image (in bytes).
	XPixelsPerM     int32  // The horizontal resolution, in pixels-per-meter.
	YPixelsPerM     int32  // The vertical resolution, in pixels-per-meter.
	ColorsUsed      uint32 // Number of color indexes that are actually used by bitmap.
	ColorsImportant uint32 // Number of color indexes required for displaying the bitmap.
}

// Reads the file header field by field (type, size, reserved1, reserved2, offset)
func (h *BitmapFileHeader) Read(r io.Reader) error {
	fields := []any{&h.Type, &h.Size, &h.Reserved1, &h.Reserved2, &h.OffBits}
	for _, field := range fields {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			return err
		}
	}
	return nil
}

// Writes the file header fields in the same order they are read
func (h *BitmapFileHeader) Write(w io.Writer) error {
	fields := []any{h.Type, h.Size, h.Reserved1, h.Reserved2, h.OffBits}
	for _, field := range fields {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return err
		}
	}
	return nil
}

// Reads the info header as one contiguous 40-byte record
func (h *BitmapInfoHeader) Read(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, h)
}

// Writes the info header as one contiguous 40-byte record
func (h *BitmapInfoHeader) Write(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, h)
}

// RowStride returns the length of one pixel row in bytes, padded to a
// 4-byte boundary: 4 * ceil(bitsPerPixel*width / 32).
func RowStride(bitsPerPixel, width int) int {
	return ((bitsPerPixel*width + 31) / 32) * 4
}
