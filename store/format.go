package store

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

const (
	// FormatMagic identifies fire containers (ASCII: "FIRE").
	FormatMagic uint32 = 0x45524946

	// FormatVersion is the current container format version.
	FormatVersion uint32 = 1

	// PreambleSize is the size of the leading magic/version block.
	PreambleSize = 8

	// FooterSize is the size of the trailing footer in bytes.
	FooterSize = 64

	// FlagShuffled indicates fixed-width chunks are byte-shuffled.
	FlagShuffled uint32 = 1 << 0
)

func appendPreamble(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, FormatMagic)
	return binary.LittleEndian.AppendUint32(dst, FormatVersion)
}

func checkPreamble(b []byte) error {
	if len(b) < PreambleSize {
		return ErrCorrupted
	}
	if binary.LittleEndian.Uint32(b[0:4]) != FormatMagic {
		return ErrInvalidMagic
	}
	if binary.LittleEndian.Uint32(b[4:8]) > FormatVersion {
		return ErrInvalidVersion
	}
	return nil
}

// Footer is the 64-byte trailer of a container.
//
// All multi-byte fields are little-endian.
type Footer struct {
	Magic       uint32  // "FIRE"
	Version     uint32  // Format version
	Flags       uint32  // Feature flags
	ColumnCount uint32  // Number of columns in the directory
	Entries     uint64  // Entry count recorded by the writer
	DirOffset   uint64  // Offset of the directory
	DirLength   uint64  // Length of the directory in bytes
	DirChecksum uint32  // CRC32 of the directory bytes
	Codec       [8]byte // Directory codec name, zero padded
	Reserved    [4]byte
	Checksum    uint32 // CRC32 of the preceding 60 bytes
}

// Shuffled reports whether fixed-width chunks are byte-shuffled.
func (f *Footer) Shuffled() bool {
	return f.Flags&FlagShuffled != 0
}

// CodecName returns the directory codec name.
func (f *Footer) CodecName() string {
	return string(bytes.TrimRight(f.Codec[:], "\x00"))
}

// MarshalBinary encodes the footer and fills in its checksum.
func (f *Footer) MarshalBinary() ([]byte, error) {
	buf := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(buf[0:4], f.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], f.Version)
	binary.LittleEndian.PutUint32(buf[8:12], f.Flags)
	binary.LittleEndian.PutUint32(buf[12:16], f.ColumnCount)
	binary.LittleEndian.PutUint64(buf[16:24], f.Entries)
	binary.LittleEndian.PutUint64(buf[24:32], f.DirOffset)
	binary.LittleEndian.PutUint64(buf[32:40], f.DirLength)
	binary.LittleEndian.PutUint32(buf[40:44], f.DirChecksum)
	copy(buf[44:52], f.Codec[:])
	// 52:60 reserved

	f.Checksum = crc32.ChecksumIEEE(buf[:60])
	binary.LittleEndian.PutUint32(buf[60:64], f.Checksum)
	return buf, nil
}

// UnmarshalBinary decodes and validates a footer.
func (f *Footer) UnmarshalBinary(buf []byte) error {
	if len(buf) != FooterSize {
		return corrupted("footer is %d bytes", len(buf))
	}

	f.Magic = binary.LittleEndian.Uint32(buf[0:4])
	if f.Magic != FormatMagic {
		return ErrInvalidMagic
	}

	f.Checksum = binary.LittleEndian.Uint32(buf[60:64])
	if actual := crc32.ChecksumIEEE(buf[:60]); actual != f.Checksum {
		return &ChecksumMismatchError{What: "footer", Expected: f.Checksum, Actual: actual}
	}

	f.Version = binary.LittleEndian.Uint32(buf[4:8])
	f.Flags = binary.LittleEndian.Uint32(buf[8:12])
	f.ColumnCount = binary.LittleEndian.Uint32(buf[12:16])
	f.Entries = binary.LittleEndian.Uint64(buf[16:24])
	f.DirOffset = binary.LittleEndian.Uint64(buf[24:32])
	f.DirLength = binary.LittleEndian.Uint64(buf[32:40])
	f.DirChecksum = binary.LittleEndian.Uint32(buf[40:44])
	copy(f.Codec[:], buf[44:52])

	if f.Version > FormatVersion {
		return ErrInvalidVersion
	}
	return nil
}

// directory is the codec-encoded column table.
type directory struct {
	RowsPerChunk int          `json:"rows_per_chunk"`
	Columns      []columnDesc `json:"columns"`
}

type columnDesc struct {
	Path    string     `json:"path"`
	DType   DType      `json:"dtype"`
	Rows    uint64     `json:"rows"`
	Chunks  []chunkRef `json:"chunks"`
	Present []byte     `json:"present,omitempty"`
}

type chunkRef struct {
	Offset    uint64      `json:"off"`
	Length    uint32      `json:"len"`
	RawLength uint32      `json:"raw"`
	FirstRow  uint64      `json:"first"`
	Rows      uint32      `json:"rows"`
	Codec     Compression `json:"codec"`
	CRC       uint32      `json:"crc"`
}
