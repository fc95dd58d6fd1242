// Package wav implements the chunk-preserving, atomic broadcast-WAV
// metadata reader/writer: a RIFF walker, the BEXT/iXML/LIST-INFO codecs,
// and the temp-file-plus-rename rewrite protocol that never corrupts a
// source file.
package wav

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/nomenaudio/core/internal/core"
)

const (
	outerHeaderSize = 12 // "RIFF" + size(4) + "WAVE"
	chunkHeaderSize = 8  // fourcc(4) + size(4)
)

// Descriptor is one chunk's position and size within the file, never its
// payload bytes.
type Descriptor struct {
	FourCC      string
	FileOffset  int64 // offset of the chunk header (fourcc byte)
	PayloadSize uint32
	PaddedSize  int64 // PayloadSize + 1 if odd, else PayloadSize
}

// PayloadOffset is the offset of the first payload byte.
func (d Descriptor) PayloadOffset() int64 { return d.FileOffset + chunkHeaderSize }

// EndOffset is the offset immediately after the chunk including its pad
// byte.
func (d Descriptor) EndOffset() int64 { return d.PayloadOffset() + d.PaddedSize }

// Walk reads the RIFF/WAVE outer header from f and returns a descriptor for
// every chunk in file order. It never loads payloads into memory. Unknown
// chunk ids are tolerated. RIFX (big-endian) and RF64 containers, and any
// file whose declared outer size would overrun the physical file size, are
// rejected as INVALID_WAV.
func Walk(f *os.File) ([]Descriptor, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, core.Wrap(core.InvalidWAV, "stat file", err)
	}
	if size < outerHeaderSize {
		return nil, core.New(core.InvalidWAV, "file too small for RIFF header")
	}

	header := make([]byte, outerHeaderSize)
	if _, err := f.ReadAt(header, 0); err != nil {
		return nil, core.Wrap(core.InvalidWAV, "read RIFF header", err)
	}

	riffID := string(header[0:4])
	if riffID == "RIFX" {
		return nil, core.New(core.InvalidWAV, "RIFX (big-endian) containers are not supported")
	}
	if riffID != "RIFF" {
		return nil, core.New(core.InvalidWAV, "missing RIFF tag")
	}
	if form := string(header[8:12]); form != "WAVE" {
		return nil, core.New(core.InvalidWAV, "missing WAVE form")
	}

	outerSize := binary.LittleEndian.Uint32(header[4:8])
	if int64(outerSize)+8 > size {
		return nil, core.New(core.InvalidWAV, "declared RIFF size exceeds physical file size")
	}

	var descriptors []Descriptor
	offset := int64(outerHeaderSize)
	limit := int64(outerSize) + 8

	chunkHeader := make([]byte, chunkHeaderSize)
	for offset+chunkHeaderSize <= limit && offset+chunkHeaderSize <= size {
		if _, err := f.ReadAt(chunkHeader, offset); err != nil {
			return nil, core.Wrap(core.InvalidWAV, "read chunk header", err)
		}
		fourcc := string(chunkHeader[0:4])
		if fourcc == "RF64" {
			return nil, core.New(core.InvalidWAV, "RF64 containers are not supported")
		}
		payloadSize := binary.LittleEndian.Uint32(chunkHeader[4:8])
		padded := int64(payloadSize)
		if payloadSize%2 == 1 {
			padded++
		}

		desc := Descriptor{
			FourCC:      fourcc,
			FileOffset:  offset,
			PayloadSize: payloadSize,
			PaddedSize:  padded,
		}
		descriptors = append(descriptors, desc)
		offset = desc.EndOffset()
	}

	return descriptors, nil
}

// ReadPayload reads the full payload of a descriptor into memory. Callers
// on the hot streaming path (e.g. the `data` chunk) should use
// CopyPayload instead.
func ReadPayload(f *os.File, d Descriptor) ([]byte, error) {
	buf := make([]byte, d.PayloadSize)
	if _, err := f.ReadAt(buf, d.PayloadOffset()); err != nil {
		return nil, core.Wrap(core.InvalidWAV, "read chunk payload", err)
	}
	return buf, nil
}

const copyBufferSize = 1 << 20 // 1 MiB, per the bounded-buffer stream-copy rule

// CopyPayload stream-copies the payload (and pad byte, if any) of d from
// src at the current descriptor offset to w, in bounded buffers.
func CopyPayload(w io.Writer, f *os.File, d Descriptor) error {
	section := io.NewSectionReader(f, d.PayloadOffset(), d.PaddedSize)
	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(w, section, buf); err != nil {
		return core.Wrap(core.WriteFailed, "stream-copy chunk payload", err)
	}
	return nil
}

// WriteChunkHeader writes an 8-byte chunk header (fourcc + uint32 LE size).
func WriteChunkHeader(w io.Writer, fourcc string, payloadSize uint32) error {
	if len(fourcc) != 4 {
		return core.New(core.WriteFailed, "fourcc must be exactly 4 bytes")
	}
	var buf [chunkHeaderSize]byte
	copy(buf[0:4], fourcc)
	binary.LittleEndian.PutUint32(buf[4:8], payloadSize)
	_, err := w.Write(buf[:])
	return err
}

// WritePadIfOdd writes a single zero pad byte if size is odd.
func WritePadIfOdd(w io.Writer, size int) error {
	if size%2 == 1 {
		_, err := w.Write([]byte{0})
		return err
	}
	return nil
}

// WriteChunk writes a complete chunk (header + payload + pad) to w.
func WriteChunk(w io.Writer, fourcc string, payload []byte) error {
	if err := WriteChunkHeader(w, fourcc, uint32(len(payload))); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return WritePadIfOdd(w, len(payload))
}
