package wav

import (
	"encoding/binary"

	"github.com/nomenaudio/core/internal/core"
)

// Technical is the immutable technical snapshot of a WAV file's audio
// stream, derived from its `fmt ` and `data` chunks. Never written back.
type Technical struct {
	SampleRate   uint32
	BitDepth     uint16
	Channels     uint16
	FrameCount   uint64
	DurationSecs float64
	FormatCode   uint16
	ByteSize     int64 // total file size
}

// ParseFormatChunk decodes the minimal PCM `fmt ` chunk fields common to
// every WAVE_FORMAT_* variant (extensible formats carry extra bytes this
// ignores, since audio sample data is never touched).
func ParseFormatChunk(payload []byte) (formatCode, channels uint16, sampleRate uint32, bitsPerSample uint16, err error) {
	if len(payload) < 16 {
		return 0, 0, 0, 0, core.New(core.InvalidWAV, "fmt chunk shorter than 16 bytes")
	}
	formatCode = binary.LittleEndian.Uint16(payload[0:2])
	channels = binary.LittleEndian.Uint16(payload[2:4])
	sampleRate = binary.LittleEndian.Uint32(payload[4:8])
	bitsPerSample = binary.LittleEndian.Uint16(payload[14:16])
	return formatCode, channels, sampleRate, bitsPerSample, nil
}

// BuildTechnical derives a Technical snapshot from the decoded fmt fields
// plus the data chunk's payload size and total file size.
func BuildTechnical(formatCode, channels uint16, sampleRate uint32, bitsPerSample uint16, dataPayloadSize uint32, fileSize int64) Technical {
	t := Technical{
		SampleRate: sampleRate,
		BitDepth:   bitsPerSample,
		Channels:   channels,
		FormatCode: formatCode,
		ByteSize:   fileSize,
	}
	bytesPerFrame := uint32(channels) * uint32(bitsPerSample) / 8
	if bytesPerFrame > 0 {
		t.FrameCount = uint64(dataPayloadSize) / uint64(bytesPerFrame)
	}
	if sampleRate > 0 {
		t.DurationSecs = float64(t.FrameCount) / float64(sampleRate)
	}
	return t
}
