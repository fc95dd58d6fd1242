package wav

import (
	"encoding/binary"
	"strings"

	"github.com/nomenaudio/core/internal/core"
)

// Fixed byte offsets/sizes into the BEXT payload, per EBU Tech 3285.
const (
	bextMinSize = 602

	offDescription = 0
	szDescription  = 256

	offOriginator = 256
	szOriginator  = 32

	offOriginatorRef = 288
	szOriginatorRef  = 32

	offOriginationDate = 320
	szOriginationDate  = 10

	offOriginationTime = 330
	szOriginationTime  = 8

	offTimeReference = 338 // uint64 LE

	offVersion = 346 // uint16 LE

	offUMID = 348
	szUMID  = 64

	offLoudness = 412 // 5x int16 LE
	szLoudness  = 10

	offReserved = 422
	szReserved  = 180

	offCodingHistory = 602
)

// Loudness holds the five BEXT loudness fields, each a hundredths-of-a-dB
// int16 per EBU R128 convention.
type Loudness struct {
	LoudnessValue         int16
	LoudnessRange         int16
	MaxTruePeakLevel      int16
	MaxMomentaryLoudness  int16
	MaxShortTermLoudness  int16
}

// BEXT is the decoded Broadcast Audio Extension chunk.
type BEXT struct {
	Description         string
	Originator           string
	OriginatorReference   string
	OriginationDate       string
	OriginationTime       string
	TimeReference         uint64
	Version               uint16
	UMID                  [szUMID]byte
	Loudness              Loudness
	Reserved              [szReserved]byte
	CodingHistory         string
}

// DecodeBEXT unpacks a BEXT payload. A payload shorter than 602 bytes is
// zero-padded before unpacking rather than rejected.
func DecodeBEXT(payload []byte) BEXT {
	buf := payload
	if len(buf) < bextMinSize {
		padded := make([]byte, bextMinSize)
		copy(padded, buf)
		buf = padded
	}

	var b BEXT
	b.Description = trimNull(buf[offDescription : offDescription+szDescription])
	b.Originator = trimNull(buf[offOriginator : offOriginator+szOriginator])
	b.OriginatorReference = trimNull(buf[offOriginatorRef : offOriginatorRef+szOriginatorRef])
	b.OriginationDate = trimNull(buf[offOriginationDate : offOriginationDate+szOriginationDate])
	b.OriginationTime = trimNull(buf[offOriginationTime : offOriginationTime+szOriginationTime])
	b.TimeReference = binary.LittleEndian.Uint64(buf[offTimeReference : offTimeReference+8])
	b.Version = binary.LittleEndian.Uint16(buf[offVersion : offVersion+2])
	copy(b.UMID[:], buf[offUMID:offUMID+szUMID])
	b.Loudness = Loudness{
		LoudnessValue:        int16(binary.LittleEndian.Uint16(buf[412:414])),
		LoudnessRange:        int16(binary.LittleEndian.Uint16(buf[414:416])),
		MaxTruePeakLevel:     int16(binary.LittleEndian.Uint16(buf[416:418])),
		MaxMomentaryLoudness: int16(binary.LittleEndian.Uint16(buf[418:420])),
		MaxShortTermLoudness: int16(binary.LittleEndian.Uint16(buf[420:422])),
	}
	copy(b.Reserved[:], buf[offReserved:offReserved+szReserved])
	if len(buf) > offCodingHistory {
		b.CodingHistory = trimNull(buf[offCodingHistory:])
	}
	return b
}

// Encode packs b back into a BEXT payload of exactly 602+len(CodingHistory)
// bytes.
func (b BEXT) Encode() []byte {
	out := make([]byte, bextMinSize+len(b.CodingHistory))
	putFixedASCII(out[offDescription:offDescription+szDescription], b.Description)
	putFixedASCII(out[offOriginator:offOriginator+szOriginator], b.Originator)
	putFixedASCII(out[offOriginatorRef:offOriginatorRef+szOriginatorRef], b.OriginatorReference)
	putFixedASCII(out[offOriginationDate:offOriginationDate+szOriginationDate], b.OriginationDate)
	putFixedASCII(out[offOriginationTime:offOriginationTime+szOriginationTime], b.OriginationTime)
	binary.LittleEndian.PutUint64(out[offTimeReference:offTimeReference+8], b.TimeReference)
	binary.LittleEndian.PutUint16(out[offVersion:offVersion+2], b.Version)
	copy(out[offUMID:offUMID+szUMID], b.UMID[:])
	binary.LittleEndian.PutUint16(out[412:414], uint16(b.Loudness.LoudnessValue))
	binary.LittleEndian.PutUint16(out[414:416], uint16(b.Loudness.LoudnessRange))
	binary.LittleEndian.PutUint16(out[416:418], uint16(b.Loudness.MaxTruePeakLevel))
	binary.LittleEndian.PutUint16(out[418:420], uint16(b.Loudness.MaxMomentaryLoudness))
	binary.LittleEndian.PutUint16(out[420:422], uint16(b.Loudness.MaxShortTermLoudness))
	copy(out[offReserved:offReserved+szReserved], b.Reserved[:])
	copy(out[offCodingHistory:], b.CodingHistory)
	return out
}

// NewBEXT synthesizes a default BEXT with Version=1 and zeroed
// reserved/UMID/loudness, for files that had no BEXT chunk at all.
func NewBEXT() BEXT {
	return BEXT{Version: 1}
}

// ApplyPatch patches only Description and Originator (the writer's
// designer→originator fallback), leaving every other byte verbatim, per
// §4.3.1. Empty patch values are ignored (never overwrite with blank).
func (b BEXT) ApplyPatch(description, originator string) BEXT {
	if description != "" {
		b.Description = description
	}
	if originator != "" {
		b.Originator = originator
	}
	return b
}

func trimNull(b []byte) string {
	if idx := indexByte(b, 0); idx >= 0 {
		b = b[:idx]
	}
	return strings.TrimRight(string(b), " ")
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func putFixedASCII(dst []byte, s string) {
	for i := range dst {
		dst[i] = 0
	}
	n := copy(dst, s)
	_ = n
}

// ValidateBEXTPayload is a defensive check used by callers that need to
// reject a chunk claiming to be BEXT but carrying an implausible size
// (e.g. negative-looking overflow on 32-bit size fields is impossible in
// Go, but a zero-length "bext" chunk with no header at all is legal input
// DecodeBEXT already tolerates via zero-padding).
func ValidateBEXTPayload(payload []byte) error {
	if len(payload) > 1<<20 {
		return core.New(core.InvalidWAV, "BEXT payload implausibly large")
	}
	return nil
}
