package wav

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/nomenaudio/core/internal/core"
)

// Patch is the set of changes to merge into a WAV file's metadata chunks.
// Fields holds FileRecord field names mapped to their new values; only
// non-empty entries are applied (an empty value is "no change", never
// "clear").
type Patch struct {
	Fields       map[string]string
	CustomFields map[string]string
}

// Rewrite implements the atomic rewrite protocol (§4.3.4 steps 2-11): it
// never mutates path in place. A fresh temp file is built in path's
// directory, every chunk is either patched or stream-copied, the outer
// RIFF size is patched, the temp file is fsynced and atomically renamed
// over path, the optional rename to renameTo is applied, and the result is
// read back and verified. On any error before the first rename, the temp
// file is removed and path is untouched.
func Rewrite(fs Filesystem, path, renameTo string, patch Patch) (finalPath string, err error) {
	if renameTo != "" && renameTo != path {
		if _, statErr := fs.Stat(renameTo); statErr == nil {
			return "", core.New(core.RenameConflict, "rename target already exists: "+renameTo)
		}
	}

	srcHandle, err := fs.Open(path)
	if err != nil {
		return "", core.Wrap(core.FileNotFound, "open source wav", err)
	}
	defer srcHandle.Close()
	src := srcHandle

	descriptors, err := Walk(src)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".nomen-*.wav.tmp")
	if err != nil {
		return "", core.Wrap(core.WriteFailed, "create temp file", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := writeBody(tmp, src, descriptors, patch); err != nil {
		cleanup()
		return "", err
	}

	size, err := tmp.Seek(0, io.SeekEnd)
	if err != nil {
		cleanup()
		return "", core.Wrap(core.WriteFailed, "seek temp file end", err)
	}
	if err := writeOuterHeader(tmp, size); err != nil {
		cleanup()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", core.Wrap(core.WriteFailed, "fsync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", core.Wrap(core.WriteFailed, "close temp file", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", core.Wrap(core.WriteFailed, "rename temp file over source", err)
	}

	finalPath = path
	if renameTo != "" && renameTo != path {
		if err := fs.Rename(path, renameTo); err != nil {
			// The replace already committed; surface the error but the
			// content is saved under path.
			return path, core.Wrap(core.RenameConflict, "rename after write", err)
		}
		finalPath = renameTo
	}

	if verr := VerifyWrite(fs, finalPath, patch); verr != nil {
		return finalPath, verr
	}
	return finalPath, nil
}

func writeOuterHeader(f *os.File, totalSize int64) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return core.Wrap(core.WriteFailed, "seek to outer header", err)
	}
	var header [outerHeaderSize]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(totalSize-8))
	copy(header[8:12], "WAVE")
	if _, err := f.Write(header[:]); err != nil {
		return core.Wrap(core.WriteFailed, "write outer header", err)
	}
	return nil
}

func writeBody(dst *os.File, src *os.File, descriptors []Descriptor, patch Patch) error {
	var placeholder [outerHeaderSize]byte
	if _, err := dst.Write(placeholder[:]); err != nil {
		return core.Wrap(core.WriteFailed, "write placeholder header", err)
	}

	var handledBext, handledIXML, handledInfo bool

	for _, d := range descriptors {
		switch {
		case d.FourCC == "bext" && !handledBext:
			payload, err := ReadPayload(src, d)
			if err != nil {
				return err
			}
			b := DecodeBEXT(payload).ApplyPatch(patch.Fields["description"], patch.Fields["designer"])
			if err := WriteChunk(dst, "bext", b.Encode()); err != nil {
				return core.Wrap(core.WriteFailed, "write bext chunk", err)
			}
			handledBext = true

		case d.FourCC == "iXML" && !handledIXML:
			payload, err := ReadPayload(src, d)
			if err != nil {
				return err
			}
			merged, err := WriteIXML(payload, patch.Fields, patch.CustomFields)
			if err != nil {
				return err
			}
			if err := WriteChunk(dst, "iXML", merged); err != nil {
				return core.Wrap(core.WriteFailed, "write iXML chunk", err)
			}
			handledIXML = true

		case d.FourCC == "LIST":
			payload, err := ReadPayload(src, d)
			if err != nil {
				return err
			}
			form, entries, err := ParseListPayload(payload)
			if err != nil {
				return err
			}
			if form == "INFO" && !handledInfo {
				filled := GapFillInfo(entries, buildInfoFill(patch.Fields))
				newPayload := BuildListPayload("INFO", filled)
				if err := WriteChunk(dst, "LIST", newPayload); err != nil {
					return core.Wrap(core.WriteFailed, "write LIST-INFO chunk", err)
				}
				handledInfo = true
			} else {
				if err := streamCopyChunk(dst, src, d); err != nil {
					return err
				}
			}

		default:
			if err := streamCopyChunk(dst, src, d); err != nil {
				return err
			}
		}
	}

	if !handledBext && (hasAnyBuiltinField(patch.Fields) || len(patch.CustomFields) > 0) {
		b := NewBEXT().ApplyPatch(patch.Fields["description"], patch.Fields["designer"])
		if err := WriteChunk(dst, "bext", b.Encode()); err != nil {
			return core.Wrap(core.WriteFailed, "append bext chunk", err)
		}
	}
	if !handledIXML && (hasAnyBuiltinField(patch.Fields) || len(patch.CustomFields) > 0) {
		merged, err := WriteIXML(nil, patch.Fields, patch.CustomFields)
		if err != nil {
			return err
		}
		if err := WriteChunk(dst, "iXML", merged); err != nil {
			return core.Wrap(core.WriteFailed, "append iXML chunk", err)
		}
	}
	if !handledInfo {
		fill := buildInfoFill(patch.Fields)
		if len(fill) > 0 {
			entries := GapFillInfo(nil, fill)
			payload := BuildListPayload("INFO", entries)
			if err := WriteChunk(dst, "LIST", payload); err != nil {
				return core.Wrap(core.WriteFailed, "append LIST-INFO chunk", err)
			}
		}
	}

	return nil
}

func streamCopyChunk(dst *os.File, src *os.File, d Descriptor) error {
	if err := WriteChunkHeader(dst, d.FourCC, d.PayloadSize); err != nil {
		return core.Wrap(core.WriteFailed, "write chunk header", err)
	}
	return CopyPayload(dst, src, d)
}

func buildInfoFill(fields map[string]string) map[string]string {
	fill := make(map[string]string)
	for field, infoID := range InfoFallback {
		if v := fields[field]; v != "" {
			fill[infoID] = v
		}
	}
	return fill
}

func hasAnyBuiltinField(fields map[string]string) bool {
	for field, v := range fields {
		if v == "" {
			continue
		}
		if _, ok := UserTagOf[field]; ok {
			return true
		}
		if _, ok := ASWGTagOf[field]; ok {
			return true
		}
	}
	return false
}
