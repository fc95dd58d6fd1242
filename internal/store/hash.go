package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/nomenaudio/core/internal/core"
	"github.com/nomenaudio/core/internal/wav"
)

const hashPrefixSize = 4096

// Filesystem is the collaborator the repository needs for both WAV I/O and
// hashing; it is exactly wav.Filesystem, reused rather than redeclared so a
// single injected value serves both packages.
type Filesystem = wav.Filesystem

// OSFilesystem is the real, non-injected Filesystem.
type OSFilesystem = wav.OSFilesystem

// FileHash computes the cheap stable fingerprint used as a change-detection
// key: SHA-256(first 4KiB of the file, file size as 8 bytes LE, mtime as 8
// bytes LE). It is a cache key, not a cryptographic digest — it is allowed
// to collide across unrelated files that happen to share a size, mtime, and
// first-4KiB prefix.
func FileHash(fs Filesystem, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", core.Wrap(core.FileNotFound, "open file for hashing", err)
	}
	defer f.Close()

	fi, err := fs.Stat(path)
	if err != nil {
		return "", core.Wrap(core.FileNotFound, "stat file for hashing", err)
	}

	h := sha256.New()
	if _, err := io.CopyN(h, f, hashPrefixSize); err != nil && err != io.EOF {
		return "", core.Wrap(core.FileNotFound, "read file prefix for hashing", err)
	}

	var tail [16]byte
	binary.LittleEndian.PutUint64(tail[0:8], uint64(fi.Size()))
	binary.LittleEndian.PutUint64(tail[8:16], uint64(fi.ModTime().UnixNano()))
	h.Write(tail[:])

	return hex.EncodeToString(h.Sum(nil)), nil
}
