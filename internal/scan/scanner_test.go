package scan

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/nomenaudio/core/internal/report"
	"github.com/nomenaudio/core/internal/store"
	"github.com/nomenaudio/core/internal/wav"
)

func pcmFormatChunk(sampleRate uint32, channels, bits uint16) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint16(buf[0:2], 1)
	binary.LittleEndian.PutUint16(buf[2:4], channels)
	binary.LittleEndian.PutUint32(buf[4:8], sampleRate)
	byteRate := sampleRate * uint32(channels) * uint32(bits) / 8
	binary.LittleEndian.PutUint32(buf[8:12], byteRate)
	binary.LittleEndian.PutUint16(buf[12:14], channels*bits/8)
	binary.LittleEndian.PutUint16(buf[14:16], bits)
	return buf
}

func writeTestWAV(t *testing.T, dir, name string) string {
	t.Helper()
	var body bytes.Buffer
	wav.WriteChunk(&body, "fmt ", pcmFormatChunk(48000, 1, 16))
	wav.WriteChunk(&body, "data", make([]byte, 4800))

	var out bytes.Buffer
	out.WriteString("RIFF")
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(4+body.Len()))
	out.Write(size[:])
	out.WriteString("WAVE")
	out.Write(body.Bytes())

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func openTestRepo(t *testing.T) (*store.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return store.NewRepository(st, store.OSFilesystem{}), dir
}

func TestImporterImportsNewFiles(t *testing.T) {
	repo, dir := openTestRepo(t)
	writeTestWAV(t, dir, "one.wav")
	writeTestWAV(t, dir, "two.wav")

	logDir := t.TempDir()
	logger, err := report.NewEventLogger(logDir, report.LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger: %v", err)
	}
	defer logger.Close()

	importer := New(repo, logger)
	result, err := importer.Import(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(result.Imported) != 2 {
		t.Fatalf("expected 2 imported, got %d (skipped=%v)", len(result.Imported), result.Skipped)
	}
}

func TestImporterIsIdempotent(t *testing.T) {
	repo, dir := openTestRepo(t)
	writeTestWAV(t, dir, "one.wav")

	importer := New(repo, report.NullLogger())

	first, err := importer.Import(context.Background(), dir, false)
	if err != nil || len(first.Imported) != 1 {
		t.Fatalf("first import: %v %+v", err, first)
	}

	second, err := importer.Import(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if len(second.Imported) != 0 {
		t.Errorf("expected no re-import of an unchanged file, got %d", len(second.Imported))
	}
}

func TestImporterSkipsUnreadableFile(t *testing.T) {
	repo, dir := openTestRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "broken.wav"), []byte("not a wav file"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	importer := New(repo, report.NullLogger())
	result, err := importer.Import(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped, got %d", len(result.Skipped))
	}
}
