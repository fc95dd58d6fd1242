package wav

import (
	"github.com/nomenaudio/core/internal/core"
)

// FieldMismatch is one field whose re-read value didn't match what was
// written.
type FieldMismatch struct {
	Field    string
	Expected string
	Actual   string
}

// VerifyResult is the outcome of a read-back verification pass.
type VerifyResult struct {
	OK         bool
	Mismatches []FieldMismatch
}

// DetailedVerify re-reads path and compares every non-empty field in
// patch.Fields (and every custom field) against what was actually
// persisted, per the original implementation's verify_write / per-chunk
// verifiers. It never mutates path.
func DetailedVerify(fs Filesystem, path string, patch Patch) (*VerifyResult, error) {
	md, err := ReadMetadata(fs, path)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{OK: true}
	for field, expected := range patch.Fields {
		if expected == "" {
			continue
		}
		actual := md.Fields[field]
		if actual != expected {
			result.OK = false
			result.Mismatches = append(result.Mismatches, FieldMismatch{
				Field: field, Expected: expected, Actual: actual,
			})
		}
	}
	for tag, expected := range patch.CustomFields {
		actual := md.CustomFields[tag]
		if actual != expected {
			result.OK = false
			result.Mismatches = append(result.Mismatches, FieldMismatch{
				Field: "custom:" + tag, Expected: expected, Actual: actual,
			})
		}
	}
	return result, nil
}

// VerifyWrite is the internal step 11 of the atomic rewrite protocol: a
// read-back mismatch surfaces as WRITE_FAILED, a test-grade internal error
// since the temp-first discipline already committed the replace by the
// time this runs.
func VerifyWrite(fs Filesystem, path string, patch Patch) error {
	result, err := DetailedVerify(fs, path, patch)
	if err != nil {
		return err
	}
	if !result.OK {
		return core.New(core.WriteFailed, "post-write verification found field mismatches")
	}
	return nil
}
