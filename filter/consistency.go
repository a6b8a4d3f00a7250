package filter

import "fmt"

// CheckConsistency enforces the flag constraints spec.md §4.3 requires at
// graph completion: entire_plane implies entire_row; in_place implies
// same_row; entire_plane implies both max_buffering and step report
// BufferMax. Violations indicate a kernel-factory or in-core filter bug,
// not a caller error, so the graph treats a failure here as internal.
func CheckConsistency(f Filter) error {
	flags := f.GetFlags()

	if flags.EntirePlane && !flags.EntireRow {
		return fmt.Errorf("filter: entire_plane requires entire_row")
	}
	if flags.InPlace && !flags.SameRow {
		return fmt.Errorf("filter: in_place requires same_row")
	}
	if flags.EntirePlane {
		if f.MaxBuffering() != BufferMax {
			return fmt.Errorf("filter: entire_plane requires max_buffering == BufferMax")
		}
		if f.Step() != BufferMax {
			return fmt.Errorf("filter: entire_plane requires step == BufferMax")
		}
	}
	return nil
}
