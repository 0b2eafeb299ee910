package bsdiff

// A Match is a pair of two regions from the old and new buffers that
// have been selected for subtraction: a diff region (add_old_start,
// add_new_start, add_length), immediately followed in NEW by a
// trailing literal copy region running to copy_end.
type Match struct {
	addOldStart int
	addNewStart int
	addLength   int
	copyEnd     int
}

// copyStart is the offset in NEW where the trailing copy region
// begins; it is always addNewStart+addLength.
func (m Match) copyStart() int {
	return m.addNewStart + m.addLength
}

// Control is the logical, wire-format-agnostic patch record produced
// by the Translator. Add and Copy are views into caller-owned buffers
// (Add into the Translator's reused staging buffer, Copy directly
// into NEW) and must be consumed synchronously by the sink; neither
// is valid after the sink callback returns.
type Control struct {
	// Add holds, elementwise, NEW[i] - OLD[add_old_start+i] using
	// wrapping 8-bit subtraction, for the diff region of one match.
	Add []byte
	// Copy holds the literal NEW bytes of one match's trailing copy
	// region.
	Copy []byte
	// Seek is the signed adjustment to apply to the OLD cursor after
	// consuming Add and Copy: next match's add_old_start minus this
	// match's (add_old_start + add_length). Zero on the final record.
	Seek int64
}

// SubstringIndex is the one capability the scanner needs from a
// substring index over OLD: given the remaining suffix of NEW being
// scanned, return the longest byte string that is both a prefix of
// that suffix and a substring of OLD, along with one occurrence
// position in OLD. Any occurrence is acceptable; callers do not
// require a unique or leftmost choice.
//
// Construction of a SubstringIndex is expected to be amortized over a
// whole scan; LongestSubstringMatch itself should be safe to call
// concurrently from multiple goroutines against the same index, since
// the chunked scan orchestrator (see ParallelScan) shares one index across
// workers.
type SubstringIndex interface {
	// LongestSubstringMatch returns the start position in OLD and the
	// length of the longest prefix of query that occurs somewhere in
	// OLD. A zero length is valid and means no byte of query's prefix
	// was found at all (start is then meaningless).
	LongestSubstringMatch(query []byte) (start, length int)
}
