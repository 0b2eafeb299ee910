// Package bsdiff implements the match-finding and control-stream
// generation core of a bsdiff-style binary differencing engine: given
// an OLD and a NEW byte buffer and a substring index over OLD, it
// emits a sequence of Match records covering NEW end-to-end, then
// translates that stream into Control records (add/copy/seek triples)
// suitable for a patch-file encoder to serialize.
//
// Patch application, patch-file framing, and filesystem-image-aware
// front-ends are not part of this package; see the companion encoder
// and applier for those concerns.
package bsdiff
