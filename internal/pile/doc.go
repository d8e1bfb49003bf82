// Package pile implements the bidirectional synchronization engine between
// a linear commit range and a persisted, ordered patch series.
//
// A pile is a directory holding a series manifest, a baseline record and
// patch documents whose filenames are derived from commit subjects rather
// than numeric indexes, so regeneration does not renumber files. The
// Generator turns a commit range into such a content set, the
// Reconstructor replays a series over its tracked baseline into a branch
// tip, and the Extractor emits only the patches that changed since the
// last recorded pile state, formatted for sharing.
package pile
