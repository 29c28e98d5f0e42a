// Package diff provides the keyed set-difference primitives shared by the
// reconciliation engines.
//
// Both engines follow the same scheme: build an index of local items and an
// index of remote items under a common key (remote id, canonical name, or
// content hash), partition the key space into only-local / common /
// only-remote sets, then delete, update, and insert respectively.
//
// Index building is strict about key uniqueness. A DuplicateKeyError means
// the pairing between local and remote items would be ambiguous, and callers
// surface it instead of guessing a correspondence.
//
// Chunk bounds the fan-out of outbound network calls: the sync engine issues
// one bounded batch of requests per chunk and waits for it to complete before
// starting the next.
package diff
