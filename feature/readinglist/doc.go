// Package readinglist keeps a local collection of reading lists in step
// with a remote account.
//
// All user actions apply to the local store first and mark the touched
// rows dirty. A background engine coalesces those changes and runs a
// sync cycle that pushes dirty rows upstream in batches, then pulls
// remote changes recorded since the last watermark and folds them into
// the local store. Rows whose push fails simply stay dirty and are
// retried on the next cycle, so the engine is safe to run offline.
//
// The engine's lifecycle is driven by a persisted state value, see
// SyncState.
package readinglist
