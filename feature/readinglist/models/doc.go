// Package models defines the persisted reading-list entities: lists, entries,
// the saved-state article view, and the keyed settings row used for sync
// state. It also owns the canonicalization helpers used for name- and
// key-based matching during reconciliation.
package models
