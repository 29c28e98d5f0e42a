package readinglist

import "strings"

// SyncState is the set of pending sync intents, persisted as a single
// integer. Flags are independent because multiple intents can coexist (for
// example a local clear queued behind a remote enable). Values are immutable;
// With and Without return a new state.
type SyncState uint64

const (
	// NeedsRemoteEnable queues a remote service setup call.
	NeedsRemoteEnable SyncState = 1 << iota
	// NeedsSync queues a full local/remote reconciliation.
	NeedsSync
	// NeedsUpdate queues incremental reconciliation from the watermark.
	NeedsUpdate
	// NeedsRemoteDisable queues a remote teardown (deletes remote lists).
	NeedsRemoteDisable
	// NeedsLocalReset strips remote ids, returning lists to unsynced state.
	NeedsLocalReset
	// NeedsLocalArticleClear removes all saved-article state.
	NeedsLocalArticleClear
	// NeedsLocalListClear removes all local lists.
	NeedsLocalListClear
	// NeedsRandomLists seeds random lists. Debug builds only.
	NeedsRandomLists
	// NeedsRandomEntries seeds random entries. Debug builds only.
	NeedsRandomEntries
)

// Named unions for composite operations.
const (
	// NeedsNothing is the idle state.
	NeedsNothing SyncState = 0
	// NeedsLocalClear removes all local article and list state.
	NeedsLocalClear = NeedsLocalArticleClear | NeedsLocalListClear
	// NeedsEnable turns sync on.
	NeedsEnable = NeedsRemoteEnable | NeedsSync
	// NeedsClearAndEnable wipes local state and then turns sync on.
	NeedsClearAndEnable = NeedsLocalClear | NeedsRemoteEnable | NeedsSync
	// NeedsDisable turns sync off remotely and resets local lists.
	NeedsDisable = NeedsRemoteDisable | NeedsLocalReset
)

// Has reports whether every flag in f is set.
func (s SyncState) Has(f SyncState) bool { return s&f == f }

// With returns s with the flags in f set.
func (s SyncState) With(f SyncState) SyncState { return s | f }

// Without returns s with the flags in f cleared.
func (s SyncState) Without(f SyncState) SyncState { return s &^ f }

// IsSyncEnabled reports whether sync is on: either a full sync or an
// incremental update is pending or in steady state.
func (s SyncState) IsSyncEnabled() bool {
	return s.Has(NeedsSync) || s.Has(NeedsUpdate)
}

// Transition computes the next state for a setSyncEnabled request. Disabling
// resets lists to unsynced rather than deleting them locally, unless local
// deletion was explicitly requested; remote deletion is likewise opt-in.
func Transition(current SyncState, enabled, deleteLocal, deleteRemote bool) SyncState {
	next := current

	if enabled {
		next = next.Without(NeedsDisable)
		if deleteLocal {
			next = next.With(NeedsClearAndEnable)
		} else {
			next = next.With(NeedsEnable)
		}
		return next
	}

	next = next.Without(NeedsEnable | NeedsUpdate)
	next = next.With(NeedsLocalReset)
	if deleteRemote {
		next = next.With(NeedsRemoteDisable)
	}
	if deleteLocal {
		next = next.With(NeedsLocalClear)
	}
	return next
}

// String renders the set flags for logs.
func (s SyncState) String() string {
	if s == NeedsNothing {
		return "idle"
	}

	names := []struct {
		flag SyncState
		name string
	}{
		{NeedsRemoteEnable, "remote-enable"},
		{NeedsSync, "full-sync"},
		{NeedsUpdate, "update"},
		{NeedsRemoteDisable, "remote-disable"},
		{NeedsLocalReset, "local-reset"},
		{NeedsLocalArticleClear, "article-clear"},
		{NeedsLocalListClear, "list-clear"},
		{NeedsRandomLists, "random-lists"},
		{NeedsRandomEntries, "random-entries"},
	}

	var set []string
	for _, n := range names {
		if s.Has(n.flag) {
			set = append(set, n.name)
		}
	}
	return strings.Join(set, "+")
}
