package readinglist

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine keeps local reading lists consistent with the remote service. It
// owns the sync state machine, the debounced trigger, and the reconciliation
// cycle. At most one cycle runs at a time; triggers while one is in flight
// are dropped, and the next debounce tick picks up whatever that cycle
// missed.
type Engine struct {
	store  *Store
	client RemoteClient
	log    *zap.Logger
	cfg    SyncConfig

	onStateChange func(SyncState)

	mu       sync.Mutex
	debounce *time.Timer
	started  bool
	stop     chan struct{}
	wg       sync.WaitGroup

	running atomic.Bool
}

// NewEngine creates a sync engine over the given store and remote client.
func NewEngine(store *Store, client RemoteClient, log *zap.Logger, cfg SyncConfig) *Engine {
	return &Engine{
		store:  store,
		client: client,
		log:    log,
		cfg:    cfg.withDefaults(),
	}
}

// OnStateChange registers a hook invoked whenever the persisted sync state
// changes. Must be called before Start.
func (e *Engine) OnStateChange(fn func(SyncState)) {
	e.onStateChange = fn
}

// Start begins the periodic sync trigger.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	e.stop = make(chan struct{})

	interval := time.Duration(e.cfg.IntervalSeconds) * time.Second
	stop := e.stop
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				e.Trigger()
			}
		}
	}()
}

// Stop cancels the periodic trigger and any pending debounce, then waits for
// an in-flight cycle to finish. A running cycle is never cancelled mid-way.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	close(e.stop)
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
	e.mu.Unlock()

	e.wg.Wait()
}

// Trigger schedules a sync cycle after the debounce window. A pending
// schedule is cancelled and rescheduled, coalescing bursts of edits into one
// network pass.
func (e *Engine) Trigger() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}
	if e.debounce != nil {
		e.debounce.Stop()
	}
	delay := time.Duration(e.cfg.DebounceMillis) * time.Millisecond
	e.debounce = time.AfterFunc(delay, e.dispatch)
}

func (e *Engine) dispatch() {
	e.mu.Lock()
	if !e.started || e.running.Load() {
		// An in-flight cycle will be followed by another trigger if state
		// is still pending; do not queue.
		e.mu.Unlock()
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.wg.Done()
		if err := e.RunCycle(context.Background()); err != nil {
			e.log.Warn("Sync cycle failed", zap.Error(err))
		}
	}()
}

// SetSyncEnabled computes the new sync state for an enable/disable request,
// persists it only if it changed, and triggers a cycle.
func (e *Engine) SetSyncEnabled(enabled, deleteLocalLists, deleteRemoteLists bool) error {
	prev, next, err := e.store.UpdateState(func(current SyncState) SyncState {
		return Transition(current, enabled, deleteLocalLists, deleteRemoteLists)
	})
	if err != nil {
		return err
	}
	e.announceState(prev, next)

	e.Trigger()
	return nil
}

// RunCycle executes one reconciliation pass: pending state-machine work
// first (clears, remote enable/disable, reset), then local-to-remote pushes,
// then remote-to-local pulls. Per-item network failures are logged and left
// dirty for the next cycle; only state-machine failures abort.
//
// The cycle works from a snapshot of the state but persists only the flags
// it actually consumed or raised, applied against a fresh read. A disable
// request landing mid-cycle keeps its flags instead of being overwritten.
func (e *Engine) RunCycle(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return nil
	}
	defer e.running.Store(false)

	state, err := e.store.State()
	if err != nil {
		return err
	}
	var cleared SyncState

	if state.Has(NeedsLocalListClear) {
		if err := e.store.ClearLocalLists(); err != nil {
			return fmt.Errorf("local list clear: %w", err)
		}
		cleared = cleared.With(NeedsLocalListClear)
	}
	if state.Has(NeedsLocalArticleClear) {
		if err := e.store.ClearLocalArticles(); err != nil {
			return fmt.Errorf("local article clear: %w", err)
		}
		cleared = cleared.With(NeedsLocalArticleClear)
	}

	if state.Has(NeedsRemoteEnable) {
		if err := e.client.Setup(ctx); err != nil {
			// Leave the flag set; the next cycle retries.
			_ = e.clearFlags(cleared)
			return fmt.Errorf("remote enable: %w", err)
		}
		cleared = cleared.With(NeedsRemoteEnable)
	}

	if state.Has(NeedsRemoteDisable) {
		if err := e.client.Teardown(ctx); err != nil {
			_ = e.clearFlags(cleared)
			return fmt.Errorf("remote disable: %w", err)
		}
		cleared = cleared.With(NeedsRemoteDisable)
	}

	if state.Has(NeedsLocalReset) {
		if err := e.store.ResetToUnsynced(); err != nil {
			_ = e.clearFlags(cleared)
			return fmt.Errorf("local reset: %w", err)
		}
		cleared = cleared.With(NeedsLocalReset)
	}

	if state.Has(NeedsRandomLists) || state.Has(NeedsRandomEntries) {
		if e.cfg.DebugSeed {
			e.seedRandomData(state)
		}
		cleared = cleared.With(NeedsRandomLists | NeedsRandomEntries)
	}

	if !state.IsSyncEnabled() {
		return e.clearFlags(cleared)
	}

	full := state.Has(NeedsSync)
	fullDone := false

	e.pushLocalLists(ctx)
	e.pushLocalEntries(ctx)

	if err := e.pullRemoteChanges(ctx, full); err != nil {
		e.log.Warn("Remote fetch failed; keeping watermark", zap.Error(err))
	} else if full {
		fullDone = true
	}

	return e.commitState(func(current SyncState) SyncState {
		if fullDone && current.Has(NeedsSync) {
			// Full sync done; drop to incremental updates from the
			// watermark. Skipped if a disable landed mid-cycle.
			current = current.Without(NeedsSync).With(NeedsUpdate)
		}
		return current.Without(cleared)
	})
}

// clearFlags drops the flags the cycle consumed from the persisted state,
// keeping anything other writers raised meanwhile.
func (e *Engine) clearFlags(cleared SyncState) error {
	if cleared == NeedsNothing {
		return nil
	}
	return e.commitState(func(current SyncState) SyncState {
		return current.Without(cleared)
	})
}

// commitState folds a cycle's outcome into a freshly read state.
func (e *Engine) commitState(apply func(SyncState) SyncState) error {
	prev, next, err := e.store.UpdateState(apply)
	if err != nil {
		return err
	}
	e.announceState(prev, next)
	return nil
}

// announceState logs a persisted state change and fires the change hook.
func (e *Engine) announceState(prev, next SyncState) {
	if prev == next {
		return
	}
	e.log.Info("Sync state changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
	)
	if e.onStateChange != nil {
		e.onStateChange(next)
	}
}

// seedRandomData populates the store with throwaway lists and entries.
// Debug tooling only.
func (e *Engine) seedRandomData(state SyncState) {
	if state.Has(NeedsRandomLists) {
		for i := 0; i < 5; i++ {
			name := "debug-" + uuid.NewString()[:8]
			if _, err := e.store.CreateList(name, "seeded"); err != nil {
				e.log.Warn("Seed list failed", zap.Error(err))
			}
		}
	}
	if state.Has(NeedsRandomEntries) {
		lists, err := e.store.Lists()
		if err != nil {
			e.log.Warn("Seed entries failed", zap.Error(err))
			return
		}
		for _, l := range lists {
			ref := ArticleRef{Project: "en.wikipedia.org", Title: "Debug " + uuid.NewString()[:8]}
			if err := e.store.AddArticles(l.ID, []ArticleRef{ref}); err != nil {
				e.log.Warn("Seed entry failed", zap.Uint("list", l.ID), zap.Error(err))
			}
		}
	}
}
