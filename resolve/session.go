package resolve

import "sync"

// Verbosity controls how the ConflictResolver materializes losers into the
// transformed graph (spec §4.5.5).
type Verbosity uint8

const (
	// VerbosityNone prunes losers entirely; the result is a tree.
	VerbosityNone Verbosity = iota
	// VerbosityStandard retains losers with their children removed and
	// annotated with the winner/original-scope/original-optionality.
	VerbosityStandard
	// VerbosityFull retains everything, including cycles, unannotated save
	// for winner pointers.
	VerbosityFull
)

// ConflictImpl selects the ConflictResolver strategy (spec §4.5.6).
type ConflictImpl uint8

const (
	ConflictImplPath ConflictImpl = iota
	ConflictImplClassic
)

// Default configuration values (spec §6).
const (
	DefaultMaxExceptions = 50
	DefaultMaxCycles     = 10
)

// Session carries request-scoped configuration, the shared DataPool, and a
// thread-safe open keyed store used by components to memoize per-session
// helpers (spec §5, §9). A Session has no teardown step of its own in this
// module -- callers drop the reference when done; see Pool for the
// strong/weak interning lifecycle this implies.
type Session struct {
	Pool *DataPool

	// PoolWeak reports whether the DataPool this session was built with uses
	// weak artifact/dependency interning (the descriptor cache is always
	// strong). Informational here; the pool itself is constructed with the
	// mode already chosen (aether.dependencyCollector.pool.weak).
	PoolWeak bool

	// ManagerVerbose, when true, asks DependencyManager implementations to
	// record premanaged attributes on the node's data map
	// (aether.dependencyManager.verbose).
	ManagerVerbose bool

	// ConflictVerbosity controls loser handling in the resolver
	// (aether.conflictResolver.verbose).
	ConflictVerbosity Verbosity

	// ConflictImpl selects path vs classic resolution
	// (aether.conflictResolver.impl).
	ConflictImpl ConflictImpl

	// MaxExceptions caps CollectResult.Exceptions; negative means unlimited.
	MaxExceptions int

	// MaxCycles caps CollectResult.Cycles; negative means unlimited.
	MaxCycles int

	// IgnoreMissingDescriptors demotes descriptor-missing failures to an
	// empty-stub descriptor instead of an attached exception (spec §7).
	IgnoreMissingDescriptors bool

	// IgnoreInvalidDescriptors demotes descriptor-invalid failures the same
	// way.
	IgnoreInvalidDescriptors bool

	// IgnoreRepositoryDescriptors, when true, does not merge a descriptor's
	// own repository list into the inherited repositories while descending
	// (spec §4.3).
	IgnoreRepositoryDescriptors bool

	// IgnoreTailAvailability mirrors
	// aether.chainedLocalRepository.ignoreTailAvailability; consumed by
	// callers layering a chained local repository in front of
	// DescriptorSource/VersionRangeSource, not by the collector itself.
	IgnoreTailAvailability bool

	Comparator Comparator

	data keyedStore
}

// NewSession builds a Session with spec-documented defaults.
func NewSession(pool *DataPool, cmp Comparator) *Session {
	return &Session{
		Pool:                   pool,
		PoolWeak:               pool != nil && pool.mode == PoolWeak,
		ConflictImpl:           ConflictImplPath,
		MaxExceptions:          DefaultMaxExceptions,
		MaxCycles:              DefaultMaxCycles,
		IgnoreTailAvailability: true,
		Comparator:             cmp,
	}
}

// Data returns the session's thread-safe open keyed store.
func (s *Session) Data() *keyedStore {
	return &s.data
}

// keyedStore is a thread-safe, unbounded, never-auto-purged key/value store
// (spec §5, §9: "A session holds an open keyed store (get/set/compare-and-set)").
type keyedStore struct {
	mu sync.RWMutex
	m  map[interface{}]interface{}
}

func (k *keyedStore) Get(key interface{}) (interface{}, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.m[key]
	return v, ok
}

func (k *keyedStore) Set(key, value interface{}) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.m == nil {
		k.m = make(map[interface{}]interface{})
	}
	k.m[key] = value
}

// CompareAndSet atomically replaces key's value with newValue if and only if
// its current value equals oldValue (including the not-present case when
// oldValue is nil), returning whether the swap happened.
func (k *keyedStore) CompareAndSet(key, oldValue, newValue interface{}) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	cur, ok := k.m[key]
	if oldValue == nil {
		if ok {
			return false
		}
	} else if !ok || cur != oldValue {
		return false
	}
	if k.m == nil {
		k.m = make(map[interface{}]interface{})
	}
	k.m[key] = newValue
	return true
}
