package store

import (
	"sort"

	"github.com/ngaut/log"
	"github.com/pingcap/errors"
)

// ErrMergeFailed is returned by Commit when merging the innermost frame into
// its parent cannot be completed consistently. The failed frame is rolled
// back before the error is returned, so either the whole frame's changes land
// in the parent or none do.
var ErrMergeFailed = errors.New("transaction merge failure")

// MergeCheck validates one record before Commit merges it into the parent
// frame. Returning a non-nil error aborts the commit: the frame is rolled
// back and Commit reports ErrMergeFailed.
type MergeCheck func(key string, rec Record) error

// Store is an in-memory key-value store with nested transactions. Inner
// transactions win: when an outer and an inner transaction both modify the
// same key, committing both leaves the inner transaction's value.
//
// The store is a single state machine for a single logical caller. It does no
// locking; a concurrent deployment must serialize whole operations externally.
type Store struct {
	base       baseLayer
	frames     []frame
	mergeCheck MergeCheck
}

// Option configures a Store.
type Option func(*Store)

// WithMergeCheck installs a commit-time validation hook.
func WithMergeCheck(check MergeCheck) Option {
	return func(s *Store) {
		s.mergeCheck = check
	}
}

const defaultBaseDegree = 32

// NewStore returns an empty store with no open transaction.
func NewStore(opts ...Option) *Store {
	return NewStoreWithDegree(defaultBaseDegree, opts...)
}

// NewStoreWithDegree is NewStore with an explicit btree degree for the base
// layer. Degree must be at least 2.
func NewStoreWithDegree(degree int, opts ...Option) *Store {
	s := &Store{base: newBaseLayer(degree)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Depth returns the number of open transaction frames. Zero means every
// write goes straight to the base layer.
func (s *Store) Depth() int {
	return len(s.frames)
}

// top returns the innermost frame. Callers must ensure Depth() > 0.
func (s *Store) top() frame {
	return s.frames[len(s.frames)-1]
}

// Set inserts or updates key with value in the innermost frame.
func (s *Store) Set(key, value string) {
	depth := len(s.frames)
	if depth == 0 {
		s.base.set(key, value)
		return
	}

	// Record what was visible for the key immediately before this frame, so
	// Rollback can restore it. With a single open transaction that is the
	// base layer's value. Deeper than that, only the immediate parent frame
	// is consulted: if it holds no record the previous value is recorded as
	// absent even when an older ancestor knows the key.
	var prev Change
	if depth == 1 {
		if v, ok := s.base.get(key); ok {
			prev = setValue(v)
		} else {
			prev = none()
		}
	} else {
		parent := s.frames[depth-2]
		if rec, ok := parent[key]; ok && rec.Current.Kind == ChangeSet {
			prev = setValue(rec.Current.Value)
		} else {
			prev = none()
		}
	}
	s.top()[key] = Record{Previous: prev, Current: setValue(value)}
}

// Get returns the value visible for key, resolving frames innermost to
// outermost. The second return value is false when the key is absent or
// pending deletion.
func (s *Store) Get(key string) (string, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if rec, ok := s.frames[i][key]; ok {
			if rec.Current.Kind == ChangeSet {
				return rec.Current.Value, true
			}
			// Pending delete: the key is visible as absent.
			return "", false
		}
	}
	return s.base.get(key)
}

// Unset removes key so it resolves as absent from the innermost frame on.
//
// Inside a transaction, a record already held by the innermost frame is
// simply dropped, undoing only this frame's change to the key. Otherwise a
// pending delete is recorded, but only when the key exists in the base
// layer: a key living solely in an outer uncommitted frame is left alone.
func (s *Store) Unset(key string) {
	if len(s.frames) == 0 {
		s.base.delete(key)
		return
	}
	top := s.top()
	if _, ok := top[key]; ok {
		delete(top, key)
		return
	}
	if v, ok := s.base.get(key); ok {
		top[key] = Record{Previous: setValue(v), Current: deleted()}
	}
}

// Find returns the keys whose currently resolved value equals value, sorted
// and deduplicated. Candidates are gathered from every frame and the base
// layer, then re-resolved through Get to discard matches that are shadowed
// by an inner frame.
func (s *Store) Find(value string) []string {
	matched := make(map[string]struct{})
	keep := func(key string) {
		if v, ok := s.Get(key); ok && v == value {
			matched[key] = struct{}{}
		}
	}
	for i := len(s.frames) - 1; i >= 0; i-- {
		for key, rec := range s.frames[i] {
			if rec.Current.Kind == ChangeSet && rec.Current.Value == value {
				keep(key)
			}
		}
	}
	s.base.ascend(func(key, v string) bool {
		if v == value {
			keep(key)
		}
		return true
	})

	keys := make([]string, 0, len(matched))
	for key := range matched {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Counts returns how many keys currently resolve to value.
func (s *Store) Counts(value string) int {
	return len(s.Find(value))
}

// Begin opens a new transaction by pushing an empty frame. Nesting depth is
// unbounded.
func (s *Store) Begin() {
	s.frames = append(s.frames, make(frame))
}

// Commit merges the innermost frame into its parent, then pops it. With no
// open transaction it is a no-op.
//
// Value records replace the parent's record for the same key wholesale; that
// replacement is what makes inner transactions win. A pending delete meeting
// a parent record drops that record instead of propagating, a pending delete
// over the base layer removes the key for good, and a pending delete over a
// parent frame without a record is copied up one level.
//
// If a merge check is installed it runs over the whole frame before anything
// is applied; on failure the frame is rolled back and ErrMergeFailed is
// returned with no partial merge left behind.
func (s *Store) Commit() error {
	depth := len(s.frames)
	if depth == 0 {
		return nil
	}
	top := s.top()

	if s.mergeCheck != nil {
		for key, rec := range top {
			if err := s.mergeCheck(key, rec); err != nil {
				s.Rollback()
				return errors.Annotatef(ErrMergeFailed, "key %q: %v", key, err)
			}
		}
	}

	for key, rec := range top {
		if rec.Current.Kind == ChangeDelete {
			if depth == 1 {
				s.base.delete(key)
				continue
			}
			parent := s.frames[depth-2]
			if _, ok := parent[key]; ok {
				// The delete absorbs the parent's own pending change.
				delete(parent, key)
			} else {
				parent[key] = rec
			}
			continue
		}
		if depth == 1 {
			s.base.set(key, rec.Current.Value)
		} else {
			s.frames[depth-2][key] = rec
		}
	}
	s.frames = s.frames[:depth-1]
	return nil
}

// Rollback discards the innermost frame, restoring the visibility every key
// had before the frame began, then pops it. With no open transaction it is a
// no-op. Keys created by the frame are simply forgotten.
func (s *Store) Rollback() {
	depth := len(s.frames)
	if depth == 0 {
		return
	}
	for key, rec := range s.top() {
		if rec.Previous.Kind != ChangeSet {
			continue
		}
		if depth == 1 {
			s.base.set(key, rec.Previous.Value)
			continue
		}
		parent := s.frames[depth-2]
		parentRec, ok := parent[key]
		if !ok {
			// The parent is expected to hold a record whenever Previous is
			// set; recover by creating one that restores the old value.
			log.Warnf("rollback: parent frame has no record for key %q, recreating", key)
			parent[key] = Record{Previous: none(), Current: setValue(rec.Previous.Value)}
			continue
		}
		parentRec.Current = rec.Previous
		parent[key] = parentRec
	}
	s.frames = s.frames[:depth-1]
}
