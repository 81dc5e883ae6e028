package store

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	dbm "github.com/tendermint/tm-db"
)

// ErrNotFound is returned, wrapped, when a requested record is absent.
var ErrNotFound = errors.New("not found")

type pendingOp struct {
	value   []byte
	deleted bool
}

/*
Store persists the contract state in a tm-db database.

Writes are buffered until Commit, which applies them in a single batch, so a
transition either lands as a whole or not at all. Reads and iteration see the
buffered writes. Store is not safe for concurrent use; callers serialize
transitions.
*/
type Store struct {
	db      dbm.DB
	pending map[string]pendingOp

	// committed order counts, nil until first requested
	counts *orderCounts
}

type orderCounts struct {
	asks, bids int
}

// NewStore returns a Store backed by db.
func NewStore(db dbm.DB) *Store {
	return &Store{db: db, pending: make(map[string]pendingOp)}
}

// DB returns the underlying database.
func (s *Store) DB() dbm.DB {
	return s.db
}

// Commit writes all buffered changes atomically.
func (s *Store) Commit() error {
	if len(s.pending) == 0 {
		return nil
	}

	var delta orderCounts
	if s.counts != nil {
		var err error
		if delta, err = s.pendingOrderDelta(); err != nil {
			return err
		}
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	for _, k := range s.pendingKeys() {
		op := s.pending[k]
		if op.deleted {
			if err := batch.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := batch.Set([]byte(k), op.value); err != nil {
			return err
		}
	}
	if err := batch.WriteSync(); err != nil {
		return err
	}

	if s.counts != nil {
		s.counts.asks += delta.asks
		s.counts.bids += delta.bids
	}
	s.pending = make(map[string]pendingOp)
	return nil
}

// OrderCounts returns the number of committed asks and bids. The first call
// counts the stored keys; Commit keeps the counts current afterwards.
func (s *Store) OrderCounts() (asks, bids int, err error) {
	if s.counts == nil {
		c := new(orderCounts)
		if c.asks, err = s.countKeys(prefixAsk); err != nil {
			return 0, 0, err
		}
		if c.bids, err = s.countKeys(prefixBid); err != nil {
			return 0, 0, err
		}
		s.counts = c
	}
	return s.counts.asks, s.counts.bids, nil
}

func (s *Store) countKeys(prefix int64) (int, error) {
	start, end := prefixRange(prefix)
	it, err := s.db.Iterator(start, end)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	n := 0
	for ; it.Valid(); it.Next() {
		n++
	}
	return n, it.Error()
}

// pendingOrderDelta returns how Commit will change the committed order
// counts: created keys add one, deleted existing keys remove one.
func (s *Store) pendingOrderDelta() (orderCounts, error) {
	var delta orderCounts
	askStart, _ := prefixRange(prefixAsk)
	bidStart, _ := prefixRange(prefixBid)

	for k, op := range s.pending {
		kb := []byte(k)
		var n *int
		switch {
		case bytes.HasPrefix(kb, askStart):
			n = &delta.asks
		case bytes.HasPrefix(kb, bidStart):
			n = &delta.bids
		default:
			continue
		}
		exists, err := s.db.Has(kb)
		if err != nil {
			return delta, err
		}
		switch {
		case op.deleted && exists:
			*n--
		case !op.deleted && !exists:
			*n++
		}
	}
	return delta, nil
}

// Discard drops all buffered changes.
func (s *Store) Discard() {
	s.pending = make(map[string]pendingOp)
}

// Dirty reports whether there are buffered changes.
func (s *Store) Dirty() bool {
	return len(s.pending) > 0
}

func (s *Store) pendingKeys() []string {
	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) get(key []byte) ([]byte, error) {
	if op, ok := s.pending[string(key)]; ok {
		if op.deleted {
			return nil, nil
		}
		return op.value, nil
	}
	return s.db.Get(key)
}

func (s *Store) has(key []byte) (bool, error) {
	bz, err := s.get(key)
	return bz != nil, err
}

func (s *Store) set(key, value []byte) {
	s.pending[string(key)] = pendingOp{value: value}
}

func (s *Store) delete(key []byte) {
	s.pending[string(key)] = pendingOp{deleted: true}
}

// iterate calls fn for every live key in [start, end) in key order, merging
// buffered writes over the database contents.
func (s *Store) iterate(start, end []byte, fn func(key, value []byte) error) error {
	type entry struct {
		key   string
		value []byte
	}
	var entries []entry
	seen := make(map[string]bool)

	it, err := s.db.Iterator(start, end)
	if err != nil {
		return err
	}
	for ; it.Valid(); it.Next() {
		k := string(it.Key())
		if op, ok := s.pending[k]; ok {
			seen[k] = true
			if !op.deleted {
				entries = append(entries, entry{k, op.value})
			}
			continue
		}
		v := make([]byte, len(it.Value()))
		copy(v, it.Value())
		entries = append(entries, entry{k, v})
	}
	if err := it.Error(); err != nil {
		it.Close()
		return err
	}
	if err := it.Close(); err != nil {
		return err
	}

	for k, op := range s.pending {
		if seen[k] || op.deleted {
			continue
		}
		kb := []byte(k)
		if bytes.Compare(kb, start) >= 0 && (end == nil || bytes.Compare(kb, end) < 0) {
			entries = append(entries, entry{k, op.value})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	for _, e := range entries {
		if err := fn([]byte(e.key), e.value); err != nil {
			return err
		}
	}
	return nil
}

// any reports whether [start, end) holds at least one live key.
func (s *Store) any(start, end []byte) (bool, error) {
	found := false
	err := s.iterate(start, end, func(_, _ []byte) error {
		found = true
		return errStop
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	return found, err
}

var errStop = errors.New("stop iteration")

func (s *Store) load(key []byte, v interface{}) error {
	bz, err := s.get(key)
	if err != nil {
		return err
	}
	if bz == nil {
		return fmt.Errorf("key %X: %w", key, ErrNotFound)
	}
	return json.Unmarshal(bz, v)
}

func (s *Store) save(key []byte, v interface{}) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.setIfChanged(key, bz)
}

// setIfChanged buffers a write only when value differs from what is stored.
func (s *Store) setIfChanged(key, value []byte) error {
	cur, err := s.get(key)
	if err != nil {
		return err
	}
	if cur != nil && bytes.Equal(cur, value) {
		return nil
	}
	s.set(key, value)
	return nil
}
