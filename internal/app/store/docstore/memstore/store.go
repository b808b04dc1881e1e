// internal/app/store/docstore/memstore/store.go

// Package memstore is a memory-backed docstore.Store used by tests and
// local development. It mirrors the semantics the application relies on
// from MongoDB: equality filters match array fields by containment, and
// each watch delivers snapshots in mutation order.
package memstore

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dalemusser/studyhub/internal/app/store/docstore"
)

// Store implements docstore.Store in memory.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	watches     map[int]*watch
	nextWatchID int
	nextDocID   int
	failures    map[string]error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		watches:     make(map[int]*watch),
		failures:    make(map[string]error),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Failure injection (tests only)                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// InjectFailure makes every write op against (collection, id) fail with err.
// An empty id fails every write to the collection. Pass a nil err to clear.
func (s *Store) InjectFailure(collection, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := collection + "/" + id
	if err == nil {
		delete(s.failures, key)
		return
	}
	s.failures[key] = err
}

func (s *Store) failureFor(collection, id string) error {
	if err, ok := s.failures[collection+"/"+id]; ok {
		return err
	}
	if err, ok := s.failures[collection+"/"]; ok {
		return err
	}
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Writes                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) Insert(ctx context.Context, collection string, data map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDocID++
	id := "doc-" + strconv.Itoa(s.nextDocID)
	if err := s.failureFor(collection, id); err != nil {
		return "", err
	}
	s.apply(collection, id, data, false)
	return id, nil
}

func (s *Store) Create(ctx context.Context, collection, id string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failureFor(collection, id); err != nil {
		return err
	}
	if _, ok := s.collections[collection][id]; ok {
		return docstore.ErrExists
	}
	s.apply(collection, id, data, false)
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failureFor(collection, id); err != nil {
		return err
	}
	if _, ok := s.collections[collection][id]; !ok {
		return docstore.ErrNotFound
	}
	s.apply(collection, id, fields, true)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failureFor(collection, id); err != nil {
		return err
	}
	if _, ok := s.collections[collection][id]; !ok {
		return docstore.ErrNotFound
	}
	delete(s.collections[collection], id)
	s.notify(collection)
	return nil
}

// apply writes fields into the document, resolving server-timestamp
// sentinels, then queues snapshots for affected watches. Callers hold mu.
func (s *Store) apply(collection, id string, fields map[string]any, merge bool) {
	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]map[string]any)
		s.collections[collection] = col
	}
	doc := col[id]
	if doc == nil || !merge {
		doc = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		if docstore.IsServerTimestamp(v) {
			v = time.Now().UTC()
		}
		doc[k] = v
	}
	col[id] = doc
	s.notify(collection)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Reads                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: id, Data: copyDoc(doc)}, nil
}

func (s *Store) Find(ctx context.Context, collection string, filter docstore.Filter) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(collection, filter), nil
}

// snapshot materializes the filtered result set. Callers hold mu.
// Order is by document ID so repeated snapshots are stable; consumers sort.
func (s *Store) snapshot(collection string, filter docstore.Filter) []docstore.Document {
	out := make([]docstore.Document, 0)
	for id, doc := range s.collections[collection] {
		if matches(doc, filter) {
			out = append(out, docstore.Document{ID: id, Data: copyDoc(doc)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matches(doc map[string]any, filter docstore.Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if eq(got, want) {
			continue
		}
		// Array fields match by containment, like Mongo equality.
		if arr, ok := got.([]string); ok {
			found := false
			for _, e := range arr {
				if eq(e, want) {
					found = true
					break
				}
			}
			if found {
				continue
			}
		}
		if arr, ok := got.([]any); ok {
			found := false
			for _, e := range arr {
				if eq(e, want) {
					found = true
					break
				}
			}
			if found {
				continue
			}
		}
		return false
	}
	return true
}

func eq(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	return a == b
}

/*─────────────────────────────────────────────────────────────────────────────*
| Watches                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

type watch struct {
	collection string
	filter     docstore.Filter
	fn         docstore.SnapshotFunc

	mu     sync.Mutex
	queue  [][]docstore.Document
	wake   chan struct{}
	done   chan struct{}
	cancel sync.Once
}

func (w *watch) enqueue(snap []docstore.Document) {
	w.mu.Lock()
	w.queue = append(w.queue, snap)
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// run delivers queued snapshots one at a time, preserving mutation order.
func (w *watch) run() {
	for {
		select {
		case <-w.done:
			return
		case <-w.wake:
		}
		for {
			w.mu.Lock()
			if len(w.queue) == 0 {
				w.mu.Unlock()
				break
			}
			snap := w.queue[0]
			w.queue = w.queue[1:]
			w.mu.Unlock()

			select {
			case <-w.done:
				return
			default:
			}
			w.fn(snap)
		}
	}
}

func (s *Store) Watch(ctx context.Context, collection string, filter docstore.Filter, fn docstore.SnapshotFunc) (docstore.CancelFunc, error) {
	w := &watch{
		collection: collection,
		filter:     filter,
		fn:         fn,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	s.mu.Lock()
	s.nextWatchID++
	id := s.nextWatchID
	s.watches[id] = w
	w.enqueue(s.snapshot(collection, filter))
	s.mu.Unlock()

	go w.run()

	cancel := func() {
		w.cancel.Do(func() {
			close(w.done)
			s.mu.Lock()
			delete(s.watches, id)
			s.mu.Unlock()
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				cancel()
			case <-w.done:
			}
		}()
	}

	return cancel, nil
}

// notify queues fresh snapshots for every watch on the collection.
// Callers hold mu.
func (s *Store) notify(collection string) {
	for _, w := range s.watches {
		if w.collection == collection {
			w.enqueue(s.snapshot(collection, w.filter))
		}
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func copyDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if arr, ok := v.([]string); ok {
			cp := make([]string, len(arr))
			copy(cp, arr)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}

