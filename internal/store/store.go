// Package store holds the in-memory entity repositories of the reservation
// engine. Each entity type gets one Store instance, constructed in main.go and
// injected into the services that need it. Stores own their entities: callers
// always receive copies, and every mutation goes through Save, Update, or
// Delete under the store's lock.
package store

import (
	"fmt"
	"sync"

	"github.com/pkordes/caravan-share/internal/domain"
)

// Entity is satisfied by every domain type a Store can hold.
// EntityID returns zero for an entity that has never been saved.
type Entity[T any] interface {
	EntityID() int64
	WithID(id int64) T
}

// validator is implemented by entities that carry their own invariants.
type validator interface {
	Validate() error
}

// indexer maintains a secondary index inside the store's critical section.
// check may veto a write; add and remove keep the index in step with items.
type indexer[T any] interface {
	check(prev T, existed bool, next T) error
	add(prev T, existed bool, next T)
	remove(old T)
}

// Store is a keyed collection with store-local auto-incrementing identity.
// Lookups are O(1); FindAll is O(n) and returns entities in insertion order.
type Store[T Entity[T]] struct {
	mu     sync.RWMutex
	lastID int64
	items  map[int64]T
	order  []int64
	idx    indexer[T]
}

// New constructs an empty Store.
func New[T Entity[T]]() *Store[T] {
	return &Store[T]{items: make(map[int64]T)}
}

// Save upserts entity. An entity without identity receives the next unused
// positive id. Identities are never reused, and an explicitly supplied id
// moves the counter past it so later allocations cannot collide.
func (s *Store[T]) Save(entity T) (T, error) {
	var zero T
	if err := validate(entity); err != nil {
		return zero, fmt.Errorf("store.Save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.EntityID()
	prev, existed := s.items[id]
	if id == 0 {
		existed = false
	}
	if s.idx != nil {
		if err := s.idx.check(prev, existed, entity); err != nil {
			return zero, fmt.Errorf("store.Save: %w", err)
		}
	}

	if id == 0 {
		s.lastID++
		id = s.lastID
		entity = entity.WithID(id)
	} else if id > s.lastID {
		s.lastID = id
	}

	s.put(prev, existed, entity)
	return entity, nil
}

// FindByID returns the entity with the given id.
func (s *Store[T]) FindByID(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	return e, ok
}

// FindAll returns every entity in insertion order.
func (s *Store[T]) FindAll() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Len returns the number of stored entities.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Update applies fn to the stored entity as one atomic read-modify-write.
// fn receives a copy; its result replaces the stored entity unless fn
// returns an error, in which case nothing changes. The identity cannot be
// changed by fn.
// Returns domain.ErrNotFound if no entity has the given id.
func (s *Store[T]) Update(id int64, fn func(T) (T, error)) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.items[id]
	if !ok {
		return zero, fmt.Errorf("store.Update: id %d: %w", id, domain.ErrNotFound)
	}
	next, err := fn(prev)
	if err != nil {
		return zero, err
	}
	next = next.WithID(id)
	if err := validate(next); err != nil {
		return zero, fmt.Errorf("store.Update: %w", err)
	}
	if s.idx != nil {
		if err := s.idx.check(prev, true, next); err != nil {
			return zero, fmt.Errorf("store.Update: %w", err)
		}
	}

	s.put(prev, true, next)
	return next, nil
}

// Delete removes the entity with the given id and reports whether it existed.
// Delete is O(n) in the number of stored entities because insertion order is
// preserved.
func (s *Store[T]) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.items[id]
	if !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.idx != nil {
		s.idx.remove(old)
	}
	return true
}

// put writes entity and its index entries. Callers hold s.mu.
func (s *Store[T]) put(prev T, existed bool, entity T) {
	id := entity.EntityID()
	if !existed {
		s.order = append(s.order, id)
	}
	s.items[id] = entity
	if s.idx != nil {
		s.idx.add(prev, existed, entity)
	}
}

func validate(entity any) error {
	if v, ok := entity.(validator); ok {
		return v.Validate()
	}
	return nil
}
