package persona

import (
	"errors"
	"fmt"
)

// ErrPersonaNotFound is returned when a persona id is not registered.
var ErrPersonaNotFound = errors.New("persona not found")

// Store exposes persona retrieval for HTTP handlers and services.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
	Get(id string) (Persona, error)
}

// MemoryStore implements Store with an in-memory slice and an id index.
type MemoryStore struct {
	items []Persona
	index map[string]int
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
// Later duplicates of an id are ignored so the first definition wins.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{
		items: make([]Persona, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if _, exists := s.index[item.ID]; exists {
			continue
		}
		s.index[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

// List returns the registered personas in registration order.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	i, ok := s.index[id]
	if !ok {
		return Persona{}, false
	}
	return s.items[i], true
}

// Get is FindByID with an error for unknown ids.
func (s *MemoryStore) Get(id string) (Persona, error) {
	p, ok := s.FindByID(id)
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrPersonaNotFound, id)
	}
	return p, nil
}
