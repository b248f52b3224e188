// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package example

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("example not found")
)

// Example is the resource managed by the module.
type Example struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store keeps examples in memory, ordered by creation.
type Store struct {
	lock     sync.RWMutex
	items    map[string]Example
	ordering []string
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		items: make(map[string]Example),
		now:   time.Now,
	}
}

// Create assigns a new id to example and saves it.
func (s *Store) Create(name, description string, priority int) Example {
	s.lock.Lock()
	defer s.lock.Unlock()

	example := Example{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Priority:    priority,
		CreatedAt:   s.now().UTC(),
	}
	s.items[example.ID] = example
	s.ordering = append(s.ordering, example.ID)
	return example
}

func (s *Store) Get(id string) (Example, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	example, ok := s.items[strings.ToLower(id)]
	if !ok {
		return Example{}, ErrNotFound
	}
	return example, nil
}

// List returns at most limit examples starting from offset, and the total number of examples.
func (s *Store) List(offset, limit int) ([]Example, int) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	total := len(s.ordering)
	if offset >= total {
		return []Example{}, total
	}

	end := min(offset+limit, total)
	page := make([]Example, 0, end-offset)
	for _, id := range slices.Clone(s.ordering[offset:end]) {
		page = append(page, s.items[id])
	}
	return page, total
}
