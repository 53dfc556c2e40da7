// Package scrollstore records viewport offsets per navigated location so
// that history navigations can restore them.
package scrollstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Position is a viewport scroll offset in pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the position as "x,y".
func (p Position) String() string {
	return strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
}

// ParsePosition parses the "x,y" form produced by String.
func ParsePosition(s string) (Position, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Position{}, fmt.Errorf("scrollstore: malformed position %q", s)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Position{}, fmt.Errorf("scrollstore: malformed position %q: %w", s, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Position{}, fmt.Errorf("scrollstore: malformed position %q: %w", s, err)
	}
	return Position{X: x, Y: y}, nil
}

// Store persists offsets keyed by location path.
type Store interface {
	// Save records pos for location, replacing any earlier offset.
	Save(ctx context.Context, location string, pos Position) error

	// Lookup returns the recorded offset for location.
	Lookup(ctx context.Context, location string) (Position, bool, error)
}

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu        sync.RWMutex
	positions map[string]Position
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, location string, pos Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.positions == nil {
		m.positions = make(map[string]Position)
	}
	m.positions[location] = pos
	return nil
}

// Lookup implements Store.
func (m *Memory) Lookup(_ context.Context, location string) (Position, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos, ok := m.positions[location]
	return pos, ok, nil
}

// Len returns the number of recorded locations.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.positions)
}
