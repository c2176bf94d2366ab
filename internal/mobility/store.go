// Position storage for simulated radio endpoints
package mobility

import (
	"fmt"
	"math"
	"sync"
)

// Position is a point in metres.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z,omitempty" yaml:"z,omitempty"`
}

// String formats p like "0.3:0:0".
func (p Position) String() string {
	return fmt.Sprintf("%g:%g:%g", p.X, p.Y, p.Z)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Position) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y) + (a.Z-b.Z)*(a.Z-b.Z))
}

// Handle identifies one endpoint in a Store. The zero Handle is never issued.
type Handle uint32

// Store owns endpoint positions and hands out stable handles for them.
type Store struct {
	mu        sync.RWMutex
	positions []Position
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Add registers an endpoint at p.
func (s *Store) Add(p Position) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = append(s.positions, p)
	return Handle(len(s.positions))
}

// Set moves the endpoint h to p.
func (s *Store) Set(h Handle, p Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[s.index(h)] = p
}

// Position returns the current position of h.
func (s *Store) Position(h Handle) Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions[s.index(h)]
}

// Distance returns the distance between two endpoints.
func (s *Store) Distance(a, b Handle) float64 {
	return Distance(s.Position(a), s.Position(b))
}

// Len returns the number of registered endpoints.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions)
}

func (s *Store) index(h Handle) int {
	i := int(h) - 1
	if i < 0 || i >= len(s.positions) {
		panic(fmt.Sprintf("mobility: unknown handle %d", h))
	}
	return i
}
