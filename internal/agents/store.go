package agents

import (
	"fmt"
	"sync"
	"time"

	"helios/internal/tools"
	"helios/pkg/logger"
)

// ToolResolver is the slice of the tool registry the store needs to verify
// tool references at storage time.
type ToolResolver interface {
	Get(name string) (*tools.Descriptor, error)
}

// Store holds agent definitions in memory. Listings preserve creation
// order; an upsert keeps the agent's original position.
type Store struct {
	mu               sync.RWMutex
	byName           map[string]*Definition
	order            []string
	resolver         ToolResolver
	rejectDuplicates bool
	log              *logger.Logger
}

// NewStore constructs an empty agent store. With rejectDuplicates set,
// saving an existing name fails instead of updating in place.
func NewStore(resolver ToolResolver, rejectDuplicates bool) *Store {
	return &Store{
		byName:           make(map[string]*Definition),
		resolver:         resolver,
		rejectDuplicates: rejectDuplicates,
		log:              logger.Get().With("component", "agent_store"),
	}
}

// Save validates and stores a definition. Every tool the definition names
// must currently exist in the registry; disabled tools may still be
// referenced and are caught at run start instead.
func (s *Store) Save(def *Definition) error {
	if def == nil {
		return fmt.Errorf("nil agent definition")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	for _, name := range def.ToolNames {
		if _, err := s.resolver.Get(name); err != nil {
			return fmt.Errorf("agent %s: %w", def.Name, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := def.clone()
	now := time.Now()
	if existing, exists := s.byName[def.Name]; exists {
		if s.rejectDuplicates {
			return fmt.Errorf("%w: %s", ErrAgentExists, def.Name)
		}
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = now
		s.byName[def.Name] = stored
		s.log.Infow("Updated agent", "name", def.Name)
		return nil
	}

	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.byName[def.Name] = stored
	s.order = append(s.order, def.Name)
	s.log.Infow("Created agent", "name", def.Name, "tools", len(def.ToolNames))
	return nil
}

// Get retrieves a definition by name.
func (s *Store) Get(name string) (*Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return def.clone(), nil
}

// List returns all definitions in creation order.
func (s *Store) List() []*Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Definition, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byName[name].clone())
	}
	return out
}

// Delete removes a definition by name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.log.Infow("Deleted agent", "name", name)
	return nil
}
