package protocols

import (
	"fmt"

	"github.com/shaih/go-bbsim/communication"
)

// Subprotocol is a protocol instance nested in another one.
// BaseRound is the round of the parent at which the round 0 of the subprotocol happens.
type Subprotocol struct {
	Name       string
	BaseRound  int
	Node       Node
	IO         *communication.IO
	Terminated bool
}

// Step executes the subprotocol round corresponding to the parent round.
// Stepping a terminated subprotocol does nothing.
func (s *Subprotocol) Step(parentRound int) (bool, error) {
	if s.Terminated {
		return true, nil
	}
	round := parentRound - s.BaseRound
	if round < 0 {
		return false, fmt.Errorf("subprotocol %s starts at parent round %d, cannot run parent round %d: %w",
			s.Name, s.BaseRound, parentRound, communication.ErrInvalidRound)
	}
	done, err := s.Node.Step(round)
	if err != nil {
		return false, fmt.Errorf("subprotocol %s round %d failed: %w", s.Name, round, err)
	}
	s.Terminated = done
	return done, nil
}

// Arena holds the subprotocols of a node, by instance name
type Arena struct {
	subs  map[string]*Subprotocol
	names []string // in creation order
}

// NewArena returns an empty arena
func NewArena() *Arena {
	return &Arena{
		subs: make(map[string]*Subprotocol),
	}
}

// Get returns the subprotocol with the given instance name
func (a *Arena) Get(name string) (*Subprotocol, bool) {
	s, ok := a.subs[name]
	return s, ok
}

// Names returns the instance names of the subprotocols in creation order
func (a *Arena) Names() []string {
	return append([]string(nil), a.names...)
}

// Len returns the number of subprotocols
func (a *Arena) Len() int {
	return len(a.names)
}

func (a *Arena) add(s *Subprotocol) error {
	if _, ok := a.subs[s.Name]; ok {
		return fmt.Errorf("subprotocol %s already exists", s.Name)
	}
	a.subs[s.Name] = s
	a.names = append(a.names, s.Name)
	return nil
}

// SubInstanceName is the instance name of the subprotocol suffix of instance
func SubInstanceName(instance string, suffix string) string {
	return instance + "-" + suffix
}

// StartSubprotocol creates a subprotocol of the node on the instance named after suffix,
// whose round 0 is the parent round parentRound.
// The subprotocol runs as the same party, with its own IO tape.
func (b *BaseNode) StartSubprotocol(
	suffix string,
	parentRound int,
	io *communication.IO,
	ctor Constructor,
) (*Subprotocol, error) {
	name := SubInstanceName(b.Instance, suffix)
	if _, ok := b.Arena.Get(name); ok {
		return nil, fmt.Errorf("subprotocol %s already exists", name)
	}

	node, err := ctor(Params{
		Instance: name,
		ID:       b.Params.ID,
		Secret:   b.Secret,
		N:        b.N,
		Net:      b.Net,
		IO:       io,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subprotocol %s: %w", name, err)
	}

	sub := &Subprotocol{
		Name:      name,
		BaseRound: parentRound,
		Node:      node,
		IO:        io,
	}
	if err := b.Arena.add(sub); err != nil {
		return nil, err
	}
	b.Log.WithField("sub", name).Debugf("started subprotocol at round %d", parentRound)
	return sub, nil
}
