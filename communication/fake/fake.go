package fake

import (
	"fmt"
	"sync"

	"github.com/shaih/go-bbsim/communication"
)

// roundMsgs[instance][target][src] is the list of payloads src sent to target
type roundMsgs map[string]map[int]map[int][][]byte

// Network simulates a synchronous network:
// a message sent at round r is visible to every target from round r+1 on
type Network struct {
	mu         sync.Mutex
	msgs       []roundMsgs    // messages for each (absolute) round
	baseRounds map[string]int // base round of every instance
	round      int
	metrics    *Metrics
}

var _ communication.Network = (*Network)(nil)

// NewNetwork creates a new synchronous network at round 0
func NewNetwork() *Network {
	n := &Network{
		baseRounds: make(map[string]int),
		metrics:    NewDiscardMetrics(),
	}
	n.setRound(0)
	return n
}

// SetMetrics sets the metrics updated by the network
func (n *Network) SetMetrics(m *Metrics) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.metrics = m
}

// NewInstance registers instance with the current round as base round
func (n *Network) NewInstance(instance string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.baseRounds[instance]; !ok {
		n.baseRounds[instance] = n.round
	}
}

// BaseRound returns the base round of instance
func (n *Network) BaseRound(instance string) (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	base, ok := n.baseRounds[instance]
	return base, ok
}

// Round returns the current round
func (n *Network) Round() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.round
}

// SetRound advances the network to round. Rounds never go back.
func (n *Network) SetRound(round int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.setRound(round)
}

func (n *Network) setRound(round int) {
	if round < n.round {
		return
	}
	n.round = round
	for len(n.msgs) <= round {
		n.msgs = append(n.msgs, make(roundMsgs))
	}
}

// Send records payload sent by src to every target at the current round
func (n *Network) Send(instance string, src int, targets []int, payload []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.send(instance, src, targets, payload)
	n.metrics.Sent.Add(float64(len(targets)))
	n.metrics.Delivered.Add(float64(len(targets)))
}

// send stores the messages in the bucket of the current round
func (n *Network) send(instance string, src int, targets []int, payload []byte) {
	byTarget, ok := n.msgs[n.round][instance]
	if !ok {
		byTarget = make(map[int]map[int][][]byte)
		n.msgs[n.round][instance] = byTarget
	}

	for _, target := range targets {
		bySrc, ok := byTarget[target]
		if !ok {
			bySrc = make(map[int][][]byte)
			byTarget[target] = bySrc
		}
		bySrc[src] = append(bySrc[src], payload)
	}
}

// GetAllMessages returns all messages sent to target at round (relative to the instance base round).
// Only rounds strictly before the current round can be read.
func (n *Network) GetAllMessages(instance string, round int, target int) (map[int][][]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	bySrc, err := n.getAllMessages(instance, round, target)
	if err != nil {
		return nil, err
	}

	res := make(map[int][][]byte, len(bySrc))
	for src, list := range bySrc {
		res[src] = append([][]byte(nil), list...)
	}
	return res, nil
}

func (n *Network) getAllMessages(instance string, round int, target int) (map[int][][]byte, error) {
	// an instance that was never registered has base round 0
	abs := round + n.baseRounds[instance]
	if round < 0 || abs < 0 {
		return nil, fmt.Errorf("round %d of instance %s: %w", round, instance, communication.ErrInvalidRound)
	}
	if abs >= n.round {
		return nil, fmt.Errorf("round %d (absolute %d) of instance %s at network round %d: %w",
			round, abs, instance, n.round, communication.ErrRoundNotReached)
	}
	return n.msgs[abs][instance][target], nil
}

// GetMessages returns the messages sent by src to target at round
func (n *Network) GetMessages(instance string, round int, target int, src int) ([][]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	bySrc, err := n.getAllMessages(instance, round, target)
	if err != nil {
		return nil, err
	}
	return append([][]byte(nil), bySrc[src]...), nil
}
