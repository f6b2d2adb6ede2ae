package blockchain

import (
	"fmt"

	"github.com/shaih/go-bbsim/communication"
	"github.com/shaih/go-bbsim/protocols"
)

// Naive is a totally naive blockchain without any agreement:
// the sender of round r is party r mod n and sends each of its pending transactions
// to everybody, and at round r+1 every party outputs what the sender of round r sent.
// A corrupt sender sending different transactions to different parties breaks consistency.
type Naive struct {
	*protocols.BaseNode
	pool *pool
}

// NewNaive creates a naive blockchain node
func NewNaive(params protocols.Params) (*Naive, error) {
	if params.N < 1 {
		return nil, fmt.Errorf("invalid number of parties %d", params.N)
	}
	return &Naive{
		BaseNode: protocols.NewBaseNode(params),
		pool:     newPool(),
	}, nil
}

// NaiveConstructor is the constructor of naive blockchain nodes
func NaiveConstructor(params protocols.Params) (protocols.Node, error) {
	return NewNaive(params)
}

// Step executes round of the naive blockchain
func (nv *Naive) Step(round int) (bool, error) {
	if round > 0 {
		received, err := nv.GetMessages(round-1, (round-1)%nv.N)
		if err != nil {
			return false, err
		}
		txs := make([]string, len(received))
		for i, m := range received {
			txs[i] = string(m)
		}
		nv.pool.output(nv.BaseNode, txs)
	}

	if err := nv.pool.readInput(nv.BaseNode, round); err != nil {
		return false, fmt.Errorf("naive blockchain %s round %d: %w", nv.Instance, round, err)
	}

	if round%nv.N == nv.Params.ID {
		// I'm the sender: send my pending transactions to everyone
		for _, tx := range nv.pool.sortedPending() {
			nv.Send(communication.All, []byte(tx))
		}
	}

	return false, nil
}
