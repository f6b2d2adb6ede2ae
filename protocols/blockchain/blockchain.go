package blockchain

import (
	"fmt"

	"github.com/shaih/go-bbsim/communication"
	"github.com/shaih/go-bbsim/protocols"
	"github.com/shaih/go-bbsim/protocols/broadcast"
)

// EpochRounds is the number of rounds of an epoch (one broadcast instance per epoch)
const EpochRounds = broadcast.MaxRounds

// Blockchain is a blockchain made of a sequence of broadcast instances, one per epoch.
// The sender of epoch k is party k mod n: it broadcasts all its pending transactions,
// and every party outputs the transactions decided by the instance.
// A blockchain never terminates.
type Blockchain struct {
	*protocols.BaseNode

	variant broadcast.Variant
	pool    *pool

	epoch   int
	current *protocols.Subprotocol
}

// NewBlockchain creates a blockchain node running broadcast instances of the given variant
func NewBlockchain(params protocols.Params, variant broadcast.Variant) (*Blockchain, error) {
	if params.N < 1 {
		return nil, fmt.Errorf("invalid number of parties %d", params.N)
	}
	return &Blockchain{
		BaseNode: protocols.NewBaseNode(params),
		variant:  variant,
		pool:     newPool(),
		epoch:    -1,
	}, nil
}

// Constructor returns a constructor of blockchain nodes
func Constructor(variant broadcast.Variant) protocols.Constructor {
	return func(params protocols.Params) (protocols.Node, error) {
		return NewBlockchain(params, variant)
	}
}

// EpochSender returns the sender of epoch k among n parties
func EpochSender(k int, n int) int {
	return k % n
}

// EpochInstanceSuffix is the instance suffix of the broadcast of epoch k
func EpochInstanceSuffix(k int) string {
	return fmt.Sprintf("BB%d", k)
}

// Epoch returns the current epoch (-1 before round 0)
func (bc *Blockchain) Epoch() int {
	return bc.epoch
}

// Current returns the broadcast instance of the current epoch, or nil before round 0
func (bc *Blockchain) Current() *broadcast.Broadcast {
	if bc.current == nil {
		return nil
	}
	return bc.current.Node.(*broadcast.Broadcast)
}

// Pending returns the transactions input but not output yet, sorted
func (bc *Blockchain) Pending() []string {
	return bc.pool.sortedPending()
}

// Step executes round of the blockchain
func (bc *Blockchain) Step(round int) (bool, error) {
	k := round / EpochRounds

	if err := bc.pool.readInput(bc.BaseNode, round); err != nil {
		return false, fmt.Errorf("blockchain %s round %d: %w", bc.Instance, round, err)
	}

	if round%EpochRounds == 0 {
		if err := bc.startEpoch(k, round); err != nil {
			return false, err
		}
	}
	if bc.current == nil || bc.epoch != k {
		return false, fmt.Errorf("blockchain %s has no broadcast instance for epoch %d", bc.Instance, k)
	}

	if _, err := bc.current.Step(round); err != nil {
		return false, fmt.Errorf("blockchain %s epoch %d: %w", bc.Instance, k, err)
	}

	for _, out := range bc.current.IO.ReadOutputs() {
		txs, err := DecodeBatch(out)
		if err != nil {
			// the sender did not broadcast a valid batch: nothing is decided in this epoch
			bc.Log.Debugf("epoch %d decided an invalid batch %q: %v", k, out, err)
			continue
		}
		bc.pool.output(bc.BaseNode, txs)
	}

	return false, nil
}

// startEpoch starts the broadcast instance of epoch k at round
func (bc *Blockchain) startEpoch(k int, round int) error {
	sender := EpochSender(k, bc.N)
	inp := broadcast.Input{Sender: sender}
	if sender == bc.Params.ID {
		// I'm the sender of this instance: I broadcast all my pending transactions
		pending := bc.pool.sortedPending()
		inp.Value = EncodeBatch(pending)
		bc.Log.Debugf("epoch %d: sending %d pending transactions", k, len(pending))
	}

	sub, err := bc.StartSubprotocol(
		EpochInstanceSuffix(k),
		round,
		communication.NewSingleInputIO(inp),
		broadcast.Constructor(bc.variant),
	)
	if err != nil {
		return fmt.Errorf("blockchain %s failed to start epoch %d: %w", bc.Instance, k, err)
	}
	bc.current = sub
	bc.epoch = k
	return nil
}
