package blockchain

import (
	"sort"

	"github.com/shaih/go-bbsim/protocols"
)

// pool tracks the transactions of a node: pending ones were input but not output yet.
// A transaction moves from pending to output exactly once.
type pool struct {
	pending map[string]bool
	outputs map[string]bool
}

func newPool() *pool {
	return &pool{
		pending: make(map[string]bool),
		outputs: make(map[string]bool),
	}
}

// add adds the transactions that were not output yet to the pending ones
func (p *pool) add(txs []string) {
	for _, tx := range txs {
		if !p.outputs[tx] {
			p.pending[tx] = true
		}
	}
}

// sortedPending returns the pending transactions in lexicographic order
func (p *pool) sortedPending() []string {
	txs := make([]string, 0, len(p.pending))
	for tx := range p.pending {
		txs = append(txs, tx)
	}
	sort.Strings(txs)
	return txs
}

// output outputs on node the transactions that were not output yet
func (p *pool) output(node *protocols.BaseNode, txs []string) {
	for _, tx := range txs {
		if p.outputs[tx] {
			continue
		}
		node.Output([]byte(tx))
		p.outputs[tx] = true
		delete(p.pending, tx)
	}
}

// readInput adds the transactions input at round to the pool
func (p *pool) readInput(node *protocols.BaseNode, round int) error {
	inp, ok := node.GetInput(round)
	if !ok {
		return nil
	}
	txs, err := parseTransactions(inp)
	if err != nil {
		return err
	}
	p.add(txs)
	return nil
}
