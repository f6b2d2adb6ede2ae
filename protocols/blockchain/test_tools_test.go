package blockchain

import (
	"testing"

	"github.com/shaih/go-bbsim/communication"
	"github.com/shaih/go-bbsim/config"
	"github.com/shaih/go-bbsim/protocols"
	"github.com/shaih/go-bbsim/protocols/oracle"
	"github.com/stretchr/testify/require"
)

const testInstance = "test1"

// setupScenario parses the YAML scenario and creates its network
func setupScenario(t *testing.T, yaml string) (*config.Config, communication.Network) {
	require := require.New(t)

	c, err := config.Parse([]byte(yaml))
	require.NoError(err)
	net, err := c.NewNetwork()
	require.NoError(err)
	return c, net
}

// setupNodes creates one node per party of the scenario with ctor
func setupNodes(t *testing.T, c *config.Config, net communication.Network, ctor protocols.Constructor) []protocols.Node {
	require := require.New(t)

	keys, err := c.Keys()
	require.NoError(err)

	nodes := make([]protocols.Node, c.Parties)
	for i := 0; i < c.Parties; i++ {
		nodes[i], err = ctor(protocols.Params{
			Instance: testInstance,
			ID:       i,
			Secret:   keys[i],
			N:        c.Parties,
			Net:      communication.NewClient(i, c.Parties, net),
			IO:       communication.NewIO(),
		})
		require.NoError(err)
	}
	return nodes
}

// schedule[round][id] are the transactions input to party id at round
type schedule map[int]map[int][]string

func (s schedule) inputs(id int, round int) interface{} {
	txs, ok := s[round][id]
	if !ok {
		return nil
	}
	return txs
}

// honestParties returns the nodes of the parties that are not corrupt in the scenario
func honestParties(c *config.Config, nodes []protocols.Node) []oracle.Party {
	var res []oracle.Party
	for _, node := range nodes {
		if !c.IsCorrupt(node.ID()) {
			res = append(res, node)
		}
	}
	return res
}

// outputStrings returns the outputs of node as strings
func outputStrings(node protocols.Node) []string {
	var res []string
	for _, o := range node.IO().Outputs() {
		res = append(res, string(o))
	}
	return res
}

// corruptBlockchain runs the honest blockchain and calls atEpochStart right after
// the first round of each epoch, that is before round 1 of the epoch broadcast instance
type corruptBlockchain struct {
	*Blockchain
	atEpochStart func(bc *Blockchain) error
}

func (c *corruptBlockchain) Step(round int) (bool, error) {
	done, err := c.Blockchain.Step(round)
	if err != nil {
		return false, err
	}
	if round%EpochRounds == 0 {
		return done, c.atEpochStart(c.Blockchain)
	}
	return done, nil
}

// corrupt replaces the corrupt parties of the scenario with corruptBlockchain nodes
func corrupt(c *config.Config, nodes []protocols.Node, atEpochStart func(bc *Blockchain) error) {
	for _, id := range c.Corrupt {
		nodes[id] = &corruptBlockchain{
			Blockchain:   nodes[id].(*Blockchain),
			atEpochStart: atEpochStart,
		}
	}
}
